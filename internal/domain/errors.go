package domain

import "errors"

var (
	// ErrMalformedCredential is returned when the Authorization header carries no
	// usable bearer token, or the token itself cannot be parsed as a JWT.
	ErrMalformedCredential = errors.New("malformed credential")
	// ErrExpiredCredential is returned only for tokens that verified against a
	// trusted key but whose expiry is in the past. Clients use this to trigger a
	// token refresh instead of a full re-login.
	ErrExpiredCredential = errors.New("expired credential")
	// ErrUntrustedCredential covers signature, issuer, audience and token-use
	// mismatches, plus claim sets missing required fields.
	ErrUntrustedCredential = errors.New("untrusted credential")
	// ErrVerifierUnavailable means the signing key set could not be obtained.
	// This is a system-level condition, never caused by the presented token.
	ErrVerifierUnavailable = errors.New("verifier unavailable")

	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrContactUnverified = errors.New("contact not verified")
	ErrProfileNotFound   = errors.New("profile not found")

	ErrInvalidInput        = errors.New("invalid input")
	ErrAlreadyExists       = errors.New("profile already exists")
	ErrNotFound            = errors.New("resource not found")
	ErrIdempotencyConflict = errors.New("idempotency conflict")
	// ErrStoreUnavailable signals a storage timeout or outage, kept distinct
	// from ErrVerifierUnavailable so callers can tell which dependency is down.
	ErrStoreUnavailable = errors.New("store unavailable")
)
