package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/nimbuslabs/profile-gateway/internal/domain"
)

// guard inspects a request and either passes it on, possibly with an enriched
// context, or rejects it with a typed domain error. Guards run in the order
// they are declared on the route; the first rejection is terminal.
type guard func(r *http.Request) (*http.Request, error)

func (h *Handler) guarded(guards []guard, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, g := range guards {
			next, err := g(r)
			if err != nil {
				status, code, msg := mapDomainError(err)
				logOperationError(r.Context(), "guard_rejection", status, code, err)
				writeError(w, status, code, msg)
				return
			}
			r = next
		}
		handler(w, r)
	}
}

// authenticated extracts the bearer credential, verifies it, and attaches the
// resulting identity to the request scope. Verification failures keep their
// specific rejection class so clients can distinguish expired from untrusted.
func (h *Handler) authenticated(r *http.Request) (*http.Request, error) {
	raw, err := bearerTokenFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}
	identity, err := h.service.VerifyCredential(r.Context(), raw)
	if err != nil {
		return nil, err
	}
	ctx := context.WithValue(r.Context(), ctxKeyIdentity, identity)
	return r.WithContext(ctx), nil
}

func (h *Handler) contactVerified(r *http.Request) (*http.Request, error) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if !identity.EmailVerified {
		return nil, domain.ErrContactUnverified
	}
	return r, nil
}

// profileExists loads the caller's active profile and attaches it, sparing the
// handler a second lookup.
func (h *Handler) profileExists(r *http.Request) (*http.Request, error) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	profile, err := h.service.GetActiveProfile(r.Context(), identity.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	ctx := context.WithValue(r.Context(), ctxKeyProfile, profile)
	return r.WithContext(ctx), nil
}
