package ports

import (
	"context"
	"crypto/rsa"
	"time"
)

// IdentityClaims is the decoded, verified claim set of a bearer credential.
type IdentityClaims struct {
	Subject       string
	Email         string
	EmailVerified bool
	Username      string
	TokenUse      string
	Issuer        string
	ExpiresAt     time.Time
}

type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (IdentityClaims, error)
}

// KeySet maps key ids to issuer public keys.
type KeySet map[string]*rsa.PublicKey

type KeySource interface {
	// Current returns the cached key set, fetching it on first use.
	Current(ctx context.Context) (KeySet, error)
	// Refresh forces a re-fetch, used when a token references an unknown key id.
	Refresh(ctx context.Context) (KeySet, error)
}
