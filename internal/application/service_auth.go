package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nimbuslabs/profile-gateway/internal/domain"
	"github.com/nimbuslabs/profile-gateway/internal/ports"
)

// VerifyCredential validates a raw bearer token and projects the verified
// claims into a request-scoped identity.
func (s *Service) VerifyCredential(ctx context.Context, rawToken string) (domain.Identity, error) {
	claims, err := s.verifier.Verify(ctx, rawToken)
	if err != nil {
		return domain.Identity{}, err
	}
	return BuildIdentity(claims)
}

// BuildIdentity is a pure projection of verified claims. A claim set missing
// its subject is treated as untrusted, not as a distinct failure class.
func BuildIdentity(claims ports.IdentityClaims) (domain.Identity, error) {
	if strings.TrimSpace(claims.Subject) == "" {
		return domain.Identity{}, fmt.Errorf("%w: claim set missing subject", domain.ErrUntrustedCredential)
	}
	return domain.Identity{
		Subject:       claims.Subject,
		Email:         domain.NormalizeEmail(claims.Email),
		EmailVerified: claims.EmailVerified,
		Username:      claims.Username,
		TokenUse:      claims.TokenUse,
	}, nil
}

// GetSelf returns the caller identity together with the active profile when
// one exists. A successful authenticated self read stamps last_login.
func (s *Service) GetSelf(ctx context.Context, identity domain.Identity) (MeResponse, error) {
	resp := MeResponse{Identity: toIdentityResponse(identity)}

	profile, err := s.profiles.GetActiveBySubject(ctx, identity.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return resp, nil
		}
		return MeResponse{}, err
	}

	now := s.nowFn()
	if err := s.profiles.TouchLastLogin(ctx, identity.Subject, now); err == nil {
		profile.LastLogin = &now
	}

	view := toProfileResponse(profile)
	resp.Profile = &view
	return resp, nil
}
