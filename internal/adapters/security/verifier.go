package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nimbuslabs/profile-gateway/internal/domain"
	"github.com/nimbuslabs/profile-gateway/internal/ports"
)

var errUnknownKeyID = errors.New("unknown key id")

type VerifierConfig struct {
	Issuer   string
	ClientID string
	// TokenUse is the expected token_use claim value, "id" or "access".
	TokenUse string
	Leeway   time.Duration
}

// Verifier validates bearer credentials against the issuer key set and returns
// a typed failure per rejection class. It is constructed once at service start
// and injected into consumers; construction fails on incomplete configuration.
type Verifier struct {
	cfg  VerifierConfig
	keys ports.KeySource
}

func NewVerifier(cfg VerifierConfig, keys ports.KeySource) (*Verifier, error) {
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, fmt.Errorf("verifier issuer is required")
	}
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, fmt.Errorf("verifier client id is required")
	}
	switch strings.TrimSpace(cfg.TokenUse) {
	case "id", "access":
	default:
		return nil, fmt.Errorf("verifier token use must be id or access")
	}
	if cfg.Leeway <= 0 {
		cfg.Leeway = 30 * time.Second
	}
	if keys == nil {
		return nil, fmt.Errorf("verifier key source is required")
	}
	return &Verifier{cfg: cfg, keys: keys}, nil
}

func (v *Verifier) Verify(ctx context.Context, rawToken string) (ports.IdentityClaims, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return ports.IdentityClaims{}, domain.ErrMalformedCredential
	}

	keySet, err := v.keys.Current(ctx)
	if err != nil {
		return ports.IdentityClaims{}, err
	}

	claims, err := v.parse(rawToken, keySet)
	if errors.Is(err, errUnknownKeyID) {
		// Key rotation: refresh the cached set once and retry before rejecting.
		keySet, err = v.keys.Refresh(ctx)
		if err != nil {
			return ports.IdentityClaims{}, err
		}
		claims, err = v.parse(rawToken, keySet)
	}
	if err != nil {
		return ports.IdentityClaims{}, classifyParseError(err)
	}

	return v.projectClaims(claims)
}

func (v *Verifier) parse(rawToken string, keySet ports.KeySet) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(
		rawToken,
		claims,
		func(token *jwt.Token) (any, error) {
			if token.Method.Alg() != jwt.SigningMethodRS256.Alg() {
				return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
			}
			kid, _ := token.Header["kid"].(string)
			if strings.TrimSpace(kid) == "" {
				return nil, fmt.Errorf("missing key id")
			}
			key, ok := keySet[kid]
			if !ok {
				return nil, fmt.Errorf("%w: %s", errUnknownKeyID, kid)
			}
			return key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.cfg.Leeway),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

func (v *Verifier) projectClaims(claims jwt.MapClaims) (ports.IdentityClaims, error) {
	subject := strings.TrimSpace(stringClaim(claims, "sub"))
	if subject == "" {
		return ports.IdentityClaims{}, fmt.Errorf("%w: missing sub claim", domain.ErrUntrustedCredential)
	}

	tokenUse := strings.TrimSpace(stringClaim(claims, "token_use"))
	if tokenUse != v.cfg.TokenUse {
		return ports.IdentityClaims{}, fmt.Errorf("%w: unexpected token_use %q", domain.ErrUntrustedCredential, tokenUse)
	}

	// Id tokens carry the client id in aud; access tokens carry it in client_id.
	audience := stringClaim(claims, "client_id")
	if auds, err := claims.GetAudience(); err == nil && len(auds) > 0 {
		audience = ""
		for _, aud := range auds {
			if aud == v.cfg.ClientID {
				audience = aud
				break
			}
		}
	}
	if audience != v.cfg.ClientID {
		return ports.IdentityClaims{}, fmt.Errorf("%w: audience mismatch", domain.ErrUntrustedCredential)
	}

	username := strings.TrimSpace(stringClaim(claims, "username"))
	if username == "" {
		username = strings.TrimSpace(stringClaim(claims, "cognito:username"))
	}

	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time.UTC()
	}

	return ports.IdentityClaims{
		Subject:       subject,
		Email:         domain.NormalizeEmail(stringClaim(claims, "email")),
		EmailVerified: boolClaim(claims["email_verified"]),
		Username:      username,
		TokenUse:      tokenUse,
		Issuer:        stringClaim(claims, "iss"),
		ExpiresAt:     expiresAt,
	}, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", domain.ErrMalformedCredential, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", domain.ErrExpiredCredential, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrUntrustedCredential, err)
	}
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, ok := claims[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

func boolClaim(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes":
			return true
		default:
			return false
		}
	default:
		return false
	}
}
