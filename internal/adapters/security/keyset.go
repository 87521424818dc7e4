package security

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nimbuslabs/profile-gateway/internal/domain"
	"github.com/nimbuslabs/profile-gateway/internal/ports"
)

type jwksDocument struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type JWKSCacheConfig struct {
	JWKSURL    string
	HTTPClient *http.Client
	// MinRefreshInterval bounds how often a forced refresh may hit the issuer.
	// A refresh inside the window serves the cached set instead.
	MinRefreshInterval time.Duration
	FetchRetries       int
}

// JWKSCache fetches and caches the issuer signing keys. Reads are lock-cheap;
// concurrent misses for the same key set coalesce to a single fetch.
type JWKSCache struct {
	httpClient         *http.Client
	jwksURL            string
	minRefreshInterval time.Duration
	fetchRetries       int

	mu        sync.RWMutex
	keys      ports.KeySet
	fetchedAt time.Time

	group singleflight.Group
}

func NewJWKSCache(cfg JWKSCacheConfig) (*JWKSCache, error) {
	if strings.TrimSpace(cfg.JWKSURL) == "" {
		return nil, fmt.Errorf("jwks url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 8 * time.Second}
	}
	minRefresh := cfg.MinRefreshInterval
	if minRefresh <= 0 {
		minRefresh = 30 * time.Second
	}
	retries := cfg.FetchRetries
	if retries <= 0 {
		retries = 3
	}
	return &JWKSCache{
		httpClient:         httpClient,
		jwksURL:            strings.TrimSpace(cfg.JWKSURL),
		minRefreshInterval: minRefresh,
		fetchRetries:       retries,
	}, nil
}

func (c *JWKSCache) Current(ctx context.Context) (ports.KeySet, error) {
	c.mu.RLock()
	keys := c.keys
	c.mu.RUnlock()
	if keys != nil {
		return keys, nil
	}
	return c.refresh(ctx, false)
}

func (c *JWKSCache) Refresh(ctx context.Context) (ports.KeySet, error) {
	return c.refresh(ctx, true)
}

func (c *JWKSCache) refresh(ctx context.Context, forced bool) (ports.KeySet, error) {
	c.mu.RLock()
	keys, fetchedAt := c.keys, c.fetchedAt
	c.mu.RUnlock()
	if keys != nil {
		if !forced {
			return keys, nil
		}
		// Forced refresh inside the throttle window serves the cached set; a kid
		// still missing after a recent fetch is simply untrusted.
		if time.Since(fetchedAt) < c.minRefreshInterval {
			return keys, nil
		}
	}

	v, err, _ := c.group.Do("jwks", func() (any, error) {
		fetched, fetchErr := c.fetchWithRetry(ctx)
		if fetchErr != nil {
			return nil, fetchErr
		}
		c.mu.Lock()
		c.keys = fetched
		c.fetchedAt = time.Now().UTC()
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(ports.KeySet), nil
}

func (c *JWKSCache) fetchWithRetry(ctx context.Context) (ports.KeySet, error) {
	var lastErr error
	backoff := 200 * time.Millisecond
	for attempt := 0; attempt < c.fetchRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", domain.ErrVerifierUnavailable, ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		keys, err := c.fetch(ctx)
		if err == nil {
			return keys, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrVerifierUnavailable, lastErr)
}

func (c *JWKSCache) fetch(ctx context.Context) (ports.KeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jwksURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("jwks fetch failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode jwks: %w", err)
	}
	keys := make(ports.KeySet)
	for i, key := range doc.Keys {
		if strings.ToUpper(strings.TrimSpace(key.Kty)) != "RSA" {
			continue
		}
		nBytes, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(key.N))
		if err != nil {
			return nil, fmt.Errorf("decode jwks n: %w", err)
		}
		eBytes, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(key.E))
		if err != nil {
			return nil, fmt.Errorf("decode jwks e: %w", err)
		}
		eBig := new(big.Int).SetBytes(eBytes)
		if !eBig.IsInt64() {
			return nil, fmt.Errorf("invalid jwks exponent for key %s", key.Kid)
		}
		eValue := int(eBig.Int64())
		if eValue <= 1 {
			return nil, fmt.Errorf("invalid jwks exponent for key %s", key.Kid)
		}

		kid := strings.TrimSpace(key.Kid)
		if kid == "" {
			kid = fmt.Sprintf("key-%d", i)
		}
		keys[kid] = &rsa.PublicKey{
			N: new(big.Int).SetBytes(nBytes),
			E: eValue,
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no RSA keys found in jwks")
	}
	return keys, nil
}
