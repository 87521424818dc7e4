package application

import (
	"time"

	"github.com/nimbuslabs/profile-gateway/internal/ports"
)

type Service struct {
	cfg         Config
	profiles    ports.ProfileRepository
	outbox      ports.OutboxRepository
	idempotency ports.IdempotencyRepository
	verifier    ports.TokenVerifier
	cache       ports.Cache
	nowFn       func() time.Time
}

type Dependencies struct {
	Config      Config
	Profiles    ports.ProfileRepository
	Outbox      ports.OutboxRepository
	Idempotency ports.IdempotencyRepository
	Verifier    ports.TokenVerifier
	Cache       ports.Cache
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "profile-gateway"
	}
	if cfg.PublicProfileCacheTTL <= 0 {
		cfg.PublicProfileCacheTTL = 5 * time.Minute
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 7 * 24 * time.Hour
	}

	return &Service{
		cfg:         cfg,
		profiles:    deps.Profiles,
		outbox:      deps.Outbox,
		idempotency: deps.Idempotency,
		verifier:    deps.Verifier,
		cache:       deps.Cache,
		nowFn:       func() time.Time { return time.Now().UTC() },
	}
}
