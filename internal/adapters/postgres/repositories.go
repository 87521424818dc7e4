package postgres

import "gorm.io/gorm"

// Repositories bundles the gorm-backed stores that share one connection pool.
type Repositories struct {
	Profiles    *ProfileRepository
	Outbox      *OutboxRepository
	Idempotency *IdempotencyRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Profiles:    NewProfileRepository(db),
		Outbox:      NewOutboxRepository(db),
		Idempotency: NewIdempotencyRepository(db),
	}
}
