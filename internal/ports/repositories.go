package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nimbuslabs/profile-gateway/internal/domain"
)

type CreateProfileParams struct {
	SubjectID   string
	Name        string
	Gender      domain.Gender
	City        string
	Email       string
	Phone       string
	DateOfBirth *time.Time
	Bio         string
	CreatedAt   time.Time
}

// UpdateProfileParams carries partial-field semantics: nil pointers leave the
// stored value untouched.
type UpdateProfileParams struct {
	SubjectID   string
	Name        *string
	Gender      *domain.Gender
	City        *string
	Phone       *string
	DateOfBirth *time.Time
	// ClearDateOfBirth nulls the stored date; it wins over DateOfBirth.
	ClearDateOfBirth bool
	ProfilePicture   *string
	Bio              *string
	Theme            *domain.Theme
	NotifyEmail      *bool
	NotifyPush       *bool
	UpdatedAt        time.Time
}

type ProfileRepository interface {
	// Create inserts a new active profile. The insert itself is the uniqueness
	// check: a constraint violation on (subject_id, active) surfaces as
	// domain.ErrAlreadyExists so concurrent creates resolve to one winner.
	Create(ctx context.Context, params CreateProfileParams) (domain.Profile, error)
	GetActiveBySubject(ctx context.Context, subjectID string) (domain.Profile, error)
	Update(ctx context.Context, params UpdateProfileParams) (domain.Profile, error)
	SoftDelete(ctx context.Context, subjectID string, now time.Time) error
	GetActiveByID(ctx context.Context, profileID uuid.UUID) (domain.Profile, error)
	TouchLastLogin(ctx context.Context, subjectID string, now time.Time) error
}

type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

type OutboxRecord struct {
	OutboxID     uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	RetryCount   int
	PublishedAt  *time.Time
	FirstSeenAt  time.Time
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	FetchUnpublished(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, errMsg string, at time.Time) error
}

type IdempotencyRepository interface {
	Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error
}
