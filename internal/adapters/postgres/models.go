package postgres

import (
	"time"

	"github.com/google/uuid"
)

type profileModel struct {
	ProfileID      uuid.UUID  `gorm:"column:profile_id;type:uuid;default:gen_random_uuid();primaryKey"`
	SubjectID      string     `gorm:"column:subject_id"`
	Name           string     `gorm:"column:name"`
	Gender         string     `gorm:"column:gender"`
	City           string     `gorm:"column:city"`
	Email          string     `gorm:"column:email"`
	Phone          string     `gorm:"column:phone"`
	DateOfBirth    *time.Time `gorm:"column:date_of_birth"`
	ProfilePicture string     `gorm:"column:profile_picture"`
	Bio            string     `gorm:"column:bio"`
	IsActive       bool       `gorm:"column:is_active"`
	LastLogin      *time.Time `gorm:"column:last_login"`
	Theme          string     `gorm:"column:theme"`
	NotifyEmail    bool       `gorm:"column:notify_email"`
	NotifyPush     bool       `gorm:"column:notify_push"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (profileModel) TableName() string { return "profiles" }

type outboxModel struct {
	OutboxID     uuid.UUID  `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      string     `gorm:"column:payload"`
	RetryCount   int        `gorm:"column:retry_count"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
	LastError    *string    `gorm:"column:last_error"`
	LastErrorAt  *time.Time `gorm:"column:last_error_at"`
	FirstSeenAt  time.Time  `gorm:"column:first_seen_at"`
}

func (outboxModel) TableName() string { return "profile_outbox" }

type idempotencyModel struct {
	IdempotencyKey string    `gorm:"column:idempotency_key;primaryKey"`
	RequestHash    string    `gorm:"column:request_hash"`
	ExpiresAt      time.Time `gorm:"column:expires_at"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (idempotencyModel) TableName() string { return "profile_idempotency" }
