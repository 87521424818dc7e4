package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nimbuslabs/profile-gateway/internal/ports"
)

type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

var _ ports.OutboxRepository = (*OutboxRepository)(nil)

func (r *OutboxRepository) Enqueue(ctx context.Context, event ports.OutboxEvent) error {
	model := outboxModel{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      string(event.Payload),
		FirstSeenAt:  event.OccurredAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return mapStoreError(fmt.Errorf("enqueue outbox event: %w", err))
	}
	return nil
}

func (r *OutboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]ports.OutboxRecord, error) {
	var models []outboxModel
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("first_seen_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, mapStoreError(fmt.Errorf("fetch unpublished events: %w", err))
	}
	records := make([]ports.OutboxRecord, 0, len(models))
	for _, m := range models {
		records = append(records, ports.OutboxRecord{
			OutboxID:     m.OutboxID,
			EventType:    m.EventType,
			PartitionKey: m.PartitionKey,
			Payload:      []byte(m.Payload),
			RetryCount:   m.RetryCount,
			PublishedAt:  m.PublishedAt,
			FirstSeenAt:  m.FirstSeenAt,
		})
	}
	return records, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, outboxID uuid.UUID, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Update("published_at", at).Error
	if err != nil {
		return mapStoreError(fmt.Errorf("mark event published: %w", err))
	}
	return nil
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, outboxID uuid.UUID, errMsg string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"retry_count":   gorm.Expr("retry_count + 1"),
			"last_error":    errMsg,
			"last_error_at": at,
		}).Error
	if err != nil {
		return mapStoreError(fmt.Errorf("mark event failed: %w", err))
	}
	return nil
}
