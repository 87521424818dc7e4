package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nimbuslabs/profile-gateway/internal/domain"
	"github.com/nimbuslabs/profile-gateway/internal/ports"
)

type IdempotencyRepository struct {
	db *gorm.DB
}

func NewIdempotencyRepository(db *gorm.DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

var _ ports.IdempotencyRepository = (*IdempotencyRepository)(nil)

// Reserve claims the key for this request hash. A second caller with the same
// key and hash succeeds (replay), a different hash reports a conflict. Expired
// reservations are reclaimed in place.
func (r *IdempotencyRepository) Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error {
	model := idempotencyModel{
		IdempotencyKey: key,
		RequestHash:    requestHash,
		ExpiresAt:      expiresAt,
		CreatedAt:      time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) && !isUniqueViolation(err) {
		return mapStoreError(fmt.Errorf("reserve idempotency key: %w", err))
	}

	var existing idempotencyModel
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&existing).Error; err != nil {
		return mapStoreError(fmt.Errorf("load idempotency key: %w", err))
	}
	if existing.RequestHash == requestHash {
		return nil
	}
	if time.Now().UTC().After(existing.ExpiresAt) {
		result := r.db.WithContext(ctx).
			Model(&idempotencyModel{}).
			Where("idempotency_key = ? AND expires_at < now()", key).
			Updates(map[string]any{"request_hash": requestHash, "expires_at": expiresAt})
		if result.Error != nil {
			return mapStoreError(fmt.Errorf("reclaim idempotency key: %w", result.Error))
		}
		if result.RowsAffected == 1 {
			return nil
		}
	}
	return fmt.Errorf("%w: idempotency key reused with different payload", domain.ErrIdempotencyConflict)
}
