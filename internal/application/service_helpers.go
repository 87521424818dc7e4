package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nimbuslabs/profile-gateway/internal/domain"
	"github.com/nimbuslabs/profile-gateway/internal/ports"
)

type profileEventData struct {
	ProfileID string `json:"profile_id"`
	SubjectID string `json:"subject_id"`
	Email     string `json:"email,omitempty"`
	City      string `json:"city,omitempty"`
	IsActive  bool   `json:"is_active"`
	StampedAt string `json:"stamped_at"`
}

func (s *Service) enqueueProfileEvent(ctx context.Context, eventType string, profile domain.Profile) error {
	occurredAt := s.nowFn()
	data := profileEventData{
		ProfileID: profile.ProfileID.String(),
		SubjectID: profile.SubjectID,
		Email:     profile.Email,
		City:      profile.City,
		IsActive:  eventType != "profile.deleted",
		StampedAt: occurredAt.Format(time.RFC3339),
	}
	envelope := map[string]any{
		"event_id":       uuid.NewString(),
		"event_type":     eventType,
		"occurred_at":    occurredAt.Format(time.RFC3339),
		"source_service": s.cfg.ServiceName,
		"schema_version": "1.0",
		"partition_key":  profile.SubjectID,
		"data":           data,
	}
	payload, _ := json.Marshal(envelope)
	return s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventType,
		PartitionKey: profile.SubjectID,
		Payload:      payload,
		OccurredAt:   occurredAt,
	})
}

func hashRequest(v any) string {
	raw, _ := json.Marshal(v)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func (s *Service) reserveIdempotency(ctx context.Context, key string, request any) error {
	if key == "" {
		return nil
	}
	err := s.idempotency.Reserve(ctx, key, hashRequest(request), s.nowFn().Add(s.cfg.IdempotencyTTL))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIdempotencyConflict, err)
	}
	return nil
}

func publicProfileCacheKey(profileID uuid.UUID) string {
	return "profile:public:" + profileID.String()
}

// publicProfileTombstone marks a deleted profile id in the cache. Deleted
// profiles never reactivate under the same id, so serving the marker as
// not-found for a TTL is always correct.
const publicProfileTombstone = "__deleted__"

func (s *Service) logCacheFailure(ctx context.Context, operation string, err error) {
	slog.Default().WarnContext(ctx, "public profile cache write failed",
		"module", "application",
		"layer", "service",
		"operation", operation,
		"outcome", "failure",
		"error", err,
	)
}
