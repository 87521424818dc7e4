package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nimbuslabs/profile-gateway/internal/ports"
)

const (
	defaultDrainInterval = 2 * time.Second
	defaultDrainBatch    = 100
)

// OutboxWorker drains unpublished profile events on a fixed interval. A failed
// publish leaves the record in the table with an incremented retry count for
// the next sweep; per-subject ordering is preserved by draining in
// first_seen_at order.
type OutboxWorker struct {
	logger    *slog.Logger
	outbox    ports.OutboxRepository
	publisher ports.EventPublisher
	interval  time.Duration
	batchSize int
}

func NewOutboxWorker(logger *slog.Logger, outbox ports.OutboxRepository, publisher ports.EventPublisher, interval time.Duration, batchSize int) *OutboxWorker {
	if interval <= 0 {
		interval = defaultDrainInterval
	}
	if batchSize <= 0 {
		batchSize = defaultDrainBatch
	}
	return &OutboxWorker{
		logger:    logger.With("module", "events.outbox_worker", "layer", "adapter"),
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
	}
}

func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		if err := w.drainOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "outbox sweep failed",
				"operation", "drain",
				"outcome", "failure",
				"error", err,
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *OutboxWorker) drainOnce(ctx context.Context) error {
	records, err := w.outbox.FetchUnpublished(ctx, w.batchSize)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	var published, failed int
	now := time.Now().UTC()
	for _, rec := range records {
		if pubErr := w.publisher.Publish(ctx, rec.EventType, rec.Payload, rec.PartitionKey); pubErr != nil {
			failed++
			_ = w.outbox.MarkFailed(ctx, rec.OutboxID, pubErr.Error(), now)
			continue
		}
		published++
		_ = w.outbox.MarkPublished(ctx, rec.OutboxID, now)
	}

	outcome := "success"
	if failed > 0 {
		outcome = "partial"
	}
	w.logger.InfoContext(ctx, "outbox sweep finished",
		"operation", "drain",
		"outcome", outcome,
		"published", published,
		"failed", failed,
	)
	return nil
}
