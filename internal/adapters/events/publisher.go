package events

import (
	"context"
	"log/slog"
)

// LoggingPublisher stands in for a broker in environments without one. Events
// still flow through the outbox so the table drains instead of growing.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger.With(
		"module", "events.publisher",
		"layer", "adapter",
	)}
}

func (p *LoggingPublisher) Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error {
	p.logger.InfoContext(ctx, "profile event emitted",
		"operation", "publish",
		"outcome", "success",
		"event_type", eventType,
		"subject_id", partitionKey,
		"payload_bytes", len(payload),
	)
	return nil
}
