package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nimbuslabs/profile-gateway/internal/ports"
)

type memOutbox struct {
	mu      sync.Mutex
	records []ports.OutboxRecord
	failed  map[uuid.UUID]int
}

func newMemOutbox(records ...ports.OutboxRecord) *memOutbox {
	return &memOutbox{records: records, failed: make(map[uuid.UUID]int)}
}

func (m *memOutbox) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, ports.OutboxRecord{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      event.Payload,
		FirstSeenAt:  event.OccurredAt,
	})
	return nil
}

func (m *memOutbox) FetchUnpublished(_ context.Context, limit int) ([]ports.OutboxRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.OutboxRecord, 0, limit)
	for _, rec := range m.records {
		if rec.PublishedAt == nil {
			out = append(out, rec)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memOutbox) MarkPublished(_ context.Context, outboxID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].OutboxID == outboxID {
			stamp := at
			m.records[i].PublishedAt = &stamp
		}
	}
	return nil
}

func (m *memOutbox) MarkFailed(_ context.Context, outboxID uuid.UUID, _ string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[outboxID]++
	return nil
}

func (m *memOutbox) unpublishedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, rec := range m.records {
		if rec.PublishedAt == nil {
			count++
		}
	}
	return count
}

type flakyPublisher struct {
	mu       sync.Mutex
	failType string
	sent     []string
}

func (p *flakyPublisher) Publish(_ context.Context, eventType string, _ []byte, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if eventType == p.failType {
		return errors.New("broker unavailable")
	}
	p.sent = append(p.sent, eventType)
	return nil
}

func testRecord(eventType string, seen time.Time) ports.OutboxRecord {
	return ports.OutboxRecord{
		OutboxID:     uuid.New(),
		EventType:    eventType,
		PartitionKey: "subject-1",
		Payload:      []byte(`{}`),
		FirstSeenAt:  seen,
	}
}

func TestProcessOncePublishesAndMarks(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	outbox := newMemOutbox(
		testRecord("profile.created", now.Add(-2*time.Second)),
		testRecord("profile.updated", now.Add(-time.Second)),
	)
	publisher := &flakyPublisher{}
	worker := NewOutboxWorker(slog.Default(), outbox, publisher, time.Second, 10)

	if err := worker.drainOnce(context.Background()); err != nil {
		t.Fatalf("drain once: %v", err)
	}
	if got := outbox.unpublishedCount(); got != 0 {
		t.Fatalf("expected all records published, %d left", got)
	}
	if len(publisher.sent) != 2 || publisher.sent[0] != "profile.created" {
		t.Fatalf("unexpected publish order %v", publisher.sent)
	}
}

func TestProcessOnceKeepsFailedRecords(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	good := testRecord("profile.created", now.Add(-2*time.Second))
	bad := testRecord("profile.deleted", now.Add(-time.Second))
	outbox := newMemOutbox(good, bad)
	publisher := &flakyPublisher{failType: "profile.deleted"}
	worker := NewOutboxWorker(slog.Default(), outbox, publisher, time.Second, 10)

	if err := worker.drainOnce(context.Background()); err != nil {
		t.Fatalf("drain once: %v", err)
	}
	if got := outbox.unpublishedCount(); got != 1 {
		t.Fatalf("expected failed record to stay unpublished, %d left", got)
	}
	outbox.mu.Lock()
	defer outbox.mu.Unlock()
	if outbox.failed[bad.OutboxID] != 1 {
		t.Fatalf("expected one failure mark for the bad record")
	}
}
