package events

import (
	"context"
	"io"
	"log"
	"time"

	"storefront/internal/outbox"
)

type pendingStore interface {
	FetchPending(ctx context.Context, limit int) ([]outbox.Record, error)
	MarkSent(ctx context.Context, id int64) error
}

// Relay drains the outbox into a Publisher. Delivery is at least once: a
// record that was published but not marked is sent again on the next tick.
type Relay struct {
	store     pendingStore
	publisher Publisher
	interval  time.Duration
	batch     int
	logger    *log.Logger
}

func NewRelay(store pendingStore, publisher Publisher, interval time.Duration, logger *log.Logger) *Relay {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Relay{store: store, publisher: publisher, interval: interval, batch: 100, logger: logger}
}

// Run polls until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Drain(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Drain publishes one batch and returns how many records were marked sent.
// It stops at the first publish failure so events leave in id order.
func (r *Relay) Drain(ctx context.Context) int {
	records, err := r.store.FetchPending(ctx, r.batch)
	if err != nil {
		r.logger.Printf("outbox relay: fetch error=%v", err)
		return 0
	}

	sent := 0
	for _, rec := range records {
		if err := r.publisher.Publish(ctx, rec.Topic, rec.Key, rec.Payload); err != nil {
			r.logger.Printf("outbox relay: publish id=%d topic=%s error=%v", rec.ID, rec.Topic, err)
			return sent
		}
		if err := r.store.MarkSent(ctx, rec.ID); err != nil {
			r.logger.Printf("outbox relay: mark id=%d error=%v", rec.ID, err)
			return sent
		}
		sent++
	}
	if sent > 0 {
		r.logger.Printf("outbox relay: published=%d", sent)
	}
	return sent
}
