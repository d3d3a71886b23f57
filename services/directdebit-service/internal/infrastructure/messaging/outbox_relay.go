package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bibbank/bib/pkg/events"
	pkgkafka "github.com/bibbank/bib/pkg/kafka"
)

const (
	defaultRelayInterval  = 5 * time.Second
	defaultRelayBatchSize = 100
)

// OutboxRelay forwards unpublished outbox entries to Kafka and marks them
// published. Delivery is at least once: an entry whose MarkPublished fails
// is sent again on the next poll.
type OutboxRelay struct {
	outbox    events.OutboxRepository
	producer  Producer
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// RelayOption configures an OutboxRelay.
type RelayOption func(*OutboxRelay)

// WithInterval sets the delay between polls.
func WithInterval(d time.Duration) RelayOption {
	return func(r *OutboxRelay) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithBatchSize sets how many entries are fetched per poll.
func WithBatchSize(n int) RelayOption {
	return func(r *OutboxRelay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func NewOutboxRelay(outbox events.OutboxRepository, producer Producer, logger *slog.Logger, opts ...RelayOption) *OutboxRelay {
	r := &OutboxRelay{
		outbox:    outbox,
		producer:  producer,
		logger:    logger,
		interval:  defaultRelayInterval,
		batchSize: defaultRelayBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is cancelled. Errors are logged and retried on the
// next tick.
func (r *OutboxRelay) Run(ctx context.Context) error {
	r.logger.Info("outbox relay starting", "interval", r.interval, "batch_size", r.batchSize)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		for {
			n, err := r.RelayOnce(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				r.logger.Error("outbox relay failed", "error", err)
				break
			}
			// A full batch means more may be waiting.
			if n < r.batchSize {
				break
			}
		}

		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopping")
			return nil
		case <-ticker.C:
		}
	}
}

// RelayOnce forwards one batch and returns how many entries were published.
// Entries are grouped by topic; a topic that fails to publish is left for
// the next poll while the others are still marked.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	entries, err := r.outbox.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch unpublished: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	var topics []string
	byTopic := make(map[string][]events.OutboxEntry)
	for _, e := range entries {
		if _, ok := byTopic[e.Topic]; !ok {
			topics = append(topics, e.Topic)
		}
		byTopic[e.Topic] = append(byTopic[e.Topic], e)
	}

	var (
		published []string
		errs      []error
	)
	for _, topic := range topics {
		batch := byTopic[topic]
		messages := make([]pkgkafka.Message, 0, len(batch))
		for _, e := range batch {
			messages = append(messages, newMessage(e.AggregateID, e.AggregateType, e.EventType, e.ID, e.Payload))
		}
		if err := r.producer.Publish(ctx, topic, messages...); err != nil {
			errs = append(errs, fmt.Errorf("publish %d entries to %s: %w", len(batch), topic, err))
			continue
		}
		for _, e := range batch {
			published = append(published, e.ID)
		}
	}

	if len(published) > 0 {
		if err := r.outbox.MarkPublished(ctx, published); err != nil {
			errs = append(errs, fmt.Errorf("mark published: %w", err))
			return 0, errors.Join(errs...)
		}
		r.logger.Debug("outbox entries relayed", "count", len(published))
	}

	return len(published), errors.Join(errs...)
}
