package port

import (
	"context"

	"github.com/bibbank/bib/pkg/events"
)

// MessageStore persists a serialized message under a caller-chosen
// destination. Implementations perform a single write and do not retry.
type MessageStore interface {
	Store(ctx context.Context, destination string, xml []byte) error
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, events ...events.DomainEvent) error
}

// Transactor runs fn as one unit of work. Stores and publishers called with
// the context handed to fn take part in it; when fn fails nothing they wrote
// is kept.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
