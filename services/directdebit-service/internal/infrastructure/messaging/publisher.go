package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bibbank/bib/pkg/events"
	pkgkafka "github.com/bibbank/bib/pkg/kafka"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/port"
)

var _ port.EventPublisher = (*Publisher)(nil)

// Producer is the slice of *pkgkafka.Producer the publishers need.
type Producer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// Publisher implements EventPublisher using Kafka.
type Publisher struct {
	producer Producer
}

func NewPublisher(producer Producer) *Publisher {
	return &Publisher{producer: producer}
}

func (p *Publisher) Publish(ctx context.Context, topic string, domainEvents ...events.DomainEvent) error {
	messages := make([]pkgkafka.Message, 0, len(domainEvents))
	for _, evt := range domainEvents {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", evt.EventType(), err)
		}
		messages = append(messages, newMessage(evt.AggregateID(), evt.AggregateType(), evt.EventType(), evt.EventID(), payload))
	}
	if err := p.producer.Publish(ctx, topic, messages...); err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}

// newMessage keys by aggregate so all events of one message land on the
// same partition.
func newMessage(aggregateID, aggregateType, eventType, eventID string, payload []byte) pkgkafka.Message {
	return pkgkafka.Message{
		Key:   []byte(aggregateID),
		Value: payload,
		Headers: map[string]string{
			"event_type":     eventType,
			"aggregate_type": aggregateType,
			"event_id":       eventID,
			"content_type":   "application/json",
		},
	}
}
