package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that happened to an aggregate, ready to be
// stored in the outbox or published.
type DomainEvent interface {
	EventID() string
	EventType() string
	AggregateID() string
	AggregateType() string
	OccurredAt() time.Time
	Payload() []byte
}

// BaseEvent carries the envelope fields shared by every event. Concrete
// events embed it and add their own payload fields.
type BaseEvent struct {
	id            string
	eventType     string
	aggregateID   string
	aggregateType string
	occurredAt    time.Time
	payload       []byte
}

// NewBaseEvent stamps a new event with the current time.
func NewBaseEvent(eventType, aggregateID, aggregateType string, payload []byte) BaseEvent {
	return NewBaseEventAt(time.Now(), eventType, aggregateID, aggregateType, payload)
}

// NewBaseEventAt stamps a new event with occurredAt, normalized to UTC.
// Event ids are time-ordered, so ids sort roughly by creation.
func NewBaseEventAt(occurredAt time.Time, eventType, aggregateID, aggregateType string, payload []byte) BaseEvent {
	return BaseEvent{
		id:            newEventID(),
		eventType:     eventType,
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		occurredAt:    occurredAt.UTC(),
		payload:       payload,
	}
}

func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (e BaseEvent) EventID() string       { return e.id }
func (e BaseEvent) EventType() string     { return e.eventType }
func (e BaseEvent) AggregateID() string   { return e.aggregateID }
func (e BaseEvent) AggregateType() string { return e.aggregateType }
func (e BaseEvent) OccurredAt() time.Time { return e.occurredAt }
func (e BaseEvent) Payload() []byte       { return e.payload }
