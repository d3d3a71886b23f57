package events

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type testEvent struct {
	BaseEvent
	Reference string `json:"reference"`
}

func TestNewBaseEvent(t *testing.T) {
	aggregateID := "MSG-123"

	before := time.Now().UTC()
	event := NewBaseEvent("MessageGenerated", aggregateID, "Payment", []byte(`{"k":"v"}`))
	after := time.Now().UTC()

	if event.EventID() == "" {
		t.Error("expected non-empty event ID")
	}

	if event.EventType() != "MessageGenerated" {
		t.Errorf("expected event type %q, got %q", "MessageGenerated", event.EventType())
	}

	if event.AggregateID() != aggregateID {
		t.Errorf("expected aggregate ID %v, got %v", aggregateID, event.AggregateID())
	}

	if event.AggregateType() != "Payment" {
		t.Errorf("expected aggregate type %q, got %q", "Payment", event.AggregateType())
	}

	if string(event.Payload()) != `{"k":"v"}` {
		t.Errorf("unexpected payload %s", event.Payload())
	}

	if event.OccurredAt().Before(before) || event.OccurredAt().After(after) {
		t.Errorf("expected occurredAt between %v and %v, got %v", before, after, event.OccurredAt())
	}
}

func TestNewBaseEventAt(t *testing.T) {
	at := time.Date(2025, 6, 30, 22, 15, 30, 0, time.FixedZone("CEST", 2*3600))
	event := NewBaseEventAt(at, "MessageGenerated", "MSG-1", "Payment", nil)

	if !event.OccurredAt().Equal(at) {
		t.Errorf("expected %v, got %v", at, event.OccurredAt())
	}
	if event.OccurredAt().Location() != time.UTC {
		t.Errorf("expected UTC, got %v", event.OccurredAt().Location())
	}
}

func TestNewBaseEventUniqueIDs(t *testing.T) {
	a := NewBaseEvent("E", "agg", "Aggregate", nil)
	b := NewBaseEvent("E", "agg", "Aggregate", nil)
	if a.EventID() == b.EventID() {
		t.Error("expected distinct event IDs")
	}

	id, err := uuid.Parse(a.EventID())
	if err != nil {
		t.Fatalf("event ID %q is not a UUID: %v", a.EventID(), err)
	}
	if id.Version() != 7 {
		t.Errorf("expected a version 7 UUID, got version %d", id.Version())
	}
}

func TestBaseEventImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}
}

func TestNewOutboxEntry(t *testing.T) {
	event := testEvent{
		BaseEvent: NewBaseEvent("MessageGenerated", "MSG-789", "Payment", nil),
		Reference: "Factuur-001",
	}

	entry, err := NewOutboxEntry("bib.sepa.directdebit", event)
	if err != nil {
		t.Fatalf("NewOutboxEntry() returned error: %v", err)
	}

	if entry.ID != event.EventID() {
		t.Errorf("expected outbox ID %v, got %v", event.EventID(), entry.ID)
	}

	if entry.Topic != "bib.sepa.directdebit" {
		t.Errorf("expected topic %q, got %q", "bib.sepa.directdebit", entry.Topic)
	}

	if entry.AggregateID != "MSG-789" {
		t.Errorf("expected aggregate ID %v, got %v", "MSG-789", entry.AggregateID)
	}

	if entry.AggregateType != "Payment" {
		t.Errorf("expected aggregate type %q, got %q", "Payment", entry.AggregateType)
	}

	if entry.EventType != "MessageGenerated" {
		t.Errorf("expected event type %q, got %q", "MessageGenerated", entry.EventType)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(entry.Payload, &parsed); err != nil {
		t.Fatalf("expected valid JSON payload, got error: %v", err)
	}
	if parsed["reference"] != "Factuur-001" {
		t.Errorf("expected typed fields in payload, got %v", parsed)
	}

	if !entry.CreatedAt.Equal(event.OccurredAt()) {
		t.Errorf("expected created at %v, got %v", event.OccurredAt(), entry.CreatedAt)
	}

	if entry.Published() {
		t.Error("expected new entry to be unpublished")
	}
}

func TestEventCollectorRecord(t *testing.T) {
	collector := &EventCollector{}

	e1 := NewBaseEvent("Event1", "agg", "Aggregate", nil)
	e2 := NewBaseEvent("Event2", "agg", "Aggregate", nil)

	collector.Record(e1)
	collector.Record(e2)

	events := collector.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	if events[0].EventType() != "Event1" {
		t.Errorf("expected first event type %q, got %q", "Event1", events[0].EventType())
	}

	if events[1].EventType() != "Event2" {
		t.Errorf("expected second event type %q, got %q", "Event2", events[1].EventType())
	}
}

func TestEventCollectorEventsDoesNotClear(t *testing.T) {
	collector := &EventCollector{}
	collector.Record(NewBaseEvent("Event1", "agg", "Aggregate", nil))

	_ = collector.Events()

	if collector.Len() != 1 {
		t.Error("expected Events() to not clear the internal slice")
	}
}

func TestEventCollectorClearEvents(t *testing.T) {
	collector := &EventCollector{}

	collector.Record(
		NewBaseEvent("Event1", "agg", "Aggregate", nil),
		NewBaseEvent("Event2", "agg", "Aggregate", nil),
	)

	cleared := collector.ClearEvents()

	if len(cleared) != 2 {
		t.Fatalf("expected ClearEvents to return 2 events, got %d", len(cleared))
	}

	if collector.Len() != 0 {
		t.Errorf("expected internal slice to be empty after ClearEvents, got %d events", collector.Len())
	}
}

func TestEventCollectorClearEventsOnEmpty(t *testing.T) {
	collector := &EventCollector{}

	if cleared := collector.ClearEvents(); cleared != nil {
		t.Errorf("expected nil from ClearEvents on empty collector, got %v", cleared)
	}
	if events := collector.Events(); events != nil {
		t.Errorf("expected nil from Events on empty collector, got %v", events)
	}
}

func TestEventCollectorConcurrentRecord(t *testing.T) {
	collector := &EventCollector{}

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			collector.Record(NewBaseEvent("Event", "agg", "Aggregate", nil))
		}()
	}
	wg.Wait()

	if collector.Len() != goroutines {
		t.Errorf("expected %d events, got %d", goroutines, collector.Len())
	}
}
