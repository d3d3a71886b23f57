package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/bib/pkg/events"
	pkgkafka "github.com/bibbank/bib/pkg/kafka"
)

// --- Mocks ---

type mockProducer struct {
	mu        sync.Mutex
	publishFn func(topic string, messages []pkgkafka.Message) error
	sent      map[string][]pkgkafka.Message
}

func (m *mockProducer) Publish(_ context.Context, topic string, messages ...pkgkafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishFn != nil {
		if err := m.publishFn(topic, messages); err != nil {
			return err
		}
	}
	if m.sent == nil {
		m.sent = make(map[string][]pkgkafka.Message)
	}
	m.sent[topic] = append(m.sent[topic], messages...)
	return nil
}

func (m *mockProducer) count(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent[topic])
}

type mockOutbox struct {
	mu        sync.Mutex
	entries   []events.OutboxEntry
	fetchErr  error
	markErr   error
	markCalls int
}

func (m *mockOutbox) Store(_ context.Context, entries []events.OutboxEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *mockOutbox) FetchUnpublished(_ context.Context, batchSize int) ([]events.OutboxEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var out []events.OutboxEntry
	for _, e := range m.entries {
		if !e.Published() && len(out) < batchSize {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockOutbox) MarkPublished(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markCalls++
	if m.markErr != nil {
		return m.markErr
	}
	now := time.Now()
	for i := range m.entries {
		for _, id := range ids {
			if m.entries[i].ID == id {
				m.entries[i].PublishedAt = &now
			}
		}
	}
	return nil
}

func (m *mockOutbox) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if !e.Published() {
			n++
		}
	}
	return n
}

// --- Helpers ---

type generatedEvent struct {
	events.BaseEvent
	MessageID string `json:"message_id"`
}

func newGeneratedEvent(messageID string) generatedEvent {
	return generatedEvent{
		BaseEvent: events.NewBaseEvent("sepa.directdebit.message.generated", messageID, "DirectDebitPayment", nil),
		MessageID: messageID,
	}
}

func outboxEntry(t *testing.T, topic, messageID string) events.OutboxEntry {
	t.Helper()
	entry, err := events.NewOutboxEntry(topic, newGeneratedEvent(messageID))
	require.NoError(t, err)
	return entry
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Publisher ---

func TestPublisher_Publish(t *testing.T) {
	producer := &mockProducer{}
	pub := NewPublisher(producer)
	evt := newGeneratedEvent("MSG-001")

	require.NoError(t, pub.Publish(context.Background(), "bib.sepa.directdebit", evt))

	sent := producer.sent["bib.sepa.directdebit"]
	require.Len(t, sent, 1)
	assert.Equal(t, "MSG-001", string(sent[0].Key))
	assert.Equal(t, "sepa.directdebit.message.generated", sent[0].Headers["event_type"])
	assert.Equal(t, "DirectDebitPayment", sent[0].Headers["aggregate_type"])
	assert.Equal(t, evt.EventID(), sent[0].Headers["event_id"])

	var body map[string]any
	require.NoError(t, json.Unmarshal(sent[0].Value, &body))
	assert.Equal(t, "MSG-001", body["message_id"])
}

func TestPublisher_ProducerError(t *testing.T) {
	brokerDown := errors.New("broker unavailable")
	pub := NewPublisher(&mockProducer{
		publishFn: func(string, []pkgkafka.Message) error { return brokerDown },
	})

	err := pub.Publish(context.Background(), "bib.sepa.directdebit", newGeneratedEvent("MSG-001"))

	assert.ErrorIs(t, err, brokerDown)
}

// --- OutboxRelay ---

func TestOutboxRelay_RelayOnce(t *testing.T) {
	outbox := &mockOutbox{}
	require.NoError(t, outbox.Store(context.Background(), []events.OutboxEntry{
		outboxEntry(t, "bib.sepa.directdebit", "MSG-001"),
		outboxEntry(t, "bib.sepa.directdebit", "MSG-002"),
		outboxEntry(t, "bib.sepa.audit", "MSG-001"),
	}))
	producer := &mockProducer{}
	relay := NewOutboxRelay(outbox, producer, discardLogger())

	n, err := relay.RelayOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 2, producer.count("bib.sepa.directdebit"))
	assert.Equal(t, 1, producer.count("bib.sepa.audit"))
	assert.Zero(t, outbox.pending())

	// Nothing left to do.
	n, err = relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOutboxRelay_PartialTopicFailure(t *testing.T) {
	outbox := &mockOutbox{}
	require.NoError(t, outbox.Store(context.Background(), []events.OutboxEntry{
		outboxEntry(t, "bib.sepa.directdebit", "MSG-001"),
		outboxEntry(t, "bib.sepa.audit", "MSG-001"),
	}))
	producer := &mockProducer{
		publishFn: func(topic string, _ []pkgkafka.Message) error {
			if topic == "bib.sepa.audit" {
				return errors.New("topic authorization failed")
			}
			return nil
		},
	}
	relay := NewOutboxRelay(outbox, producer, discardLogger())

	n, err := relay.RelayOnce(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bib.sepa.audit")
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, outbox.pending(), "the failed topic stays in the outbox")
}

func TestOutboxRelay_MarkFailureKeepsEntries(t *testing.T) {
	outbox := &mockOutbox{markErr: errors.New("deadlock detected")}
	require.NoError(t, outbox.Store(context.Background(), []events.OutboxEntry{
		outboxEntry(t, "bib.sepa.directdebit", "MSG-001"),
	}))
	relay := NewOutboxRelay(outbox, &mockProducer{}, discardLogger())

	n, err := relay.RelayOnce(context.Background())

	require.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, outbox.pending())
}

func TestOutboxRelay_FetchError(t *testing.T) {
	relay := NewOutboxRelay(&mockOutbox{fetchErr: errors.New("connection reset")}, &mockProducer{}, discardLogger())

	_, err := relay.RelayOnce(context.Background())

	assert.ErrorContains(t, err, "fetch unpublished")
}

func TestOutboxRelay_DrainsInBatches(t *testing.T) {
	outbox := &mockOutbox{}
	for _, id := range []string{"MSG-1", "MSG-2", "MSG-3", "MSG-4", "MSG-5"} {
		require.NoError(t, outbox.Store(context.Background(), []events.OutboxEntry{outboxEntry(t, "bib.sepa.directdebit", id)}))
	}
	producer := &mockProducer{}
	relay := NewOutboxRelay(outbox, producer, discardLogger(), WithBatchSize(2), WithInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	// The first tick drains everything without waiting for the interval.
	require.Eventually(t, func() bool { return outbox.pending() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 5, producer.count("bib.sepa.directdebit"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop after cancellation")
	}
}

func TestRelayOptions_IgnoreNonPositive(t *testing.T) {
	relay := NewOutboxRelay(&mockOutbox{}, &mockProducer{}, discardLogger(), WithBatchSize(0), WithInterval(-time.Second))

	assert.Equal(t, defaultRelayBatchSize, relay.batchSize)
	assert.Equal(t, defaultRelayInterval, relay.interval)
}
