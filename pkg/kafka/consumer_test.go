package kafka

import (
	"context"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
)

func TestReaderConfig(t *testing.T) {
	cfg := Config{Brokers: []string{"localhost:9092"}, ConsumerGroup: "directdebit-audit", TLS: true}

	rc, err := readerConfig(cfg, "bib.sepa.directdebit")
	if err != nil {
		t.Fatalf("readerConfig() error = %v", err)
	}
	if rc.Topic != "bib.sepa.directdebit" || rc.GroupID != "directdebit-audit" {
		t.Errorf("unexpected topic/group %q/%q", rc.Topic, rc.GroupID)
	}
	if rc.StartOffset != kafkago.FirstOffset {
		t.Errorf("expected FirstOffset, got %d", rc.StartOffset)
	}
	if rc.MaxBytes != maxFetchBytes {
		t.Errorf("expected MaxBytes %d, got %d", maxFetchBytes, rc.MaxBytes)
	}
	if rc.Dialer == nil || rc.Dialer.TLS == nil {
		t.Error("expected a TLS dialer")
	}
}

func TestReaderConfig_Errors(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		topic string
	}{
		{"no brokers", Config{}, "bib.sepa.directdebit"},
		{"no topic", Config{Brokers: []string{"localhost:9092"}}, ""},
		{"unknown sasl", Config{Brokers: []string{"localhost:9092"}, SASLEnabled: true, SASLMechanism: "GSSAPI"}, "t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := readerConfig(tt.cfg, tt.topic); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestNewConsumer_RequiresHandler(t *testing.T) {
	if _, err := NewConsumer(Config{Brokers: []string{"localhost:9092"}}, "t", nil, nil); err == nil {
		t.Fatal("expected error for nil handler")
	}

	c, err := NewConsumer(Config{Brokers: []string{"localhost:9092"}}, "t",
		func(context.Context, Message) error { return nil }, nil)
	if err != nil {
		t.Fatalf("NewConsumer() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestFromKafkaMessage_RoundTrip(t *testing.T) {
	in := Message{
		Key:   []byte("MSG-001"),
		Value: []byte(`{"message_id":"MSG-001"}`),
		Headers: map[string]string{
			"event_type": "sepa.directdebit.message.generated",
			"event_id":   "0192f0c4-0000-7000-8000-000000000001",
		},
	}

	out := fromKafkaMessage(toKafkaMessage(in))

	if string(out.Key) != string(in.Key) || string(out.Value) != string(in.Value) {
		t.Errorf("key/value changed: %q %q", out.Key, out.Value)
	}
	if len(out.Headers) != 2 || out.Headers["event_id"] != in.Headers["event_id"] {
		t.Errorf("unexpected headers %+v", out.Headers)
	}
}

func TestFromKafkaMessage_DuplicateHeaderKeepsLast(t *testing.T) {
	out := fromKafkaMessage(kafkago.Message{Headers: []kafkago.Header{
		{Key: "content_type", Value: []byte("text/plain")},
		{Key: "content_type", Value: []byte("application/json")},
	}})

	if out.Headers["content_type"] != "application/json" {
		t.Errorf("expected last header value, got %q", out.Headers["content_type"])
	}
}
