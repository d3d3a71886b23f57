package kafka

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// writerBatchTimeout bounds how long a partial batch waits before it is sent.
const writerBatchTimeout = 10 * time.Millisecond

// Message is a record exchanged with a topic. Headers are carried as
// string values.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Producer publishes to any number of topics. Writers are created on first
// use and share one transport, so TLS and SASL are negotiated once.
type Producer struct {
	mu        sync.Mutex
	writers   map[string]*kafkago.Writer
	brokers   []string
	transport *kafkago.Transport
}

// NewProducer validates cfg and prepares the shared transport. No broker is
// contacted until the first Publish.
func NewProducer(cfg Config) (*Producer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	transport, err := cfg.transport()
	if err != nil {
		return nil, err
	}
	return &Producer{
		writers:   make(map[string]*kafkago.Writer),
		brokers:   cfg.Brokers,
		transport: transport,
	}, nil
}

// Publish writes messages to topic in order and waits for all in-sync
// replicas to acknowledge them. Messages with the same key land on the same
// partition.
func (p *Producer) Publish(ctx context.Context, topic string, messages ...Message) error {
	if topic == "" {
		return errors.New("kafka: publish topic is required")
	}
	if len(messages) == 0 {
		return nil
	}

	records := make([]kafkago.Message, len(messages))
	for i, msg := range messages {
		records[i] = toKafkaMessage(msg)
	}
	if err := p.writer(topic).WriteMessages(ctx, records...); err != nil {
		return fmt.Errorf("kafka: publish %d message(s) to %s: %w", len(records), topic, err)
	}
	return nil
}

// toKafkaMessage sorts headers by name so equal messages encode identically.
func toKafkaMessage(msg Message) kafkago.Message {
	record := kafkago.Message{Key: msg.Key, Value: msg.Value}
	if len(msg.Headers) == 0 {
		return record
	}
	names := make([]string, 0, len(msg.Headers))
	for name := range msg.Headers {
		names = append(names, name)
	}
	slices.Sort(names)

	record.Headers = make([]kafkago.Header, 0, len(names))
	for _, name := range names {
		record.Headers = append(record.Headers, kafkago.Header{Key: name, Value: []byte(msg.Headers[name])})
	}
	return record
}

// Close flushes and closes every writer. The producer can be reused
// afterwards; new writers are created on demand.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kafka: close writer for %s: %w", topic, err))
		}
	}
	clear(p.writers)
	return errors.Join(errs...)
}

func (p *Producer) writer(topic string) *kafkago.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.writers[topic]
	if !ok {
		w = p.newWriter(topic)
		p.writers[topic] = w
	}
	return w
}

func (p *Producer) newWriter(topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(p.brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		BatchTimeout:           writerBatchTimeout,
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		Transport:              p.transport,
	}
}
