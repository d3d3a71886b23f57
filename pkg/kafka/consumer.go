package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"
)

// maxFetchBytes caps a single fetch from a partition.
const maxFetchBytes = 10 << 20

// Handler processes a consumed Kafka message.
type Handler func(ctx context.Context, msg Message) error

// Consumer reads a topic as part of a consumer group and hands each message
// to a Handler. A message is committed only after its handler succeeds.
type Consumer struct {
	reader  *kafkago.Reader
	handler Handler
	logger  *slog.Logger
}

// NewConsumer creates a Consumer for topic. New groups start from the
// earliest retained offset.
func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	if handler == nil {
		return nil, errors.New("kafka: consumer handler is required")
	}
	rc, err := readerConfig(cfg, topic)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Consumer{
		reader:  kafkago.NewReader(rc),
		handler: handler,
		logger:  logger.With("topic", topic, "group", cfg.ConsumerGroup),
	}, nil
}

func readerConfig(cfg Config, topic string) (kafkago.ReaderConfig, error) {
	if err := cfg.Validate(); err != nil {
		return kafkago.ReaderConfig{}, err
	}
	if topic == "" {
		return kafkago.ReaderConfig{}, errors.New("kafka: consumer topic is required")
	}
	dialer, err := cfg.dialer()
	if err != nil {
		return kafkago.ReaderConfig{}, err
	}

	return kafkago.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1,
		MaxBytes:    maxFetchBytes,
		StartOffset: kafkago.FirstOffset,
		Dialer:      dialer,
	}, nil
}

// Start consumes until ctx is cancelled. Handler failures are logged and
// the message is left uncommitted.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer starting")

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("consumer stopping")
				return nil
			}
			return fmt.Errorf("kafka: fetch message: %w", err)
		}

		if err := c.handler(ctx, fromKafkaMessage(m)); err != nil {
			c.logger.Error("handler failed", "partition", m.Partition, "offset", m.Offset, "error", err)
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("commit failed", "partition", m.Partition, "offset", m.Offset, "error", err)
		}
	}
}

// fromKafkaMessage is the inverse of toKafkaMessage. Repeated header keys
// keep the last value.
func fromKafkaMessage(m kafkago.Message) Message {
	msg := Message{
		Key:     m.Key,
		Value:   m.Value,
		Headers: make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

// Close closes the reader and leaves the consumer group.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("kafka: close reader: %w", err)
	}
	return nil
}
