package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/bib/pkg/iso20022"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/model"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/port"
)

const instrumentationName = "github.com/bibbank/bib/services/directdebit-service/internal/domain/service"

// Pain008Writer turns a validated payment into a pain.008.001.08 message.
type Pain008Writer interface {
	// GenerateDocument maps the payment to its document tree.
	GenerateDocument(payment model.DirectDebitPayment) iso20022.Pain008Document
	// GenerateXML maps and serializes the payment.
	GenerateXML(payment model.DirectDebitPayment) ([]byte, error)
	// WriteXML serializes the payment, validates it unless WithoutValidation
	// is given, and hands the bytes to the message store.
	WriteXML(ctx context.Context, payment model.DirectDebitPayment, destination string, opts ...WriteOption) error
	// Validate checks a serialized message against the embedded schema.
	Validate(xml []byte) error
}

// StorageError reports that a serialized message could not be stored.
type StorageError struct {
	Destination string
	Err         error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store message at %q: %v", e.Destination, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// WriteOption configures a single WriteXML call.
type WriteOption func(*writeOptions)

type writeOptions struct {
	validate bool
}

// WithoutValidation skips schema validation before the message is stored.
func WithoutValidation() WriteOption {
	return func(o *writeOptions) {
		o.validate = false
	}
}

// WriterOption configures a SepaWriter.
type WriterOption func(*writerConfig)

type writerConfig struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) WriterOption {
	return func(c *writerConfig) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) WriterOption {
	return func(c *writerConfig) {
		c.meterProvider = mp
	}
}

// SepaWriter is the default Pain008Writer. It holds no mutable state and is
// safe for concurrent use.
type SepaWriter struct {
	store  port.MessageStore
	logger *slog.Logger
	tracer trace.Tracer

	generated  metric.Int64Counter
	violations metric.Int64Counter
	written    metric.Int64Counter
}

// NewSepaWriter creates a SepaWriter that stores messages in store.
func NewSepaWriter(store port.MessageStore, logger *slog.Logger, opts ...WriterOption) (*SepaWriter, error) {
	if store == nil {
		return nil, errors.New("message store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg := writerConfig{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	meter := cfg.meterProvider.Meter(instrumentationName)

	generated, err := meter.Int64Counter("sepa_documents_generated_total",
		metric.WithDescription("Number of pain.008 documents serialized"))
	if err != nil {
		return nil, fmt.Errorf("create generated counter: %w", err)
	}
	violations, err := meter.Int64Counter("sepa_schema_violations_total",
		metric.WithDescription("Number of schema violations found in pain.008 documents"))
	if err != nil {
		return nil, fmt.Errorf("create violations counter: %w", err)
	}
	written, err := meter.Int64Counter("sepa_documents_written_total",
		metric.WithDescription("Number of pain.008 documents handed to the message store"))
	if err != nil {
		return nil, fmt.Errorf("create written counter: %w", err)
	}

	return &SepaWriter{
		store:      store,
		logger:     logger,
		tracer:     cfg.tracerProvider.Tracer(instrumentationName),
		generated:  generated,
		violations: violations,
		written:    written,
	}, nil
}

// GenerateDocument maps the payment to its document tree.
func (w *SepaWriter) GenerateDocument(payment model.DirectDebitPayment) iso20022.Pain008Document {
	return MapPain008(payment)
}

// GenerateXML maps and serializes the payment.
func (w *SepaWriter) GenerateXML(payment model.DirectDebitPayment) ([]byte, error) {
	data, err := MapPain008(payment).ToXML()
	if err != nil {
		return nil, fmt.Errorf("serialize payment %s: %w", payment.MessageID(), err)
	}
	w.generated.Add(context.Background(), 1)
	return data, nil
}

// Validate checks xml against the embedded pain.008.001.08 schema. Schema
// violations are returned as *iso20022.SchemaValidationError.
func (w *SepaWriter) Validate(xml []byte) error {
	return w.validate(context.Background(), xml)
}

func (w *SepaWriter) validate(ctx context.Context, xml []byte) error {
	err := iso20022.ValidatePain008(xml)
	var sve *iso20022.SchemaValidationError
	if errors.As(err, &sve) {
		w.violations.Add(ctx, int64(len(sve.Violations)))
	}
	return err
}

// WriteXML serializes the payment and stores it at destination. Validation
// runs by default; a document with violations is never stored.
func (w *SepaWriter) WriteXML(ctx context.Context, payment model.DirectDebitPayment, destination string, opts ...WriteOption) error {
	o := writeOptions{validate: true}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, span := w.tracer.Start(ctx, "Pain008Writer.WriteXML", trace.WithAttributes(
		attribute.String("sepa.message_id", payment.MessageID()),
		attribute.Int("sepa.transactions", payment.NumberOfTransactions()),
		attribute.Bool("sepa.validate", o.validate),
	))
	defer span.End()

	data, err := w.GenerateXML(payment)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "serialization failed")
		return err
	}

	if o.validate {
		if err := w.validate(ctx, data); err != nil {
			w.logger.Warn("pain.008 document rejected by schema",
				"message_id", payment.MessageID(),
				"error", err,
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, "schema validation failed")
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := w.store.Store(ctx, destination, data); err != nil {
		w.logger.Error("failed to store pain.008 document",
			"message_id", payment.MessageID(),
			"destination", destination,
			"error", err,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "store failed")
		return &StorageError{Destination: destination, Err: err}
	}

	w.written.Add(ctx, 1)
	w.logger.Info("pain.008 document written",
		"message_id", payment.MessageID(),
		"destination", destination,
		"bytes", len(data),
	)
	return nil
}

var _ Pain008Writer = (*SepaWriter)(nil)
