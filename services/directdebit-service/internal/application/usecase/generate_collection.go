package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/bibbank/bib/pkg/events"
	"github.com/bibbank/bib/pkg/iso20022"
	"github.com/bibbank/bib/pkg/money"
	"github.com/bibbank/bib/services/directdebit-service/internal/application/builder"
	"github.com/bibbank/bib/services/directdebit-service/internal/application/dto"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/event"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/model"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/port"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/service"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/valueobject"
)

// TopicDirectDebitMessages is the Kafka topic for direct debit message events.
const TopicDirectDebitMessages = "bib.sepa.directdebit"

// GenerateCollection builds a direct debit payment from raw request data,
// writes it as a pain.008 message and announces the result.
type GenerateCollection struct {
	writer       service.Pain008Writer
	publisher    port.EventPublisher // optional, may be nil
	transactor   port.Transactor     // optional, may be nil
	logger       *slog.Logger
	now          func() time.Time
	defaultDelay int
	validate     bool
}

// NewGenerateCollection wires the use case. Payments are due defaultDelay
// days after creation unless a request overrides it.
func NewGenerateCollection(
	writer service.Pain008Writer,
	publisher port.EventPublisher,
	logger *slog.Logger,
	defaultDelay int,
) *GenerateCollection {
	return &GenerateCollection{
		writer:       writer,
		publisher:    publisher,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
		defaultDelay: defaultDelay,
		validate:     true,
	}
}

// WithSchemaValidation turns schema validation of every generated message on
// or off. Requests can still opt out individually when it is on.
func (uc *GenerateCollection) WithSchemaValidation(enabled bool) *GenerateCollection {
	uc.validate = enabled
	return uc
}

// WithTransactor makes storing a message and publishing its events one unit
// of work. Without a transactor a message that was stored stays stored even
// when its events cannot be published.
func (uc *GenerateCollection) WithTransactor(t port.Transactor) *GenerateCollection {
	uc.transactor = t
	return uc
}

// WithClock replaces the clock used to stamp new payments.
func (uc *GenerateCollection) WithClock(now func() time.Time) *GenerateCollection {
	uc.now = now
	return uc
}

// Execute generates, stores and announces one pain.008 message. The message
// is stored under "<creditor id>/<destination>", so creditors never share a
// destination.
func (uc *GenerateCollection) Execute(ctx context.Context, req dto.GenerateCollectionRequest) (dto.GenerateCollectionResponse, error) {
	payment, err := uc.buildPayment(req)
	if err != nil {
		return dto.GenerateCollectionResponse{}, err
	}

	destination, err := scopedDestination(payment.Creditor().CreditorID(), req.Destination, payment.MessageID())
	if err != nil {
		return dto.GenerateCollectionResponse{}, err
	}

	var opts []service.WriteOption
	if req.SkipValidation || !uc.validate {
		opts = append(opts, service.WithoutValidation())
	}

	err = uc.atomically(ctx, func(ctx context.Context) error {
		if err := uc.writer.WriteXML(ctx, payment, destination, opts...); err != nil {
			return fmt.Errorf("write message %s: %w", payment.MessageID(), err)
		}

		collector := &events.EventCollector{}
		collector.Record(event.NewDirectDebitMessageGenerated(payment, destination))
		if err := uc.publish(ctx, collector); err != nil {
			if uc.transactor != nil {
				return fmt.Errorf("failed to publish events: %w", err)
			}
			// The message is stored; failing now would invite a retry that
			// stores the same collection under a new message id.
			uc.logger.Error("message stored but events not published",
				"message_id", payment.MessageID(),
				"destination", destination,
				"error", err,
			)
		}
		return nil
	})
	if err != nil {
		var sve *iso20022.SchemaValidationError
		if errors.As(err, &sve) {
			uc.publishRejection(ctx, payment, sve.Violations)
		}
		return dto.GenerateCollectionResponse{}, err
	}

	uc.logger.Info("direct debit collection generated",
		"message_id", payment.MessageID(),
		"transactions", payment.NumberOfTransactions(),
		"control_sum", payment.ControlSum().String(),
		"destination", destination,
	)

	return dto.GenerateCollectionResponse{
		MessageID:               payment.MessageID(),
		Destination:             destination,
		NumberOfTransactions:    payment.NumberOfTransactions(),
		ControlSum:              payment.ControlSum().Amount(),
		Currency:                payment.ControlSum().Currency().Code(),
		CreationDateTime:        payment.CreationDateTime(),
		RequestedCollectionDate: payment.RequestedCollectionDate(),
	}, nil
}

func (uc *GenerateCollection) atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	if uc.transactor == nil {
		return fn(ctx)
	}
	return uc.transactor.WithinTransaction(ctx, fn)
}

func (uc *GenerateCollection) publishRejection(ctx context.Context, payment model.DirectDebitPayment, violations []iso20022.Violation) {
	collector := &events.EventCollector{}
	collector.Record(event.NewDirectDebitMessageRejected(payment, violations))
	if err := uc.publish(ctx, collector); err != nil {
		uc.logger.Error("failed to publish rejection event",
			"message_id", payment.MessageID(),
			"error", err,
		)
	}
}

// scopedDestination places destination, or "<messageID>.xml" when it is
// empty, under the creditor's own directory. Both parts must be relative
// slash-separated paths without "." or ".." elements.
func scopedDestination(creditorID, destination, messageID string) (string, error) {
	if !fs.ValidPath(creditorID) || creditorID == "." || strings.ContainsAny(creditorID, `/\`) {
		return "", valueobject.NewValidationError(valueobject.ErrKindFormat, "creditor id", creditorID,
			"must be usable as a single path element")
	}
	if destination == "" {
		destination = messageID + ".xml"
	}
	if !fs.ValidPath(destination) || destination == "." || strings.Contains(destination, `\`) {
		return "", valueobject.NewValidationError(valueobject.ErrKindFormat, "destination", destination,
			"must be a relative path without . or .. elements")
	}
	return path.Join(creditorID, destination), nil
}

func (uc *GenerateCollection) publish(ctx context.Context, collector *events.EventCollector) error {
	if uc.publisher == nil || collector.Len() == 0 {
		return nil
	}
	return uc.publisher.Publish(ctx, TopicDirectDebitMessages, collector.ClearEvents()...)
}

func (uc *GenerateCollection) buildPayment(req dto.GenerateCollectionRequest) (model.DirectDebitPayment, error) {
	creditor, err := toCreditor(req.Creditor)
	if err != nil {
		return model.DirectDebitPayment{}, fmt.Errorf("invalid creditor: %w", err)
	}

	b := builder.New(creditor).WithClock(uc.now)
	for i, line := range req.Transactions {
		debtor, amount, mandate, err := toTransactionParts(line)
		if err != nil {
			return model.DirectDebitPayment{}, fmt.Errorf("invalid transaction %d: %w", i+1, err)
		}
		opts := []builder.TransactionOption{builder.WithRemittance(line.RemittanceInformation)}
		if line.EndToEndID != "" {
			opts = append(opts, builder.WithEndToEndID(line.EndToEndID))
		}
		b.AddTransaction(debtor, amount, mandate, opts...)
	}

	delay := uc.defaultDelay
	if req.CollectionDelayDays != nil {
		delay = *req.CollectionDelayDays
	}
	buildOpts := []builder.BuildOption{builder.WithCollectionDelay(delay)}
	if req.MessageID != "" {
		buildOpts = append(buildOpts, builder.WithMessageID(req.MessageID))
	}

	payment, err := b.Build(buildOpts...)
	if err != nil {
		return model.DirectDebitPayment{}, fmt.Errorf("failed to build payment: %w", err)
	}
	return payment, nil
}

func toCreditor(req dto.CreditorRequest) (model.Creditor, error) {
	iban, err := valueobject.NewIban(req.IBAN)
	if err != nil {
		return model.Creditor{}, err
	}
	bic, err := valueobject.NewBic(req.BIC)
	if err != nil {
		return model.Creditor{}, err
	}
	return model.NewCreditor(req.Name, iban, bic, req.CreditorID)
}

func toTransactionParts(req dto.TransactionRequest) (model.Debtor, money.Money, valueobject.Mandate, error) {
	iban, err := valueobject.NewIban(req.Debtor.IBAN)
	if err != nil {
		return model.Debtor{}, money.Money{}, valueobject.Mandate{}, err
	}

	var bic *valueobject.Bic
	if req.Debtor.BIC != "" {
		b, err := valueobject.NewBic(req.Debtor.BIC)
		if err != nil {
			return model.Debtor{}, money.Money{}, valueobject.Mandate{}, err
		}
		bic = &b
	}

	debtor, err := model.NewDebtor(req.Debtor.Name, iban, bic)
	if err != nil {
		return model.Debtor{}, money.Money{}, valueobject.Mandate{}, err
	}

	currency := req.Currency
	if currency == "" {
		currency = money.EUR.Code()
	}
	amount, err := model.NewAmount(req.Amount, currency)
	if err != nil {
		return model.Debtor{}, money.Money{}, valueobject.Mandate{}, err
	}

	mandate, err := valueobject.NewMandate(req.MandateID, req.MandateSignedAt, "")
	if err != nil {
		return model.Debtor{}, money.Money{}, valueobject.Mandate{}, err
	}

	return debtor, amount, mandate, nil
}
