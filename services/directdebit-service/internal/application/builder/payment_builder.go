package builder

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/bib/pkg/money"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/model"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/valueobject"
)

// MessageIDPrefix starts every generated message identifier.
const MessageIDPrefix = "MSG-"

// maxMessageIDLength is the Max35Text limit on GrpHdr/MsgId.
const maxMessageIDLength = 35

// PaymentBuilder accumulates transactions for a single creditor and builds
// a DirectDebitPayment. The first failed AddTransaction is remembered and
// returned by Build, so calls can be chained without checking each one.
// A PaymentBuilder is not safe for concurrent use.
type PaymentBuilder struct {
	creditor     model.Creditor
	transactions []model.DirectDebitTransaction
	err          error
	now          func() time.Time
}

// New starts a builder for creditor.
func New(creditor model.Creditor) *PaymentBuilder {
	return &PaymentBuilder{
		creditor: creditor,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the clock used to stamp the payment's creation time.
func (b *PaymentBuilder) WithClock(now func() time.Time) *PaymentBuilder {
	b.now = now
	return b
}

// TransactionOption customizes a single transaction.
type TransactionOption func(*transactionOptions)

type transactionOptions struct {
	endToEndID string
	remittance string
}

// WithEndToEndID sets the end-to-end identifier instead of generating one.
func WithEndToEndID(id string) TransactionOption {
	return func(o *transactionOptions) {
		o.endToEndID = id
	}
}

// WithRemittance sets the unstructured remittance line shown to the debtor.
func WithRemittance(text string) TransactionOption {
	return func(o *transactionOptions) {
		o.remittance = text
	}
}

// AddTransaction appends a collection from debtor. It is a no-op once an
// earlier transaction has failed.
func (b *PaymentBuilder) AddTransaction(debtor model.Debtor, amount money.Money, mandate valueobject.Mandate, opts ...TransactionOption) *PaymentBuilder {
	if b.err != nil {
		return b
	}

	o := transactionOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.endToEndID == "" {
		o.endToEndID = NewEndToEndID()
	}

	tx, err := model.NewDirectDebitTransaction(debtor, amount, mandate, o.endToEndID, o.remittance)
	if err != nil {
		b.err = fmt.Errorf("transaction %d: %w", len(b.transactions)+1, err)
		return b
	}
	b.transactions = append(b.transactions, tx)
	return b
}

// Len returns the number of transactions added so far.
func (b *PaymentBuilder) Len() int {
	return len(b.transactions)
}

// BuildOption customizes the message-level fields of the payment.
type BuildOption func(*buildOptions)

type buildOptions struct {
	messageID string
	delayDays int
}

// WithMessageID sets the message identifier instead of generating one.
func WithMessageID(id string) BuildOption {
	return func(o *buildOptions) {
		o.messageID = id
	}
}

// WithCollectionDelay sets the number of days between creation and the
// requested collection date.
func WithCollectionDelay(days int) BuildOption {
	return func(o *buildOptions) {
		o.delayDays = days
	}
}

// Build validates the accumulated input and returns the payment.
func (b *PaymentBuilder) Build(opts ...BuildOption) (model.DirectDebitPayment, error) {
	if b.err != nil {
		return model.DirectDebitPayment{}, b.err
	}

	o := buildOptions{delayDays: model.DefaultCollectionDelayDays}
	for _, opt := range opts {
		opt(&o)
	}
	if o.messageID == "" {
		o.messageID = NewMessageID()
	}

	return model.NewDirectDebitPaymentAt(b.now(), o.messageID, o.delayDays, b.creditor, b.transactions)
}

// NewEndToEndID returns a random identifier of 32 hex characters.
func NewEndToEndID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// NewMessageID returns "MSG-" followed by a time-ordered UUID in hex, cut
// to the 35 characters MsgId allows. Identifiers sort by creation time.
func NewMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return (MessageIDPrefix + hex.EncodeToString(id[:]))[:maxMessageIDLength]
}
