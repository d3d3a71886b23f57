package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bibbank/bib/pkg/money"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/valueobject"
)

// DefaultCollectionDelayDays is the number of days between message creation
// and the requested collection date when the caller does not choose one.
const DefaultCollectionDelayDays = 10

// DirectDebitPayment is the root aggregate: one creditor collecting from one
// or more debtors in a single message. It is immutable once created and may
// be shared between goroutines.
type DirectDebitPayment struct {
	messageID               string
	creationDateTime        time.Time
	requestedCollectionDate time.Time
	creditor                Creditor
	transactions            []DirectDebitTransaction
	controlSum              money.Money
}

// NewDirectDebitPayment creates a payment stamped with the current UTC time.
func NewDirectDebitPayment(
	messageID string,
	collectionDelayDays int,
	creditor Creditor,
	transactions []DirectDebitTransaction,
) (DirectDebitPayment, error) {
	return NewDirectDebitPaymentAt(time.Now().UTC(), messageID, collectionDelayDays, creditor, transactions)
}

// NewDirectDebitPaymentAt creates a payment as if it were created at now.
// The requested collection date is the calendar date of now plus
// collectionDelayDays. Transaction order is preserved.
func NewDirectDebitPaymentAt(
	now time.Time,
	messageID string,
	collectionDelayDays int,
	creditor Creditor,
	transactions []DirectDebitTransaction,
) (DirectDebitPayment, error) {
	if strings.TrimSpace(messageID) == "" {
		return DirectDebitPayment{}, valueobject.NewValidationError(valueobject.ErrKindBlank, "message id", "", "value is required")
	}
	if collectionDelayDays < 0 {
		return DirectDebitPayment{}, valueobject.NewValidationError(valueobject.ErrKindRange, "collection delay", fmt.Sprint(collectionDelayDays), "must not be negative")
	}
	if creditor.IsZero() {
		return DirectDebitPayment{}, valueobject.NewValidationError(valueobject.ErrKindMissing, "creditor", "", "value is required")
	}
	if len(transactions) == 0 {
		return DirectDebitPayment{}, valueobject.NewValidationError(valueobject.ErrKindEmpty, "transactions", "", "at least one transaction is required")
	}

	txs := make([]DirectDebitTransaction, len(transactions))
	copy(txs, transactions)

	currency := txs[0].Amount().Currency()
	amounts := make([]money.Money, len(txs))
	for i, tx := range txs {
		amounts[i] = tx.Amount()
	}
	controlSum, err := money.Sum(currency, amounts...)
	if err != nil {
		if errors.Is(err, money.ErrCurrencyMismatch) {
			return DirectDebitPayment{}, valueobject.NewValidationError(valueobject.ErrKindCurrency, "transactions", "", "all amounts must share one currency")
		}
		return DirectDebitPayment{}, valueobject.NewValidationError(valueobject.ErrKindRange, "transactions", "", err.Error())
	}

	created := now.UTC().Truncate(time.Second)
	y, m, d := created.AddDate(0, 0, collectionDelayDays).Date()

	return DirectDebitPayment{
		messageID:               messageID,
		creationDateTime:        created,
		requestedCollectionDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		creditor:                creditor,
		transactions:            txs,
		controlSum:              controlSum,
	}, nil
}

// MessageID returns the message identification.
func (p DirectDebitPayment) MessageID() string {
	return p.messageID
}

// CreationDateTime returns the UTC creation timestamp, truncated to the second.
func (p DirectDebitPayment) CreationDateTime() time.Time {
	return p.creationDateTime
}

// RequestedCollectionDate returns the collection date at midnight UTC.
func (p DirectDebitPayment) RequestedCollectionDate() time.Time {
	return p.requestedCollectionDate
}

// Creditor returns the collecting party.
func (p DirectDebitPayment) Creditor() Creditor {
	return p.creditor
}

// Transactions returns a copy of the transactions in insertion order.
func (p DirectDebitPayment) Transactions() []DirectDebitTransaction {
	out := make([]DirectDebitTransaction, len(p.transactions))
	copy(out, p.transactions)
	return out
}

// NumberOfTransactions returns the transaction count.
func (p DirectDebitPayment) NumberOfTransactions() int {
	return len(p.transactions)
}

// ControlSum returns the exact sum of all transaction amounts.
func (p DirectDebitPayment) ControlSum() money.Money {
	return p.controlSum
}
