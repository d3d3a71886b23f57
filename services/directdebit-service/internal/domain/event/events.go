package event

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/bibbank/bib/pkg/events"
	"github.com/bibbank/bib/pkg/iso20022"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/model"
)

const AggregateTypeDirectDebitPayment = "DirectDebitPayment"

const (
	TypeMessageGenerated = "sepa.directdebit.message.generated"
	TypeMessageRejected  = "sepa.directdebit.message.rejected"
)

// DirectDebitMessageGenerated is emitted once a pain.008 message has been
// serialized and stored.
type DirectDebitMessageGenerated struct {
	events.BaseEvent
	MessageID               string          `json:"message_id"`
	CreditorID              string          `json:"creditor_id"`
	Destination             string          `json:"destination"`
	NumberOfTransactions    int             `json:"number_of_transactions"`
	ControlSum              decimal.Decimal `json:"control_sum"`
	Currency                string          `json:"currency"`
	RequestedCollectionDate string          `json:"requested_collection_date"`
}

func NewDirectDebitMessageGenerated(payment model.DirectDebitPayment, destination string) DirectDebitMessageGenerated {
	e := DirectDebitMessageGenerated{
		MessageID:               payment.MessageID(),
		CreditorID:              payment.Creditor().CreditorID(),
		Destination:             destination,
		NumberOfTransactions:    payment.NumberOfTransactions(),
		ControlSum:              payment.ControlSum().Amount(),
		Currency:                payment.ControlSum().Currency().Code(),
		RequestedCollectionDate: payment.RequestedCollectionDate().Format(iso20022.DateLayout),
	}
	payload, _ := json.Marshal(struct {
		MessageID               string          `json:"message_id"`
		CreditorID              string          `json:"creditor_id"`
		Destination             string          `json:"destination"`
		NumberOfTransactions    int             `json:"number_of_transactions"`
		ControlSum              decimal.Decimal `json:"control_sum"`
		Currency                string          `json:"currency"`
		RequestedCollectionDate string          `json:"requested_collection_date"`
	}{e.MessageID, e.CreditorID, e.Destination, e.NumberOfTransactions, e.ControlSum, e.Currency, e.RequestedCollectionDate})

	e.BaseEvent = events.NewBaseEvent(TypeMessageGenerated, payment.MessageID(), AggregateTypeDirectDebitPayment, payload)
	return e
}

// DirectDebitMessageRejected is emitted when a generated message fails
// schema validation and is therefore not stored.
type DirectDebitMessageRejected struct {
	events.BaseEvent
	MessageID  string   `json:"message_id"`
	CreditorID string   `json:"creditor_id"`
	Violations []string `json:"violations"`
}

func NewDirectDebitMessageRejected(payment model.DirectDebitPayment, violations []iso20022.Violation) DirectDebitMessageRejected {
	msgs := make([]string, len(violations))
	for i, v := range violations {
		msgs[i] = v.String()
	}
	payload, _ := json.Marshal(struct {
		MessageID  string   `json:"message_id"`
		CreditorID string   `json:"creditor_id"`
		Violations []string `json:"violations"`
	}{payment.MessageID(), payment.Creditor().CreditorID(), msgs})

	return DirectDebitMessageRejected{
		BaseEvent:  events.NewBaseEvent(TypeMessageRejected, payment.MessageID(), AggregateTypeDirectDebitPayment, payload),
		MessageID:  payment.MessageID(),
		CreditorID: payment.Creditor().CreditorID(),
		Violations: msgs,
	}
}
