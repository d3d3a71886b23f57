package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditorRequest carries the raw creditor identity.
type CreditorRequest struct {
	Name       string
	IBAN       string
	BIC        string
	CreditorID string
}

// DebtorRequest carries the raw debtor identity. BIC may be empty.
type DebtorRequest struct {
	Name string
	IBAN string
	BIC  string
}

// TransactionRequest is one collection line of a GenerateCollectionRequest.
type TransactionRequest struct {
	MandateSignedAt       time.Time
	Debtor                DebtorRequest
	Currency              string // defaults to EUR
	MandateID             string
	EndToEndID            string // generated when empty
	RemittanceInformation string
	Amount                decimal.Decimal
}

// GenerateCollectionRequest is the input DTO for generating a pain.008 message.
type GenerateCollectionRequest struct {
	Creditor     CreditorRequest
	MessageID    string // generated when empty
	Destination  string // defaults to "<message id>.xml"
	Transactions []TransactionRequest
	// CollectionDelayDays overrides the configured delay when set.
	CollectionDelayDays *int
	SkipValidation      bool
}

// GenerateCollectionResponse is the output DTO after a message is written.
type GenerateCollectionResponse struct {
	CreationDateTime        time.Time
	RequestedCollectionDate time.Time
	MessageID               string
	Destination             string
	Currency                string
	ControlSum              decimal.Decimal
	NumberOfTransactions    int
}

// ValidateMessageRequest is the input DTO for validating a serialized message.
type ValidateMessageRequest struct {
	XML []byte
}

// ViolationDTO is a single schema violation.
type ViolationDTO struct {
	Element string
	Message string
}

// ValidateMessageResponse lists the schema violations found, if any.
type ValidateMessageResponse struct {
	Violations []ViolationDTO
	Valid      bool
}
