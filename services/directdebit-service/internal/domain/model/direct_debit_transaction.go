package model

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bibbank/bib/pkg/money"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/valueobject"
)

// DirectDebitTransaction is one collection line: a single debtor paying a
// strictly positive amount under a mandate.
type DirectDebitTransaction struct {
	debtor                Debtor
	amount                money.Money
	mandate               valueobject.Mandate
	endToEndID            string
	remittanceInformation string
}

// NewDirectDebitTransaction validates and creates a DirectDebitTransaction.
// remittanceInformation may be empty.
func NewDirectDebitTransaction(
	debtor Debtor,
	amount money.Money,
	mandate valueobject.Mandate,
	endToEndID string,
	remittanceInformation string,
) (DirectDebitTransaction, error) {
	if debtor.IsZero() {
		return DirectDebitTransaction{}, valueobject.NewValidationError(valueobject.ErrKindMissing, "debtor", "", "value is required")
	}
	if !amount.IsPositive() {
		return DirectDebitTransaction{}, valueobject.NewValidationError(valueobject.ErrKindRange, "amount", amount.String(), "must be greater than zero")
	}
	if mandate.IsZero() {
		return DirectDebitTransaction{}, valueobject.NewValidationError(valueobject.ErrKindMissing, "mandate", "", "value is required")
	}
	if strings.TrimSpace(endToEndID) == "" {
		return DirectDebitTransaction{}, valueobject.NewValidationError(valueobject.ErrKindBlank, "end-to-end id", "", "value is required")
	}

	return DirectDebitTransaction{
		debtor:                debtor,
		amount:                amount,
		mandate:               mandate,
		endToEndID:            endToEndID,
		remittanceInformation: remittanceInformation,
	}, nil
}

// Debtor returns the paying party.
func (t DirectDebitTransaction) Debtor() Debtor {
	return t.debtor
}

// Amount returns the instructed amount.
func (t DirectDebitTransaction) Amount() money.Money {
	return t.amount
}

// Mandate returns the mandate the collection is made under.
func (t DirectDebitTransaction) Mandate() valueobject.Mandate {
	return t.mandate
}

// EndToEndID returns the identifier carried unchanged through the payment chain.
func (t DirectDebitTransaction) EndToEndID() string {
	return t.endToEndID
}

// RemittanceInformation returns the unstructured remittance text, if any.
func (t DirectDebitTransaction) RemittanceInformation() string {
	return t.remittanceInformation
}

// HasRemittanceInformation reports whether the remittance text is non-blank.
func (t DirectDebitTransaction) HasRemittanceInformation() bool {
	return strings.TrimSpace(t.remittanceInformation) != ""
}

// NewAmount creates a Money value and reports money's rejections as
// validation errors on the amount field.
func NewAmount(amount decimal.Decimal, currency string) (money.Money, error) {
	cur, err := money.NewCurrency(currency)
	if err != nil {
		return money.Money{}, valueobject.NewValidationError(valueobject.ErrKindFormat, "currency", currency, "must be exactly 3 uppercase letters")
	}

	m, err := money.New(amount, cur)
	switch {
	case err == nil:
		return m, nil
	case errors.Is(err, money.ErrNegativeAmount):
		return money.Money{}, valueobject.NewValidationError(valueobject.ErrKindRange, "amount", amount.String(), "must not be negative")
	case errors.Is(err, money.ErrTooPrecise):
		return money.Money{}, valueobject.NewValidationError(valueobject.ErrKindPrecision, "amount", amount.String(), "must not have more than 2 decimal places")
	default:
		return money.Money{}, valueobject.NewValidationError(valueobject.ErrKindRange, "amount", amount.String(), err.Error())
	}
}
