package model

import (
	"strings"

	"github.com/bibbank/bib/services/directdebit-service/internal/domain/valueobject"
)

// Creditor is the party initiating the collection. The creditor always
// presents a BIC and a creditor scheme identifier.
type Creditor struct {
	name       string
	iban       valueobject.Iban
	bic        valueobject.Bic
	creditorID string
}

// NewCreditor validates and creates a Creditor. The IBAN is accepted as
// given; a zero BIC is rejected because the creditor agent must be named.
func NewCreditor(name string, iban valueobject.Iban, bic valueobject.Bic, creditorID string) (Creditor, error) {
	if strings.TrimSpace(name) == "" {
		return Creditor{}, valueobject.NewValidationError(valueobject.ErrKindBlank, "creditor name", "", "value is required")
	}
	if bic.IsZero() {
		return Creditor{}, valueobject.NewValidationError(valueobject.ErrKindMissing, "creditor bic", "", "value is required")
	}
	if strings.TrimSpace(creditorID) == "" {
		return Creditor{}, valueobject.NewValidationError(valueobject.ErrKindBlank, "creditor id", "", "value is required")
	}
	return Creditor{
		name:       name,
		iban:       iban,
		bic:        bic,
		creditorID: creditorID,
	}, nil
}

// Name returns the creditor's name.
func (c Creditor) Name() string { return c.name }

// Iban returns the account the collected funds are credited to.
func (c Creditor) Iban() valueobject.Iban { return c.iban }

// Bic returns the creditor agent's BIC.
func (c Creditor) Bic() valueobject.Bic { return c.bic }

// CreditorID returns the SEPA creditor scheme identifier.
func (c Creditor) CreditorID() string { return c.creditorID }

// IsZero returns true if the creditor is uninitialized.
func (c Creditor) IsZero() bool { return c.name == "" }

// Debtor is the payer. The BIC is optional for domestic collections.
type Debtor struct {
	name   string
	iban   valueobject.Iban
	bic    valueobject.Bic
	hasBic bool
}

// NewDebtor validates and creates a Debtor. A nil or zero bic means the
// debtor agent is identified by the IBAN alone.
func NewDebtor(name string, iban valueobject.Iban, bic *valueobject.Bic) (Debtor, error) {
	if strings.TrimSpace(name) == "" {
		return Debtor{}, valueobject.NewValidationError(valueobject.ErrKindBlank, "debtor name", "", "value is required")
	}
	d := Debtor{name: name, iban: iban}
	if bic != nil && !bic.IsZero() {
		d.bic = *bic
		d.hasBic = true
	}
	return d, nil
}

// Name returns the debtor's name.
func (d Debtor) Name() string { return d.name }

// Iban returns the account to be debited.
func (d Debtor) Iban() valueobject.Iban { return d.iban }

// Bic returns the debtor agent's BIC and whether one was given.
func (d Debtor) Bic() (valueobject.Bic, bool) { return d.bic, d.hasBic }

// IsZero returns true if the debtor is uninitialized.
func (d Debtor) IsZero() bool { return d.name == "" }
