package valueobject

import (
	"strings"
	"time"
)

// DateLayout is the ISO 8601 calendar date layout used for mandate and
// collection dates.
const DateLayout = "2006-01-02"

// Mandate is the debtor's authorization for the creditor to collect funds.
// Remarks are kept for the caller's records and never leave the domain.
type Mandate struct {
	id              string
	dateOfSignature time.Time
	remarks         string
}

// NewMandate validates and creates a Mandate. The signature date is truncated
// to its calendar date.
func NewMandate(id string, dateOfSignature time.Time, remarks string) (Mandate, error) {
	if strings.TrimSpace(id) == "" {
		return Mandate{}, NewValidationError(ErrKindBlank, "mandate id", "", "value is required")
	}
	if dateOfSignature.IsZero() {
		return Mandate{}, NewValidationError(ErrKindMissing, "mandate date of signature", "", "value is required")
	}

	y, m, d := dateOfSignature.Date()
	return Mandate{
		id:              id,
		dateOfSignature: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		remarks:         remarks,
	}, nil
}

// ID returns the mandate identifier.
func (m Mandate) ID() string {
	return m.id
}

// DateOfSignature returns the signature date at midnight UTC.
func (m Mandate) DateOfSignature() time.Time {
	return m.dateOfSignature
}

// Remarks returns the informational remarks.
func (m Mandate) Remarks() string {
	return m.remarks
}

// IsZero returns true if the mandate is uninitialized.
func (m Mandate) IsZero() bool {
	return m.id == ""
}
