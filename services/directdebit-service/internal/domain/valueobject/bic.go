package valueobject

import (
	"regexp"
	"strings"
)

// Bank code, country code, location code, optional branch code.
var bicPattern = regexp.MustCompile(`^[A-Z0-9]{4}[A-Z]{2}[A-Z0-9]{2}([A-Z0-9]{3})?$`)

// Bic is a Bank Identifier Code (SWIFT code) in normalized form.
type Bic struct {
	value string
}

// NewBic normalizes raw (spaces stripped, uppercased) and requires a length of
// exactly 8 or 11 characters.
func NewBic(raw string) (Bic, error) {
	if strings.TrimSpace(raw) == "" {
		return Bic{}, NewValidationError(ErrKindBlank, "bic", "", "value is required")
	}

	normalized := normalizeIdentifier(raw)
	if n := len(normalized); n != 8 && n != 11 {
		return Bic{}, NewValidationError(ErrKindLength, "bic", raw, "length must be 8 or 11 characters")
	}
	if !bicPattern.MatchString(normalized) {
		return Bic{}, NewValidationError(ErrKindFormat, "bic", raw, "must be alphanumeric with a two-letter country code")
	}

	return Bic{value: normalized}, nil
}

// MustBic is NewBic for fixtures and tests. It panics on invalid input.
func MustBic(raw string) Bic {
	bic, err := NewBic(raw)
	if err != nil {
		panic(err)
	}
	return bic
}

// String returns the normalized BIC.
func (b Bic) String() string {
	return b.value
}

// CountryCode returns characters 5-6 of the BIC.
func (b Bic) CountryCode() string {
	if len(b.value) < 6 {
		return ""
	}
	return b.value[4:6]
}

// IsZero returns true if the BIC is uninitialized.
func (b Bic) IsZero() bool {
	return b.value == ""
}
