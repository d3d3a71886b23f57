package valueobject

import (
	"regexp"
	"strings"
)

const (
	ibanMinLength = 15
	ibanMaxLength = 34
)

// Country code, check digits, then the alphanumeric BBAN.
var ibanPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]+$`)

// Iban is an International Bank Account Number in normalized form
// (uppercase, no spaces). The zero value is not a valid IBAN.
type Iban struct {
	value string
}

// NewIban normalizes raw and validates length, country code and the
// ISO 7064 mod-97 checksum.
func NewIban(raw string) (Iban, error) {
	if strings.TrimSpace(raw) == "" {
		return Iban{}, NewValidationError(ErrKindBlank, "iban", "", "value is required")
	}

	normalized := normalizeIdentifier(raw)

	if n := len(normalized); n < ibanMinLength || n > ibanMaxLength {
		return Iban{}, NewValidationError(ErrKindLength, "iban", raw, "length must be between 15 and 34 characters")
	}
	if !ibanPattern.MatchString(normalized) {
		return Iban{}, NewValidationError(ErrKindFormat, "iban", raw, "must start with a two-letter country code and two check digits")
	}
	if ibanMod97(normalized) != 1 {
		return Iban{}, NewValidationError(ErrKindChecksum, "iban", raw, "mod-97 check failed")
	}

	return Iban{value: normalized}, nil
}

// MustIban is NewIban for fixtures and tests. It panics on invalid input.
func MustIban(raw string) Iban {
	iban, err := NewIban(raw)
	if err != nil {
		panic(err)
	}
	return iban
}

// String returns the normalized IBAN.
func (i Iban) String() string {
	return i.value
}

// CountryCode returns the two-letter ISO 3166 country prefix.
func (i Iban) CountryCode() string {
	if len(i.value) < 2 {
		return ""
	}
	return i.value[:2]
}

// IsZero returns true if the IBAN is uninitialized.
func (i Iban) IsZero() bool {
	return i.value == ""
}

// Equal compares normalized values.
func (i Iban) Equal(other Iban) bool {
	return i.value == other.value
}

// ibanMod97 moves the first four characters to the end, expands letters to
// two digits (A=10 .. Z=35) and reduces the numeral modulo 97 digit by digit.
// The input must already match ibanPattern.
func ibanMod97(iban string) int {
	rearranged := iban[4:] + iban[:4]

	acc := 0
	for _, c := range rearranged {
		switch {
		case c >= '0' && c <= '9':
			acc = (acc*10 + int(c-'0')) % 97
		case c >= 'A' && c <= 'Z':
			v := int(c-'A') + 10
			acc = (acc*100 + v) % 97
		}
	}
	return acc
}

func normalizeIdentifier(raw string) string {
	return strings.ToUpper(strings.ReplaceAll(raw, " ", ""))
}
