package valueobject

import (
	"errors"
	"fmt"
)

// Validation error kinds. A *ValidationError unwraps to exactly one of these,
// so callers can branch with errors.Is.
var (
	ErrKindBlank     = errors.New("blank")
	ErrKindFormat    = errors.New("malformed")
	ErrKindChecksum  = errors.New("checksum mismatch")
	ErrKindLength    = errors.New("invalid length")
	ErrKindRange     = errors.New("out of range")
	ErrKindPrecision = errors.New("too precise")
	ErrKindEmpty     = errors.New("empty collection")
	ErrKindMissing   = errors.New("missing")
	ErrKindCurrency  = errors.New("currency mismatch")
)

// ValidationError is returned by every validating factory in the domain. It
// names the offending field and, where there is one, the rejected value.
type ValidationError struct {
	Kind   error
	Field  string
	Value  string
	Reason string
}

// NewValidationError builds a *ValidationError.
func NewValidationError(kind error, field, value, reason string) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Value: value, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Unwrap exposes the error kind.
func (e *ValidationError) Unwrap() error {
	return e.Kind
}
