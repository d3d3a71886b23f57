package money

import (
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/shopspring/decimal"
)

var currencyCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// Errors reported when constructing a Money value.
var (
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrTooPrecise       = errors.New("amount must not have more than 2 decimal places")
	ErrOutOfRange       = errors.New("amount out of range")
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// MinorUnitDigits is the number of fractional digits kept for every amount.
const MinorUnitDigits = 2

// Currency is an ISO 4217 currency code.
type Currency struct {
	code string
}

// NewCurrency creates a Currency after validating the code is exactly 3 uppercase letters.
func NewCurrency(code string) (Currency, error) {
	if !currencyCodeRe.MatchString(code) {
		return Currency{}, fmt.Errorf("%w %q: must be exactly 3 uppercase letters", ErrInvalidCurrency, code)
	}
	return Currency{code: code}, nil
}

// MustCurrency creates a Currency and panics on error. Intended for package-level variable
// initialization only.
func MustCurrency(code string) Currency {
	c, err := NewCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

// Code returns the ISO 4217 currency code.
func (c Currency) Code() string {
	return c.code
}

// String returns the currency code.
func (c Currency) String() string {
	return c.code
}

// IsZero reports whether the currency was never set.
func (c Currency) IsZero() bool {
	return c.code == ""
}

// Common currencies.
var (
	EUR = MustCurrency("EUR")
	USD = MustCurrency("USD")
	GBP = MustCurrency("GBP")
)

// Money is an immutable, non-negative amount held as an integer count of
// minor units (cents). The zero value is EUR 0.00.
type Money struct {
	minor    int64
	currency Currency
}

// New creates a Money value. The amount must be non-negative and must not
// need more than two fractional digits.
func New(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency.IsZero() {
		return Money{}, fmt.Errorf("%w: currency is required", ErrInvalidCurrency)
	}
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s", ErrNegativeAmount, amount.String())
	}
	if !amount.Round(MinorUnitDigits).Equal(amount) {
		return Money{}, fmt.Errorf("%w: %s", ErrTooPrecise, amount.String())
	}

	shifted := amount.Shift(MinorUnitDigits)
	if shifted.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return Money{}, fmt.Errorf("%w: %s", ErrOutOfRange, amount.String())
	}
	return Money{minor: shifted.IntPart(), currency: currency}, nil
}

// NewFromString parses an amount string and currency code into a Money value.
func NewFromString(amount string, currency string) (Money, error) {
	cur, err := NewCurrency(currency)
	if err != nil {
		return Money{}, err
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	return New(d, cur)
}

// Euro creates a Money value in EUR.
func Euro(amount decimal.Decimal) (Money, error) {
	return New(amount, EUR)
}

// MustEuro parses amount as EUR and panics on error. Intended for fixtures and tests.
func MustEuro(amount string) Money {
	m, err := NewFromString(amount, EUR.Code())
	if err != nil {
		panic(err)
	}
	return m
}

// FromMinorUnits creates a Money value from a count of minor units.
func FromMinorUnits(minor int64, currency Currency) (Money, error) {
	if currency.IsZero() {
		return Money{}, fmt.Errorf("%w: currency is required", ErrInvalidCurrency)
	}
	if minor < 0 {
		return Money{}, fmt.Errorf("%w: %d minor units", ErrNegativeAmount, minor)
	}
	return Money{minor: minor, currency: currency}, nil
}

// Zero returns a Money value of zero in the given currency.
func Zero(currency Currency) Money {
	return Money{currency: currency}
}

// Amount returns the decimal amount (minor units divided by 100).
func (m Money) Amount() decimal.Decimal {
	return decimal.New(m.minor, -MinorUnitDigits)
}

// MinorUnits returns the amount as an integer count of minor units.
func (m Money) MinorUnits() int64 {
	return m.minor
}

// Currency returns the currency. The zero value reports EUR.
func (m Money) Currency() Currency {
	if m.currency.IsZero() {
		return EUR
	}
	return m.currency
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool {
	return m.minor == 0
}

// IsPositive returns true if the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.minor > 0
}

// Add returns the sum of m and other. Returns an error if the currencies do not match.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency() != other.Currency() {
		return Money{}, fmt.Errorf("%w: cannot add %s to %s", ErrCurrencyMismatch, other.Currency(), m.Currency())
	}
	if other.minor > math.MaxInt64-m.minor {
		return Money{}, fmt.Errorf("%w: %s + %s", ErrOutOfRange, m, other)
	}
	return Money{minor: m.minor + other.minor, currency: m.Currency()}, nil
}

// Sum adds all amounts, starting from zero in the given currency.
func Sum(currency Currency, amounts ...Money) (Money, error) {
	total := Zero(currency)
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

// Equal returns true if both the minor units and currency of m and other are equal.
func (m Money) Equal(other Money) bool {
	return m.minor == other.minor && m.Currency() == other.Currency()
}

// Compare orders by minor units first and currency code second.
// It returns -1, 0 or +1.
func (m Money) Compare(other Money) int {
	switch {
	case m.minor < other.minor:
		return -1
	case m.minor > other.minor:
		return 1
	}
	a, b := m.Currency().Code(), other.Currency().Code()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// StringFixed renders the amount with exactly two decimals, without currency.
func (m Money) StringFixed() string {
	return m.Amount().StringFixed(MinorUnitDigits)
}

// String formats the Money value as "<currency> <amount>", for example "EUR 125.75".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Currency().Code(), m.StringFixed())
}
