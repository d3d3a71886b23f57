package model_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/bib/pkg/money"
	"github.com/bibbank/bib/pkg/testutil"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/model"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/valueobject"
)

func newTestCreditor(t *testing.T) model.Creditor {
	t.Helper()
	c, err := model.NewCreditor(
		testutil.CreditorName,
		valueobject.MustIban(testutil.CreditorIBAN),
		valueobject.MustBic(testutil.CreditorBIC),
		testutil.CreditorID,
	)
	require.NoError(t, err)
	return c
}

func TestNewDirectDebitPaymentAt_Valid(t *testing.T) {
	creditor := newTestCreditor(t)
	tx := newTestTransaction(t, testutil.Amount, testutil.EndToEndID)

	p, err := model.NewDirectDebitPaymentAt(testutil.FixedNow, testutil.MessageID, 10, creditor, []model.DirectDebitTransaction{tx})
	require.NoError(t, err)

	assert.Equal(t, testutil.MessageID, p.MessageID())
	assert.Equal(t, testutil.FixedNow, p.CreationDateTime())
	assert.Equal(t, time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC), p.RequestedCollectionDate())
	assert.Equal(t, creditor, p.Creditor())
	assert.Equal(t, 1, p.NumberOfTransactions())
	assert.Equal(t, "125.75", p.ControlSum().StringFixed())
}

func TestNewDirectDebitPaymentAt_NormalizesClock(t *testing.T) {
	local := time.FixedZone("UTC+2", 2*3600)
	now := time.Date(2025, 12, 31, 1, 30, 15, 999_000_000, local)

	p, err := model.NewDirectDebitPaymentAt(now, testutil.MessageID, 1, newTestCreditor(t),
		[]model.DirectDebitTransaction{newTestTransaction(t, "1", "E2E")})
	require.NoError(t, err)

	assert.Equal(t, time.UTC, p.CreationDateTime().Location())
	assert.Equal(t, time.Date(2025, 12, 30, 23, 30, 15, 0, time.UTC), p.CreationDateTime())
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), p.RequestedCollectionDate())
}

func TestNewDirectDebitPayment_UsesCurrentTime(t *testing.T) {
	before := time.Now().UTC().Truncate(time.Second)
	p, err := model.NewDirectDebitPayment(testutil.MessageID, 0, newTestCreditor(t),
		[]model.DirectDebitTransaction{newTestTransaction(t, "1", "E2E")})
	require.NoError(t, err)
	after := time.Now().UTC()

	assert.False(t, p.CreationDateTime().Before(before))
	assert.False(t, p.CreationDateTime().After(after))
	y, m, d := p.CreationDateTime().Date()
	assert.Equal(t, time.Date(y, m, d, 0, 0, 0, 0, time.UTC), p.RequestedCollectionDate())
}

func TestNewDirectDebitPayment_PreservesOrder(t *testing.T) {
	var txs []model.DirectDebitTransaction
	for i := 1; i <= 5; i++ {
		txs = append(txs, newTestTransaction(t, fmt.Sprintf("%d.%02d", i, i), fmt.Sprintf("E2E-%03d", i)))
	}

	p, err := model.NewDirectDebitPaymentAt(testutil.FixedNow, testutil.MessageID, 10, newTestCreditor(t), txs)
	require.NoError(t, err)

	got := p.Transactions()
	require.Len(t, got, 5)
	for i, tx := range got {
		assert.Equal(t, fmt.Sprintf("E2E-%03d", i+1), tx.EndToEndID())
	}
	assert.Equal(t, 5, p.NumberOfTransactions())
	assert.Equal(t, "15.15", p.ControlSum().StringFixed())
}

func TestDirectDebitPayment_IsolatedFromCallerSlice(t *testing.T) {
	txs := []model.DirectDebitTransaction{
		newTestTransaction(t, "1", "E2E-A"),
		newTestTransaction(t, "2", "E2E-B"),
	}

	p, err := model.NewDirectDebitPaymentAt(testutil.FixedNow, testutil.MessageID, 10, newTestCreditor(t), txs)
	require.NoError(t, err)

	txs[0] = newTestTransaction(t, "99", "E2E-Z")
	returned := p.Transactions()
	returned[1] = newTestTransaction(t, "98", "E2E-Y")

	again := p.Transactions()
	assert.Equal(t, "E2E-A", again[0].EndToEndID())
	assert.Equal(t, "E2E-B", again[1].EndToEndID())
}

func TestNewDirectDebitPayment_Invalid(t *testing.T) {
	creditor := newTestCreditor(t)
	tx := newTestTransaction(t, testutil.Amount, testutil.EndToEndID)
	usd, err := money.NewFromString("10", "USD")
	require.NoError(t, err)
	usdTx, err := model.NewDirectDebitTransaction(tx.Debtor(), usd, tx.Mandate(), "E2E-USD", "")
	require.NoError(t, err)

	tests := []struct {
		name      string
		messageID string
		delay     int
		creditor  model.Creditor
		txs       []model.DirectDebitTransaction
		kind      error
	}{
		{"blank message id", " ", 10, creditor, []model.DirectDebitTransaction{tx}, valueobject.ErrKindBlank},
		{"negative delay", testutil.MessageID, -1, creditor, []model.DirectDebitTransaction{tx}, valueobject.ErrKindRange},
		{"missing creditor", testutil.MessageID, 10, model.Creditor{}, []model.DirectDebitTransaction{tx}, valueobject.ErrKindMissing},
		{"nil transactions", testutil.MessageID, 10, creditor, nil, valueobject.ErrKindEmpty},
		{"empty transactions", testutil.MessageID, 10, creditor, []model.DirectDebitTransaction{}, valueobject.ErrKindEmpty},
		{"mixed currencies", testutil.MessageID, 10, creditor, []model.DirectDebitTransaction{tx, usdTx}, valueobject.ErrKindCurrency},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := model.NewDirectDebitPaymentAt(testutil.FixedNow, tc.messageID, tc.delay, tc.creditor, tc.txs)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.kind), "expected kind %v, got %v", tc.kind, err)
		})
	}
}
