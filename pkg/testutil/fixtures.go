package testutil

import (
	"time"

	"github.com/google/uuid"
)

// Reference SEPA parties used across direct debit tests.
const (
	CreditorName = "Test Creditor BV"
	CreditorIBAN = "GB33BUKB20201555555555"
	CreditorBIC  = "ABNANL2A"
	CreditorID   = "NL98ZZZ123456780001"

	DebtorName = "Debtor"
	DebtorIBAN = "GB94BARC10201530093459"
	DebtorBIC  = "ABNANL2A"

	// SecondDebtorIBAN belongs to a debtor without a BIC.
	SecondDebtorName = "Second Debtor"
	SecondDebtorIBAN = "NL91ABNA0417164300"

	MandateID      = "Mandate-001"
	MandateRemarks = "This field should not turn up in the document"

	Amount      = "125.75"
	Remittance  = "Factuur-001"
	MessageID   = "MSG-001"
	EndToEndID  = "E2E-001"
	InvalidIBAN = "GB82WEST12345698765433"
)

// Fixed instants for deterministic clock-dependent tests.
var (
	MandateSignedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	FixedNow        = time.Date(2025, 6, 30, 22, 15, 30, 0, time.UTC)
)

// Fixed UUIDs for deterministic testing
var (
	TestEventID   = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestMessageID = uuid.MustParse("00000000-0000-0000-0000-000000000010")
)
