package iso20022

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestPain008Schema_Embedded(t *testing.T) {
	s := Pain008Schema()
	if len(s) == 0 {
		t.Fatal("embedded schema is empty")
	}
	if !bytes.Contains(s, []byte(`targetNamespace="urn:iso:std:iso:20022:tech:xsd:pain.008.001.08"`)) {
		t.Error("embedded schema has unexpected target namespace")
	}

	s[0] = 'X'
	if Pain008Schema()[0] == 'X' {
		t.Error("Pain008Schema exposes the embedded bytes")
	}
}

func TestValidatePain008_Valid(t *testing.T) {
	data, err := sampleDocument().ToXML()
	if err != nil {
		t.Fatalf("ToXML() returned error: %v", err)
	}
	if err := ValidatePain008(data); err != nil {
		t.Fatalf("expected valid document, got: %v", err)
	}
}

func TestValidatePain008_EmptyIBAN(t *testing.T) {
	doc := sampleDocument()
	doc.CstmrDrctDbtInitn.PmtInf[0].CdtrAcct.ID.IBAN = ""

	data, err := doc.ToXML()
	if err != nil {
		t.Fatalf("ToXML() returned error: %v", err)
	}
	if !strings.Contains(string(data), "<IBAN></IBAN>") {
		t.Fatal("expected an empty IBAN element in the output")
	}

	err = ValidatePain008(data)
	var sve *SchemaValidationError
	if !errors.As(err, &sve) {
		t.Fatalf("expected *SchemaValidationError, got %T: %v", err, err)
	}
	if len(sve.Violations) == 0 {
		t.Fatal("expected at least one violation")
	}
	for _, v := range sve.Violations {
		if v.Element != "IBAN" {
			t.Errorf("expected violation on IBAN, got %q (%s)", v.Element, v.Message)
		}
	}
	if sve.Type != Pain008 {
		t.Errorf("expected type %s, got %s", Pain008, sve.Type)
	}
}

func TestValidatePain008_CollectsAllViolations(t *testing.T) {
	doc := sampleDocument()
	doc.CstmrDrctDbtInitn.PmtInf[0].CdtrAcct.ID.IBAN = "not an iban"
	doc.CstmrDrctDbtInitn.PmtInf[0].DrctDbtTxInf[1].DbtrAcct.ID.IBAN = "also bad"
	doc.CstmrDrctDbtInitn.PmtInf[0].CdtrAgt.FinInstnID.BICFI = "bic"

	data, err := doc.ToXML()
	if err != nil {
		t.Fatalf("ToXML() returned error: %v", err)
	}

	err = ValidatePain008(data)
	var sve *SchemaValidationError
	if !errors.As(err, &sve) {
		t.Fatalf("expected *SchemaValidationError, got %T: %v", err, err)
	}

	elements := map[string]int{}
	for _, v := range sve.Violations {
		elements[v.Element]++
	}
	if elements["IBAN"] < 2 {
		t.Errorf("expected violations for both IBANs, got %v", sve.Violations)
	}
	if elements["BICFI"] < 1 {
		t.Errorf("expected a violation for BICFI, got %v", sve.Violations)
	}
}

func TestValidatePain008_WrongOrder(t *testing.T) {
	data, err := sampleDocument().ToXML()
	if err != nil {
		t.Fatalf("ToXML() returned error: %v", err)
	}
	swapped := strings.Replace(string(data),
		"<MsgId>MSG-001</MsgId>\n      <CreDtTm>2025-06-30T22:15:30</CreDtTm>",
		"<CreDtTm>2025-06-30T22:15:30</CreDtTm>\n      <MsgId>MSG-001</MsgId>", 1)
	if swapped == string(data) {
		t.Fatal("test setup: replacement did not apply")
	}

	var sve *SchemaValidationError
	if err := ValidatePain008([]byte(swapped)); !errors.As(err, &sve) {
		t.Fatalf("expected *SchemaValidationError, got %T: %v", err, err)
	}
}

func TestValidatePain008_MissingRequiredElement(t *testing.T) {
	data, err := sampleDocument().ToXML()
	if err != nil {
		t.Fatalf("ToXML() returned error: %v", err)
	}
	stripped := strings.Replace(string(data), "<ReqdColltnDt>2025-07-10</ReqdColltnDt>", "", 1)

	err = ValidatePain008([]byte(stripped))
	var sve *SchemaValidationError
	if !errors.As(err, &sve) {
		t.Fatalf("expected *SchemaValidationError, got %T: %v", err, err)
	}
	if !strings.Contains(sve.Error(), "violation") {
		t.Errorf("unexpected error text: %s", sve.Error())
	}
}

func TestValidatePain008_NotXML(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "  \n "},
		{"garbage", "this is not xml"},
		{"unterminated", "<Document><CstmrDrctDbtInitn>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePain008([]byte(tt.input))
			var sve *SchemaValidationError
			if !errors.As(err, &sve) {
				t.Fatalf("expected *SchemaValidationError, got %T: %v", err, err)
			}
			if len(sve.Violations) != 1 {
				t.Errorf("expected a single violation, got %d", len(sve.Violations))
			}
		})
	}
}

func TestValidatePain008_WrongNamespace(t *testing.T) {
	data, err := sampleDocument().ToXML()
	if err != nil {
		t.Fatalf("ToXML() returned error: %v", err)
	}
	other := strings.Replace(string(data), "pain.008.001.08", "pain.008.001.02", 1)

	var sve *SchemaValidationError
	if err := ValidatePain008([]byte(other)); !errors.As(err, &sve) {
		t.Fatalf("expected *SchemaValidationError, got %T: %v", err, err)
	}
}

func TestValidatePain008_DoesNotModifyInput(t *testing.T) {
	data, err := sampleDocument().ToXML()
	if err != nil {
		t.Fatalf("ToXML() returned error: %v", err)
	}
	orig := append([]byte(nil), data...)

	_ = ValidatePain008(data)
	if !bytes.Equal(orig, data) {
		t.Error("validation modified its input")
	}
}

func TestValidatePain008_Concurrent(t *testing.T) {
	valid, err := sampleDocument().ToXML()
	if err != nil {
		t.Fatalf("ToXML() returned error: %v", err)
	}
	bad := sampleDocument()
	bad.CstmrDrctDbtInitn.PmtInf[0].CdtrAcct.ID.IBAN = ""
	invalid, err := bad.ToXML()
	if err != nil {
		t.Fatalf("ToXML() returned error: %v", err)
	}

	const goroutines = 20
	errs := make([]error, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(idx int) {
			defer wg.Done()
			if idx%2 == 0 {
				errs[idx] = ValidatePain008(valid)
			} else {
				errs[idx] = ValidatePain008(invalid)
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if i%2 == 0 && err != nil {
			t.Errorf("goroutine %d: expected valid, got %v", i, err)
		}
		if i%2 == 1 && err == nil {
			t.Errorf("goroutine %d: expected violation, got nil", i)
		}
	}
}

func TestParseViolation(t *testing.T) {
	tests := []struct {
		raw     string
		element string
		message string
	}{
		{
			"Element '{urn:iso:std:iso:20022:tech:xsd:pain.008.001.08}IBAN': [facet 'pattern'] The value '' is not accepted by the pattern '[A-Z]{2,2}[0-9]{2,2}[a-zA-Z0-9]{1,30}'.",
			"IBAN",
			"[facet 'pattern'] The value '' is not accepted by the pattern '[A-Z]{2,2}[0-9]{2,2}[a-zA-Z0-9]{1,30}'.",
		},
		{"Element 'Foo': This element is not expected.", "Foo", "This element is not expected."},
		{"something else entirely", "", "something else entirely"},
	}
	for _, tt := range tests {
		v := parseViolation(tt.raw)
		if v.Element != tt.element || v.Message != tt.message {
			t.Errorf("parseViolation(%q) = %+v, want {%s %s}", tt.raw, v, tt.element, tt.message)
		}
	}
}
