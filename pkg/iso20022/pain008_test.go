package iso20022

import (
	"encoding/xml"
	"strings"
	"testing"
)

func sampleDocument() Pain008Document {
	batch := true
	return NewPain008Document(CustomerDirectDebitInitiation{
		GrpHdr: GroupHeader{
			MsgID:    "MSG-001",
			CreDtTm:  "2025-06-30T22:15:30",
			NbOfTxs:  "2",
			CtrlSum:  "150.75",
			InitgPty: PartyIdentification{Nm: "Test Creditor BV"},
		},
		PmtInf: []PaymentInstruction{
			{
				PmtInfID:  "MSG-001",
				PmtMtd:    PaymentMethodDirectDebit,
				BtchBookg: &batch,
				NbOfTxs:   "2",
				CtrlSum:   "150.75",
				PmtTpInf: &PaymentTypeInformation{
					SvcLvl:    &CodeChoice{Cd: ServiceLevelSEPA},
					LclInstrm: &CodeChoice{Cd: LocalInstrumentCore},
					SeqTp:     SequenceTypeRecurring,
				},
				ReqdColltnDt: "2025-07-10",
				Cdtr:         PartyIdentification{Nm: "Test Creditor BV"},
				CdtrAcct:     CashAccount{ID: AccountIdentification{IBAN: "GB33BUKB20201555555555"}, Ccy: "EUR"},
				CdtrAgt:      BranchAndFinancialInstitutionIdentification{FinInstnID: FinancialInstitutionIdentification{BICFI: "ABNANL2A"}},
				ChrgBr:       ChargeBearerSLEV,
				CdtrSchmeID: &PartyIdentification{
					ID: &PartyChoice{PrvtID: &PersonIdentification{
						Othr: []GenericPersonIdentification{{
							ID:      "NL98ZZZ123456780001",
							SchmeNm: &CodeChoice{Cd: SchemeNameSEPA},
						}},
					}},
				},
				DrctDbtTxInf: []DirectDebitTransactionInformation{
					{
						PmtID:    PaymentIdentification{EndToEndID: "E2E-001"},
						InstdAmt: ActiveOrHistoricCurrencyAndAmount{Ccy: "EUR", Value: "125.75"},
						DrctDbtTx: &DirectDebitTransaction{MndtRltdInf: &MandateRelatedInformation{
							MndtID:    "Mandate-001",
							DtOfSgntr: "2025-01-01",
						}},
						DbtrAgt:  BranchAndFinancialInstitutionIdentification{FinInstnID: FinancialInstitutionIdentification{BICFI: "ABNANL2A"}},
						Dbtr:     PartyIdentification{Nm: "Debtor"},
						DbtrAcct: CashAccount{ID: AccountIdentification{IBAN: "GB94BARC10201530093459"}},
						RmtInf:   &RemittanceInformation{Ustrd: []string{"Factuur-001"}},
					},
					{
						PmtID:    PaymentIdentification{EndToEndID: "E2E-002"},
						InstdAmt: ActiveOrHistoricCurrencyAndAmount{Ccy: "EUR", Value: "25.00"},
						DrctDbtTx: &DirectDebitTransaction{MndtRltdInf: &MandateRelatedInformation{
							MndtID:    "Mandate-002",
							DtOfSgntr: "2024-11-05",
						}},
						Dbtr:     PartyIdentification{Nm: "Second Debtor"},
						DbtrAcct: CashAccount{ID: AccountIdentification{IBAN: "NL91ABNA0417164300"}},
					},
				},
			},
		},
	})
}

func TestPain008DocumentType(t *testing.T) {
	if got := sampleDocument().Type(); got != Pain008 {
		t.Errorf("expected %s, got %s", Pain008, got)
	}
	if Pain008.Namespace() != "urn:iso:std:iso:20022:tech:xsd:pain.008.001.08" {
		t.Errorf("unexpected namespace %s", Pain008.Namespace())
	}
}

func TestPain008DocumentToXML(t *testing.T) {
	data, err := sampleDocument().ToXML()
	if err != nil {
		t.Fatalf("ToXML() returned error: %v", err)
	}
	xmlStr := string(data)

	if !strings.HasPrefix(xmlStr, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("XML does not start with the standard declaration")
	}
	if !strings.Contains(xmlStr, `<Document xmlns="urn:iso:std:iso:20022:tech:xsd:pain.008.001.08">`) {
		t.Error("XML does not contain expected pain.008 namespace on Document")
	}

	// Verify it round-trips through encoding/xml
	var doc Pain008Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("produced invalid XML: %v", err)
	}
	if doc.CstmrDrctDbtInitn.GrpHdr.MsgID != "MSG-001" {
		t.Errorf("expected MsgId MSG-001, got %s", doc.CstmrDrctDbtInitn.GrpHdr.MsgID)
	}
	if doc.NumberOfTransactions() != 2 {
		t.Errorf("expected 2 transactions, got %d", doc.NumberOfTransactions())
	}
	if got := doc.CstmrDrctDbtInitn.PmtInf[0].DrctDbtTxInf[0].InstdAmt; got.Ccy != "EUR" || got.Value != "125.75" {
		t.Errorf("unexpected InstdAmt %+v", got)
	}
}

func TestPain008DocumentToXML_ElementOrder(t *testing.T) {
	data, err := sampleDocument().ToXML()
	if err != nil {
		t.Fatalf("ToXML() returned error: %v", err)
	}
	xmlStr := string(data)

	sequences := [][]string{
		{"<MsgId>", "<CreDtTm>", "<NbOfTxs>", "<CtrlSum>", "<InitgPty>", "<PmtInf>"},
		{"<PmtInfId>", "<PmtMtd>", "<BtchBookg>", "<PmtTpInf>", "<ReqdColltnDt>", "<Cdtr>", "<CdtrAcct>", "<CdtrAgt>", "<ChrgBr>", "<CdtrSchmeId>", "<DrctDbtTxInf>"},
		{"<SvcLvl>", "<LclInstrm>", "<SeqTp>"},
		{"<PmtId>", "<InstdAmt", "<DrctDbtTx>", "<DbtrAgt>", "<Dbtr>", "<DbtrAcct>", "<RmtInf>"},
	}
	for _, seq := range sequences {
		last := -1
		for _, tag := range seq {
			idx := strings.Index(xmlStr, tag)
			if idx < 0 {
				t.Errorf("element %s missing", tag)
				continue
			}
			if idx < last {
				t.Errorf("element %s out of order", tag)
			}
			last = idx
		}
	}
}

func TestPain008DocumentToXML_OptionalBlocks(t *testing.T) {
	data, err := sampleDocument().ToXML()
	if err != nil {
		t.Fatalf("ToXML() returned error: %v", err)
	}
	xmlStr := string(data)

	if n := strings.Count(xmlStr, "<RmtInf>"); n != 1 {
		t.Errorf("expected exactly one RmtInf block, got %d", n)
	}
	if n := strings.Count(xmlStr, "<DbtrAgt>"); n != 2 {
		t.Errorf("expected a DbtrAgt block per transaction, got %d", n)
	}
	if n := strings.Count(xmlStr, "<BICFI>"); n != 2 {
		t.Errorf("expected BICFI for creditor agent and first debtor only, got %d", n)
	}
	if !strings.Contains(xmlStr, "<FinInstnId></FinInstnId>") {
		t.Error("expected an empty FinInstnId for the debtor without BIC")
	}
}

func TestPain008DocumentToXML_Deterministic(t *testing.T) {
	a, err := sampleDocument().ToXML()
	if err != nil {
		t.Fatalf("ToXML() returned error: %v", err)
	}
	b, err := sampleDocument().ToXML()
	if err != nil {
		t.Fatalf("ToXML() returned error: %v", err)
	}
	if string(a) != string(b) {
		t.Error("serializing equal documents produced different output")
	}
}

func TestPain008DocumentToXML_EscapesText(t *testing.T) {
	doc := sampleDocument()
	doc.CstmrDrctDbtInitn.PmtInf[0].Cdtr.Nm = "Smith & Sons <BV>"

	data, err := doc.ToXML()
	if err != nil {
		t.Fatalf("ToXML() returned error: %v", err)
	}
	if !strings.Contains(string(data), "Smith &amp; Sons &lt;BV&gt;") {
		t.Error("creditor name was not escaped")
	}
}
