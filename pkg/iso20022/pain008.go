package iso20022

import "encoding/xml"

// Code values used in pain.008 direct debit initiations.
const (
	PaymentMethodDirectDebit = "DD"
	ServiceLevelSEPA         = "SEPA"
	LocalInstrumentCore      = "CORE"
	SequenceTypeFirst        = "FRST"
	SequenceTypeRecurring    = "RCUR"
	SequenceTypeFinal        = "FNAL"
	SequenceTypeOneOff       = "OOFF"
	ChargeBearerSLEV         = "SLEV"
	SchemeNameSEPA           = "SEPA"
)

// Layouts for ISODateTime and ISODate values.
const (
	DateTimeLayout = "2006-01-02T15:04:05"
	DateLayout     = "2006-01-02"
)

// Pain008Document is the root of a pain.008.001.08 CustomerDirectDebitInitiation
// message. Field order follows the schema's sequences; encoding/xml emits
// fields in declaration order, so reordering fields breaks validation.
type Pain008Document struct {
	XMLName           xml.Name                      `xml:"Document"`
	Xmlns             string                        `xml:"xmlns,attr"`
	CstmrDrctDbtInitn CustomerDirectDebitInitiation `xml:"CstmrDrctDbtInitn"`
}

// NewPain008Document wraps an initiation in a Document carrying the
// pain.008.001.08 namespace.
func NewPain008Document(initn CustomerDirectDebitInitiation) Pain008Document {
	return Pain008Document{
		XMLName:           xml.Name{Local: "Document"},
		Xmlns:             Pain008.Namespace(),
		CstmrDrctDbtInitn: initn,
	}
}

var _ Message = Pain008Document{}

func (d Pain008Document) Type() MessageType { return Pain008 }

// ToXML serializes the document with an XML declaration and two-space indent.
func (d Pain008Document) ToXML() ([]byte, error) {
	return marshalDocument(d)
}

// CustomerDirectDebitInitiation is CustomerDirectDebitInitiationV08.
type CustomerDirectDebitInitiation struct {
	GrpHdr GroupHeader          `xml:"GrpHdr"`
	PmtInf []PaymentInstruction `xml:"PmtInf"`
}

// GroupHeader is GroupHeader83.
type GroupHeader struct {
	MsgID    string              `xml:"MsgId"`
	CreDtTm  string              `xml:"CreDtTm"`
	NbOfTxs  string              `xml:"NbOfTxs"`
	CtrlSum  string              `xml:"CtrlSum,omitempty"`
	InitgPty PartyIdentification `xml:"InitgPty"`
}

// PaymentInstruction is PaymentInstruction29.
type PaymentInstruction struct {
	PmtInfID     string                                      `xml:"PmtInfId"`
	PmtMtd       string                                      `xml:"PmtMtd"`
	BtchBookg    *bool                                       `xml:"BtchBookg,omitempty"`
	NbOfTxs      string                                      `xml:"NbOfTxs,omitempty"`
	CtrlSum      string                                      `xml:"CtrlSum,omitempty"`
	PmtTpInf     *PaymentTypeInformation                     `xml:"PmtTpInf,omitempty"`
	ReqdColltnDt string                                      `xml:"ReqdColltnDt"`
	Cdtr         PartyIdentification                         `xml:"Cdtr"`
	CdtrAcct     CashAccount                                 `xml:"CdtrAcct"`
	CdtrAgt      BranchAndFinancialInstitutionIdentification `xml:"CdtrAgt"`
	ChrgBr       string                                      `xml:"ChrgBr,omitempty"`
	CdtrSchmeID  *PartyIdentification                        `xml:"CdtrSchmeId,omitempty"`
	DrctDbtTxInf []DirectDebitTransactionInformation         `xml:"DrctDbtTxInf"`
}

// PaymentTypeInformation is PaymentTypeInformation29.
type PaymentTypeInformation struct {
	SvcLvl    *CodeChoice `xml:"SvcLvl,omitempty"`
	LclInstrm *CodeChoice `xml:"LclInstrm,omitempty"`
	SeqTp     string      `xml:"SeqTp,omitempty"`
}

// CodeChoice covers the schema's Cd | Prtry choice types (ServiceLevel8Choice,
// LocalInstrument2Choice, PersonIdentificationSchemeName1Choice). Exactly one
// of the two fields should be set.
type CodeChoice struct {
	Cd    string `xml:"Cd,omitempty"`
	Prtry string `xml:"Prtry,omitempty"`
}

// PartyIdentification is PartyIdentification135.
type PartyIdentification struct {
	Nm string       `xml:"Nm,omitempty"`
	ID *PartyChoice `xml:"Id,omitempty"`
}

// PartyChoice is Party38Choice restricted to private identification.
type PartyChoice struct {
	PrvtID *PersonIdentification `xml:"PrvtId,omitempty"`
}

// PersonIdentification is PersonIdentification13.
type PersonIdentification struct {
	Othr []GenericPersonIdentification `xml:"Othr"`
}

// GenericPersonIdentification is GenericPersonIdentification1.
type GenericPersonIdentification struct {
	ID      string      `xml:"Id"`
	SchmeNm *CodeChoice `xml:"SchmeNm,omitempty"`
}

// CashAccount is CashAccount38.
type CashAccount struct {
	ID  AccountIdentification `xml:"Id"`
	Ccy string                `xml:"Ccy,omitempty"`
}

// AccountIdentification is AccountIdentification4Choice restricted to IBAN.
// IBAN is always emitted, so an empty value fails the schema's IBAN pattern.
type AccountIdentification struct {
	IBAN string `xml:"IBAN"`
}

// BranchAndFinancialInstitutionIdentification is
// BranchAndFinancialInstitutionIdentification6.
type BranchAndFinancialInstitutionIdentification struct {
	FinInstnID FinancialInstitutionIdentification `xml:"FinInstnId"`
}

// FinancialInstitutionIdentification is FinancialInstitutionIdentification18.
// All of its elements are optional; an empty block is valid.
type FinancialInstitutionIdentification struct {
	BICFI string `xml:"BICFI,omitempty"`
}

// DirectDebitTransactionInformation is DirectDebitTransactionInformation23.
type DirectDebitTransactionInformation struct {
	PmtID     PaymentIdentification                       `xml:"PmtId"`
	InstdAmt  ActiveOrHistoricCurrencyAndAmount           `xml:"InstdAmt"`
	DrctDbtTx *DirectDebitTransaction                     `xml:"DrctDbtTx,omitempty"`
	DbtrAgt   BranchAndFinancialInstitutionIdentification `xml:"DbtrAgt"`
	Dbtr      PartyIdentification                         `xml:"Dbtr"`
	DbtrAcct  CashAccount                                 `xml:"DbtrAcct"`
	RmtInf    *RemittanceInformation                      `xml:"RmtInf,omitempty"`
}

// PaymentIdentification is PaymentIdentification6.
type PaymentIdentification struct {
	InstrID    string `xml:"InstrId,omitempty"`
	EndToEndID string `xml:"EndToEndId"`
}

// ActiveOrHistoricCurrencyAndAmount is a decimal amount with its currency
// as the Ccy attribute.
type ActiveOrHistoricCurrencyAndAmount struct {
	Ccy   string `xml:"Ccy,attr"`
	Value string `xml:",chardata"`
}

// DirectDebitTransaction is DirectDebitTransaction10.
type DirectDebitTransaction struct {
	MndtRltdInf *MandateRelatedInformation `xml:"MndtRltdInf,omitempty"`
}

// MandateRelatedInformation is MandateRelatedInformation14.
type MandateRelatedInformation struct {
	MndtID    string `xml:"MndtId,omitempty"`
	DtOfSgntr string `xml:"DtOfSgntr,omitempty"`
}

// RemittanceInformation is RemittanceInformation16 with unstructured lines only.
type RemittanceInformation struct {
	Ustrd []string `xml:"Ustrd"`
}

// NumberOfTransactions counts DrctDbtTxInf blocks across all payment instructions.
func (d Pain008Document) NumberOfTransactions() int {
	n := 0
	for _, pmt := range d.CstmrDrctDbtInitn.PmtInf {
		n += len(pmt.DrctDbtTxInf)
	}
	return n
}
