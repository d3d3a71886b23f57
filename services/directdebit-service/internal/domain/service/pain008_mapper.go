package service

import (
	"strconv"

	"github.com/bibbank/bib/pkg/iso20022"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/model"
)

// creditorAccountCurrency is the currency declared on the creditor account.
// SEPA direct debits are always collected in euro.
const creditorAccountCurrency = "EUR"

// MapPain008 builds the pain.008.001.08 document tree for a payment. It is a
// pure function of the payment: mapping the same payment twice yields equal
// trees, because every timestamp and identifier is fixed in the aggregate.
func MapPain008(payment model.DirectDebitPayment) iso20022.Pain008Document {
	creditor := payment.Creditor()
	nbOfTxs := strconv.Itoa(payment.NumberOfTransactions())
	ctrlSum := payment.ControlSum().StringFixed()
	batchBooking := true

	txs := payment.Transactions()
	txInfos := make([]iso20022.DirectDebitTransactionInformation, 0, len(txs))
	for _, tx := range txs {
		txInfos = append(txInfos, mapTransaction(tx))
	}

	return iso20022.NewPain008Document(iso20022.CustomerDirectDebitInitiation{
		GrpHdr: iso20022.GroupHeader{
			MsgID:    payment.MessageID(),
			CreDtTm:  payment.CreationDateTime().Format(iso20022.DateTimeLayout),
			NbOfTxs:  nbOfTxs,
			CtrlSum:  ctrlSum,
			InitgPty: iso20022.PartyIdentification{Nm: creditor.Name()},
		},
		PmtInf: []iso20022.PaymentInstruction{
			{
				PmtInfID:  payment.MessageID(),
				PmtMtd:    iso20022.PaymentMethodDirectDebit,
				BtchBookg: &batchBooking,
				NbOfTxs:   nbOfTxs,
				CtrlSum:   ctrlSum,
				PmtTpInf: &iso20022.PaymentTypeInformation{
					SvcLvl:    &iso20022.CodeChoice{Cd: iso20022.ServiceLevelSEPA},
					LclInstrm: &iso20022.CodeChoice{Cd: iso20022.LocalInstrumentCore},
					SeqTp:     iso20022.SequenceTypeRecurring,
				},
				ReqdColltnDt: payment.RequestedCollectionDate().Format(iso20022.DateLayout),
				Cdtr:         iso20022.PartyIdentification{Nm: creditor.Name()},
				CdtrAcct: iso20022.CashAccount{
					ID:  iso20022.AccountIdentification{IBAN: creditor.Iban().String()},
					Ccy: creditorAccountCurrency,
				},
				CdtrAgt: iso20022.BranchAndFinancialInstitutionIdentification{
					FinInstnID: iso20022.FinancialInstitutionIdentification{BICFI: creditor.Bic().String()},
				},
				ChrgBr:       iso20022.ChargeBearerSLEV,
				CdtrSchmeID:  creditorSchemeID(creditor.CreditorID()),
				DrctDbtTxInf: txInfos,
			},
		},
	})
}

func creditorSchemeID(id string) *iso20022.PartyIdentification {
	return &iso20022.PartyIdentification{
		ID: &iso20022.PartyChoice{
			PrvtID: &iso20022.PersonIdentification{
				Othr: []iso20022.GenericPersonIdentification{{
					ID:      id,
					SchmeNm: &iso20022.CodeChoice{Cd: iso20022.SchemeNameSEPA},
				}},
			},
		},
	}
}

func mapTransaction(tx model.DirectDebitTransaction) iso20022.DirectDebitTransactionInformation {
	debtor := tx.Debtor()
	mandate := tx.Mandate()

	// The debtor agent block is mandatory; only its BIC is optional.
	var debtorAgent iso20022.FinancialInstitutionIdentification
	if bic, ok := debtor.Bic(); ok {
		debtorAgent.BICFI = bic.String()
	}

	info := iso20022.DirectDebitTransactionInformation{
		PmtID: iso20022.PaymentIdentification{EndToEndID: tx.EndToEndID()},
		InstdAmt: iso20022.ActiveOrHistoricCurrencyAndAmount{
			Ccy:   tx.Amount().Currency().Code(),
			Value: tx.Amount().StringFixed(),
		},
		DrctDbtTx: &iso20022.DirectDebitTransaction{
			MndtRltdInf: &iso20022.MandateRelatedInformation{
				MndtID:    mandate.ID(),
				DtOfSgntr: mandate.DateOfSignature().Format(iso20022.DateLayout),
			},
		},
		DbtrAgt:  iso20022.BranchAndFinancialInstitutionIdentification{FinInstnID: debtorAgent},
		Dbtr:     iso20022.PartyIdentification{Nm: debtor.Name()},
		DbtrAcct: iso20022.CashAccount{ID: iso20022.AccountIdentification{IBAN: debtor.Iban().String()}},
	}

	if tx.HasRemittanceInformation() {
		info.RmtInf = &iso20022.RemittanceInformation{Ustrd: []string{tx.RemittanceInformation()}}
	}

	return info
}
