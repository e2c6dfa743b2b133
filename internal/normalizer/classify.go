package normalizer

import (
	"strings"

	"vendor-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

// Classify tags a normalized line as invoice, credit note, payment or
// unknown from its free text and value columns.
//
// Payment keywords are checked first and win outright: a remittance line
// routinely references the invoice number it settles, and letting invoice
// keywords take precedence would drag payments into consolidation. Credit
// notes come next, then invoice keywords or any non-zero debit/credit.
func (v *Vocabulary) Classify(reason, invoiceRaw string, debit, credit decimal.Decimal) models.DocType {
	text := strings.ToLower(reason + " " + invoiceRaw)

	if containsAny(text, v.PaymentKeywords) {
		return models.DocPayment
	}
	if containsAny(text, v.CreditNoteKeywords) {
		return models.DocCreditNote
	}
	if containsAny(text, v.InvoiceKeywords) || !debit.IsZero() || !credit.IsZero() {
		return models.DocInvoice
	}
	return models.DocUnknown
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
