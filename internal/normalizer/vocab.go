package normalizer

import (
	"fmt"
)

// CanonicalField names one of the canonical per-side schema fields that the
// normalizer populates from free-form source columns.
type CanonicalField string

const (
	FieldInvoice CanonicalField = "invoice"
	FieldDebit   CanonicalField = "debit"
	FieldCredit  CanonicalField = "credit"
	FieldAmount  CanonicalField = "amount"
	FieldDate    CanonicalField = "date"
	FieldEntity  CanonicalField = "entity"
	FieldReason  CanonicalField = "reason"
)

// fieldOrder is the priority in which canonical fields claim source columns.
// A column claimed by an earlier field is not considered for later ones.
var fieldOrder = []CanonicalField{
	FieldInvoice, FieldDebit, FieldCredit, FieldAmount, FieldDate, FieldEntity, FieldReason,
}

// Vocabulary is the immutable heuristic configuration for normalization and
// classification: column alias lists, invoice-code prefix tokens and the
// multilingual keyword sets used by the line classifier.
//
// A Vocabulary is passed in at construction time rather than read from ambient
// globals so tests can substitute narrower or localized variants.
type Vocabulary struct {
	// FieldAliases maps each canonical field to the substrings that identify
	// a source column as carrying it. Matching is case-insensitive.
	FieldAliases map[CanonicalField][]string

	// PrefixTokens are known document prefixes stripped from the start of a
	// raw invoice code before any generic 1-3 letter prefix is removed.
	PrefixTokens []string

	// PaymentKeywords identify remittance lines. They take precedence over
	// every other classification: payment references often quote an invoice
	// number in free text and must not be misread as invoices.
	PaymentKeywords []string

	// CreditNoteKeywords identify credit-note lines.
	CreditNoteKeywords []string

	// InvoiceKeywords identify invoice lines.
	InvoiceKeywords []string

	// AmountColumnHints are substrings marking a column as amount-like for
	// the payment amount fallback chain.
	AmountColumnHints []string
}

// DefaultVocabulary returns the canonical multilingual vocabulary. The broader
// variant observed in production ledgers is authoritative; substitute a
// narrower one only with product sign-off since classification precedence
// changes downstream netting results.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		FieldAliases: map[CanonicalField][]string{
			FieldInvoice: {
				"invoice", "invoice number", "inv no", "inv", "factura", "fact",
				"numero", "document", "doc", "ref", "reference",
				"alternative document", "alt document", "alt. document",
				"voucher", "bill", "receipt",
			},
			FieldDebit:  {"debit", "debe", "cargo", "dr", "charge"},
			FieldCredit: {"credit", "haber", "abono", "cr", "payment"},
			FieldAmount: {"amount", "importe", "valor", "total", "value", "sum", "net"},
			FieldDate: {
				"date", "fecha", "data", "issue date", "posting date",
				"doc date", "document date",
			},
			FieldEntity: {
				"entity", "company", "business unit", "bu", "cost center", "cc",
				"department", "dept", "organization", "org",
			},
			FieldReason: {
				"reason", "description", "descripcion", "concepto", "memo",
				"narrative", "detail", "text", "remark",
			},
		},
		PrefixTokens: []string{
			"INVOICE", "INV", "FACTURA", "FACT", "TIM", "CREDIT", "NOTE", "CN",
			"REF", "DOC", "NUM", "NO", "NR", "AR", "PA", "PF", "AB", "APO",
			"APD", "VS",
		},
		PaymentKeywords: []string{
			"payment", "pago", "pagamento", "paiement", "zahlung",
			"bank transfer", "transfer", "transferencia", "remittance",
			"wire", "sepa", "bacs", "remesa",
		},
		CreditNoteKeywords: []string{
			"credit note", "credit memo", "creditnote", "nota de credito",
			"nota credito", "abono", "avoir", "gutschrift", "credit",
		},
		InvoiceKeywords: []string{
			"invoice", "factura", "fattura", "facture", "rechnung", "fatura",
			"inv",
		},
		AmountColumnHints: []string{
			"amount", "importe", "valor", "total", "value", "sum", "net",
			"montant", "betrag",
		},
	}
}

// Validate checks that the vocabulary is complete enough to normalize a table.
func (v *Vocabulary) Validate() error {
	if len(v.FieldAliases) == 0 {
		return fmt.Errorf("vocabulary has no field aliases")
	}
	for _, field := range fieldOrder {
		if len(v.FieldAliases[field]) == 0 {
			return fmt.Errorf("vocabulary has no aliases for field %q", field)
		}
	}
	if len(v.PaymentKeywords) == 0 {
		return fmt.Errorf("vocabulary has no payment keywords")
	}
	if len(v.CreditNoteKeywords) == 0 {
		return fmt.Errorf("vocabulary has no credit-note keywords")
	}
	if len(v.InvoiceKeywords) == 0 {
		return fmt.Errorf("vocabulary has no invoice keywords")
	}
	return nil
}

// Clone creates a deep copy of the vocabulary.
func (v *Vocabulary) Clone() *Vocabulary {
	if v == nil {
		return nil
	}
	aliases := make(map[CanonicalField][]string, len(v.FieldAliases))
	for field, list := range v.FieldAliases {
		aliases[field] = append([]string(nil), list...)
	}
	return &Vocabulary{
		FieldAliases:       aliases,
		PrefixTokens:       append([]string(nil), v.PrefixTokens...),
		PaymentKeywords:    append([]string(nil), v.PaymentKeywords...),
		CreditNoteKeywords: append([]string(nil), v.CreditNoteKeywords...),
		InvoiceKeywords:    append([]string(nil), v.InvoiceKeywords...),
		AmountColumnHints:  append([]string(nil), v.AmountColumnHints...),
	}
}
