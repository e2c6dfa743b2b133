// Package normalizer turns side-tagged tables of untyped ledger rows into
// canonical lines: free-form column headers are resolved against a
// multilingual alias vocabulary, locale-formatted numbers and dates are
// normalized, invoice codes are reduced to stable matching keys and each
// line is classified by document type.
//
// Parsing failures are non-fatal by design. Numbers degrade to zero, dates
// to the empty string; the normalizer never rejects a table because some of
// its fields are dirty.
package normalizer

import (
	"strings"

	"vendor-reconciliation-service/internal/models"
	"vendor-reconciliation-service/pkg/errors"
	"vendor-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Normalizer maps raw ledger tables onto the canonical schema using an
// immutable vocabulary fixed at construction time.
type Normalizer struct {
	vocab *Vocabulary
	log   logger.Logger
}

// New creates a Normalizer. A nil vocabulary selects the default
// multilingual one.
func New(vocab *Vocabulary) (*Normalizer, error) {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	if err := vocab.Validate(); err != nil {
		return nil, errors.NormalizeError(errors.CodeInvalidVocabulary, "invalid vocabulary", err)
	}
	return &Normalizer{
		vocab: vocab.Clone(),
		log:   logger.GetGlobalLogger().WithComponent("normalizer"),
	}, nil
}

// Vocabulary returns the vocabulary in use.
func (n *Normalizer) Vocabulary() *Vocabulary {
	return n.vocab.Clone()
}

// ColumnMapping records which source column serves each canonical field.
// A missing field simply has no entry.
type ColumnMapping map[CanonicalField]int

// MapColumns resolves a header against the alias vocabulary. Fields claim
// columns in a fixed priority order (invoice first); for each field the
// first column whose lowercased name contains one of the field's aliases
// wins, and a column claimed by an earlier field is not reconsidered.
func (n *Normalizer) MapColumns(header []string) ColumnMapping {
	lowered := make([]string, len(header))
	for i, c := range header {
		lowered[i] = strings.ToLower(strings.TrimSpace(c))
	}

	mapping := make(ColumnMapping)
	claimed := make(map[int]bool)

	for _, field := range fieldOrder {
		for i, low := range lowered {
			if claimed[i] {
				continue
			}
			if containsAny(low, n.vocab.FieldAliases[field]) {
				mapping[field] = i
				claimed[i] = true
				break
			}
		}
	}
	return mapping
}

// NormalizeTable converts every raw row of a table into a canonical line.
// The output is positionally aligned with the input rows and immutable from
// here on. A table with no recognizable invoice column still normalizes:
// its lines carry empty raw codes and surface downstream as payment
// candidates or an empty consolidated set, never as an error.
func (n *Normalizer) NormalizeTable(table *models.Table) ([]models.CanonicalLine, error) {
	if err := table.Validate(); err != nil {
		return nil, errors.NormalizeError(errors.CodeInvalidTable, "invalid input table", err)
	}
	if len(table.Rows) == 0 {
		return nil, nil
	}

	mapping := n.MapColumns(table.Rows[0].Columns)
	log := n.log.WithField("side", table.Side.String())
	if _, ok := mapping[FieldInvoice]; !ok {
		log.Warn("no invoice-like column detected; side will consolidate empty")
	}

	useAmountAsDebit := n.shouldUseAmountAsDebit(table, mapping)
	if useAmountAsDebit {
		log.Debug("single-column ledger detected; using amount column as debit")
	}

	lines := make([]models.CanonicalLine, 0, len(table.Rows))
	for _, row := range table.Rows {
		lines = append(lines, n.normalizeRow(table.Side, row, mapping, useAmountAsDebit))
	}

	log.WithFields(logger.Fields{
		"rows":    len(lines),
		"columns": len(mapping),
	}).Debug("table normalized")
	return lines, nil
}

// shouldUseAmountAsDebit reports whether the table is a single-column
// ledger: an amount column exists but the debit column (if any) sums to
// zero across all rows.
func (n *Normalizer) shouldUseAmountAsDebit(table *models.Table, mapping ColumnMapping) bool {
	if _, hasAmount := mapping[FieldAmount]; !hasAmount {
		return false
	}

	debitIdx, hasDebit := mapping[FieldDebit]
	if !hasDebit {
		return true
	}

	sum := decimal.Zero
	for _, row := range table.Rows {
		sum = sum.Add(NormalizeNumber(row.Values[debitIdx]))
	}
	return sum.IsZero()
}

func (n *Normalizer) normalizeRow(side models.Side, row models.RawRow, mapping ColumnMapping, useAmountAsDebit bool) models.CanonicalLine {
	value := func(field CanonicalField) string {
		idx, ok := mapping[field]
		if !ok || idx >= len(row.Values) {
			return ""
		}
		return row.Values[idx]
	}

	debit := NormalizeNumber(value(FieldDebit))
	credit := NormalizeNumber(value(FieldCredit))
	if useAmountAsDebit {
		debit = NormalizeNumber(value(FieldAmount))
	}

	invoiceRaw := strings.TrimSpace(value(FieldInvoice))
	reason := strings.TrimSpace(value(FieldReason))

	return models.CanonicalLine{
		Side:       side,
		InvoiceRaw: invoiceRaw,
		Debit:      debit,
		Credit:     credit,
		Date:       NormalizeDate(value(FieldDate)),
		Entity:     strings.TrimSpace(value(FieldEntity)),
		Reason:     reason,
		DocType:    n.vocab.Classify(reason, invoiceRaw, debit, credit),
		Row:        row,
	}
}
