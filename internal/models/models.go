// Package models defines the canonical data model shared by every stage of
// the reconciliation pipeline.
//
// The lifecycle of a ledger line is strictly one-directional:
//
//	RawRow -> CanonicalLine -> ConsolidatedInvoice or PaymentLine -> MatchRecord
//
// RawRows carry untyped text exactly as ingested. CanonicalLines are produced
// once by the normalizer and never mutated afterwards. Consolidation emits at
// most one ConsolidatedInvoice per (side, code) pair; entries that survive
// matching unconsumed form the terminal missing sets.
package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Side identifies which ledger a row originates from.
type Side string

const (
	// SideERP is the internal accounting export, the "our books" view.
	SideERP Side = "erp"
	// SideVendor is the counterparty-supplied statement.
	SideVendor Side = "vendor"
)

// String returns the string representation of Side.
func (s Side) String() string {
	return string(s)
}

// IsValid checks if the side is one of the two known ledgers.
func (s Side) IsValid() bool {
	return s == SideERP || s == SideVendor
}

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideERP {
		return SideVendor
	}
	return SideERP
}

// DocType classifies a ledger line by its accounting role.
type DocType string

const (
	// DocInvoice is a regular invoice line.
	DocInvoice DocType = "INVOICE"
	// DocCreditNote is a credit note line; it can only reduce what is owed.
	DocCreditNote DocType = "CREDIT_NOTE"
	// DocPayment is a remittance line; excluded from invoice consolidation.
	DocPayment DocType = "PAYMENT"
	// DocUnknown is a line that matched no classification rule.
	DocUnknown DocType = "UNKNOWN"
)

// String returns the string representation of DocType.
func (d DocType) String() string {
	return string(d)
}

// IsValid checks if the document type is one of the known classifications.
func (d DocType) IsValid() bool {
	switch d {
	case DocInvoice, DocCreditNote, DocPayment, DocUnknown:
		return true
	}
	return false
}

// SentinelCode is the reserved normalized invoice code meaning "no usable
// invoice identity". Lines keyed by it never consolidate; they flow to the
// payment path instead.
const SentinelCode = "0"

// AmountEpsilon is the rounding floor below which a netted amount is treated
// as zero.
var AmountEpsilon = decimal.NewFromFloat(0.01)

// RawRow is one ledger line as ingested: an ordered mapping of column name to
// raw text value. Column order is significant because alias lookup breaks ties
// by it.
type RawRow struct {
	Columns []string
	Values  []string
}

// NewRawRow creates a RawRow from a header slice and a record slice. Records
// shorter than the header are padded with empty values; longer records are
// truncated to the header width.
func NewRawRow(header, record []string) RawRow {
	values := make([]string, len(header))
	for i := range header {
		if i < len(record) {
			values[i] = record[i]
		}
	}
	return RawRow{Columns: append([]string(nil), header...), Values: values}
}

// Get returns the value for an exact column name and whether it exists.
func (r RawRow) Get(column string) (string, bool) {
	for i, c := range r.Columns {
		if c == column {
			return r.Values[i], true
		}
	}
	return "", false
}

// Len returns the number of columns in the row.
func (r RawRow) Len() int {
	return len(r.Columns)
}

// Table is a side-tagged collection of raw rows with a shared header.
type Table struct {
	Side Side
	Rows []RawRow
}

// Validate performs basic validation on the Table.
func (t *Table) Validate() error {
	if !t.Side.IsValid() {
		return fmt.Errorf("invalid table side: %q", t.Side)
	}
	return nil
}

// CanonicalLine is a single normalized ledger line. It is produced once per
// RawRow by the normalizer and is immutable afterwards.
type CanonicalLine struct {
	Side       Side
	InvoiceRaw string
	Debit      decimal.Decimal
	Credit     decimal.Decimal
	// Date is an ISO-8601 date (YYYY-MM-DD) or empty when the source value
	// could not be parsed. Empty excludes the line from tier-3 matching.
	Date    string
	Entity  string
	Reason  string
	DocType DocType
	// Row is the originating raw row, retained for the payment amount
	// fallback chain which may scan arbitrary amount-like columns.
	Row RawRow
}

// SignedValue returns the raw signed contribution of the line, debit minus
// credit, before any document-type sign forcing.
func (l *CanonicalLine) SignedValue() decimal.Decimal {
	return l.Debit.Sub(l.Credit)
}

// HasDate reports whether the line carries a usable normalized date.
func (l *CanonicalLine) HasDate() bool {
	return l.Date != ""
}

// String returns a string representation of the CanonicalLine.
func (l *CanonicalLine) String() string {
	return fmt.Sprintf("CanonicalLine{Side: %s, Invoice: %q, Debit: %s, Credit: %s, Type: %s}",
		l.Side, l.InvoiceRaw, l.Debit.String(), l.Credit.String(), l.DocType)
}

// ConsolidatedInvoice is the netted balance of all lines sharing one
// normalized invoice code on one side. One generation, immutable.
type ConsolidatedInvoice struct {
	Side Side
	// Code is the normalized invoice code. Never empty and never the
	// sentinel; sentinel-keyed groups are diverted to the payment path.
	Code string
	// NetAmount is the signed netted balance, rounded to 2 decimal places.
	// Its magnitude is always at least 0.01: groups netting to zero are
	// dropped entirely.
	NetAmount decimal.Decimal
	LineCount int
	// Representative is an Invoice-typed member when the group has one,
	// otherwise the first group member.
	Representative CanonicalLine
	Entity         string
	Date           string
}

// Amount returns the magnitude used for matching purposes.
func (ci *ConsolidatedInvoice) Amount() decimal.Decimal {
	return ci.NetAmount.Abs()
}

// InvoiceRaw returns the raw invoice code of the representative line.
func (ci *ConsolidatedInvoice) InvoiceRaw() string {
	return ci.Representative.InvoiceRaw
}

// Validate checks the consolidation invariants.
func (ci *ConsolidatedInvoice) Validate() error {
	if !ci.Side.IsValid() {
		return fmt.Errorf("invalid side: %q", ci.Side)
	}
	if strings.TrimSpace(ci.Code) == "" || ci.Code == SentinelCode {
		return fmt.Errorf("consolidated invoice code cannot be empty or the sentinel")
	}
	if ci.NetAmount.Abs().LessThan(AmountEpsilon) {
		return fmt.Errorf("consolidated net amount %s is below the rounding floor", ci.NetAmount)
	}
	if ci.LineCount < 1 {
		return fmt.Errorf("consolidated invoice must cover at least one line")
	}
	return nil
}

// String returns a string representation of the ConsolidatedInvoice.
func (ci *ConsolidatedInvoice) String() string {
	return fmt.Sprintf("ConsolidatedInvoice{Side: %s, Code: %s, Net: %s, Lines: %d}",
		ci.Side, ci.Code, ci.NetAmount.String(), ci.LineCount)
}

// PaymentLine is a canonical line with no usable invoice identity (or one
// explicitly classified as a payment), paired by amount proximity alone.
type PaymentLine struct {
	Line CanonicalLine
	// Amount is the derived non-negative payment amount, computed through
	// the fallback chain: |debit-credit|, then max(|debit|, |credit|), then
	// the largest value found in any amount-like column of the raw row.
	Amount decimal.Decimal
}

// MatchStatus describes how closely the two sides of a match agree.
type MatchStatus string

const (
	// StatusPerfect means the amounts agree within the rounding floor.
	StatusPerfect MatchStatus = "Perfect Match"
	// StatusDifference means the same invoice was found on both sides but
	// the amounts disagree; a discrepancy to flag, not a mismatch.
	StatusDifference MatchStatus = "Difference Match"
)

// MatchRecord pairs one ERP entry with one vendor entry. Once a record is
// created the two referenced entries are permanently consumed and may not
// appear in any later tier or in the missing sets.
type MatchRecord struct {
	ERP          ConsolidatedInvoice
	Vendor       ConsolidatedInvoice
	ERPAmount    decimal.Decimal
	VendorAmount decimal.Decimal
	Difference   decimal.Decimal
	// Tier is the matching stage that produced the record: 1, 2 or 3.
	Tier int
	// Similarity is the fuzzy code similarity in [0,1] for tier 2 and 3
	// records; nil for tier 1 where codes are exact by construction.
	Similarity *float64
	Status     MatchStatus
}

// NewMatchRecord builds a match record from two consumed entries, deriving
// amounts, difference and status. The record is perfect when the rounded
// amounts differ by less than exactTolerance.
func NewMatchRecord(erp, vendor ConsolidatedInvoice, tier int, similarity *float64, exactTolerance decimal.Decimal) MatchRecord {
	erpAmt := erp.Amount().Round(2)
	venAmt := vendor.Amount().Round(2)
	diff := erpAmt.Sub(venAmt).Abs()

	status := StatusDifference
	if diff.LessThan(exactTolerance) {
		status = StatusPerfect
	}

	return MatchRecord{
		ERP:          erp,
		Vendor:       vendor,
		ERPAmount:    erpAmt,
		VendorAmount: venAmt,
		Difference:   diff.Round(2),
		Tier:         tier,
		Similarity:   similarity,
		Status:       status,
	}
}

// PaymentMatch pairs an ERP payment line with a vendor payment line whose
// amounts agree within the payment tolerance.
type PaymentMatch struct {
	ERP        PaymentLine
	Vendor     PaymentLine
	Difference decimal.Decimal
}
