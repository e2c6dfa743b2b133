package normalizer

import (
	"testing"

	"vendor-reconciliation-service/internal/models"
)

func buildTable(t *testing.T, side models.Side, header []string, records [][]string) *models.Table {
	t.Helper()
	table := &models.Table{Side: side}
	for _, record := range records {
		table.Rows = append(table.Rows, models.NewRawRow(header, record))
	}
	return table
}

func TestMapColumns(t *testing.T) {
	n, err := New(nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		name     string
		header   []string
		expected map[CanonicalField]int
	}{
		{
			name:   "standard english header",
			header: []string{"Invoice Number", "Debit", "Credit", "Date", "Entity", "Description"},
			expected: map[CanonicalField]int{
				FieldInvoice: 0, FieldDebit: 1, FieldCredit: 2,
				FieldDate: 3, FieldEntity: 4, FieldReason: 5,
			},
		},
		{
			name:   "spanish header",
			header: []string{"Factura", "Debe", "Haber", "Fecha", "Concepto"},
			expected: map[CanonicalField]int{
				FieldInvoice: 0, FieldDebit: 1, FieldCredit: 2,
				FieldDate: 3, FieldReason: 4,
			},
		},
		{
			name:   "invoice claims doc column before reason can",
			header: []string{"Document", "Amount", "Date"},
			expected: map[CanonicalField]int{
				FieldInvoice: 0, FieldAmount: 1, FieldDate: 2,
			},
		},
		{
			name:   "first matching column wins",
			header: []string{"Invoice", "Alt Document", "Amount"},
			expected: map[CanonicalField]int{
				FieldInvoice: 0, FieldAmount: 2,
			},
		},
		{
			name:     "unrecognized header maps nothing",
			header:   []string{"Foo", "Bar"},
			expected: map[CanonicalField]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.MapColumns(tt.header)
			if len(got) != len(tt.expected) {
				t.Fatalf("MapColumns(%v) = %v, expected %v", tt.header, got, tt.expected)
			}
			for field, idx := range tt.expected {
				if got[field] != idx {
					t.Errorf("field %s mapped to column %d, expected %d", field, got[field], idx)
				}
			}
		})
	}
}

func TestNormalizeTable(t *testing.T) {
	n, err := New(nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	header := []string{"Invoice", "Debit", "Credit", "Date", "Entity", "Description"}
	table := buildTable(t, models.SideERP, header, [][]string{
		{"INV-0042", "100,00", "", "31/12/2023", "ACME", "Invoice for parts"},
		{"CN-7", "", "25.50", "2024-01-05", "ACME", "Credit note"},
		{"", "", "1500", "05/01/2024", "ACME", "bank transfer"},
	})

	lines, err := n.NormalizeTable(table)
	if err != nil {
		t.Fatalf("NormalizeTable failed: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	first := lines[0]
	if first.InvoiceRaw != "INV-0042" {
		t.Errorf("invoice raw = %q, expected INV-0042", first.InvoiceRaw)
	}
	if first.Debit.String() != "100" {
		t.Errorf("debit = %s, expected 100", first.Debit.String())
	}
	if first.Date != "2023-12-31" {
		t.Errorf("date = %q, expected 2023-12-31", first.Date)
	}
	if first.DocType != models.DocInvoice {
		t.Errorf("doc type = %s, expected invoice", first.DocType)
	}

	if lines[1].DocType != models.DocCreditNote {
		t.Errorf("second line doc type = %s, expected credit note", lines[1].DocType)
	}
	if lines[1].Credit.String() != "25.5" {
		t.Errorf("second line credit = %s, expected 25.5", lines[1].Credit.String())
	}

	if lines[2].DocType != models.DocPayment {
		t.Errorf("third line doc type = %s, expected payment", lines[2].DocType)
	}
}

func TestNormalizeTableAmountAsDebit(t *testing.T) {
	n, err := New(nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Single-amount ledger: no debit or credit column at all.
	header := []string{"Invoice", "Amount", "Date"}
	table := buildTable(t, models.SideVendor, header, [][]string{
		{"INV-1", "250,00", "01/02/2024"},
		{"INV-2", "99.90", "02/02/2024"},
	})

	lines, err := n.NormalizeTable(table)
	if err != nil {
		t.Fatalf("NormalizeTable failed: %v", err)
	}
	if lines[0].Debit.String() != "250" {
		t.Errorf("debit = %s, expected amount column value 250", lines[0].Debit.String())
	}
	if lines[1].Debit.String() != "99.9" {
		t.Errorf("debit = %s, expected 99.9", lines[1].Debit.String())
	}
}

func TestNormalizeTableEmptyDebitColumn(t *testing.T) {
	n, err := New(nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Debit column exists but is empty everywhere; amount column takes over.
	header := []string{"Invoice", "Debit", "Total", "Date"}
	table := buildTable(t, models.SideVendor, header, [][]string{
		{"INV-1", "", "300", "01/02/2024"},
	})

	lines, err := n.NormalizeTable(table)
	if err != nil {
		t.Fatalf("NormalizeTable failed: %v", err)
	}
	if lines[0].Debit.String() != "300" {
		t.Errorf("debit = %s, expected 300 from the total column", lines[0].Debit.String())
	}
}

func TestNormalizeTableNoInvoiceColumn(t *testing.T) {
	n, err := New(nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	header := []string{"Debit", "Credit"}
	table := buildTable(t, models.SideERP, header, [][]string{
		{"10", "0"},
	})

	lines, err := n.NormalizeTable(table)
	if err != nil {
		t.Fatalf("NormalizeTable failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].InvoiceRaw != "" {
		t.Errorf("invoice raw = %q, expected empty", lines[0].InvoiceRaw)
	}
}

func TestNormalizeTableEmpty(t *testing.T) {
	n, err := New(nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	lines, err := n.NormalizeTable(&models.Table{Side: models.SideERP})
	if err != nil {
		t.Fatalf("NormalizeTable failed: %v", err)
	}
	if lines != nil {
		t.Errorf("expected nil lines for empty table, got %d", len(lines))
	}
}
