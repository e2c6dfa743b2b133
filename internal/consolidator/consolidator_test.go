package consolidator

import (
	"testing"

	"vendor-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

func line(t *testing.T, invoiceRaw, debit, credit string, docType models.DocType) models.CanonicalLine {
	t.Helper()
	return models.CanonicalLine{
		Side:       models.SideERP,
		InvoiceRaw: invoiceRaw,
		Debit:      decimal.RequireFromString(debit),
		Credit:     decimal.RequireFromString(credit),
		DocType:    docType,
	}
}

func TestConsolidateNetsInvoiceAndCreditNote(t *testing.T) {
	c := New(nil)

	// Invoice of 150 plus a credit note of 50 for the same invoice code,
	// under different raw spellings.
	lines := []models.CanonicalLine{
		line(t, "INV-0042", "150.00", "0", models.DocInvoice),
		line(t, "inv 42", "0", "50.00", models.DocCreditNote),
	}

	result := c.Consolidate(lines)
	if len(result.Invoices) != 1 {
		t.Fatalf("expected 1 consolidated invoice, got %d", len(result.Invoices))
	}

	inv := result.Invoices[0]
	if inv.Code != "42" {
		t.Errorf("code = %q, expected 42", inv.Code)
	}
	if inv.NetAmount.String() != "100" {
		t.Errorf("net amount = %s, expected 100", inv.NetAmount.String())
	}
	if inv.LineCount != 2 {
		t.Errorf("line count = %d, expected 2", inv.LineCount)
	}
	if inv.Representative.InvoiceRaw != "INV-0042" {
		t.Errorf("representative = %q, expected the invoice line", inv.Representative.InvoiceRaw)
	}
}

func TestConsolidateDropsFullyOffsetGroup(t *testing.T) {
	c := New(nil)

	lines := []models.CanonicalLine{
		line(t, "INV-7", "200.00", "0", models.DocInvoice),
		line(t, "CN-7", "0", "200.00", models.DocCreditNote),
	}

	result := c.Consolidate(lines)
	if len(result.Invoices) != 0 {
		t.Fatalf("fully offsetting group should be dropped, got %d invoices", len(result.Invoices))
	}
	if len(result.PaymentCandidates) != 0 {
		t.Errorf("dropped group must not leak into payment candidates")
	}
}

func TestConsolidateSignForcing(t *testing.T) {
	c := New(nil)

	// The credit note is recorded with a positive debit; its contribution
	// must still reduce the balance.
	lines := []models.CanonicalLine{
		line(t, "INV-9", "100.00", "0", models.DocInvoice),
		line(t, "CN-9", "30.00", "0", models.DocCreditNote),
	}

	result := c.Consolidate(lines)
	if len(result.Invoices) != 1 {
		t.Fatalf("expected 1 invoice, got %d", len(result.Invoices))
	}
	if got := result.Invoices[0].NetAmount.String(); got != "70" {
		t.Errorf("net amount = %s, expected 70", got)
	}
}

func TestConsolidateDivertsPaymentCandidates(t *testing.T) {
	c := New(nil)

	lines := []models.CanonicalLine{
		line(t, "INV-1", "100", "0", models.DocInvoice),
		line(t, "", "0", "1500", models.DocPayment),
		line(t, "000", "50", "0", models.DocInvoice),
		line(t, "", "0", "0", models.DocUnknown),
	}

	result := c.Consolidate(lines)
	if len(result.Invoices) != 1 {
		t.Fatalf("expected 1 consolidated invoice, got %d", len(result.Invoices))
	}
	if len(result.PaymentCandidates) != 3 {
		t.Fatalf("expected 3 payment candidates, got %d", len(result.PaymentCandidates))
	}
}

func TestConsolidatePreservesFirstAppearanceOrder(t *testing.T) {
	c := New(nil)

	lines := []models.CanonicalLine{
		line(t, "INV-300", "10", "0", models.DocInvoice),
		line(t, "INV-100", "20", "0", models.DocInvoice),
		line(t, "INV-300", "5", "0", models.DocInvoice),
		line(t, "INV-200", "30", "0", models.DocInvoice),
	}

	result := c.Consolidate(lines)
	if len(result.Invoices) != 3 {
		t.Fatalf("expected 3 invoices, got %d", len(result.Invoices))
	}
	expected := []string{"300", "100", "200"}
	for i, code := range expected {
		if result.Invoices[i].Code != code {
			t.Errorf("invoice %d code = %q, expected %q", i, result.Invoices[i].Code, code)
		}
	}
	if result.Invoices[0].NetAmount.String() != "15" {
		t.Errorf("repeated code must aggregate, net = %s, expected 15", result.Invoices[0].NetAmount.String())
	}
}

func TestConsolidateConservation(t *testing.T) {
	c := New(nil)

	lines := []models.CanonicalLine{
		line(t, "INV-1", "100.10", "0", models.DocInvoice),
		line(t, "INV-1", "0", "20.10", models.DocCreditNote),
		line(t, "INV-2", "59.90", "0", models.DocInvoice),
	}

	result := c.Consolidate(lines)

	total := decimal.Zero
	for _, inv := range result.Invoices {
		total = total.Add(inv.NetAmount)
	}
	if total.String() != "139.9" {
		t.Errorf("sum of net amounts = %s, expected 139.9", total.String())
	}
}

func TestConsolidateRoundsToCents(t *testing.T) {
	c := New(nil)

	lines := []models.CanonicalLine{
		line(t, "INV-5", "33.333", "0", models.DocInvoice),
		line(t, "INV-5", "33.333", "0", models.DocInvoice),
	}

	result := c.Consolidate(lines)
	if len(result.Invoices) != 1 {
		t.Fatalf("expected 1 invoice, got %d", len(result.Invoices))
	}
	if got := result.Invoices[0].NetAmount.String(); got != "66.67" {
		t.Errorf("net amount = %s, expected 66.67", got)
	}
}
