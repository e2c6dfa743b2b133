package reconciler

import (
	"testing"

	"vendor-reconciliation-service/internal/models"
	"vendor-reconciliation-service/pkg/errors"
)

func table(side models.Side, header []string, records [][]string) *models.Table {
	t := &models.Table{Side: side}
	for _, record := range records {
		t.Rows = append(t.Rows, models.NewRawRow(header, record))
	}
	return t
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService(nil)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return s
}

func TestReconcileEndToEnd(t *testing.T) {
	s := newTestService(t)

	erp := table(models.SideERP,
		[]string{"Invoice", "Debit", "Credit", "Date", "Description"},
		[][]string{
			// Nets to 100 under code 42.
			{"INV-0042", "150.00", "", "31/12/2023", "Invoice for parts"},
			{"INV-0042", "", "50.00", "05/01/2024", "Credit note partial return"},
			// Only on our side.
			{"INV-0200", "240.00", "", "20/01/2024", "Invoice consulting"},
			// Fuzzy pair for the vendor's 100-A.
			{"INV-0100", "99.90", "", "15/01/2024", "Invoice monthly service"},
			// Payment line.
			{"", "", "1500.00", "31/01/2024", "bank transfer January"},
		})

	vendor := table(models.SideVendor,
		[]string{"Factura", "Importe", "Fecha", "Concepto"},
		[][]string{
			{"42", "100.00", "31/12/2023", "Factura de repuestos"},
			{"100-A", "100.40", "15/01/2024", "Factura servicio mensual"},
			{"300", "75.00", "22/01/2024", "Factura transporte"},
			{"", "1499.97", "31/01/2024", "pago enero"},
		})

	result, err := s.Reconcile(erp, vendor)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(result.Matches) != 2 {
		t.Fatalf("expected 2 invoice matches, got %d", len(result.Matches))
	}

	// Exact: ERP 42 netted to 100.00 against vendor 42 at 100.00.
	first := result.Matches[0]
	if first.Tier != 1 {
		t.Errorf("first match tier = %d, expected 1", first.Tier)
	}
	if first.ERPAmount.String() != "100" {
		t.Errorf("netted ERP amount = %s, expected 100", first.ERPAmount.String())
	}
	if first.Status != models.StatusPerfect {
		t.Errorf("first match status = %s, expected perfect", first.Status)
	}

	// Fuzzy: ERP 100 at 99.90 against vendor 100A at 100.40.
	second := result.Matches[1]
	if second.Tier != 2 {
		t.Errorf("second match tier = %d, expected 2", second.Tier)
	}
	if second.Difference.String() != "0.5" {
		t.Errorf("second match difference = %s, expected 0.5", second.Difference.String())
	}

	if len(result.MissingInVendor) != 1 || result.MissingInVendor[0].Code != "200" {
		t.Errorf("expected ERP invoice 200 missing in vendor, got %v", result.MissingInVendor)
	}
	if len(result.MissingInERP) != 1 || result.MissingInERP[0].Code != "300" {
		t.Errorf("expected vendor invoice 300 missing in ERP, got %v", result.MissingInERP)
	}

	if len(result.PaymentMatches) != 1 {
		t.Fatalf("expected 1 payment match, got %d", len(result.PaymentMatches))
	}
	if result.PaymentMatches[0].Difference.String() != "0.03" {
		t.Errorf("payment difference = %s, expected 0.03", result.PaymentMatches[0].Difference.String())
	}

	if result.Summary.Tier1Matches != 1 || result.Summary.Tier2Matches != 1 {
		t.Errorf("summary tiers = %d/%d, expected 1/1",
			result.Summary.Tier1Matches, result.Summary.Tier2Matches)
	}
}

func TestReconcileOffsettingGroupAppearsNowhere(t *testing.T) {
	s := newTestService(t)

	erp := table(models.SideERP,
		[]string{"Invoice", "Debit", "Credit", "Description"},
		[][]string{
			{"INV-7", "200.00", "", "Invoice"},
			{"CN-7", "", "200.00", "Credit note"},
		})
	vendor := table(models.SideVendor,
		[]string{"Invoice", "Amount", "Description"},
		[][]string{
			{"INV-7", "200.00", "Factura"},
		})

	result, err := s.Reconcile(erp, vendor)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(result.Matches) != 0 {
		t.Errorf("cancelled ERP invoice must not match, got %d matches", len(result.Matches))
	}
	if len(result.MissingInVendor) != 0 {
		t.Errorf("cancelled ERP invoice must not be reported missing, got %d", len(result.MissingInVendor))
	}
	// The vendor still carries the invoice, so it surfaces as missing in ERP.
	if len(result.MissingInERP) != 1 {
		t.Errorf("expected the vendor invoice missing in ERP, got %d", len(result.MissingInERP))
	}
}

func TestReconcileNoInvoiceColumn(t *testing.T) {
	s := newTestService(t)

	erp := table(models.SideERP,
		[]string{"Debit", "Credit"},
		[][]string{{"100", "0"}})
	vendor := table(models.SideVendor,
		[]string{"Invoice", "Amount", "Description"},
		[][]string{{"INV-1", "100.00", "Factura"}})

	result, err := s.Reconcile(erp, vendor)
	if err != nil {
		t.Fatalf("a side without an invoice column must still reconcile: %v", err)
	}
	if len(result.Matches) != 0 {
		t.Errorf("expected no matches, got %d", len(result.Matches))
	}
	if len(result.MissingInERP) != 1 {
		t.Errorf("the vendor invoice should be missing in ERP, got %d", len(result.MissingInERP))
	}
}

func TestReconcileEmptyTables(t *testing.T) {
	s := newTestService(t)

	result, err := s.Reconcile(
		&models.Table{Side: models.SideERP},
		&models.Table{Side: models.SideVendor})
	if err != nil {
		t.Fatalf("Reconcile failed on empty tables: %v", err)
	}
	if len(result.Matches) != 0 || len(result.MissingInERP) != 0 || len(result.MissingInVendor) != 0 {
		t.Error("empty tables must produce empty results")
	}
}

func TestReconcileInvalidTable(t *testing.T) {
	s := newTestService(t)

	_, err := s.Reconcile(
		&models.Table{Side: "bogus"},
		&models.Table{Side: models.SideVendor})
	if err == nil {
		t.Fatal("expected an error for an invalid table side")
	}
	if !errors.IsCategory(err, errors.CategoryNormalize) {
		t.Errorf("expected a normalize-category error, got %v", err)
	}
}
