package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewRawRowAlignsToHeader(t *testing.T) {
	header := []string{"Invoice", "Debit", "Credit"}

	short := NewRawRow(header, []string{"INV-1", "10"})
	if short.Len() != 3 {
		t.Errorf("short record width = %d, expected padded to 3", short.Len())
	}
	if v, ok := short.Get("Credit"); !ok || v != "" {
		t.Errorf("padded cell = %q/%v, expected empty present", v, ok)
	}

	long := NewRawRow(header, []string{"INV-1", "10", "0", "extra"})
	if long.Len() != 3 {
		t.Errorf("long record width = %d, expected truncated to 3", long.Len())
	}

	if _, ok := short.Get("Nope"); ok {
		t.Error("unknown column should not resolve")
	}
}

func TestSignedValue(t *testing.T) {
	l := CanonicalLine{
		Debit:  decimal.RequireFromString("100"),
		Credit: decimal.RequireFromString("30"),
	}
	if l.SignedValue().String() != "70" {
		t.Errorf("signed value = %s, expected 70", l.SignedValue().String())
	}
}

func TestNewMatchRecordStatus(t *testing.T) {
	erp := ConsolidatedInvoice{
		Side: SideERP, Code: "42", LineCount: 1,
		NetAmount: decimal.RequireFromString("100.00"),
	}

	tests := []struct {
		name         string
		vendorAmount string
		tolerance    string
		status       MatchStatus
		difference   string
	}{
		{"equal amounts", "100.00", "0.01", StatusPerfect, "0"},
		{"sub-cent difference rounds away", "100.004", "0.01", StatusPerfect, "0"},
		{"exactly one cent apart", "100.01", "0.01", StatusDifference, "0.01"},
		{"clearly apart", "90.00", "0.01", StatusDifference, "10"},
		{"wide tolerance absorbs the gap", "100.30", "0.50", StatusPerfect, "0.3"},
		{"difference equal to tolerance is flagged", "100.50", "0.50", StatusDifference, "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vendor := ConsolidatedInvoice{
				Side: SideVendor, Code: "42", LineCount: 1,
				NetAmount: decimal.RequireFromString(tt.vendorAmount),
			}
			m := NewMatchRecord(erp, vendor, 1, nil, decimal.RequireFromString(tt.tolerance))
			if m.Status != tt.status {
				t.Errorf("status = %s, expected %s", m.Status, tt.status)
			}
			if m.Difference.String() != tt.difference {
				t.Errorf("difference = %s, expected %s", m.Difference.String(), tt.difference)
			}
		})
	}
}

func TestConsolidatedInvoiceValidate(t *testing.T) {
	valid := ConsolidatedInvoice{
		Side: SideERP, Code: "42", LineCount: 1,
		NetAmount: decimal.RequireFromString("10.00"),
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid invoice rejected: %v", err)
	}

	sentinel := valid
	sentinel.Code = SentinelCode
	if err := sentinel.Validate(); err == nil {
		t.Error("sentinel code should be rejected")
	}

	tiny := valid
	tiny.NetAmount = decimal.RequireFromString("0.001")
	if err := tiny.Validate(); err == nil {
		t.Error("net amount below the rounding floor should be rejected")
	}
}

func TestSideOther(t *testing.T) {
	if SideERP.Other() != SideVendor || SideVendor.Other() != SideERP {
		t.Error("Other should swap sides")
	}
}
