package matcher

import (
	"strings"

	"vendor-reconciliation-service/internal/models"
	"vendor-reconciliation-service/internal/normalizer"
	"vendor-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// PaymentResult holds the output of the amount-only payment pairing.
type PaymentResult struct {
	Matches []models.PaymentMatch
	// UnmatchedERP and UnmatchedVendor are reported separately from the
	// invoice missing sets: an unpaired remittance is not a missing
	// invoice.
	UnmatchedERP    []models.PaymentLine
	UnmatchedVendor []models.PaymentLine
}

// DerivePaymentAmount computes a line's non-negative payment amount through
// the fallback chain: the netted debit/credit value, then the larger of the
// two columns, then the largest value found in any amount-like column of
// the raw row.
func DerivePaymentAmount(line models.CanonicalLine, hints []string) decimal.Decimal {
	if v := line.SignedValue().Abs(); !v.IsZero() {
		return v
	}

	debit := line.Debit.Abs()
	credit := line.Credit.Abs()
	larger := debit
	if credit.GreaterThan(larger) {
		larger = credit
	}
	if !larger.IsZero() {
		return larger
	}

	best := decimal.Zero
	for i, col := range line.Row.Columns {
		low := strings.ToLower(col)
		hinted := false
		for _, h := range hints {
			if strings.Contains(low, strings.ToLower(h)) {
				hinted = true
				break
			}
		}
		if !hinted {
			continue
		}
		if v := normalizer.NormalizeNumber(line.Row.Values[i]).Abs(); v.GreaterThan(best) {
			best = v
		}
	}
	return best
}

// BuildPaymentLines derives amounts for one side's payment candidates.
func BuildPaymentLines(candidates []models.CanonicalLine, hints []string) []models.PaymentLine {
	lines := make([]models.PaymentLine, 0, len(candidates))
	for _, c := range candidates {
		lines = append(lines, models.PaymentLine{
			Line:   c,
			Amount: DerivePaymentAmount(c, hints).Round(2),
		})
	}
	return lines
}

// MatchPayments pairs leftover payment lines across sides by amount
// proximity alone. First match wins and each vendor line is usable once;
// there is no invoice identity to rank candidates by.
func (e *Engine) MatchPayments(erp, vendor []models.PaymentLine) *PaymentResult {
	result := &PaymentResult{}
	usedVendor := NewConsumed()

	for _, ep := range erp {
		matched := false
		for vi, vp := range vendor {
			if usedVendor[vi] {
				continue
			}
			diff := ep.Amount.Sub(vp.Amount).Abs()
			if diff.GreaterThan(e.config.PaymentTolerance) {
				continue
			}
			result.Matches = append(result.Matches, models.PaymentMatch{
				ERP:        ep,
				Vendor:     vp,
				Difference: diff.Round(2),
			})
			usedVendor[vi] = true
			matched = true
			break
		}
		if !matched {
			result.UnmatchedERP = append(result.UnmatchedERP, ep)
		}
	}

	for vi, vp := range vendor {
		if !usedVendor[vi] {
			result.UnmatchedVendor = append(result.UnmatchedVendor, vp)
		}
	}

	e.log.WithFields(logger.Fields{
		"erp_payments":    len(erp),
		"vendor_payments": len(vendor),
		"matched":         len(result.Matches),
	}).Debug("payment matching complete")
	return result
}
