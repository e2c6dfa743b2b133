// Package consolidator nets multi-line invoices into single balances.
//
// All invoice and credit-note lines on one side that share a normalized
// invoice code collapse into one ConsolidatedInvoice. A group whose lines
// net to (approximately) zero is a fully offsetting invoice/credit-note
// pair and is dropped entirely: it appears in no output set, matched or
// missing. Lines with no usable invoice identity never consolidate; they
// are set aside as payment candidates.
package consolidator

import (
	"vendor-reconciliation-service/internal/models"
	"vendor-reconciliation-service/internal/normalizer"
	"vendor-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Consolidator groups canonical lines per side by normalized invoice code.
type Consolidator struct {
	vocab *normalizer.Vocabulary
	log   logger.Logger
}

// Result holds one side's consolidation output: netted invoices in first
// appearance order, and the lines diverted to the payment path.
type Result struct {
	Invoices []models.ConsolidatedInvoice
	// PaymentCandidates are the payment-classified lines, the lines whose
	// invoice code cleans to the sentinel, and (conservatively) the
	// unknown-typed lines.
	PaymentCandidates []models.CanonicalLine
}

// New creates a Consolidator sharing the normalizer's vocabulary so both
// stages clean invoice codes identically.
func New(vocab *normalizer.Vocabulary) *Consolidator {
	if vocab == nil {
		vocab = normalizer.DefaultVocabulary()
	}
	return &Consolidator{
		vocab: vocab,
		log:   logger.GetGlobalLogger().WithComponent("consolidator"),
	}
}

// Consolidate nets one side's canonical lines into consolidated invoices.
// Group order follows the first appearance of each code, which downstream
// tiers rely on as the scan order.
func (c *Consolidator) Consolidate(lines []models.CanonicalLine) Result {
	var result Result
	groups := make(map[string][]models.CanonicalLine)
	var order []string

	for _, line := range lines {
		if line.DocType == models.DocPayment || line.DocType == models.DocUnknown {
			result.PaymentCandidates = append(result.PaymentCandidates, line)
			continue
		}
		code := c.vocab.CleanInvoiceCode(line.InvoiceRaw)
		if code == models.SentinelCode || !c.vocab.HasUsableCode(line.InvoiceRaw) {
			result.PaymentCandidates = append(result.PaymentCandidates, line)
			continue
		}
		if _, seen := groups[code]; !seen {
			order = append(order, code)
		}
		groups[code] = append(groups[code], line)
	}

	dropped := 0
	for _, code := range order {
		members := groups[code]
		invoice, ok := c.netGroup(code, members)
		if !ok {
			dropped++
			continue
		}
		result.Invoices = append(result.Invoices, invoice)
	}

	if len(lines) > 0 {
		c.log.WithFields(logger.Fields{
			"side":               lines[0].Side.String(),
			"lines":              len(lines),
			"invoices":           len(result.Invoices),
			"cancelled_groups":   dropped,
			"payment_candidates": len(result.PaymentCandidates),
		}).Debug("side consolidated")
	}
	return result
}

// netGroup sums a group's signed contributions under the accounting sign
// rule and reports whether the group survives the zero floor.
func (c *Consolidator) netGroup(code string, members []models.CanonicalLine) (models.ConsolidatedInvoice, bool) {
	net := decimal.Zero
	for _, m := range members {
		v := m.SignedValue()
		// A credit note can never increase what is owed; an invoice line
		// never reduces it.
		switch m.DocType {
		case models.DocCreditNote:
			v = v.Abs().Neg()
		default:
			v = v.Abs()
		}
		net = net.Add(v)
	}
	net = net.Round(2)

	if net.Abs().LessThan(models.AmountEpsilon) {
		return models.ConsolidatedInvoice{}, false
	}

	rep := members[0]
	for _, m := range members {
		if m.DocType == models.DocInvoice {
			rep = m
			break
		}
	}

	return models.ConsolidatedInvoice{
		Side:           rep.Side,
		Code:           code,
		NetAmount:      net,
		LineCount:      len(members),
		Representative: rep,
		Entity:         rep.Entity,
		Date:           rep.Date,
	}, true
}
