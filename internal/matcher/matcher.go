// Package matcher implements the progressive three-tier pairing of
// consolidated invoices across the ERP and vendor sides, plus the
// amount-only pairing of leftover payment lines.
//
// The tiers run strictly in sequence, each reading only what the previous
// tier left unconsumed:
//
//	Tier 1: exact normalized-code equality, first match wins.
//	Tier 2: amount within a tight window plus fuzzy code similarity,
//	        best similarity wins.
//	Tier 3: exact date equality plus looser code similarity, first
//	        match wins; only lines carrying a date participate.
//
// Consumption is irreversible and global across tiers: an entry pairs into
// at most one MatchRecord for the whole run. It is tracked as explicit sets
// of arena indices threaded through the tier functions rather than by
// mutating the input slices, so the consume-once invariant is checkable in
// isolation per tier.
//
// Tier 1 and 3 take the first qualifying candidate because their keys are
// exact (code, date); tier 2's amount window can admit several plausible
// candidates, so it ranks by similarity to avoid spurious pairing.
package matcher

import (
	"vendor-reconciliation-service/internal/models"
	"vendor-reconciliation-service/pkg/errors"
	"vendor-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Consumed tracks which entry indices of one side have been paired. An
// index present in the set may never pair again.
type Consumed map[int]bool

// NewConsumed returns an empty consumption set.
func NewConsumed() Consumed {
	return make(Consumed)
}

// Engine pairs two sides' consolidated invoice sets under the configured
// tolerances.
type Engine struct {
	config *MatchingConfig
	log    logger.Logger
}

// Result is the complete output of a tiered matching run.
type Result struct {
	// Matches holds all records in creation order: tier 1 first, then 2,
	// then 3.
	Matches []models.MatchRecord
	// MissingInVendor are ERP invoices no tier could pair: our books have
	// them, the counterparty statement does not.
	MissingInVendor []models.ConsolidatedInvoice
	// MissingInERP are vendor invoices no tier could pair.
	MissingInERP []models.ConsolidatedInvoice
	Summary      Summary
}

// Summary provides aggregate statistics about a matching run.
type Summary struct {
	TotalERP          int             `json:"total_erp"`
	TotalVendor       int             `json:"total_vendor"`
	Tier1Matches      int             `json:"tier1_matches"`
	Tier2Matches      int             `json:"tier2_matches"`
	Tier3Matches      int             `json:"tier3_matches"`
	PerfectMatches    int             `json:"perfect_matches"`
	DifferenceMatches int             `json:"difference_matches"`
	MissingInVendor   int             `json:"missing_in_vendor"`
	MissingInERP      int             `json:"missing_in_erp"`
	MatchedAmount     decimal.Decimal `json:"matched_amount"`
	UnmatchedERP      decimal.Decimal `json:"unmatched_erp_amount"`
	UnmatchedVendor   decimal.Decimal `json:"unmatched_vendor_amount"`
}

// NewEngine creates a matching engine. A nil config selects the default
// thresholds.
func NewEngine(config *MatchingConfig) (*Engine, error) {
	if config == nil {
		config = DefaultMatchingConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigError(errors.CodeInvalidConfig, "invalid matching configuration", err)
	}
	return &Engine{
		config: config.Clone(),
		log:    logger.GetGlobalLogger().WithComponent("matcher"),
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *MatchingConfig {
	return e.config.Clone()
}

// Match runs all three tiers over the two sides and collects the terminal
// missing sets. The input slices are never mutated.
func (e *Engine) Match(erp, vendor []models.ConsolidatedInvoice) *Result {
	usedERP := NewConsumed()
	usedVendor := NewConsumed()

	result := &Result{}
	result.Matches = append(result.Matches, e.MatchTier1(erp, vendor, usedERP, usedVendor)...)
	result.Matches = append(result.Matches, e.MatchTier2(erp, vendor, usedERP, usedVendor)...)
	if e.config.EnableTier3 {
		result.Matches = append(result.Matches, e.MatchTier3(erp, vendor, usedERP, usedVendor)...)
	}

	for i, inv := range erp {
		if !usedERP[i] {
			result.MissingInVendor = append(result.MissingInVendor, inv)
		}
	}
	for i, inv := range vendor {
		if !usedVendor[i] {
			result.MissingInERP = append(result.MissingInERP, inv)
		}
	}

	result.Summary = e.summarize(erp, vendor, result)
	e.log.WithFields(logger.Fields{
		"erp_invoices":      len(erp),
		"vendor_invoices":   len(vendor),
		"matches":           len(result.Matches),
		"missing_in_vendor": len(result.MissingInVendor),
		"missing_in_erp":    len(result.MissingInERP),
	}).Info("tiered matching complete")
	return result
}

// MatchTier1 pairs entries whose normalized codes are equal. The scan is
// first-match: the codes are already exact, so any match found is correct
// and ranking would change nothing.
func (e *Engine) MatchTier1(erp, vendor []models.ConsolidatedInvoice, usedERP, usedVendor Consumed) []models.MatchRecord {
	var records []models.MatchRecord

	for ei := range erp {
		if usedERP[ei] {
			continue
		}
		for vi := range vendor {
			if usedVendor[vi] {
				continue
			}
			if erp[ei].Code != vendor[vi].Code {
				continue
			}
			records = append(records, models.NewMatchRecord(erp[ei], vendor[vi], 1, nil, e.config.ExactTolerance))
			usedERP[ei] = true
			usedVendor[vi] = true
			break
		}
	}
	return records
}

// MatchTier2 pairs entries whose amounts lie within the configured window,
// scored by fuzzy code similarity. Among candidates meeting both
// thresholds the strictly highest similarity wins; equal scores keep the
// earliest candidate in scan order.
func (e *Engine) MatchTier2(erp, vendor []models.ConsolidatedInvoice, usedERP, usedVendor Consumed) []models.MatchRecord {
	var records []models.MatchRecord

	for ei := range erp {
		if usedERP[ei] {
			continue
		}

		best := -1
		bestSim := 0.0
		for vi := range vendor {
			if usedVendor[vi] {
				continue
			}
			diff := erp[ei].Amount().Sub(vendor[vi].Amount()).Abs()
			if diff.GreaterThan(e.config.Tier2AmountWindow) {
				continue
			}
			sim := codeSimilarity(erp[ei].Code, vendor[vi].Code)
			if sim >= e.config.Tier2MinSimilarity && sim > bestSim {
				best = vi
				bestSim = sim
			}
		}

		if best < 0 {
			continue
		}
		sim := bestSim
		records = append(records, models.NewMatchRecord(erp[ei], vendor[best], 2, &sim, e.config.ExactTolerance))
		usedERP[ei] = true
		usedVendor[best] = true
	}
	return records
}

// MatchTier3 pairs entries that carry the same date and a loosely similar
// code, with no amount constraint. Entries without a date never
// participate. First qualifying candidate wins: the per-date candidate
// population is assumed small, and this keeps the tier linear-ish in the
// common case.
func (e *Engine) MatchTier3(erp, vendor []models.ConsolidatedInvoice, usedERP, usedVendor Consumed) []models.MatchRecord {
	var records []models.MatchRecord

	for ei := range erp {
		if usedERP[ei] || erp[ei].Date == "" {
			continue
		}
		for vi := range vendor {
			if usedVendor[vi] || vendor[vi].Date == "" {
				continue
			}
			if erp[ei].Date != vendor[vi].Date {
				continue
			}
			sim := editSimilarity(erp[ei].Code, vendor[vi].Code)
			if sim < e.config.Tier3MinSimilarity {
				continue
			}
			records = append(records, models.NewMatchRecord(erp[ei], vendor[vi], 3, &sim, e.config.ExactTolerance))
			usedERP[ei] = true
			usedVendor[vi] = true
			break
		}
	}
	return records
}

func (e *Engine) summarize(erp, vendor []models.ConsolidatedInvoice, result *Result) Summary {
	s := Summary{
		TotalERP:        len(erp),
		TotalVendor:     len(vendor),
		MissingInVendor: len(result.MissingInVendor),
		MissingInERP:    len(result.MissingInERP),
		MatchedAmount:   decimal.Zero,
		UnmatchedERP:    decimal.Zero,
		UnmatchedVendor: decimal.Zero,
	}

	for _, m := range result.Matches {
		switch m.Tier {
		case 1:
			s.Tier1Matches++
		case 2:
			s.Tier2Matches++
		case 3:
			s.Tier3Matches++
		}
		switch m.Status {
		case models.StatusPerfect:
			s.PerfectMatches++
		case models.StatusDifference:
			s.DifferenceMatches++
		}
		s.MatchedAmount = s.MatchedAmount.Add(m.ERPAmount)
	}
	for _, inv := range result.MissingInVendor {
		s.UnmatchedERP = s.UnmatchedERP.Add(inv.Amount())
	}
	for _, inv := range result.MissingInERP {
		s.UnmatchedVendor = s.UnmatchedVendor.Add(inv.Amount())
	}
	return s
}
