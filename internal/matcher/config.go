package matcher

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MatchingConfig holds the tolerances and thresholds for the tiered matcher
// and the payment matcher. Configurations are immutable once handed to an
// Engine; use the factory functions for the common profiles.
type MatchingConfig struct {
	// ExactTolerance is the amount difference below which a paired match is
	// reported as perfect rather than a difference to flag.
	ExactTolerance decimal.Decimal `json:"exact_tolerance"`

	// Tier2AmountWindow is the absolute amount window (currency units)
	// inside which tier 2 considers a candidate at all.
	Tier2AmountWindow decimal.Decimal `json:"tier2_amount_window"`

	// Tier2MinSimilarity is the minimum fuzzy code similarity for a tier-2
	// pairing. Among qualifying candidates the strictly highest similarity
	// wins; ties keep the earliest in scan order.
	Tier2MinSimilarity float64 `json:"tier2_min_similarity"`

	// Tier3MinSimilarity is the minimum fuzzy code similarity for a tier-3
	// pairing. Tier 3 additionally requires exact date equality and has no
	// amount constraint; the first qualifying candidate wins.
	Tier3MinSimilarity float64 `json:"tier3_min_similarity"`

	// PaymentTolerance is the amount window for pairing leftover payment
	// lines across sides.
	PaymentTolerance decimal.Decimal `json:"payment_tolerance"`

	// EnableTier3 allows turning date-based matching off for ledgers whose
	// dates are known to be unreliable.
	EnableTier3 bool `json:"enable_tier3"`
}

// DefaultMatchingConfig returns the production thresholds: 1.00 currency
// units and 0.90 similarity at tier 2, 0.75 similarity at tier 3, 0.05 for
// payments.
func DefaultMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		ExactTolerance:     decimal.NewFromFloat(0.01),
		Tier2AmountWindow:  decimal.NewFromFloat(1.00),
		Tier2MinSimilarity: 0.90,
		Tier3MinSimilarity: 0.75,
		PaymentTolerance:   decimal.NewFromFloat(0.05),
		EnableTier3:        true,
	}
}

// StrictMatchingConfig returns a profile for critical reconciliations:
// a tight tier-2 window and no date-based tier.
func StrictMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		ExactTolerance:     decimal.NewFromFloat(0.01),
		Tier2AmountWindow:  decimal.NewFromFloat(0.05),
		Tier2MinSimilarity: 0.95,
		Tier3MinSimilarity: 0.90,
		PaymentTolerance:   decimal.NewFromFloat(0.01),
		EnableTier3:        false,
	}
}

// RelaxedMatchingConfig returns a profile for exploratory matching against
// very dirty statements.
func RelaxedMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		ExactTolerance:     decimal.NewFromFloat(0.01),
		Tier2AmountWindow:  decimal.NewFromFloat(5.00),
		Tier2MinSimilarity: 0.80,
		Tier3MinSimilarity: 0.60,
		PaymentTolerance:   decimal.NewFromFloat(0.50),
		EnableTier3:        true,
	}
}

// Validate checks if the matching configuration is valid.
func (mc *MatchingConfig) Validate() error {
	if mc.ExactTolerance.IsNegative() {
		return fmt.Errorf("exact tolerance cannot be negative: %s", mc.ExactTolerance)
	}
	if mc.Tier2AmountWindow.IsNegative() {
		return fmt.Errorf("tier-2 amount window cannot be negative: %s", mc.Tier2AmountWindow)
	}
	if mc.Tier2MinSimilarity < 0.0 || mc.Tier2MinSimilarity > 1.0 {
		return fmt.Errorf("tier-2 minimum similarity must be between 0.0 and 1.0: %f", mc.Tier2MinSimilarity)
	}
	if mc.Tier3MinSimilarity < 0.0 || mc.Tier3MinSimilarity > 1.0 {
		return fmt.Errorf("tier-3 minimum similarity must be between 0.0 and 1.0: %f", mc.Tier3MinSimilarity)
	}
	if mc.PaymentTolerance.IsNegative() {
		return fmt.Errorf("payment tolerance cannot be negative: %s", mc.PaymentTolerance)
	}
	return nil
}

// Clone creates a deep copy of the matching configuration.
func (mc *MatchingConfig) Clone() *MatchingConfig {
	if mc == nil {
		return nil
	}
	clone := *mc
	return &clone
}

// String returns a human-readable description of the configuration.
func (mc *MatchingConfig) String() string {
	return fmt.Sprintf("MatchingConfig{Tier2: ±%s @ %.2f, Tier3: date @ %.2f, Payments: ±%s}",
		mc.Tier2AmountWindow, mc.Tier2MinSimilarity, mc.Tier3MinSimilarity, mc.PaymentTolerance)
}
