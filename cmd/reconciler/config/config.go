// Package config builds the component configurations the CLI hands to the
// parsers, matching engine and reporter.
package config

import (
	"github.com/shopspring/decimal"

	"vendor-reconciliation-service/internal/matcher"
	"vendor-reconciliation-service/internal/parsers"
	"vendor-reconciliation-service/internal/reconciler"
	"vendor-reconciliation-service/internal/reporter"
)

// MatchingOverrides carries the CLI flag values that adjust the default
// matching thresholds.
type MatchingOverrides struct {
	ExactTolerance   float64
	Tier2Similarity  float64
	Tier3Similarity  float64
	PaymentTolerance float64
	DisableTier3     bool
}

// CreateParserConfig creates a parser configuration. sheet selects the
// worksheet for XLSX inputs; empty means the first sheet.
func CreateParserConfig(sheet string) *parsers.Config {
	config := parsers.DefaultConfig()
	config.Sheet = sheet
	return config
}

// CreateMatchingConfig creates a matching configuration with the CLI
// overrides applied.
func CreateMatchingConfig(overrides MatchingOverrides) *matcher.MatchingConfig {
	config := matcher.DefaultMatchingConfig()

	config.ExactTolerance = decimal.NewFromFloat(overrides.ExactTolerance)
	config.Tier2MinSimilarity = overrides.Tier2Similarity
	config.Tier3MinSimilarity = overrides.Tier3Similarity
	config.PaymentTolerance = decimal.NewFromFloat(overrides.PaymentTolerance)
	config.EnableTier3 = !overrides.DisableTier3

	return config
}

// CreateServiceConfig creates a reconciliation service configuration.
func CreateServiceConfig(overrides MatchingOverrides) *reconciler.Config {
	config := reconciler.DefaultConfig()
	config.Matching = CreateMatchingConfig(overrides)
	return config
}

// CreateReportConfig creates a report configuration for the requested
// output format.
func CreateReportConfig(format string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()
	config.Format = reporter.Format(format)
	return config
}
