// Package reconciler orchestrates a full reconciliation run: normalization,
// classification, consolidation, tiered invoice matching and payment
// matching, in that order, as one synchronous in-memory computation.
//
// The service performs no I/O. Ingestion hands it two side-tagged tables of
// raw rows; everything it produces is handed onward to the report layer.
// Consumption bookkeeping is local to one run and discarded with it.
package reconciler

import (
	"fmt"
	"time"

	"vendor-reconciliation-service/internal/consolidator"
	"vendor-reconciliation-service/internal/matcher"
	"vendor-reconciliation-service/internal/models"
	"vendor-reconciliation-service/internal/normalizer"
	"vendor-reconciliation-service/pkg/errors"
	"vendor-reconciliation-service/pkg/logger"
)

// Config bundles the component configurations for a reconciliation service.
type Config struct {
	Vocabulary *normalizer.Vocabulary
	Matching   *matcher.MatchingConfig
}

// DefaultConfig returns a configuration with the default vocabulary and
// matching thresholds.
func DefaultConfig() *Config {
	return &Config{
		Vocabulary: normalizer.DefaultVocabulary(),
		Matching:   matcher.DefaultMatchingConfig(),
	}
}

// Validate checks the nested component configurations.
func (c *Config) Validate() error {
	if c.Vocabulary != nil {
		if err := c.Vocabulary.Validate(); err != nil {
			return err
		}
	}
	if c.Matching != nil {
		if err := c.Matching.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Service wires the pipeline stages together for repeated runs.
type Service struct {
	norm   *normalizer.Normalizer
	consol *consolidator.Consolidator
	engine *matcher.Engine
	vocab  *normalizer.Vocabulary
	log    logger.Logger
}

// NewService creates a reconciliation service. A nil config selects
// defaults throughout.
func NewService(config *Config) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigError(errors.CodeInvalidConfig, "invalid reconciler configuration", err)
	}

	vocab := config.Vocabulary
	if vocab == nil {
		vocab = normalizer.DefaultVocabulary()
	}

	norm, err := normalizer.New(vocab)
	if err != nil {
		return nil, err
	}
	engine, err := matcher.NewEngine(config.Matching)
	if err != nil {
		return nil, err
	}

	return &Service{
		norm:   norm,
		consol: consolidator.New(vocab),
		engine: engine,
		vocab:  vocab.Clone(),
		log:    logger.GetGlobalLogger().WithComponent("reconciler"),
	}, nil
}

// RunResult is the complete output of one reconciliation run, ready for the
// report layer.
type RunResult struct {
	Matches         []models.MatchRecord
	MissingInVendor []models.ConsolidatedInvoice
	MissingInERP    []models.ConsolidatedInvoice

	PaymentMatches          []models.PaymentMatch
	UnmatchedERPPayments    []models.PaymentLine
	UnmatchedVendorPayments []models.PaymentLine

	Summary  matcher.Summary
	Duration time.Duration
}

// Reconcile runs the full pipeline over the two side-tagged tables. Dirty
// fields degrade inside the stages rather than failing the run; a side
// without a recognizable invoice column simply consolidates empty and
// surfaces as "everything on the other side is missing". Any panic escaping
// a stage is recovered here and surfaced as a single categorized error, so
// a caller never sees the process die mid-run.
func (s *Service) Reconcile(erpTable, vendorTable *models.Table) (result *RunResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("reconciliation run panicked: %v", r)
			result = nil
			err = errors.ReconcileError(errors.CodeRunPanic,
				fmt.Sprintf("reconciliation aborted: %v", r), nil).
				WithSuggestion("Check the input files for structural corruption and retry")
		}
	}()

	start := time.Now()

	erpLines, err := s.norm.NormalizeTable(erpTable)
	if err != nil {
		return nil, err
	}
	vendorLines, err := s.norm.NormalizeTable(vendorTable)
	if err != nil {
		return nil, err
	}

	erpSide := s.consol.Consolidate(erpLines)
	vendorSide := s.consol.Consolidate(vendorLines)

	matchResult := s.engine.Match(erpSide.Invoices, vendorSide.Invoices)

	hints := s.vocab.AmountColumnHints
	erpPayments := matcher.BuildPaymentLines(erpSide.PaymentCandidates, hints)
	vendorPayments := matcher.BuildPaymentLines(vendorSide.PaymentCandidates, hints)
	paymentResult := s.engine.MatchPayments(erpPayments, vendorPayments)

	result = &RunResult{
		Matches:                 matchResult.Matches,
		MissingInVendor:         matchResult.MissingInVendor,
		MissingInERP:            matchResult.MissingInERP,
		PaymentMatches:          paymentResult.Matches,
		UnmatchedERPPayments:    paymentResult.UnmatchedERP,
		UnmatchedVendorPayments: paymentResult.UnmatchedVendor,
		Summary:                 matchResult.Summary,
		Duration:                time.Since(start),
	}

	s.log.WithFields(logger.Fields{
		"erp_rows":        len(erpLines),
		"vendor_rows":     len(vendorLines),
		"matches":         len(result.Matches),
		"payment_matches": len(result.PaymentMatches),
		"duration":        result.Duration.String(),
	}).Info("reconciliation run complete")
	return result, nil
}
