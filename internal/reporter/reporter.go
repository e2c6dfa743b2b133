// Package reporter renders reconciliation results for humans and machines:
// a sectioned console report, a JSON document for downstream tooling and an
// Excel workbook of the missing-invoice sets for circulation to the
// counterparty.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"vendor-reconciliation-service/internal/matcher"
	"vendor-reconciliation-service/internal/models"
	"vendor-reconciliation-service/internal/reconciler"
	"vendor-reconciliation-service/pkg/errors"
	"vendor-reconciliation-service/pkg/logger"
)

// Format selects the report output format.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// ReportConfig controls what a rendered report includes.
type ReportConfig struct {
	Format          Format `json:"format"`
	IncludeMatches  bool   `json:"include_matches"`
	IncludeMissing  bool   `json:"include_missing"`
	IncludePayments bool   `json:"include_payments"`
}

// DefaultReportConfig returns a full console report configuration.
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:          FormatConsole,
		IncludeMatches:  true,
		IncludeMissing:  true,
		IncludePayments: true,
	}
}

// Validate checks the report configuration.
func (rc *ReportConfig) Validate() error {
	switch rc.Format {
	case FormatConsole, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid report format: %q", rc.Format)
	}
}

// Reporter renders reconciliation results.
type Reporter struct {
	config *ReportConfig
	log    logger.Logger
}

// NewReporter creates a Reporter. A nil config selects the full console
// report.
func NewReporter(config *ReportConfig) (*Reporter, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigError(errors.CodeInvalidConfig, "invalid report configuration", err)
	}
	return &Reporter{
		config: config,
		log:    logger.GetGlobalLogger().WithComponent("reporter"),
	}, nil
}

// Write renders the result to w in the configured format.
func (r *Reporter) Write(w io.Writer, result *reconciler.RunResult) error {
	switch r.config.Format {
	case FormatJSON:
		return r.writeJSON(w, result)
	default:
		return r.writeConsole(w, result)
	}
}

// matchRow is the flat per-match shape used by both JSON and console
// rendering.
type matchRow struct {
	ERPInvoice    string   `json:"erp_invoice"`
	VendorInvoice string   `json:"vendor_invoice"`
	ERPAmount     string   `json:"erp_amount"`
	VendorAmount  string   `json:"vendor_amount"`
	Difference    string   `json:"difference"`
	Tier          int      `json:"tier"`
	Similarity    *float64 `json:"similarity,omitempty"`
	Status        string   `json:"status"`
	ERPEntity     string   `json:"erp_entity,omitempty"`
	VendorEntity  string   `json:"vendor_entity,omitempty"`
}

type missingRow struct {
	Invoice string `json:"invoice"`
	Amount  string `json:"amount"`
	Date    string `json:"date,omitempty"`
	Entity  string `json:"entity,omitempty"`
}

type paymentRow struct {
	ERPAmount    string `json:"erp_amount"`
	VendorAmount string `json:"vendor_amount"`
	ERPDate      string `json:"erp_date,omitempty"`
	VendorDate   string `json:"vendor_date,omitempty"`
	Difference   string `json:"difference"`
}

type jsonReport struct {
	Summary                 matcher.Summary `json:"summary"`
	Matches                 []matchRow      `json:"matches,omitempty"`
	MissingInVendor         []missingRow    `json:"missing_in_vendor,omitempty"`
	MissingInERP            []missingRow    `json:"missing_in_erp,omitempty"`
	MatchedPayments         []paymentRow    `json:"matched_payments,omitempty"`
	UnmatchedERPPayments    []paymentRow    `json:"unmatched_erp_payments,omitempty"`
	UnmatchedVendorPayments []paymentRow    `json:"unmatched_vendor_payments,omitempty"`
}

func toMatchRow(m models.MatchRecord) matchRow {
	return matchRow{
		ERPInvoice:    m.ERP.InvoiceRaw(),
		VendorInvoice: m.Vendor.InvoiceRaw(),
		ERPAmount:     m.ERPAmount.StringFixed(2),
		VendorAmount:  m.VendorAmount.StringFixed(2),
		Difference:    m.Difference.StringFixed(2),
		Tier:          m.Tier,
		Similarity:    m.Similarity,
		Status:        string(m.Status),
		ERPEntity:     m.ERP.Entity,
		VendorEntity:  m.Vendor.Entity,
	}
}

func toMissingRow(inv models.ConsolidatedInvoice) missingRow {
	return missingRow{
		Invoice: inv.InvoiceRaw(),
		Amount:  inv.Amount().StringFixed(2),
		Date:    inv.Date,
		Entity:  inv.Entity,
	}
}

func toPaymentRow(erp, vendor *models.PaymentLine) paymentRow {
	var row paymentRow
	if erp != nil {
		row.ERPAmount = erp.Amount.StringFixed(2)
		row.ERPDate = erp.Line.Date
	}
	if vendor != nil {
		row.VendorAmount = vendor.Amount.StringFixed(2)
		row.VendorDate = vendor.Line.Date
	}
	return row
}

func (r *Reporter) writeJSON(w io.Writer, result *reconciler.RunResult) error {
	report := jsonReport{Summary: result.Summary}

	if r.config.IncludeMatches {
		for _, m := range result.Matches {
			report.Matches = append(report.Matches, toMatchRow(m))
		}
	}
	if r.config.IncludeMissing {
		for _, inv := range result.MissingInVendor {
			report.MissingInVendor = append(report.MissingInVendor, toMissingRow(inv))
		}
		for _, inv := range result.MissingInERP {
			report.MissingInERP = append(report.MissingInERP, toMissingRow(inv))
		}
	}
	if r.config.IncludePayments {
		for _, pm := range result.PaymentMatches {
			row := toPaymentRow(&pm.ERP, &pm.Vendor)
			row.Difference = pm.Difference.StringFixed(2)
			report.MatchedPayments = append(report.MatchedPayments, row)
		}
		for i := range result.UnmatchedERPPayments {
			report.UnmatchedERPPayments = append(report.UnmatchedERPPayments,
				toPaymentRow(&result.UnmatchedERPPayments[i], nil))
		}
		for i := range result.UnmatchedVendorPayments {
			report.UnmatchedVendorPayments = append(report.UnmatchedVendorPayments,
				toPaymentRow(nil, &result.UnmatchedVendorPayments[i]))
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return errors.InternalError(errors.CodeUnexpectedError, "cannot encode JSON report", err)
	}
	return nil
}

func (r *Reporter) writeConsole(w io.Writer, result *reconciler.RunResult) error {
	s := result.Summary
	fmt.Fprintf(w, "Reconciliation Summary\n")
	fmt.Fprintf(w, "======================\n")
	fmt.Fprintf(w, "ERP invoices:        %d\n", s.TotalERP)
	fmt.Fprintf(w, "Vendor invoices:     %d\n", s.TotalVendor)
	fmt.Fprintf(w, "Matches:             %d (tier1 %d, tier2 %d, tier3 %d)\n",
		len(result.Matches), s.Tier1Matches, s.Tier2Matches, s.Tier3Matches)
	fmt.Fprintf(w, "Perfect / difference: %d / %d\n", s.PerfectMatches, s.DifferenceMatches)
	fmt.Fprintf(w, "Missing in vendor:   %d (%s)\n", s.MissingInVendor, s.UnmatchedERP.StringFixed(2))
	fmt.Fprintf(w, "Missing in ERP:      %d (%s)\n", s.MissingInERP, s.UnmatchedVendor.StringFixed(2))
	fmt.Fprintf(w, "Completed in %s\n", result.Duration)

	if r.config.IncludeMatches && len(result.Matches) > 0 {
		fmt.Fprintf(w, "\nMatched Invoices\n----------------\n")
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ERP INVOICE\tVENDOR INVOICE\tERP AMOUNT\tVENDOR AMOUNT\tDIFF\tTIER\tSCORE\tSTATUS")
		for _, m := range result.Matches {
			row := toMatchRow(m)
			score := "-"
			if row.Similarity != nil {
				score = fmt.Sprintf("%.2f", *row.Similarity)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
				row.ERPInvoice, row.VendorInvoice, row.ERPAmount, row.VendorAmount,
				row.Difference, row.Tier, score, row.Status)
		}
		tw.Flush()
	}

	if r.config.IncludeMissing {
		r.writeMissingSection(w, "Missing in Vendor (you have, vendor doesn't)", result.MissingInVendor)
		r.writeMissingSection(w, "Missing in ERP (vendor has, you don't)", result.MissingInERP)
	}

	if r.config.IncludePayments {
		if len(result.PaymentMatches) > 0 {
			fmt.Fprintf(w, "\nMatched Payments\n----------------\n")
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ERP AMOUNT\tVENDOR AMOUNT\tERP DATE\tVENDOR DATE\tDIFF")
			for _, pm := range result.PaymentMatches {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					pm.ERP.Amount.StringFixed(2), pm.Vendor.Amount.StringFixed(2),
					pm.ERP.Line.Date, pm.Vendor.Line.Date, pm.Difference.StringFixed(2))
			}
			tw.Flush()
		}
		if n := len(result.UnmatchedERPPayments); n > 0 {
			fmt.Fprintf(w, "\nUnmatched ERP payments: %d\n", n)
		}
		if n := len(result.UnmatchedVendorPayments); n > 0 {
			fmt.Fprintf(w, "Unmatched vendor payments: %d\n", n)
		}
	}

	return nil
}

func (r *Reporter) writeMissingSection(w io.Writer, title string, missing []models.ConsolidatedInvoice) {
	if len(missing) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n%s\n", title, dashes(len(title)))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INVOICE\tAMOUNT\tDATE\tENTITY")
	for _, inv := range missing {
		row := toMissingRow(inv)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.Invoice, row.Amount, row.Date, row.Entity)
	}
	tw.Flush()
}

func dashes(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '-'
	}
	return string(b)
}
