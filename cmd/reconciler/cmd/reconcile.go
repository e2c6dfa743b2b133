package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"vendor-reconciliation-service/cmd/reconciler/config"
	"vendor-reconciliation-service/internal/fincomms"
	"vendor-reconciliation-service/internal/models"
	"vendor-reconciliation-service/internal/parsers"
	"vendor-reconciliation-service/internal/reconciler"
	"vendor-reconciliation-service/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the reconcile command
var (
	erpFile    string
	vendorFile string

	outputFormat string
	outputFile   string
	excelOut     string
	sheetName    string

	exactTolerance   float64
	tier2Similarity  float64
	tier3Similarity  float64
	paymentTolerance float64
	disableTier3     bool

	pushMissing      bool
	fincommsURL      string
	fincommsEmail    string
	fincommsPassword string
	vendorName       string
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile an ERP export against a vendor statement",
	Long: `Reconcile compares ERP ledger lines with a vendor statement to identify
matched invoices, amount discrepancies and invoices missing on either side.

This command requires:
- An ERP export file (CSV or XLSX)
- A vendor statement file (CSV or XLSX)

Examples:
  # Basic reconciliation
  reconciler reconcile --erp-file erp.csv --vendor-file vendor.csv

  # JSON output to a file
  reconciler reconcile --erp-file erp.csv --vendor-file vendor.xlsx \
    --output-format json --output-file report.json

  # Export the missing-invoice sets to an Excel workbook
  reconciler reconcile --erp-file erp.csv --vendor-file vendor.csv \
    --excel-out missing.xlsx

  # Looser fuzzy matching
  reconciler reconcile --erp-file erp.csv --vendor-file vendor.csv \
    --tier2-similarity 0.85 --tier3-similarity 0.70

  # Push invoices missing in the ERP to FinComms
  reconciler reconcile --erp-file erp.csv --vendor-file vendor.csv \
    --push-missing --fincomms-url https://fincomms.example.com \
    --vendor-name "Acme GmbH"`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	// Required flags
	reconcileCmd.Flags().StringVarP(&erpFile, "erp-file", "e", "", "path to the ERP export file (required)")
	reconcileCmd.Flags().StringVarP(&vendorFile, "vendor-file", "b", "", "path to the vendor statement file (required)")

	// Output flags
	reconcileCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json")
	reconcileCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	reconcileCmd.Flags().StringVar(&excelOut, "excel-out", "", "write missing-invoice sets to an Excel workbook at this path")
	reconcileCmd.Flags().StringVar(&sheetName, "sheet", "", "worksheet name for XLSX inputs (default: first sheet)")

	// Matching configuration flags
	reconcileCmd.Flags().Float64Var(&exactTolerance, "exact-tolerance", 0.01, "maximum amount difference for a perfect match")
	reconcileCmd.Flags().Float64Var(&tier2Similarity, "tier2-similarity", 0.90, "minimum code similarity for amount-window matching")
	reconcileCmd.Flags().Float64Var(&tier3Similarity, "tier3-similarity", 0.75, "minimum code similarity for date-based matching")
	reconcileCmd.Flags().Float64Var(&paymentTolerance, "payment-tolerance", 0.05, "maximum amount difference when pairing payments")
	reconcileCmd.Flags().BoolVar(&disableTier3, "disable-tier3", false, "skip the date-based matching pass")

	// FinComms integration flags
	reconcileCmd.Flags().BoolVar(&pushMissing, "push-missing", false, "push invoices missing in the ERP to FinComms")
	reconcileCmd.Flags().StringVar(&fincommsURL, "fincomms-url", "", "FinComms base URL")
	reconcileCmd.Flags().StringVar(&fincommsEmail, "fincomms-email", "", "FinComms login email (or RECONCILER_FINCOMMS_EMAIL)")
	reconcileCmd.Flags().StringVar(&fincommsPassword, "fincomms-password", "", "FinComms login password (or RECONCILER_FINCOMMS_PASSWORD)")
	reconcileCmd.Flags().StringVar(&vendorName, "vendor-name", "", "vendor label attached to pushed invoices")

	reconcileCmd.MarkFlagRequired("erp-file")
	reconcileCmd.MarkFlagRequired("vendor-file")

	// Bind flags to viper
	viper.BindPFlag("erp-file", reconcileCmd.Flags().Lookup("erp-file"))
	viper.BindPFlag("vendor-file", reconcileCmd.Flags().Lookup("vendor-file"))
	viper.BindPFlag("output-format", reconcileCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", reconcileCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("excel-out", reconcileCmd.Flags().Lookup("excel-out"))
	viper.BindPFlag("sheet", reconcileCmd.Flags().Lookup("sheet"))
	viper.BindPFlag("exact-tolerance", reconcileCmd.Flags().Lookup("exact-tolerance"))
	viper.BindPFlag("tier2-similarity", reconcileCmd.Flags().Lookup("tier2-similarity"))
	viper.BindPFlag("tier3-similarity", reconcileCmd.Flags().Lookup("tier3-similarity"))
	viper.BindPFlag("payment-tolerance", reconcileCmd.Flags().Lookup("payment-tolerance"))
	viper.BindPFlag("disable-tier3", reconcileCmd.Flags().Lookup("disable-tier3"))
	viper.BindPFlag("push-missing", reconcileCmd.Flags().Lookup("push-missing"))
	viper.BindPFlag("fincomms-url", reconcileCmd.Flags().Lookup("fincomms-url"))
	viper.BindPFlag("fincomms-email", reconcileCmd.Flags().Lookup("fincomms-email"))
	viper.BindPFlag("fincomms-password", reconcileCmd.Flags().Lookup("fincomms-password"))
	viper.BindPFlag("vendor-name", reconcileCmd.Flags().Lookup("vendor-name"))
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file and env)
	erpFile = viper.GetString("erp-file")
	vendorFile = viper.GetString("vendor-file")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	excelOut = viper.GetString("excel-out")
	sheetName = viper.GetString("sheet")
	exactTolerance = viper.GetFloat64("exact-tolerance")
	tier2Similarity = viper.GetFloat64("tier2-similarity")
	tier3Similarity = viper.GetFloat64("tier3-similarity")
	paymentTolerance = viper.GetFloat64("payment-tolerance")
	disableTier3 = viper.GetBool("disable-tier3")
	pushMissing = viper.GetBool("push-missing")
	fincommsURL = viper.GetString("fincomms-url")
	fincommsEmail = viper.GetString("fincomms-email")
	fincommsPassword = viper.GetString("fincomms-password")
	vendorName = viper.GetString("vendor-name")

	if erpFile == "" {
		return fmt.Errorf("erp-file is required")
	}
	if vendorFile == "" {
		return fmt.Errorf("vendor-file is required")
	}

	if err := validateFileExists(erpFile, "ERP export file"); err != nil {
		return err
	}
	if err := validateFileExists(vendorFile, "vendor statement file"); err != nil {
		return err
	}

	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json", outputFormat)
	}

	if exactTolerance < 0 {
		return fmt.Errorf("exact tolerance cannot be negative")
	}
	if paymentTolerance < 0 {
		return fmt.Errorf("payment tolerance cannot be negative")
	}
	if tier2Similarity < 0 || tier2Similarity > 1 {
		return fmt.Errorf("tier2 similarity must be between 0.0 and 1.0")
	}
	if tier3Similarity < 0 || tier3Similarity > 1 {
		return fmt.Errorf("tier3 similarity must be between 0.0 and 1.0")
	}

	if outputFile != "" {
		if err := validateOutputDir(outputFile); err != nil {
			return err
		}
	}
	if excelOut != "" {
		if err := validateOutputDir(excelOut); err != nil {
			return err
		}
	}

	if pushMissing {
		if fincommsURL == "" {
			return fmt.Errorf("fincomms-url is required with --push-missing")
		}
		if fincommsEmail == "" || fincommsPassword == "" {
			return fmt.Errorf("FinComms credentials are required with --push-missing (flags or RECONCILER_FINCOMMS_* env)")
		}
		if vendorName == "" {
			return fmt.Errorf("vendor-name is required with --push-missing")
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}
	return nil
}

func validateOutputDir(path string) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", dir)
		}
	}
	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	handler := NewCLIErrorHandler()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting reconciliation...\n")
		fmt.Fprintf(os.Stderr, "ERP file: %s\n", erpFile)
		fmt.Fprintf(os.Stderr, "Vendor file: %s\n", vendorFile)
		fmt.Fprintf(os.Stderr, "Output format: %s\n", outputFormat)
	}

	loader, err := parsers.NewLoader(config.CreateParserConfig(sheetName))
	if err != nil {
		return handler.Wrap(err)
	}

	erpTable, err := loader.LoadTable(erpFile, models.SideERP)
	if err != nil {
		return handler.Wrap(err)
	}
	vendorTable, err := loader.LoadTable(vendorFile, models.SideVendor)
	if err != nil {
		return handler.Wrap(err)
	}

	serviceConfig := config.CreateServiceConfig(config.MatchingOverrides{
		ExactTolerance:   exactTolerance,
		Tier2Similarity:  tier2Similarity,
		Tier3Similarity:  tier3Similarity,
		PaymentTolerance: paymentTolerance,
		DisableTier3:     disableTier3,
	})
	service, err := reconciler.NewService(serviceConfig)
	if err != nil {
		return handler.Wrap(err)
	}

	result, err := service.Reconcile(erpTable, vendorTable)
	if err != nil {
		return handler.Wrap(err)
	}

	rep, err := reporter.NewReporter(config.CreateReportConfig(outputFormat))
	if err != nil {
		return handler.Wrap(err)
	}

	out := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return handler.Wrap(fmt.Errorf("cannot create output file: %w", err))
		}
		defer f.Close()
		out = f
	}
	if err := rep.Write(out, result); err != nil {
		return handler.Wrap(err)
	}

	if excelOut != "" {
		if err := rep.ExportMissingExcel(excelOut, result); err != nil {
			return handler.Wrap(err)
		}
		fmt.Fprintf(os.Stderr, "Missing-invoice workbook written to %s\n", excelOut)
	}

	if pushMissing && len(result.MissingInERP) > 0 {
		if err := pushMissingToFinComms(cmd.Context(), result); err != nil {
			return handler.Wrap(err)
		}
	}

	return nil
}

func pushMissingToFinComms(ctx context.Context, result *reconciler.RunResult) error {
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := fincomms.NewClient(&fincomms.ClientConfig{
		BaseURL: fincommsURL,
		Timeout: fincomms.DefaultTimeout,
	})
	if err != nil {
		return err
	}

	token, err := client.Login(ctx, fincommsEmail, fincommsPassword)
	if err != nil {
		return err
	}

	records := fincomms.BuildRecords(result.MissingInERP, vendorName)
	imported, err := client.BulkImport(ctx, token, records)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Pushed %d invoices to FinComms (%d imported, %d skipped)\n",
		len(records), imported.Imported, imported.Skipped)
	return nil
}
