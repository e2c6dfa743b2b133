// Package parsers is the untyped-text ingestion stage: it reads CSV and
// XLSX ledger exports into side-tagged tables of raw rows, preserving
// column order and leaving every value as unparsed text.
//
// Type coercion is deliberately absent here. The core's normalizer owns the
// strictly-typed canonical stage; keeping this layer dumb means the engine
// never sniffs file formats or guesses at types.
package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"vendor-reconciliation-service/internal/models"
	"vendor-reconciliation-service/pkg/errors"
	"vendor-reconciliation-service/pkg/logger"

	"github.com/xuri/excelize/v2"
)

// Config holds ingestion options shared by both formats.
type Config struct {
	// Delimiter is the CSV field separator.
	Delimiter rune
	// Sheet selects the XLSX worksheet by name; empty means the first
	// sheet in the workbook.
	Sheet string
}

// DefaultConfig returns the standard ingestion options.
func DefaultConfig() *Config {
	return &Config{Delimiter: ','}
}

// Validate checks the ingestion options.
func (c *Config) Validate() error {
	if c.Delimiter == 0 {
		return fmt.Errorf("delimiter cannot be NUL")
	}
	return nil
}

// Loader reads ledger files into raw tables.
type Loader struct {
	config *Config
	log    logger.Logger
}

// NewLoader creates a Loader. A nil config selects the defaults.
func NewLoader(config *Config) (*Loader, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigError(errors.CodeInvalidConfig, "invalid parser configuration", err)
	}
	return &Loader{
		config: config,
		log:    logger.GetGlobalLogger().WithComponent("parsers"),
	}, nil
}

// LoadTable reads a ledger file into a table, dispatching on the file
// extension. Supported: .csv, .xlsx.
func (l *Loader) LoadTable(path string, side models.Side) (*models.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.FileError(errors.CodeFileNotFound,
				fmt.Sprintf("cannot open %s", path), err).
				WithSuggestion("Check that the file exists and is readable")
		}
		defer f.Close()
		return l.ParseCSV(f, side)
	case ".xlsx":
		return l.LoadXLSX(path, side)
	default:
		return nil, errors.FileError(errors.CodeUnknownFormat,
			fmt.Sprintf("unsupported file format %q", filepath.Ext(path)), nil).
			WithSuggestion("Provide a .csv or .xlsx export")
	}
}

// ParseCSV reads a headered CSV stream into a table. Ragged records are
// tolerated: short rows pad with empty values, long rows truncate to the
// header width.
func (l *Loader) ParseCSV(r io.Reader, side models.Side) (*models.Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = l.config.Delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.ParseError(errors.CodeEmptyFile, "ledger file is empty", nil)
	}
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, "cannot read CSV header", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	table := &models.Table{Side: side}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.ParseError(errors.CodeInvalidFormat,
				fmt.Sprintf("malformed CSV record at line %d", line), err)
		}
		if isBlankRecord(record) {
			continue
		}
		table.Rows = append(table.Rows, models.NewRawRow(header, record))
	}

	l.log.WithFields(logger.Fields{
		"side":    side.String(),
		"rows":    len(table.Rows),
		"columns": len(header),
	}).Debug("CSV table loaded")
	return table, nil
}

// LoadXLSX reads one worksheet of an Excel workbook into a table. The first
// populated row is the header.
func (l *Loader) LoadXLSX(path string, side models.Side) (*models.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.FileError(errors.CodeFileRead,
			fmt.Sprintf("cannot open workbook %s", path), err)
	}
	defer f.Close()

	sheet := l.config.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat,
			fmt.Sprintf("cannot read sheet %q", sheet), err)
	}
	if len(rows) == 0 {
		return nil, errors.ParseError(errors.CodeEmptyFile,
			fmt.Sprintf("sheet %q is empty", sheet), nil)
	}

	header := make([]string, len(rows[0]))
	for i, c := range rows[0] {
		header[i] = strings.TrimSpace(c)
	}

	table := &models.Table{Side: side}
	for _, record := range rows[1:] {
		if isBlankRecord(record) {
			continue
		}
		table.Rows = append(table.Rows, models.NewRawRow(header, record))
	}

	l.log.WithFields(logger.Fields{
		"side":  side.String(),
		"sheet": sheet,
		"rows":  len(table.Rows),
	}).Debug("XLSX table loaded")
	return table, nil
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
