package reporter

import (
	"fmt"

	"vendor-reconciliation-service/internal/models"
	"vendor-reconciliation-service/internal/reconciler"
	"vendor-reconciliation-service/pkg/errors"

	"github.com/xuri/excelize/v2"
)

const missingSheetName = "Missing Invoices"

// Section fill colors: red for invoices the vendor billed but the ERP never
// booked, magenta for the reverse direction.
const (
	fillMissingInERP    = "C62828"
	fillMissingInVendor = "AD1457"
)

var missingHeaders = []string{"Invoice", "Amount", "Date", "Entity"}

// ExportMissingExcel writes both missing-invoice sets to an Excel workbook at
// path. Each direction gets its own titled section with a colored header row.
func (r *Reporter) ExportMissingExcel(path string, result *reconciler.RunResult) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(missingSheetName)
	if err != nil {
		return errors.FileError(errors.CodeFileWrite, "cannot create worksheet", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	widths := make([]int, len(missingHeaders))
	for i, h := range missingHeaders {
		widths[i] = len(h)
	}

	row := 1
	row, err = r.writeMissingBlock(f, row, "Missing in ERP (vendor has, you don't)",
		fillMissingInERP, result.MissingInERP, widths)
	if err != nil {
		return err
	}
	row++ // blank spacer row between sections
	if _, err = r.writeMissingBlock(f, row, "Missing in Vendor (you have, vendor doesn't)",
		fillMissingInVendor, result.MissingInVendor, widths); err != nil {
		return err
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(missingSheetName, col, col, float64(w)+4); err != nil {
			return errors.FileError(errors.CodeFileWrite, "cannot set column width", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.FileError(errors.CodeFileWrite,
			fmt.Sprintf("cannot save workbook to %s", path), err).
			WithSuggestion("check that the output directory exists and is writable")
	}
	r.log.WithField("path", path).Info("Exported missing-invoice workbook")
	return nil
}

// writeMissingBlock writes one titled section starting at startRow and
// returns the next free row. widths is updated in place with the widest cell
// seen per column.
func (r *Reporter) writeMissingBlock(f *excelize.File, startRow int, title, fillColor string, missing []models.ConsolidatedInvoice, widths []int) (int, error) {
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return 0, errors.FileError(errors.CodeFileWrite, "cannot create title style", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fillColor}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return 0, errors.FileError(errors.CodeFileWrite, "cannot create header style", err)
	}

	firstCell, _ := excelize.CoordinatesToCellName(1, startRow)
	lastCell, _ := excelize.CoordinatesToCellName(len(missingHeaders), startRow)
	if err := f.MergeCell(missingSheetName, firstCell, lastCell); err != nil {
		return 0, errors.FileError(errors.CodeFileWrite, "cannot merge title cells", err)
	}
	f.SetCellValue(missingSheetName, firstCell, title)
	f.SetCellStyle(missingSheetName, firstCell, lastCell, titleStyle)

	headerRow := startRow + 1
	for i, h := range missingHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		f.SetCellValue(missingSheetName, cell, h)
	}
	hFirst, _ := excelize.CoordinatesToCellName(1, headerRow)
	hLast, _ := excelize.CoordinatesToCellName(len(missingHeaders), headerRow)
	f.SetCellStyle(missingSheetName, hFirst, hLast, headerStyle)

	rowNum := headerRow + 1
	for _, inv := range missing {
		values := []string{inv.InvoiceRaw(), inv.Amount().StringFixed(2), inv.Date, inv.Entity}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
			f.SetCellValue(missingSheetName, cell, v)
			if len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
		rowNum++
	}
	return rowNum, nil
}
