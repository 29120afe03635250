// Package report renders batch results as an XLSX workbook for the CLI.
// It is a thin outer layer; the library itself never persists anything.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/vlm-extract/internal/extract"
)

// WriteXLSX writes one row per batch result, preserving input order.
func WriteXLSX(path string, results []extract.BatchResult) error {
	f := excelize.NewFile()
	const sheet = "Extractions"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	// drop the default sheet so the report carries exactly one
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	if idx, err := f.GetSheetIndex(sheet); err == nil {
		f.SetActiveSheet(idx)
	}

	headers := []string{"File", "Status", "Characters", "Text / Error"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for row, r := range results {
		status, chars, body := "ok", len(r.Text), r.Text
		if r.Err != nil {
			status, chars, body = "error", 0, r.Err.Error()
		}
		values := []any{r.Path, status, chars, body}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return f.Close()
}
