package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"slices"

	"github.com/xuri/excelize/v2"
)

// sheetToCSV writes one sheet of a workbook to a temporary CSV file.
// Rows are padded to the header width.
func sheetToCSV(workbook, sheet string) (string, error) {
	f, err := excelize.OpenFile(workbook)
	if err != nil {
		return "", fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook %s has no sheets", workbook)
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return "", fmt.Errorf("sheet %q not found in %s (available: %v)", sheet, workbook, sheets)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("sheet %q is empty", sheet)
	}

	out, err := os.CreateTemp("", "runlens-*.csv")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	width := len(rows[0])
	w := csv.NewWriter(out)
	for _, row := range rows {
		if len(row) < width {
			row = append(row, make([]string, width-len(row))...)
		}
		if err := w.Write(row[:width]); err != nil {
			_ = out.Close()
			_ = os.Remove(out.Name())
			return "", fmt.Errorf("failed to write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = out.Close()
		_ = os.Remove(out.Name())
		return "", fmt.Errorf("failed to write csv: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}
