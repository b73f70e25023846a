package exporter

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"expensascli/internal/errors"
)

// Sheet is one named analysis view rendered as a worksheet.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// WriteWorkbook renders the analysis views into one workbook, one sheet per
// view, preserving the given sheet order. Empty views still get their sheet
// with just the header row, so the artifact shape is stable run to run.
func WriteWorkbook(path string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return errors.NewValidationError("no sheets to write", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create output directory", err).WithContext("path", path)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			f.SetSheetName(f.GetSheetName(0), sheet.Name)
		} else {
			if _, err := f.NewSheet(sheet.Name); err != nil {
				return errors.NewStorageError("failed to create worksheet", err).WithContext("sheet", sheet.Name)
			}
		}
		if err := writeSheetRows(f, sheet); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.NewStorageError("failed to save workbook", err).WithContext("path", path)
	}
	slog.Info("wrote audit workbook",
		slog.String("path", path),
		slog.Int("sheets", len(sheets)))
	return nil
}

func writeSheetRows(f *excelize.File, sheet Sheet) error {
	all := make([][]string, 0, len(sheet.Rows)+1)
	if len(sheet.Headers) > 0 {
		all = append(all, sheet.Headers)
	}
	all = append(all, sheet.Rows...)

	for rowIdx, row := range all {
		for colIdx, val := range row {
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return errors.NewStorageError("failed to compute cell coordinates", err)
			}
			if err := f.SetCellValue(sheet.Name, cellName, val); err != nil {
				return errors.NewStorageError("failed to set cell value", err).WithContext("sheet", sheet.Name)
			}
		}
	}
	return nil
}
