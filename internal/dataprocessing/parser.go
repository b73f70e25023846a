package dataprocessing

import (
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"expensascli/internal/errors"
	"expensascli/internal/normalize"
)

// sheetTarget is the normalized worksheet name the monthly workbooks use.
const sheetTarget = "gastos del mes"

// ParseFile opens a monthly workbook and returns the raw rows of its expense
// worksheet. Sheet selection is case and diacritic insensitive, with two
// fallbacks: any sheet containing "gastos", else the first sheet.
func ParseFile(filePath string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err).WithContext("path", filePath)
	}
	defer f.Close()

	sheetName, err := findTargetSheet(f)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, errors.NewParsingError("failed to read worksheet rows", err).
			WithContext("path", filePath).
			WithContext("sheet", sheetName)
	}

	slog.Debug("parsed workbook",
		slog.String("path", filePath),
		slog.String("sheet", sheetName),
		slog.Int("rows", len(rows)))
	return rows, nil
}

func findTargetSheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", errors.NewParsingError("workbook has no sheets", nil)
	}
	for _, name := range sheets {
		if strings.Contains(normalize.Text(name), sheetTarget) {
			return name, nil
		}
	}
	for _, name := range sheets {
		if strings.Contains(normalize.Text(name), "gastos") {
			slog.Debug("sheet selected by partial match", slog.String("sheet", name))
			return name, nil
		}
	}
	slog.Debug("sheet selected by first-sheet fallback", slog.String("sheet", sheets[0]))
	return sheets[0], nil
}
