package consolidate

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"expensascli/internal/errors"
	"expensascli/pkg/contracts/domain"
)

// LoadConsolidated reads a previously written consolidated CSV back into
// records so the auditor can re-run detection over it. The file must carry
// the consolidated table's exact header.
func LoadConsolidated(path string) ([]*domain.Expense, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open consolidated file", err).WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(domain.OutputColumns)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("failed to read consolidated CSV", err).WithContext("path", path)
	}
	if len(rows) == 0 {
		return nil, errors.NewSchemaError("consolidated file is empty", nil).WithContext("path", path)
	}

	header := rows[0]
	header[0] = strings.TrimPrefix(header[0], string(rune(0xFEFF)))
	for i, col := range domain.OutputColumns {
		if header[i] != col {
			return nil, errors.NewSchemaError(
				fmt.Sprintf("column %d is %q, expected %q", i+1, header[i], col),
				nil).WithContext("path", path)
		}
	}

	records := make([]*domain.Expense, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := recordFromRow(row)
		if err != nil {
			return nil, errors.NewParsingError(
				fmt.Sprintf("bad consolidated row %d", i+2), err).WithContext("path", path)
		}
		records = append(records, rec)
	}
	return records, nil
}

func recordFromRow(row []string) (*domain.Expense, error) {
	rec := &domain.Expense{
		VoucherCode:    row[1],
		Category:       row[2],
		Subcategory:    row[3],
		Subsubcategory: row[4],
		Rubric:         row[5],
		VendorName:     row[6],
		VendorTaxID:    row[7],
		ExpenseType:    row[8],
		Memo:           row[9],
		FiscalData:     row[13],
		SourceFile:     row[15],
	}

	if row[0] != "" {
		date, err := time.Parse(domain.DateLayout, row[0])
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", row[0], err)
		}
		rec.Date = date
	}

	amount, err := decimal.NewFromString(row[10])
	if err != nil {
		return nil, fmt.Errorf("invalid ARS amount %q: %w", row[10], err)
	}
	rec.AmountARS = amount

	if row[11] != "" {
		usd, err := decimal.NewFromString(row[11])
		if err != nil {
			return nil, fmt.Errorf("invalid USD amount %q: %w", row[11], err)
		}
		rec.AmountUSD = decimal.NewNullDecimal(usd)
	}
	if row[12] != "" {
		rate, err := decimal.NewFromString(row[12])
		if err != nil {
			return nil, fmt.Errorf("invalid exchange rate %q: %w", row[12], err)
		}
		rec.FXRate = decimal.NewNullDecimal(rate)
	}

	if row[14] != "" {
		rec.Observations = strings.Split(row[14], "; ")
	}
	return rec, nil
}
