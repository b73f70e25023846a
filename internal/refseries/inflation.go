package refseries

import (
	"encoding/csv"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"expensascli/internal/errors"
	"expensascli/internal/normalize"
)

// MonthlySeries holds one value per calendar month. Used for the
// intermensual (month-over-month) and interanual (year-over-year) inflation
// figures.
type MonthlySeries struct {
	values map[normalize.YearMonth]decimal.Decimal
}

// LoadMonthlySeries reads a two-column CSV (date dd/mm/yyyy, es-AR value) and
// keys each value by the month of its date. When a month appears more than
// once the last row wins.
func LoadMonthlySeries(path string) (*MonthlySeries, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open monthly series", err).WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("failed to read monthly series CSV", err).WithContext("path", path)
	}

	ms := &MonthlySeries{values: make(map[normalize.YearMonth]decimal.Decimal)}
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		date, _, err := normalize.Date(row[0], nil)
		if err != nil {
			slog.Warn("skipping monthly series row with bad date",
				slog.String("path", path),
				slog.Int("row", i),
				slog.String("raw", row[0]))
			continue
		}
		value, err := normalize.Amount(row[1])
		if err != nil {
			slog.Warn("skipping monthly series row with bad value",
				slog.String("path", path),
				slog.Int("row", i),
				slog.String("raw", row[1]))
			continue
		}
		ms.values[normalize.YearMonth{Year: date.Year(), Month: date.Month()}] = value
	}

	slog.Info("loaded monthly series",
		slog.String("path", path),
		slog.Int("months", len(ms.values)))
	return ms, nil
}

// Len returns the number of months with a value.
func (m *MonthlySeries) Len() int {
	return len(m.values)
}

// MonthValue returns the figure for the given month, if present.
func (m *MonthlySeries) MonthValue(ym normalize.YearMonth) (decimal.Decimal, bool) {
	v, ok := m.values[ym]
	return v, ok
}

// MonthOf is a convenience for building the map key from a date.
func MonthOf(d time.Time) normalize.YearMonth {
	return normalize.YearMonth{Year: d.Year(), Month: d.Month()}
}
