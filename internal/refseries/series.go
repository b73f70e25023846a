// Package refseries loads and indexes the reference time series the
// consolidation joins against: the daily USD-ARS exchange rate and the
// monthly inflation figures. Series are loaded once per run and read-only.
package refseries

import (
	"encoding/csv"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"expensascli/internal/errors"
	"expensascli/internal/normalize"
)

// Point is one (date, value) observation.
type Point struct {
	Date  time.Time
	Value decimal.Decimal
}

// Series is an ordered daily series indexed by date.
type Series struct {
	points []Point
}

// Len returns the number of points in the series.
func (s *Series) Len() int {
	return len(s.points)
}

// LoadSeries reads a two-column CSV (date dd/mm/yyyy, es-AR value). The first
// row is treated as a header. Rows that fail to parse are skipped with a
// warning; they never abort the load.
func LoadSeries(path string) (*Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open reference series", err).WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("failed to read reference series CSV", err).WithContext("path", path)
	}

	s := &Series{}
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		date, _, err := normalize.Date(row[0], nil)
		if err != nil {
			slog.Warn("skipping reference series row with bad date",
				slog.String("path", path),
				slog.Int("row", i),
				slog.String("raw", row[0]))
			continue
		}
		value, err := normalize.Amount(row[1])
		if err != nil {
			slog.Warn("skipping reference series row with bad value",
				slog.String("path", path),
				slog.Int("row", i),
				slog.String("raw", row[1]))
			continue
		}
		s.points = append(s.points, Point{Date: date, Value: value})
	}

	sort.Slice(s.points, func(i, j int) bool {
		return s.points[i].Date.Before(s.points[j].Date)
	})

	slog.Info("loaded reference series",
		slog.String("path", path),
		slog.Int("points", len(s.points)))
	return s, nil
}

// RateFor resolves the applicable value for a date: exact match, else the
// most recent prior date within the same calendar month. A month with no
// listed dates up to d yields no value; the caller leaves the derived fields
// unset and tags the record.
func (s *Series) RateFor(d time.Time) (decimal.Decimal, bool) {
	if len(s.points) == 0 {
		return decimal.Decimal{}, false
	}
	// Rightmost point with date <= d.
	idx := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].Date.After(d)
	}) - 1
	if idx < 0 {
		return decimal.Decimal{}, false
	}
	p := s.points[idx]
	if p.Date.Year() != d.Year() || p.Date.Month() != d.Month() {
		return decimal.Decimal{}, false
	}
	return p.Value, true
}
