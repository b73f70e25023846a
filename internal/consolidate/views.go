package consolidate

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"expensascli/internal/exporter"
	"expensascli/internal/normalize"
	"expensascli/internal/refseries"
	"expensascli/pkg/contracts/domain"
)

// Views builds the analysis sheets for the audit workbook: the full table
// first, then monthly totals per rubric, the flagged subsets and the
// rejection log. A non-nil interanual series adds the year-over-year
// inflation figure to each monthly totals row.
func Views(records []*domain.Expense, rejections []domain.Rejection, interanual *refseries.MonthlySeries) []exporter.Sheet {
	return []exporter.Sheet{
		recordsSheet("Gastos", records),
		MonthlyTotalsView(records, interanual),
		taggedSheet("Duplicados", records, domain.ObsDuplicate),
		taggedSheet("Atípicos", records, domain.ObsOutlier),
		RejectionsView(rejections),
	}
}

func recordsSheet(name string, records []*domain.Expense) exporter.Sheet {
	sheet := exporter.Sheet{Name: name, Headers: domain.OutputColumns}
	for _, r := range records {
		sheet.Rows = append(sheet.Rows, r.CSVRow())
	}
	return sheet
}

func taggedSheet(name string, records []*domain.Expense, tag string) exporter.Sheet {
	sheet := exporter.Sheet{Name: name, Headers: domain.OutputColumns}
	for _, r := range records {
		if r.HasObservation(tag) {
			sheet.Rows = append(sheet.Rows, r.CSVRow())
		}
	}
	return sheet
}

// MonthlyTotalsView sums amounts per rubric and month, ordered by rubric then
// chronologically. When an interanual series is given, each row also carries
// that month's year-over-year inflation figure, blank when unlisted.
func MonthlyTotalsView(records []*domain.Expense, interanual *refseries.MonthlySeries) exporter.Sheet {
	type bucket struct {
		rubric string
		ym     normalize.YearMonth
		month  string // yyyy-mm for sorting, rendered as mm/yyyy
		count  int
		total  decimal.Decimal
	}

	buckets := make(map[string]*bucket)
	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		ym := refseries.MonthOf(r.Date)
		key := r.Rubric + "|" + ym.EndOfMonth().Format("2006-01")
		b, ok := buckets[key]
		if !ok {
			b = &bucket{rubric: r.Rubric, ym: ym, month: ym.EndOfMonth().Format("2006-01")}
			buckets[key] = b
		}
		b.count++
		b.total = b.total.Add(r.AmountARS)
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].rubric != ordered[j].rubric {
			return ordered[i].rubric < ordered[j].rubric
		}
		return ordered[i].month < ordered[j].month
	})

	sheet := exporter.Sheet{
		Name:    "Totales mensuales",
		Headers: []string{"rubro", "mes", "cantidad", "total ARS"},
	}
	if interanual != nil {
		sheet.Headers = append(sheet.Headers, "inflación interanual %")
	}
	for _, b := range ordered {
		// yyyy-mm back to mm/yyyy for display.
		month := b.month[5:] + "/" + b.month[:4]
		row := []string{b.rubric, month, strconv.Itoa(b.count), b.total.StringFixed(2)}
		if interanual != nil {
			figure := ""
			if v, ok := interanual.MonthValue(b.ym); ok {
				figure = v.StringFixed(1)
			}
			row = append(row, figure)
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}

// RejectionsView lists the rows that never reached the consolidated table.
func RejectionsView(rejections []domain.Rejection) exporter.Sheet {
	sheet := exporter.Sheet{
		Name:    "Rechazos",
		Headers: []string{"origen", "fila", "motivo"},
	}
	for _, rej := range rejections {
		sheet.Rows = append(sheet.Rows, []string{
			rej.SourceFile, strconv.Itoa(rej.RowIndex), rej.Reason,
		})
	}
	return sheet
}
