package consolidate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensascli/internal/refseries"
	"expensascli/pkg/contracts/domain"
)

func expense(day int, month time.Month, year int, rubric, amount string) *domain.Expense {
	return &domain.Expense{
		Date:      time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		Rubric:    rubric,
		AmountARS: decimal.RequireFromString(amount),
	}
}

func TestMonthlyTotalsView(t *testing.T) {
	records := []*domain.Expense{
		expense(5, time.March, 2023, "Seguridad", "1000"),
		expense(20, time.March, 2023, "Seguridad", "500"),
		expense(5, time.April, 2023, "Seguridad", "700"),
		expense(5, time.March, 2023, "Energía", "300"),
	}

	sheet := MonthlyTotalsView(records, nil)
	assert.Equal(t, "Totales mensuales", sheet.Name)
	require.Len(t, sheet.Rows, 3)

	// Rubrics alphabetically, months chronologically within a rubric.
	assert.Equal(t, []string{"Energía", "03/2023", "1", "300.00"}, sheet.Rows[0])
	assert.Equal(t, []string{"Seguridad", "03/2023", "2", "1500.00"}, sheet.Rows[1])
	assert.Equal(t, []string{"Seguridad", "04/2023", "1", "700.00"}, sheet.Rows[2])
}

func TestMonthlyTotalsViewWithInteranual(t *testing.T) {
	records := []*domain.Expense{
		expense(5, time.March, 2023, "Seguridad", "1000"),
		expense(5, time.April, 2023, "Seguridad", "700"),
	}

	path := filepath.Join(t.TempDir(), "interanual.csv")
	require.NoError(t, os.WriteFile(path, []byte("Fecha,Valor\n01/03/2023,\"104,3\"\n"), 0644))
	series, err := refseries.LoadMonthlySeries(path)
	require.NoError(t, err)

	sheet := MonthlyTotalsView(records, series)
	require.Len(t, sheet.Headers, 5)
	assert.Equal(t, "inflación interanual %", sheet.Headers[4])
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "104.3", sheet.Rows[0][4])
	// April has no listed figure.
	assert.Equal(t, "", sheet.Rows[1][4])
}

func TestMonthlyTotalsViewSkipsZeroDates(t *testing.T) {
	records := []*domain.Expense{
		{Rubric: "Seguridad", AmountARS: decimal.RequireFromString("100")},
	}
	sheet := MonthlyTotalsView(records, nil)
	assert.Empty(t, sheet.Rows)
}

func TestViewsAssembly(t *testing.T) {
	dup := expense(5, time.March, 2023, "Seguridad", "1000")
	dup.AddObservation(domain.ObsDuplicate)
	out := expense(6, time.March, 2023, "Energía", "999999")
	out.AddObservation(domain.ObsOutlier)
	plain := expense(7, time.March, 2023, "Jardinería", "200")

	rejections := []domain.Rejection{
		{SourceFile: "2023-03.xlsx", RowIndex: 12, Reason: "fecha inválida: 99/99/9999"},
	}

	sheets := Views([]*domain.Expense{dup, out, plain}, rejections, nil)
	require.Len(t, sheets, 5)

	assert.Equal(t, "Gastos", sheets[0].Name)
	assert.Len(t, sheets[0].Rows, 3)

	assert.Equal(t, "Duplicados", sheets[2].Name)
	require.Len(t, sheets[2].Rows, 1)

	assert.Equal(t, "Atípicos", sheets[3].Name)
	require.Len(t, sheets[3].Rows, 1)

	assert.Equal(t, "Rechazos", sheets[4].Name)
	require.Len(t, sheets[4].Rows, 1)
	assert.Equal(t, []string{"2023-03.xlsx", "12", "fecha inválida: 99/99/9999"}, sheets[4].Rows[0])
}
