package refseries

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensascli/internal/normalize"
	"expensascli/pkg/contracts/domain"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSeries(t *testing.T) {
	path := writeCSV(t, "fx.csv", "Fecha,Valor ARS\n03/03/2023,\"201,50\"\n01/03/2023,\"200,00\"\nmala fila,abc\n")

	s, err := LoadSeries(path)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	// Sorted ascending despite input order.
	rate, ok := s.RateFor(time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.RequireFromString("200")))
}

func TestRateForPriorInMonth(t *testing.T) {
	path := writeCSV(t, "fx.csv", "Fecha,Valor ARS\n01/03/2023,\"200,00\"\n03/03/2023,\"201,50\"\n")
	s, err := LoadSeries(path)
	require.NoError(t, err)

	// 05/03 is absent: nearest prior in-month date is 03/03.
	rate, ok := s.RateFor(time.Date(2023, time.March, 5, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.RequireFromString("201.5")))
}

func TestRateForNoInMonthData(t *testing.T) {
	path := writeCSV(t, "fx.csv", "Fecha,Valor ARS\n31/03/2023,\"201,50\"\n")
	s, err := LoadSeries(path)
	require.NoError(t, err)

	// April has no listed dates; the March rate must not leak forward.
	_, ok := s.RateFor(time.Date(2023, time.April, 10, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)

	// Nor does a date before the first point resolve anything.
	_, ok = s.RateFor(time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestLoadMonthlySeries(t *testing.T) {
	path := writeCSV(t, "ipc.csv", "Fecha,Valor\n01/02/2023,\"6,6\"\n01/03/2023,\"7,7\"\n")
	ms, err := LoadMonthlySeries(path)
	require.NoError(t, err)
	assert.Equal(t, 2, ms.Len())

	v, ok := ms.MonthValue(normalize.YearMonth{Year: 2023, Month: time.March})
	require.True(t, ok)
	assert.True(t, v.Equal(decimal.RequireFromString("7.7")))

	_, ok = ms.MonthValue(normalize.YearMonth{Year: 2023, Month: time.April})
	assert.False(t, ok)
}

func TestJoinFX(t *testing.T) {
	path := writeCSV(t, "fx.csv", "Fecha,Valor ARS\n01/03/2023,\"200,00\"\n")
	s, err := LoadSeries(path)
	require.NoError(t, err)

	inMonth := &domain.Expense{
		Date:      time.Date(2023, time.March, 10, 0, 0, 0, 0, time.UTC),
		AmountARS: decimal.RequireFromString("1000"),
	}
	noData := &domain.Expense{
		Date:      time.Date(2023, time.April, 10, 0, 0, 0, 0, time.UTC),
		AmountARS: decimal.RequireFromString("1000"),
	}

	JoinFX([]*domain.Expense{inMonth, noData}, s)

	require.True(t, inMonth.FXRate.Valid)
	assert.Equal(t, "200.00", inMonth.FXRate.Decimal.StringFixed(2))
	require.True(t, inMonth.AmountUSD.Valid)
	assert.Equal(t, "5.00", inMonth.AmountUSD.Decimal.StringFixed(2))
	assert.False(t, inMonth.HasObservation(domain.ObsMissingFX))

	assert.False(t, noData.FXRate.Valid)
	assert.False(t, noData.AmountUSD.Valid)
	assert.True(t, noData.HasObservation(domain.ObsMissingFX))
}
