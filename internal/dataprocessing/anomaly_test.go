package dataprocessing

import (
	"fmt"
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

func expense(date string, vendor, taxID, amount, rubric string) *domain.Expense {
	d, err := time.Parse("02/01/2006", date)
	if err != nil {
		panic(err)
	}
	return &domain.Expense{
		Date:        d,
		VendorName:  vendor,
		VendorTaxID: taxID,
		AmountARS:   decimal.RequireFromString(amount),
		Rubric:      rubric,
	}
}

func TestDuplicatesAllMembersTagged(t *testing.T) {
	a := expense("01/03/2023", "Vigilancia SRL", "30-71234567-8", "1000", "Seguridad")
	b := expense("01/03/2023", "Vigilancia SRL", "30-71234567-8", "1000", "Seguridad")
	c := expense("02/03/2023", "Vigilancia SRL", "30-71234567-8", "1000", "Seguridad")

	// Insertion order must not matter.
	NewDetector(DetectorConfig{}, nil).Run([]*domain.Expense{b, c, a})

	assert.True(t, a.HasObservation(domain.ObsDuplicate))
	assert.True(t, b.HasObservation(domain.ObsDuplicate))
	assert.False(t, c.HasObservation(domain.ObsDuplicate))
}

func TestDuplicatesFallBackToVendorName(t *testing.T) {
	a := expense("01/03/2023", "Vigilancia SRL", "", "1000", "Seguridad")
	b := expense("01/03/2023", "VIGILANCIA  SRL", "", "1000", "Seguridad")

	NewDetector(DetectorConfig{}, nil).Run([]*domain.Expense{a, b})

	assert.True(t, a.HasObservation(domain.ObsDuplicate))
	assert.True(t, b.HasObservation(domain.ObsDuplicate))
}

func TestMissingFieldFlags(t *testing.T) {
	r := expense("01/03/2023", "", "", "1000", domain.RubricUnclassified)

	NewDetector(DetectorConfig{}, nil).Run([]*domain.Expense{r})

	assert.True(t, r.HasObservation(domain.ObsMissingTaxID))
	assert.True(t, r.HasObservation(domain.ObsMissingVendor))
	assert.True(t, r.HasObservation(domain.ObsUnclassified))
}

func TestNonPositiveAmounts(t *testing.T) {
	zero := expense("01/03/2023", "A", "", "0", "Seguridad")
	negative := expense("01/03/2023", "B", "", "-50", "Seguridad")
	positive := expense("01/03/2023", "C", "", "50", "Seguridad")

	NewDetector(DetectorConfig{}, nil).Run([]*domain.Expense{zero, negative, positive})

	assert.True(t, zero.HasObservation(domain.ObsNonPositive))
	assert.True(t, negative.HasObservation(domain.ObsNonPositive))
	assert.False(t, positive.HasObservation(domain.ObsNonPositive))
}

func TestOutliersPerRubric(t *testing.T) {
	amounts := []string{"900", "950", "1000", "1000", "1050", "1100", "900", "1100", "1000"}
	var records []*domain.Expense
	for i, amt := range amounts {
		records = append(records, expense("01/03/2023", fmt.Sprintf("P%d", i), "", amt, "Seguridad"))
	}
	spike := expense("15/03/2023", "PX", "", "500000", "Seguridad")
	records = append(records, spike)

	NewDetector(DetectorConfig{}, nil).Run(records)

	assert.True(t, spike.HasObservation(domain.ObsOutlier))
	for _, r := range records[:len(amounts)] {
		assert.False(t, r.HasObservation(domain.ObsOutlier), "vendor %s", r.VendorName)
	}
}

func TestOutliersMinSampleExemption(t *testing.T) {
	records := []*domain.Expense{
		expense("01/03/2023", "A", "", "100", "Obras"),
		expense("02/03/2023", "B", "", "120", "Obras"),
		expense("03/03/2023", "C", "", "900000", "Obras"),
	}

	NewDetector(DetectorConfig{}, nil).Run(records)

	for _, r := range records {
		assert.False(t, r.HasObservation(domain.ObsOutlier))
	}
}

func monthlySeriesFromCSV(t *testing.T, content string) *refseries.MonthlySeries {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ipc.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	ms, err := refseries.LoadMonthlySeries(path)
	require.NoError(t, err)
	return ms
}

func TestCompareInflationFlagsGrowth(t *testing.T) {
	// 5% monthly inflation; rubric doubles month over month.
	infl := monthlySeriesFromCSV(t, "Fecha,Valor\n01/02/2023,\"5,0\"\n01/03/2023,\"5,0\"\n")

	feb := expense("10/02/2023", "A", "", "1000", "Seguridad")
	mar := expense("10/03/2023", "B", "", "2000", "Seguridad")

	NewDetector(DetectorConfig{}, nil).CompareInflation([]*domain.Expense{feb, mar}, infl)

	assert.False(t, feb.HasObservation(domain.ObsAboveInflation))
	assert.True(t, mar.HasObservation(domain.ObsAboveInflation))
}

func TestCompareInflationWithinThreshold(t *testing.T) {
	// 10% inflation, 1.5x multiple: 12% growth stays untagged.
	infl := monthlySeriesFromCSV(t, "Fecha,Valor\n01/03/2023,\"10,0\"\n")

	feb := expense("10/02/2023", "A", "", "1000", "Seguridad")
	mar := expense("10/03/2023", "B", "", "1120", "Seguridad")

	NewDetector(DetectorConfig{}, nil).CompareInflation([]*domain.Expense{feb, mar}, infl)

	assert.False(t, mar.HasObservation(domain.ObsAboveInflation))
}

func TestCompareInflationMissingFigure(t *testing.T) {
	infl := monthlySeriesFromCSV(t, "Fecha,Valor\n01/02/2023,\"5,0\"\n")

	feb := expense("10/02/2023", "A", "", "1000", "Seguridad")
	mar := expense("10/03/2023", "B", "", "3000", "Seguridad")

	NewDetector(DetectorConfig{}, nil).CompareInflation([]*domain.Expense{feb, mar}, infl)

	assert.True(t, mar.HasObservation(domain.ObsMissingCPI))
	assert.False(t, mar.HasObservation(domain.ObsAboveInflation))
}

func TestTagWeekends(t *testing.T) {
	saturday := expense("04/03/2023", "A", "", "100", "Seguridad")
	monday := expense("06/03/2023", "B", "", "100", "Seguridad")

	NewDetector(DetectorConfig{}, nil).TagWeekends([]*domain.Expense{saturday, monday})

	assert.True(t, saturday.HasObservation(domain.ObsWeekend))
	assert.False(t, monday.HasObservation(domain.ObsWeekend))
}
