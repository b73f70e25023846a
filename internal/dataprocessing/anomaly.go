package dataprocessing

import (
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"expensascli/internal/normalize"
	"expensascli/internal/refseries"
	"expensascli/pkg/contracts/domain"
)

// DetectorConfig holds the anomaly thresholds. A single global configuration
// applies to every rubric.
type DetectorConfig struct {
	// OutlierMultiplier is the number of MAD units from the median beyond
	// which an amount is atypical.
	OutlierMultiplier float64
	// OutlierMinSamples exempts rubrics with fewer amounts from outlier
	// tagging; small samples are insufficient data, not anomalies.
	OutlierMinSamples int
	// InflationMultiple is how many times the month-over-month inflation a
	// rubric's growth must exceed to be flagged.
	InflationMultiple float64
}

// DefaultDetectorConfig returns the thresholds used when none are configured.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		OutlierMultiplier: 3.5,
		OutlierMinSamples: 8,
		InflationMultiple: 1.5,
	}
}

// Detector appends advisory observation tags to the consolidated table.
// Every detection is an annotation; the table keeps all valid records.
type Detector struct {
	cfg    DetectorConfig
	logger *slog.Logger
}

// NewDetector creates a detector. Zero-value config fields fall back to the
// defaults.
func NewDetector(cfg DetectorConfig, logger *slog.Logger) *Detector {
	def := DefaultDetectorConfig()
	if cfg.OutlierMultiplier <= 0 {
		cfg.OutlierMultiplier = def.OutlierMultiplier
	}
	if cfg.OutlierMinSamples <= 0 {
		cfg.OutlierMinSamples = def.OutlierMinSamples
	}
	if cfg.InflationMultiple <= 0 {
		cfg.InflationMultiple = def.InflationMultiple
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{cfg: cfg, logger: logger}
}

// Run applies the full detection pass over the merged table: duplicate
// signatures, missing-field flags, zero/negative amounts and per-rubric
// outliers.
func (d *Detector) Run(records []*domain.Expense) {
	d.tagDuplicates(records)
	d.tagMissingFields(records)
	d.tagNonPositive(records)
	d.tagOutliers(records)
}

// duplicateKey builds the duplicate signature: date, tax identifier (falling
// back to the normalized vendor name), amount and rubric.
func duplicateKey(r *domain.Expense) string {
	id := r.VendorTaxID
	if id == "" {
		id = normalize.Text(r.VendorName)
	}
	return r.Date.Format("2006-01-02") + "|" + id + "|" + r.AmountARS.StringFixed(2) + "|" + r.Rubric
}

func (d *Detector) tagDuplicates(records []*domain.Expense) {
	counts := make(map[string]int, len(records))
	for _, r := range records {
		counts[duplicateKey(r)]++
	}
	tagged := 0
	for _, r := range records {
		if counts[duplicateKey(r)] > 1 {
			r.AddObservation(domain.ObsDuplicate)
			tagged++
		}
	}
	if tagged > 0 {
		d.logger.Info("probable duplicates tagged", slog.Int("records", tagged))
	}
}

func (d *Detector) tagMissingFields(records []*domain.Expense) {
	for _, r := range records {
		if r.VendorTaxID == "" {
			r.AddObservation(domain.ObsMissingTaxID)
		}
		if r.VendorName == "" {
			r.AddObservation(domain.ObsMissingVendor)
		}
		if r.Rubric == domain.RubricUnclassified {
			r.AddObservation(domain.ObsUnclassified)
		}
	}
}

func (d *Detector) tagNonPositive(records []*domain.Expense) {
	for _, r := range records {
		if r.AmountARS.Sign() <= 0 {
			r.AddObservation(domain.ObsNonPositive)
		}
	}
}

// tagOutliers flags amounts beyond OutlierMultiplier MAD units from the
// rubric median. Rubrics under the minimum sample count are exempt, as are
// rubrics whose spread is zero.
func (d *Detector) tagOutliers(records []*domain.Expense) {
	byRubric := make(map[string][]*domain.Expense)
	for _, r := range records {
		byRubric[r.Rubric] = append(byRubric[r.Rubric], r)
	}
	for rubric, group := range byRubric {
		if len(group) < d.cfg.OutlierMinSamples {
			continue
		}
		values := make([]float64, len(group))
		for i, r := range group {
			values[i] = r.AmountARS.InexactFloat64()
		}
		med := median(values)
		deviations := make([]float64, len(values))
		for i, v := range values {
			deviations[i] = abs(v - med)
		}
		mad := median(deviations)
		if mad == 0 {
			continue
		}
		tagged := 0
		for i, r := range group {
			if abs(values[i]-med) > d.cfg.OutlierMultiplier*mad {
				r.AddObservation(domain.ObsOutlier)
				tagged++
			}
		}
		if tagged > 0 {
			d.logger.Info("atypical amounts tagged",
				slog.String("rubric", rubric),
				slog.Int("records", tagged))
		}
	}
}

// CompareInflation computes month-over-month growth of each rubric's total
// and tags the contributing records when growth exceeds the configured
// multiple of the intermensual inflation figure for that month. Months that
// cannot be compared because the inflation figure is missing get their own
// tag instead; missing reference data never blocks consolidation.
func (d *Detector) CompareInflation(records []*domain.Expense, inflation *refseries.MonthlySeries) {
	if inflation == nil || inflation.Len() == 0 {
		return
	}

	type bucket struct {
		total   decimal.Decimal
		members []*domain.Expense
	}
	byRubricMonth := make(map[string]map[normalize.YearMonth]*bucket)
	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		ym := refseries.MonthOf(r.Date)
		if byRubricMonth[r.Rubric] == nil {
			byRubricMonth[r.Rubric] = make(map[normalize.YearMonth]*bucket)
		}
		b := byRubricMonth[r.Rubric][ym]
		if b == nil {
			b = &bucket{}
			byRubricMonth[r.Rubric][ym] = b
		}
		b.total = b.total.Add(r.AmountARS)
		b.members = append(b.members, r)
	}

	for rubric, months := range byRubricMonth {
		keys := make([]normalize.YearMonth, 0, len(months))
		for ym := range months {
			keys = append(keys, ym)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].Year != keys[j].Year {
				return keys[i].Year < keys[j].Year
			}
			return keys[i].Month < keys[j].Month
		})

		for i := 1; i < len(keys); i++ {
			cur, prev := keys[i], keys[i-1]
			if !consecutiveMonths(prev, cur) {
				continue
			}
			prevTotal := months[prev].total
			if prevTotal.Sign() <= 0 {
				continue
			}
			growth := months[cur].total.Sub(prevTotal).Div(prevTotal)

			figure, ok := inflation.MonthValue(cur)
			if !ok {
				for _, r := range months[cur].members {
					r.AddObservation(domain.ObsMissingCPI)
				}
				continue
			}
			// Figures are percentages (7,7 means 7.7%).
			threshold := figure.Div(decimal.NewFromInt(100)).
				Mul(decimal.NewFromFloat(d.cfg.InflationMultiple))
			if growth.GreaterThan(threshold) {
				for _, r := range months[cur].members {
					r.AddObservation(domain.ObsAboveInflation)
				}
				d.logger.Info("rubric growth above inflation",
					slog.String("rubric", rubric),
					slog.Int("year", cur.Year),
					slog.Int("month", int(cur.Month)),
					slog.String("growth", growth.StringFixed(4)))
			}
		}
	}
}

// TagWeekends flags records dated on a Saturday or Sunday. Used by the audit
// pass.
func (d *Detector) TagWeekends(records []*domain.Expense) {
	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		if wd := r.Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			r.AddObservation(domain.ObsWeekend)
		}
	}
}

func consecutiveMonths(prev, cur normalize.YearMonth) bool {
	if prev.Year == cur.Year {
		return cur.Month == prev.Month+1
	}
	return cur.Year == prev.Year+1 && prev.Month == time.December && cur.Month == time.January
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
