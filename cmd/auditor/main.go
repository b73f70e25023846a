// Command auditor re-runs anomaly detection over a consolidated CSV and
// writes the analysis views as a multi-sheet workbook plus a short markdown
// report. Inflation comparison and weekend flagging happen here, where the
// whole table is available at once.
package main

import (
	"flag"
	"log/slog"
	"os"

	"expensascli/internal/config"
	"expensascli/internal/consolidate"
	"expensascli/internal/dataprocessing"
	"expensascli/internal/exporter"
	"expensascli/internal/infrastructure"
	"expensascli/internal/refseries"
	"expensascli/pkg/contracts/domain"
)

func main() {
	consolidated := flag.String("consolidated", "", "consolidated CSV produced by the consolidator")
	inflationPath := flag.String("intermensual", "", "month-over-month inflation series CSV (month, percentage)")
	interanualPath := flag.String("interanual", "", "year-over-year inflation series CSV (month, percentage)")
	workbook := flag.String("output-xlsx", "auditoria.xlsx", "audit workbook path")
	report := flag.String("report", "", "optional markdown report path")
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	if *consolidated == "" {
		logger.Error("no consolidated file given, use -consolidated")
		os.Exit(1)
	}
	if *inflationPath == "" {
		*inflationPath = cfg.Reference.MonthlyInflation
	}
	if *interanualPath == "" {
		*interanualPath = cfg.Reference.AnnualInflation
	}

	records, err := consolidate.LoadConsolidated(*consolidated)
	if err != nil {
		logger.Error("failed to load consolidated table",
			slog.String("path", *consolidated),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("loaded consolidated table",
		slog.String("path", *consolidated),
		slog.Int("records", len(records)))

	detector := dataprocessing.NewDetector(dataprocessing.DetectorConfig{
		OutlierMultiplier: cfg.Anomaly.OutlierMultiplier,
		OutlierMinSamples: cfg.Anomaly.OutlierMinSamples,
		InflationMultiple: cfg.Anomaly.InflationMultiple,
	}, logger)
	detector.Run(records)
	detector.TagWeekends(records)

	if *inflationPath != "" {
		inflation, err := refseries.LoadMonthlySeries(*inflationPath)
		if err != nil {
			logger.Error("failed to load inflation series",
				slog.String("path", *inflationPath),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		detector.CompareInflation(records, inflation)
	}

	var interanual *refseries.MonthlySeries
	if *interanualPath != "" {
		interanual, err = refseries.LoadMonthlySeries(*interanualPath)
		if err != nil {
			logger.Error("failed to load year-over-year inflation series",
				slog.String("path", *interanualPath),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	sheets := consolidate.Views(records, nil, interanual)
	if err := exporter.WriteWorkbook(*workbook, sheets); err != nil {
		logger.Error("failed to write audit workbook",
			slog.String("path", *workbook),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *report != "" {
		counts := exporter.ReportCounts{Records: len(records)}
		for _, r := range records {
			if r.HasObservation(domain.ObsDuplicate) {
				counts.Duplicates++
			}
			if r.HasObservation(domain.ObsNonPositive) {
				counts.NonPositive++
			}
			if r.HasObservation(domain.ObsOutlier) {
				counts.Outliers++
			}
			if r.HasObservation(domain.ObsWeekend) {
				counts.Weekends++
			}
			if r.HasObservation(domain.ObsAboveInflation) {
				counts.AboveInflation++
			}
		}
		if err := exporter.WriteReport(*report, counts); err != nil {
			logger.Error("failed to write audit report",
				slog.String("path", *report),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("audit finished",
		slog.String("workbook", *workbook),
		slog.Int("records", len(records)))
}
