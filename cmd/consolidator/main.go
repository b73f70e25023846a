// Command consolidator merges monthly condominium expense workbooks into one
// consolidated CSV table, joining the exchange-rate series and annotating
// anomalies along the way.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/time/rate"

	"expensascli/internal/config"
	"expensascli/internal/consolidate"
	"expensascli/internal/dataprocessing"
	"expensascli/internal/enrich"
	"expensascli/internal/exporter"
	"expensascli/internal/infrastructure"
	"expensascli/internal/refseries"
	"expensascli/pkg/contracts/domain"
)

func main() {
	inputs := flag.String("inputs", "", "comma-separated files, directories or globs with monthly .xlsx workbooks")
	fxPath := flag.String("fx", "", "exchange-rate series CSV (date, ARS per USD)")
	output := flag.String("output", "", "consolidated CSV path; empty writes to stdout")
	appendMode := flag.Bool("append", false, "append to an existing consolidated CSV instead of overwriting")
	fromYear := flag.Int("from-year", 0, "keep only records from this calendar year on (inclusive)")
	toYear := flag.Int("to-year", 0, "keep only records up to this calendar year (inclusive)")
	workers := flag.Int("workers", 1, "number of workbooks parsed concurrently")
	enrichFlag := flag.Bool("enrich", false, "resolve vendor fiscal data from the CUIT registry")
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	if *inputs == "" {
		logger.Error("no inputs given, use -inputs")
		os.Exit(1)
	}
	if *fxPath == "" {
		*fxPath = cfg.Reference.FXSeries
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := consolidate.Options{
		Inputs:   splitInputs(*inputs),
		FromYear: *fromYear,
		ToYear:   *toYear,
		Workers:  *workers,
		Detector: dataprocessing.DetectorConfig{
			OutlierMultiplier: cfg.Anomaly.OutlierMultiplier,
			OutlierMinSamples: cfg.Anomaly.OutlierMinSamples,
			InflationMultiple: cfg.Anomaly.InflationMultiple,
		},
	}

	if *fxPath != "" {
		fx, err := refseries.LoadSeries(*fxPath)
		if err != nil {
			logger.Error("failed to load exchange-rate series",
				slog.String("path", *fxPath),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		opts.FX = fx
	}

	if *enrichFlag || cfg.Enrichment.Enabled {
		opts.Enricher = buildEnricher(cfg, logger)
	}

	if *appendMode && *output != "" {
		if err := consolidate.CheckAppendSchema(*output); err != nil {
			logger.Error("append target schema mismatch, nothing written",
				slog.String("path", *output),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	result, err := consolidate.New(opts, logger).Run(ctx)
	if err != nil {
		logger.Error("consolidation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rows := make([][]string, 0, len(result.Records))
	for _, r := range result.Records {
		rows = append(rows, r.CSVRow())
	}

	if *output == "" {
		if err := exporter.WriteCSVTo(os.Stdout, domain.OutputColumns, rows); err != nil {
			logger.Error("failed to write CSV to stdout", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		err := exporter.WriteCSV(*output, exporter.WriteOptions{
			Headers:   domain.OutputColumns,
			Records:   rows,
			Append:    *appendMode,
			BOMPrefix: true,
		})
		if err != nil {
			logger.Error("failed to write consolidated CSV",
				slog.String("path", *output),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	for _, rej := range result.Rejections {
		logger.Warn("rejected row",
			slog.String("file", rej.SourceFile),
			slog.Int("row", rej.RowIndex),
			slog.String("reason", rej.Reason))
	}
	logger.Info("done",
		slog.String("run_id", result.RunID),
		slog.Int("files", len(result.Files)),
		slog.Int("records", len(result.Records)),
		slog.Int("rejections", len(result.Rejections)))
}

func splitInputs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// buildEnricher stacks the registry client with the per-run cache and the
// rate limiter, innermost first.
func buildEnricher(cfg *config.Config, logger *slog.Logger) enrich.Lookup {
	regOpts := []enrich.RegistryOption{
		enrich.WithHTTPClient(&http.Client{Timeout: cfg.Enrichment.Timeout}),
	}
	if cfg.Enrichment.BaseURL != "" {
		regOpts = append(regOpts, enrich.WithBaseURL(cfg.Enrichment.BaseURL))
	}
	var lookup enrich.Lookup = enrich.NewRegistryClient(logger, regOpts...)
	lookup = enrich.RateLimited(lookup, rate.NewLimiter(rate.Limit(cfg.Enrichment.RateLimit), cfg.Enrichment.Burst))
	lookup = enrich.Cached(lookup, cfg.Enrichment.CacheTTL)
	return lookup
}
