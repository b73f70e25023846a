// Package consolidate drives a full consolidation run: discover workbooks,
// parse and reconstruct each one, merge in deterministic order, join the
// reference series, run detection and optionally enrich vendor data.
package consolidate

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"expensascli/internal/dataprocessing"
	"expensascli/internal/enrich"
	"expensascli/internal/errors"
	"expensascli/internal/files"
	"expensascli/internal/normalize"
	"expensascli/internal/refseries"
	"expensascli/pkg/contracts/domain"
)

// Options configures a consolidation run.
type Options struct {
	// Inputs are files, directories or glob patterns naming source workbooks.
	Inputs []string
	// FromYear and ToYear bound the kept records by calendar year,
	// inclusive. Zero means unbounded on that side.
	FromYear int
	ToYear   int
	// Workers >1 parses workbooks concurrently. Output order is unaffected.
	Workers int
	// FX, when set, drives the USD join.
	FX *refseries.Series
	// Detector holds the anomaly thresholds.
	Detector dataprocessing.DetectorConfig
	// Enricher, when set, resolves fiscal data for records carrying a CUIT.
	Enricher enrich.Lookup
}

// Result is the outcome of one run.
type Result struct {
	RunID      string
	Files      []string
	Records    []*domain.Expense
	Rejections []domain.Rejection
}

// Orchestrator runs the consolidation pipeline.
type Orchestrator struct {
	opts   Options
	logger *slog.Logger
}

// New creates an orchestrator.
func New(opts Options, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Orchestrator{opts: opts, logger: logger}
}

type fileResult struct {
	records    []*domain.Expense
	rejections []domain.Rejection
}

// Run executes the pipeline and returns the merged, annotated table.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	logger := o.logger.With(slog.String("run_id", runID))

	paths, err := files.CollectWorkbooks(o.opts.Inputs)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.NewNotFoundError("no source workbooks matched the inputs", nil)
	}
	logger.Info("starting consolidation",
		slog.Int("files", len(paths)),
		slog.Int("workers", o.opts.Workers))

	perFile := make([]fileResult, len(paths))
	if o.opts.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.opts.Workers)
		for i, path := range paths {
			i, path := i, path
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				perFile[i] = o.processFile(logger, path)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			perFile[i] = o.processFile(logger, path)
		}
	}

	// Merge preserves file order, and within a file, row order.
	result := &Result{RunID: runID, Files: paths}
	for _, fr := range perFile {
		result.Records = append(result.Records, o.filterYears(fr.records)...)
		result.Rejections = append(result.Rejections, fr.rejections...)
	}

	if o.opts.FX != nil {
		refseries.JoinFX(result.Records, o.opts.FX)
	}

	detector := dataprocessing.NewDetector(o.opts.Detector, logger)
	detector.Run(result.Records)

	if o.opts.Enricher != nil {
		o.enrichRecords(ctx, logger, result.Records)
	}

	logger.Info("consolidation finished",
		slog.Int("records", len(result.Records)),
		slog.Int("rejections", len(result.Rejections)))
	return result, nil
}

// processFile parses and reconstructs one workbook. An unreadable workbook
// becomes a rejection so the run keeps going over the remaining files.
func (o *Orchestrator) processFile(logger *slog.Logger, path string) fileResult {
	base := filepath.Base(path)
	rows, err := dataprocessing.ParseFile(path)
	if err != nil {
		logger.Warn("skipping unreadable workbook",
			slog.String("file", base),
			slog.String("error", err.Error()))
		return fileResult{rejections: []domain.Rejection{{
			SourceFile: base,
			Reason:     "archivo ilegible: " + err.Error(),
		}}}
	}

	fallback := normalize.MonthYearFromFilename(base)
	records, rejections := dataprocessing.Reconstruct(rows, base, fallback)
	return fileResult{records: records, rejections: rejections}
}

func (o *Orchestrator) filterYears(records []*domain.Expense) []*domain.Expense {
	if o.opts.FromYear == 0 && o.opts.ToYear == 0 {
		return records
	}
	kept := records[:0]
	for _, r := range records {
		year := r.Date.Year()
		if o.opts.FromYear != 0 && year < o.opts.FromYear {
			continue
		}
		if o.opts.ToYear != 0 && year > o.opts.ToYear {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// enrichRecords fills the fiscal-data cell for records carrying a CUIT. A
// failed lookup tags the record and moves on.
func (o *Orchestrator) enrichRecords(ctx context.Context, logger *slog.Logger, records []*domain.Expense) {
	for _, r := range records {
		if r.VendorTaxID == "" || r.FiscalData != "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			logger.Warn("enrichment aborted", slog.String("error", err.Error()))
			return
		}
		info, err := o.opts.Enricher.Fiscal(ctx, r.VendorTaxID)
		if err != nil {
			logger.Debug("fiscal lookup failed",
				slog.String("cuit", r.VendorTaxID),
				slog.String("error", err.Error()))
			r.AddObservation(domain.ObsEnrichFailed)
			continue
		}
		r.FiscalData = info.String()
	}
}
