// internal/service/accuracy_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/templestreet/forecast-app/internal/accuracy"
	"github.com/templestreet/forecast-app/internal/cache"
	"github.com/templestreet/forecast-app/internal/config"
	"github.com/templestreet/forecast-app/internal/domain"
	"github.com/templestreet/forecast-app/internal/ingest"
	"github.com/templestreet/forecast-app/internal/pipeline"
	"github.com/templestreet/forecast-app/internal/report"
	"github.com/templestreet/forecast-app/internal/repository"
	"github.com/templestreet/forecast-app/internal/storage"
)

// AccuracyOptions are the per-request overrides of an accuracy run.
type AccuracyOptions struct {
	TolerancePct float64
	HasTolerance bool
}

// AccuracyRunOutput bundles everything one accuracy run produced.
type AccuracyRunOutput struct {
	RunID     int64                   `json:"run_id"`
	Summary   domain.AccuracySummary  `json:"summary"`
	Records   []domain.AccuracyRecord `json:"records"`
	Artifacts []string                `json:"artifacts"`
}

// AccuracyService compares forecasts against actual consumption and fans
// the result out to exports, storage, database and cache.
type AccuracyService struct {
	cfg          config.PlanningConfig
	runs         *pipeline.Repository
	reports      repository.ReportRepository
	summaryCache cache.ReportSummaryCache
	store        storage.ObjectStorage
	plan         *PlanService
}

// NewAccuracyService creates an accuracy service sharing the plan service's
// pipeline configuration.
func NewAccuracyService(
	cfg config.PlanningConfig,
	runs *pipeline.Repository,
	reports repository.ReportRepository,
	summaryCache cache.ReportSummaryCache,
	store storage.ObjectStorage,
	plan *PlanService,
) *AccuracyService {
	if summaryCache == nil {
		summaryCache = cache.NewNoopReportCache()
	}
	return &AccuracyService{
		cfg:          cfg,
		runs:         runs,
		reports:      reports,
		summaryCache: summaryCache,
		store:        store,
		plan:         plan,
	}
}

func (s *AccuracyService) tolerance(opts AccuracyOptions) float64 {
	if opts.HasTolerance {
		return opts.TolerancePct
	}
	if s.cfg.TolerancePct > 0 {
		return s.cfg.TolerancePct
	}
	return accuracy.DefaultTolerancePct
}

// RunAccuracy executes one forecast-vs-actual run over the two source files.
func (s *AccuracyService) RunAccuracy(ctx context.Context, forecastPath, actualPath string, opts AccuracyOptions) (*AccuracyRunOutput, error) {
	run := &pipeline.Run{
		Kind:        pipeline.RunAccuracy,
		SourceFiles: 2,
		StartedAt:   time.Now(),
		Status:      pipeline.StatusProcessing,
	}
	if s.runs != nil {
		if err := s.runs.CreateRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
	}

	out, err := s.runAccuracy(ctx, run, forecastPath, actualPath, opts)
	if s.runs != nil {
		status := pipeline.StatusCompleted
		if err != nil {
			status = pipeline.StatusFailed
		}
		if finErr := s.runs.FinishRun(ctx, run, status, err); finErr != nil {
			log.Error().Err(finErr).Int64("run_id", run.ID).Msg("failed to finish run record")
		}
	}

	return out, err
}

func (s *AccuracyService) runAccuracy(ctx context.Context, run *pipeline.Run, forecastPath, actualPath string, opts AccuracyOptions) (*AccuracyRunOutput, error) {
	forecastRaw, err := ingest.ReadFile(forecastPath)
	if err != nil {
		return nil, err
	}
	actualRaw, err := ingest.ReadFile(actualPath)
	if err != nil {
		return nil, err
	}

	tolerance := s.tolerance(opts)
	records, err := pipeline.BuildAccuracy(forecastRaw, actualRaw, tolerance, s.plan.PipelineConfig(PlanOptions{}))
	if err != nil {
		return nil, err
	}
	run.OutputRows = len(records)

	artifacts, err := s.exportAccuracy(ctx, records)
	if err != nil {
		return nil, err
	}

	if s.reports != nil && run.ID != 0 {
		if err := s.reports.SaveAccuracyRecords(ctx, run.ID, records); err != nil {
			return nil, fmt.Errorf("failed to persist accuracy records: %w", err)
		}
	}

	summary := accuracy.Summarize(records, tolerance)
	summary.RunID = run.ID
	summary.GeneratedAt = time.Now()
	if err := s.summaryCache.SetAccuracySummary(ctx, &summary); err != nil {
		log.Warn().Err(err).Msg("failed to cache accuracy summary")
	}

	log.Info().
		Int64("run_id", run.ID).
		Int("records", len(records)).
		Float64("mean_score", summary.MeanScore).
		Msg("accuracy report generated")

	return &AccuracyRunOutput{
		RunID:     run.ID,
		Summary:   summary,
		Records:   records,
		Artifacts: artifacts,
	}, nil
}

// exportAccuracy writes the comparison table as CSV and as a workbook with
// the forecast-vs-actual chart, then archives both.
func (s *AccuracyService) exportAccuracy(ctx context.Context, records []domain.AccuracyRecord) ([]string, error) {
	tbl := report.AccuracyTable(records)

	writers := []report.Writer{
		&report.CSVWriter{Root: s.cfg.ExportDir},
		&report.XLSXWriter{Root: s.cfg.ExportDir, WithChart: true},
	}

	var paths []string
	for _, w := range writers {
		path, err := w.Write(tbl)
		if err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", tbl.Name, err)
		}
		paths = append(paths, path)
	}

	s.plan.archive(ctx, paths)

	return paths, nil
}

// RunAccuracyBatch analyzes several forecast/actual pairs concurrently,
// exporting each successful pair. Per-pair failures land in the results.
func (s *AccuracyService) RunAccuracyBatch(ctx context.Context, pairs []pipeline.AccuracyPair, workers int, opts AccuracyOptions) ([]pipeline.PairResult, error) {
	worker := pipeline.NewAccuracyBatchWorker(
		s.plan.PipelineConfig(PlanOptions{}),
		s.tolerance(opts),
		workers,
		func(ctx context.Context, pair pipeline.AccuracyPair, records []domain.AccuracyRecord) error {
			_, err := s.exportAccuracy(ctx, records)
			return err
		},
	)

	return worker.ProcessBatch(ctx, pairs)
}

// LatestAccuracySummary returns the most recent accuracy summary,
// cache-first with a database fallback.
func (s *AccuracyService) LatestAccuracySummary(ctx context.Context) (*domain.AccuracySummary, error) {
	if summary, ok, err := s.summaryCache.GetAccuracySummary(ctx); err == nil && ok {
		return summary, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("accuracy summary cache read failed")
	}

	if s.runs == nil || s.reports == nil {
		return nil, nil
	}
	runs, err := s.runs.ListRecentRuns(ctx, pipeline.RunAccuracy, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}

	records, err := s.reports.GetAccuracyRecords(ctx, runs[0].ID)
	if err != nil {
		return nil, err
	}

	summary := accuracy.Summarize(records, s.tolerance(AccuracyOptions{}))
	summary.RunID = runs[0].ID
	summary.GeneratedAt = runs[0].StartedAt

	return &summary, nil
}
