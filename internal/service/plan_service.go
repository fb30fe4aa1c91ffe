// internal/service/plan_service.go
package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/templestreet/forecast-app/internal/cache"
	"github.com/templestreet/forecast-app/internal/config"
	"github.com/templestreet/forecast-app/internal/domain"
	"github.com/templestreet/forecast-app/internal/forecast"
	"github.com/templestreet/forecast-app/internal/ingest"
	"github.com/templestreet/forecast-app/internal/pipeline"
	"github.com/templestreet/forecast-app/internal/report"
	"github.com/templestreet/forecast-app/internal/repository"
	"github.com/templestreet/forecast-app/internal/storage"
)

// PlanOptions are the per-request overrides of a purchase-plan run. Zero
// values defer to configuration.
type PlanOptions struct {
	Model         string
	LeadTimeDays  int
	AdjustmentPct float64
	HasAdjustment bool
}

// PlanRunOutput bundles everything one plan run produced.
type PlanRunOutput struct {
	RunID     int64                      `json:"run_id"`
	Summary   domain.PlanSummary         `json:"summary"`
	Forecast  []domain.ForecastLine      `json:"forecast"`
	Orders    []domain.PurchaseOrderLine `json:"orders"`
	Unmatched []domain.UnmatchedItem     `json:"unmatched,omitempty"`
	Artifacts []string                   `json:"artifacts"`
}

// PlanService runs the purchase-plan pipeline over uploaded spreadsheets
// and fans the result out to exports, storage, database and cache.
type PlanService struct {
	cfg          config.PlanningConfig
	runs         *pipeline.Repository
	reports      repository.ReportRepository
	summaryCache cache.ReportSummaryCache
	store        storage.ObjectStorage
}

// NewPlanService creates a plan service. runs, reports and store may be nil
// when the deployment has no database or object storage.
func NewPlanService(
	cfg config.PlanningConfig,
	runs *pipeline.Repository,
	reports repository.ReportRepository,
	summaryCache cache.ReportSummaryCache,
	store storage.ObjectStorage,
) *PlanService {
	if summaryCache == nil {
		summaryCache = cache.NewNoopReportCache()
	}
	return &PlanService{
		cfg:          cfg,
		runs:         runs,
		reports:      reports,
		summaryCache: summaryCache,
		store:        store,
	}
}

// PipelineConfig resolves configuration plus per-request overrides into the
// knobs the pipeline takes.
func (s *PlanService) PipelineConfig(opts PlanOptions) pipeline.PlanConfig {
	cfg := pipeline.PlanConfig{
		Model:         forecast.ParseModel(s.cfg.Model),
		LeadTimeDays:  s.cfg.LeadTimeDays,
		AdjustmentPct: s.cfg.AdjustmentPct,
		RowBudget:     s.cfg.RowBudget,
		MaxSlots:      s.cfg.MaxSlots,
	}
	if s.cfg.StrictColumns {
		cfg.Strictness = ingest.MatchExact
	}
	if opts.Model != "" {
		cfg.Model = forecast.ParseModel(opts.Model)
	}
	if opts.LeadTimeDays > 0 {
		cfg.LeadTimeDays = opts.LeadTimeDays
	}
	if opts.HasAdjustment {
		cfg.AdjustmentPct = opts.AdjustmentPct
	}
	return cfg
}

// RunPlan executes one purchase-plan run over the three source files.
func (s *PlanService) RunPlan(ctx context.Context, salesPath, stockPath, recipePath string, opts PlanOptions) (*PlanRunOutput, error) {
	run := &pipeline.Run{
		Kind:        pipeline.RunPurchasePlan,
		SourceFiles: 3,
		StartedAt:   time.Now(),
		Status:      pipeline.StatusProcessing,
	}
	if s.runs != nil {
		if err := s.runs.CreateRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
	}

	out, err := s.runPlan(ctx, run, salesPath, stockPath, recipePath, opts)
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

func (s *PlanService) runPlan(ctx context.Context, run *pipeline.Run, salesPath, stockPath, recipePath string, opts PlanOptions) (*PlanRunOutput, error) {
	sales, err := ingest.ReadFile(salesPath)
	if err != nil {
		return nil, err
	}
	stock, err := ingest.ReadFile(stockPath)
	if err != nil {
		return nil, err
	}
	recipe, err := ingest.ReadFile(recipePath)
	if err != nil {
		return nil, err
	}

	result, err := pipeline.BuildPlan(
		pipeline.PlanInputs{Sales: sales, Stock: stock, Recipe: recipe},
		s.PipelineConfig(opts),
	)
	if err != nil {
		return nil, err
	}
	run.OutputRows = len(result.Orders)

	artifacts, err := s.exportPlan(ctx, result)
	if err != nil {
		return nil, err
	}

	if s.reports != nil && run.ID != 0 {
		if err := s.reports.SaveOrderLines(ctx, run.ID, result.Orders); err != nil {
			return nil, fmt.Errorf("failed to persist order lines: %w", err)
		}
	}

	summary := domain.PlanSummary{
		RunID:          run.ID,
		ItemCount:      len(result.ItemForecast),
		OrderLineCount: len(result.Orders),
		UnmatchedCount: len(result.Unmatched),
		GeneratedAt:    time.Now(),
	}
	if err := s.summaryCache.SetPlanSummary(ctx, &summary); err != nil {
		log.Warn().Err(err).Msg("failed to cache plan summary")
	}

	log.Info().
		Int64("run_id", run.ID).
		Int("order_lines", len(result.Orders)).
		Int("unmatched", len(result.Unmatched)).
		Msg("purchase plan generated")

	return &PlanRunOutput{
		RunID:     run.ID,
		Summary:   summary,
		Forecast:  result.ItemForecast,
		Orders:    result.Orders,
		Unmatched: result.Unmatched,
		Artifacts: artifacts,
	}, nil
}

// exportPlan writes the plan, order and unmatched tables as CSV and XLSX
// artifacts and uploads them when object storage is configured.
func (s *PlanService) exportPlan(ctx context.Context, result *pipeline.PlanResult) ([]string, error) {
	csvW := &report.CSVWriter{Root: s.cfg.ExportDir}
	xlsxW := &report.XLSXWriter{Root: s.cfg.ExportDir}

	tables := []report.Table{
		report.PurchasePlanTable(result.Required, result.Stock),
		report.PurchaseOrderTable(result.Orders),
	}
	if len(result.Unmatched) > 0 {
		tables = append(tables, report.UnmatchedItemsTable(result.Unmatched))
	}

	var paths []string
	for _, tbl := range tables {
		for _, w := range []report.Writer{csvW, xlsxW} {
			path, err := w.Write(tbl)
			if err != nil {
				return nil, fmt.Errorf("failed to export %s: %w", tbl.Name, err)
			}
			paths = append(paths, path)
		}
	}

	s.archive(ctx, paths)

	return paths, nil
}

// archive pushes artifacts to object storage. Failures are logged, never
// fatal; the local export already succeeded.
func (s *PlanService) archive(ctx context.Context, paths []string) {
	if s.store == nil {
		return
	}
	for _, path := range paths {
		key, err := filepath.Rel(s.cfg.ExportDir, path)
		if err != nil {
			key = filepath.Base(path)
		}
		key = filepath.ToSlash(key)
		if err := s.store.UploadFile(ctx, key, path); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to archive artifact")
		}
	}
}

// LatestPlanSummary returns the most recent plan summary, cache-first with
// a database fallback.
func (s *PlanService) LatestPlanSummary(ctx context.Context) (*domain.PlanSummary, error) {
	if summary, ok, err := s.summaryCache.GetPlanSummary(ctx); err == nil && ok {
		return summary, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("plan summary cache read failed")
	}

	if s.runs == nil {
		return nil, nil
	}
	runs, err := s.runs.ListRecentRuns(ctx, pipeline.RunPurchasePlan, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}

	run := runs[0]
	summary := &domain.PlanSummary{
		RunID:          run.ID,
		OrderLineCount: run.OutputRows,
		GeneratedAt:    run.StartedAt,
	}
	if s.reports != nil {
		lines, err := s.reports.GetOrderLines(ctx, run.ID)
		if err != nil {
			return nil, err
		}
		summary.OrderLineCount = len(lines)
	}

	return summary, nil
}
