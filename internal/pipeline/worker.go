package pipeline

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/templestreet/forecast-app/internal/domain"
	"github.com/templestreet/forecast-app/internal/ingest"
)

// PairHandler receives the records of one successfully analyzed pair,
// typically to export them and persist a summary.
type PairHandler func(ctx context.Context, pair AccuracyPair, records []domain.AccuracyRecord) error

// AccuracyBatchWorker runs several forecast/actual file pairs through the
// accuracy pipeline concurrently. One malformed file fails its own pair and
// nothing else; the batch always runs to completion.
type AccuracyBatchWorker struct {
	cfg          PlanConfig
	tolerancePct float64
	workerCount  int
	handle       PairHandler
}

// NewAccuracyBatchWorker creates a batch worker. handle may be nil when the
// caller only wants the per-pair outcomes.
func NewAccuracyBatchWorker(cfg PlanConfig, tolerancePct float64, workerCount int, handle PairHandler) *AccuracyBatchWorker {
	if workerCount < 1 {
		workerCount = 1
	}
	return &AccuracyBatchWorker{
		cfg:          cfg,
		tolerancePct: tolerancePct,
		workerCount:  workerCount,
		handle:       handle,
	}
}

// ProcessBatch analyzes every pair and returns one PairResult per input, in
// input order. The returned slice, not an error, carries per-pair failures;
// only context cancellation aborts the batch.
func (w *AccuracyBatchWorker) ProcessBatch(ctx context.Context, pairs []AccuracyPair) ([]PairResult, error) {
	results := make([]PairResult, len(pairs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workerCount)

	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records, err := w.processPair(ctx, pair)
			results[i] = PairResult{Pair: pair, Records: len(records), Err: err}
			if err != nil {
				log.Error().Err(err).
					Str("pair", pair.Label).
					Str("forecast", pair.ForecastPath).
					Str("actual", pair.ActualPath).
					Msg("accuracy pair failed")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	return results, nil
}

func (w *AccuracyBatchWorker) processPair(ctx context.Context, pair AccuracyPair) ([]domain.AccuracyRecord, error) {
	forecastRaw, err := ingest.ReadFile(pair.ForecastPath)
	if err != nil {
		return nil, err
	}
	actualRaw, err := ingest.ReadFile(pair.ActualPath)
	if err != nil {
		return nil, err
	}

	records, err := BuildAccuracy(forecastRaw, actualRaw, w.tolerancePct, w.cfg)
	if err != nil {
		return nil, err
	}

	if w.handle != nil {
		if err := w.handle(ctx, pair, records); err != nil {
			return records, err
		}
	}

	return records, nil
}
