// Package accuracy compares forecast quantities to actual consumption and
// classifies each key against a tolerance band.
package accuracy

import (
	"math"
	"sort"

	"github.com/templestreet/forecast-app/internal/domain"
)

// DefaultTolerancePct is the percent-error window treated as accurate.
const DefaultTolerancePct = 10

// Entry is one input line on either side of the comparison. Key is an
// already-normalized item or ingredient key.
type Entry struct {
	Key string
	Qty float64
}

// Analyze outer-joins the forecast and actual tables on key and emits one
// AccuracyRecord per key, ordered by key. Quantities are summed per key
// first, so duplicate rows aggregate the way the source reports do. A key
// missing on either side defaults to 0 there; a single unmatched key never
// aborts the report.
//
// Percent error is (actual − forecast) / forecast × 100. When forecast is 0
// the percent error is defined as 0 rather than dividing by zero; the
// under-forecast signal for those keys survives in Difference.
func Analyze(forecast, actual []Entry, tolerancePct float64) []domain.AccuracyRecord {
	if tolerancePct <= 0 {
		tolerancePct = DefaultTolerancePct
	}

	forecastByKey := sumByKey(forecast)
	actualByKey := sumByKey(actual)

	keys := make([]string, 0, len(forecastByKey)+len(actualByKey))
	seen := make(map[string]bool)
	for k := range forecastByKey {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range actualByKey {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	records := make([]domain.AccuracyRecord, 0, len(keys))
	for _, k := range keys {
		f := forecastByKey[k]
		a := actualByKey[k]
		diff := a - f

		var pe float64
		if f != 0 {
			pe = diff / f * 100
		}

		records = append(records, domain.AccuracyRecord{
			Key:          k,
			ForecastQty:  f,
			ActualQty:    a,
			Difference:   diff,
			PercentError: pe,
			Score:        clipScore(100 - math.Abs(pe)),
			Status:       domain.ClassifyPercentError(pe, tolerancePct),
		})
	}

	return records
}

// Summarize condenses records into the counts and mean score the dashboard
// and cache layers expose.
func Summarize(records []domain.AccuracyRecord, tolerancePct float64) domain.AccuracySummary {
	s := domain.AccuracySummary{
		RecordCount:      len(records),
		ToleranceApplied: tolerancePct,
	}
	var total float64
	for _, r := range records {
		total += r.Score
		switch r.Status {
		case domain.StatusAccurate:
			s.AccurateCount++
		case domain.StatusOverForecasted:
			s.OverCount++
		case domain.StatusUnderForecasted:
			s.UnderCount++
		}
	}
	if len(records) > 0 {
		s.MeanScore = total / float64(len(records))
	}
	return s
}

func sumByKey(entries []Entry) map[string]float64 {
	out := make(map[string]float64, len(entries))
	for _, e := range entries {
		if e.Key == "" {
			continue
		}
		out[e.Key] += e.Qty
	}
	return out
}

func clipScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
