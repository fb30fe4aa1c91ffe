// Package forecast computes per-item demand forecasts from observed sales
// and expands them to ingredient-level requirements through the BOM.
package forecast

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/templestreet/forecast-app/internal/domain"
)

// Model selects how observed demand becomes a forecast quantity.
type Model string

const (
	// ModelDirect uses the observed quantity sold for the period as-is.
	ModelDirect Model = "direct"
	// ModelWeekday averages historical daily sales for the weekday of the
	// target date (today + lead time), rounded to the nearest integer.
	ModelWeekday Model = "weekday"
)

// DefaultLeadTimeDays is how far ahead the weekday model forecasts.
const DefaultLeadTimeDays = 2

// ParseModel maps a config or CLI string to a Model (case-insensitive).
// Empty and unknown strings fall back to the direct model.
func ParseModel(s string) Model {
	if strings.EqualFold(strings.TrimSpace(s), string(ModelWeekday)) {
		return ModelWeekday
	}
	return ModelDirect
}

// SaleRow is one canonical sales record. Item is already a normalized key.
// Date stays raw; rows whose date cannot be parsed are excluded from the
// weekday model before grouping, never coerced to a default date.
type SaleRow struct {
	Item string
	Qty  float64
	Date string
}

// saleDateLayouts are tried in order when parsing a sales date cell.
var saleDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02-01-2006",
	"2006/01/02",
}

// Engine computes forecasts. The zero value uses the direct model. Now is
// injectable so the weekday model is testable; nil means time.Now.
type Engine struct {
	Model        Model
	LeadTimeDays int
	Now          func() time.Time
}

// ItemForecast computes one ForecastLine per item, stable-ordered by item
// key. A negative or NaN adjustment factor fails fast; 0 is a legal factor
// and zeroes every adjusted quantity.
func (e Engine) ItemForecast(sales []SaleRow, adjustmentPct float64) ([]domain.ForecastLine, error) {
	if math.IsNaN(adjustmentPct) || adjustmentPct < 0 {
		return nil, &InvalidAdjustmentFactorError{Factor: adjustmentPct}
	}

	var byItem map[string]float64
	switch e.Model {
	case ModelWeekday:
		byItem = e.weekdayDemand(sales)
	default:
		byItem = directDemand(sales)
	}

	keys := make([]string, 0, len(byItem))
	for k := range byItem {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]domain.ForecastLine, 0, len(keys))
	for _, k := range keys {
		qty := byItem[k]
		lines = append(lines, domain.ForecastLine{
			Key:         k,
			ForecastQty: qty,
			AdjustedQty: math.Round(qty * adjustmentPct / 100),
		})
	}

	return lines, nil
}

func directDemand(sales []SaleRow) map[string]float64 {
	out := make(map[string]float64)
	for _, s := range sales {
		if s.Item == "" {
			continue
		}
		out[s.Item] += s.Qty
	}
	return out
}

// weekdayDemand averages each item's sales on the target weekday across the
// history, rounding the mean to the nearest integer.
func (e Engine) weekdayDemand(sales []SaleRow) map[string]float64 {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	lead := e.LeadTimeDays
	if lead <= 0 {
		lead = DefaultLeadTimeDays
	}
	target := now().AddDate(0, 0, lead).Weekday()

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, s := range sales {
		if s.Item == "" {
			continue
		}
		day, ok := parseSaleDate(s.Date)
		if !ok {
			continue
		}
		if day.Weekday() != target {
			continue
		}
		sums[s.Item] += s.Qty
		counts[s.Item]++
	}

	out := make(map[string]float64, len(sums))
	for item, sum := range sums {
		out[item] = math.Round(sum / float64(counts[item]))
	}
	return out
}

func parseSaleDate(cell string) (time.Time, bool) {
	v := strings.TrimSpace(cell)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range saleDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Expand joins item-level forecast lines to the BOM and aggregates required
// quantity per (ingredient, unit). Items without any BOM entry land on the
// unmatched side list. A join that produces zero matches overall is the
// distinct NoMatches condition: it almost always means the two files follow
// different naming conventions.
func Expand(lines []domain.ForecastLine, entries []domain.BomEntry) ([]domain.IngredientRequirement, []domain.UnmatchedItem, error) {
	byItem := make(map[string][]domain.BomEntry, len(entries))
	for _, e := range entries {
		byItem[e.Item] = append(byItem[e.Item], e)
	}

	type reqKey struct{ ingredient, unit string }
	required := make(map[reqKey]float64)
	var unmatched []domain.UnmatchedItem
	matchedLines := 0

	for _, line := range lines {
		owned := byItem[line.Key]
		if len(owned) == 0 {
			unmatched = append(unmatched, domain.UnmatchedItem{
				Item:    line.Key,
				QtySold: line.ForecastQty,
			})
			continue
		}
		matchedLines++
		for _, e := range owned {
			required[reqKey{e.Ingredient, e.Unit}] += line.AdjustedQty * e.QtyPerUnit
		}
	}

	if matchedLines == 0 && len(lines) > 0 {
		return nil, unmatched, &NoMatchesError{SalesItems: len(lines), BomItems: len(byItem)}
	}

	keys := make([]reqKey, 0, len(required))
	for k := range required {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ingredient != keys[j].ingredient {
			return keys[i].ingredient < keys[j].ingredient
		}
		return keys[i].unit < keys[j].unit
	})

	reqs := make([]domain.IngredientRequirement, 0, len(keys))
	for _, k := range keys {
		reqs = append(reqs, domain.IngredientRequirement{
			Ingredient:  k.ingredient,
			Unit:        k.unit,
			RequiredQty: required[k],
		})
	}

	return reqs, unmatched, nil
}
