// internal/domain/models.go
package domain

import "time"

// BomEntry maps one menu item to one raw ingredient it consumes.
// A menu item owns zero or more entries; an item with zero entries is
// simply unmapped, never an error.
type BomEntry struct {
	Item       string  `json:"item"`
	Ingredient string  `json:"ingredient"`
	QtyPerUnit float64 `json:"qty_per_unit"`
	Unit       string  `json:"unit"`
}

// ForecastLine is the demand forecast for one item or ingredient key.
// Computed fresh on every run; never persisted as mutable state.
type ForecastLine struct {
	Key         string  `json:"key"`
	Unit        string  `json:"unit,omitempty"`
	ForecastQty float64 `json:"forecast_qty"`
	AdjustedQty float64 `json:"adjusted_qty"`
}

// IngredientRequirement is the forecast expanded to ingredient granularity,
// aggregated per (ingredient, unit).
type IngredientRequirement struct {
	Ingredient  string  `json:"ingredient"`
	Unit        string  `json:"unit"`
	RequiredQty float64 `json:"required_qty"`
}

// PurchaseOrderLine is one actionable order row after netting against
// current stock. Quantity is always positive.
type PurchaseOrderLine struct {
	Ingredient string  `json:"ingredient" db:"ingredient"`
	Qty        float64 `json:"qty" db:"qty"`
	Unit       string  `json:"unit" db:"unit"`
}

// UnmatchedItem is a sales item that found no recipe row. These are routed
// to a side table so a naming mismatch is visible without failing the run.
type UnmatchedItem struct {
	Item    string  `json:"item"`
	QtySold float64 `json:"qty_sold"`
}

// AccuracyRecord compares forecast to actual consumption for one key.
// Score is the clipped 0-100 representation some report variants use;
// PercentError is the signed one.
type AccuracyRecord struct {
	Key          string         `json:"key" db:"key"`
	ForecastQty  float64        `json:"forecast_qty" db:"forecast_qty"`
	ActualQty    float64        `json:"actual_qty" db:"actual_qty"`
	Difference   float64        `json:"difference" db:"difference"`
	PercentError float64        `json:"percent_error" db:"percent_error"`
	Score        float64        `json:"score" db:"score"`
	Status       AccuracyStatus `json:"status" db:"status"`
}

// UploadedFile represents an uploaded spreadsheet pending processing.
type UploadedFile struct {
	Filename string
	Path     string
	Size     int64
}

// PlanSummary is the condensed result of a purchase-plan run, suitable for
// API responses and caching.
type PlanSummary struct {
	RunID          int64     `json:"run_id,omitempty"`
	ItemCount      int       `json:"item_count"`
	OrderLineCount int       `json:"order_line_count"`
	UnmatchedCount int       `json:"unmatched_count"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// AccuracySummary is the condensed result of an accuracy run.
type AccuracySummary struct {
	RunID            int64     `json:"run_id,omitempty"`
	RecordCount      int       `json:"record_count"`
	AccurateCount    int       `json:"accurate_count"`
	OverCount        int       `json:"over_count"`
	UnderCount       int       `json:"under_count"`
	MeanScore        float64   `json:"mean_score"`
	GeneratedAt      time.Time `json:"generated_at"`
	ToleranceApplied float64   `json:"tolerance_applied"`
}
