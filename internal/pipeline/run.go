// Package pipeline assembles the normalization and aggregation stages into
// complete runs: raw spreadsheets in, output tables out. Every stage is a
// pure function of its inputs; a run holds no state between invocations.
package pipeline

import (
	"fmt"
	"time"

	"github.com/templestreet/forecast-app/internal/accuracy"
	"github.com/templestreet/forecast-app/internal/bom"
	"github.com/templestreet/forecast-app/internal/domain"
	"github.com/templestreet/forecast-app/internal/forecast"
	"github.com/templestreet/forecast-app/internal/ingest"
	"github.com/templestreet/forecast-app/internal/plan"
)

// Required role vocabularies per source file type. The resolver matches
// these tokens against normalized column labels, so "Qty Sold" and
// "Current Stock" both land where they should.
var (
	SalesRoles    = []string{"item", "qty"}
	SalesDateRole = "date"
	StockRoles    = []string{"item", "currentstock"}
	RecipeRoles   = []string{bom.RoleItem, "rawmaterial"}
	AccuracyRoles = []string{"item", "qty"}
)

// PlanConfig carries every knob of a purchase-plan run. Defaults applies
// the documented defaults for anything left zero.
type PlanConfig struct {
	Model         forecast.Model
	LeadTimeDays  int
	AdjustmentPct float64
	RowBudget     int
	MaxSlots      int
	Strictness    ingest.Strictness
	Now           func() time.Time
}

// withDefaults normalizes the zero values. AdjustmentPct stays untouched:
// zero is a legal factor and validation belongs to the forecast engine.
func (c PlanConfig) withDefaults() PlanConfig {
	if c.Model == "" {
		c.Model = forecast.ModelDirect
	}
	if c.LeadTimeDays <= 0 {
		c.LeadTimeDays = forecast.DefaultLeadTimeDays
	}
	if c.RowBudget <= 0 {
		c.RowBudget = ingest.DefaultRowBudget
	}
	if c.MaxSlots <= 0 {
		c.MaxSlots = bom.DefaultMaxSlots
	}
	return c
}

// PlanInputs are the three raw source tables of a purchase-plan run.
type PlanInputs struct {
	Sales  ingest.RawTable
	Stock  ingest.RawTable
	Recipe ingest.RawTable
}

// PlanResult is the complete output of one purchase-plan run.
type PlanResult struct {
	ItemForecast []domain.ForecastLine
	Required     []domain.IngredientRequirement
	Stock        map[string]float64
	Orders       []domain.PurchaseOrderLine
	Unmatched    []domain.UnmatchedItem
}

// BuildPlan runs ingestion, BOM normalization, forecasting and netting over
// the three raw inputs. A schema failure aborts only the offending file's
// run and reports which roles were sought and how many rows were scanned.
func BuildPlan(in PlanInputs, cfg PlanConfig) (*PlanResult, error) {
	cfg = cfg.withDefaults()
	opts := ingest.Options{RowBudget: cfg.RowBudget, Strictness: cfg.Strictness}

	salesRoles := SalesRoles
	if cfg.Model == forecast.ModelWeekday {
		salesRoles = append(append([]string{}, SalesRoles...), SalesDateRole)
	}

	salesTbl, err := ingest.Resolve(in.Sales, salesRoles, opts)
	if err != nil {
		return nil, fmt.Errorf("sales file: %w", err)
	}
	stockTbl, err := ingest.Resolve(in.Stock, StockRoles, opts)
	if err != nil {
		return nil, fmt.Errorf("stock file: %w", err)
	}
	recipeTbl, err := ingest.Resolve(in.Recipe, RecipeRoles, opts)
	if err != nil {
		return nil, fmt.Errorf("recipe file: %w", err)
	}

	engine := forecast.Engine{
		Model:        cfg.Model,
		LeadTimeDays: cfg.LeadTimeDays,
		Now:          cfg.Now,
	}
	lines, err := engine.ItemForecast(salesRows(salesTbl), cfg.AdjustmentPct)
	if err != nil {
		return nil, err
	}

	entries := bom.Normalize(recipeTbl, cfg.MaxSlots)
	required, unmatched, err := forecast.Expand(lines, entries)
	if err != nil {
		return nil, err
	}

	stock := stockLevels(stockTbl)

	return &PlanResult{
		ItemForecast: lines,
		Required:     required,
		Stock:        stock,
		Orders:       plan.Net(required, stock),
		Unmatched:    unmatched,
	}, nil
}

// BuildAccuracy resolves a forecast table and an actual-consumption table
// and produces the accuracy report.
func BuildAccuracy(forecastRaw, actualRaw ingest.RawTable, tolerancePct float64, cfg PlanConfig) ([]domain.AccuracyRecord, error) {
	cfg = cfg.withDefaults()
	opts := ingest.Options{RowBudget: cfg.RowBudget, Strictness: cfg.Strictness}

	forecastTbl, err := ingest.Resolve(forecastRaw, AccuracyRoles, opts)
	if err != nil {
		return nil, fmt.Errorf("forecast file: %w", err)
	}
	actualTbl, err := ingest.Resolve(actualRaw, AccuracyRoles, opts)
	if err != nil {
		return nil, fmt.Errorf("actual consumption file: %w", err)
	}

	return accuracy.Analyze(
		accuracyEntries(forecastTbl),
		accuracyEntries(actualTbl),
		tolerancePct,
	), nil
}

func salesRows(t *ingest.Table) []forecast.SaleRow {
	rows := make([]forecast.SaleRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		item := ingest.NormalizeKey(t.RoleValue(i, "item"))
		if item == "" {
			continue
		}
		date := t.RoleValue(i, SalesDateRole)
		if date == "" {
			date = t.Value(i, SalesDateRole)
		}
		rows = append(rows, forecast.SaleRow{
			Item: item,
			Qty:  t.RoleNumber(i, "qty"),
			Date: date,
		})
	}
	return rows
}

// stockLevels sums stock per ingredient key; a missing or blank quantity
// cell reads as zero on hand.
func stockLevels(t *ingest.Table) map[string]float64 {
	stock := make(map[string]float64, t.Len())
	for i := 0; i < t.Len(); i++ {
		key := ingest.NormalizeKey(t.RoleValue(i, "item"))
		if key == "" {
			continue
		}
		stock[key] += t.RoleNumber(i, "currentstock")
	}
	return stock
}

func accuracyEntries(t *ingest.Table) []accuracy.Entry {
	entries := make([]accuracy.Entry, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		key := ingest.NormalizeKey(t.RoleValue(i, "item"))
		if key == "" {
			continue
		}
		entries = append(entries, accuracy.Entry{
			Key: key,
			Qty: t.RoleNumber(i, "qty"),
		})
	}
	return entries
}
