package pipeline

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/templestreet/forecast-app/internal/domain"
	"github.com/templestreet/forecast-app/internal/forecast"
	"github.com/templestreet/forecast-app/internal/ingest"
)

func planInputs() PlanInputs {
	return PlanInputs{
		Sales: ingest.RawTable{Source: "sales.xlsx", Rows: [][]string{
			{"Daily Sales Report"},
			{"Item", "Qty Sold", "Date"},
			{"Dosa", "30", "2026-08-12"},
			{"Dosa", "20", "2026-08-19"},
			{"Idli", "20", "2026-08-19"},
			{"Filter Coffee", "12", "2026-08-19"},
		}},
		Stock: ingest.RawTable{Source: "stock.xlsx", Rows: [][]string{
			{"Item", "Current Stock"},
			{"Batter", "10"},
		}},
		Recipe: ingest.RawTable{Source: "recipe.xlsx", Rows: [][]string{
			{"Item", "Raw Material", "Qty", "Unit", "Raw Material.1", "Qty.1", "Unit.1"},
			{"Dosa", "Batter", "0.2", "kg", "Oil", "0.01", "l"},
			{"Idli", "Batter", "0.15", "kg", "", "", ""},
		}},
	}
}

func TestBuildPlanEndToEnd(t *testing.T) {
	result, err := BuildPlan(planInputs(), PlanConfig{AdjustmentPct: 100})
	if err != nil {
		t.Fatalf("BuildPlan() error = %v", err)
	}

	// Dosa 50, Filter Coffee 12, Idli 20, sorted by key.
	if len(result.ItemForecast) != 3 {
		t.Fatalf("ItemForecast = %+v, want 3 items", result.ItemForecast)
	}
	if result.ItemForecast[0].Key != "dosa" || result.ItemForecast[0].ForecastQty != 50 {
		t.Errorf("dosa forecast = %+v, want 50", result.ItemForecast[0])
	}

	// batter: 50*0.2 + 20*0.15 = 13 kg required, 10 on hand → order 3.
	wantOrders := []domain.PurchaseOrderLine{
		{Ingredient: "batter", Qty: 3, Unit: "kg"},
		{Ingredient: "oil", Qty: 0.5, Unit: "l"},
	}
	if !reflect.DeepEqual(result.Orders, wantOrders) {
		t.Errorf("Orders = %+v, want %+v", result.Orders, wantOrders)
	}

	// Coffee has no recipe: routed to the side list, run still succeeds.
	if len(result.Unmatched) != 1 || result.Unmatched[0].Item != "filter coffee" {
		t.Errorf("Unmatched = %+v, want filter coffee", result.Unmatched)
	}
}

func TestBuildPlanIsIdempotent(t *testing.T) {
	first, err := BuildPlan(planInputs(), PlanConfig{AdjustmentPct: 100})
	if err != nil {
		t.Fatalf("BuildPlan() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := BuildPlan(planInputs(), PlanConfig{AdjustmentPct: 100})
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if !reflect.DeepEqual(again.Orders, first.Orders) {
			t.Fatalf("run %d orders differ: %+v vs %+v", i, again.Orders, first.Orders)
		}
	}
}

func TestBuildPlanAdjustmentScalesOrders(t *testing.T) {
	result, err := BuildPlan(planInputs(), PlanConfig{AdjustmentPct: 120})
	if err != nil {
		t.Fatalf("BuildPlan() error = %v", err)
	}

	// Dosa 50→60, Idli 20→24: batter 60*0.2 + 24*0.15 = 15.6, minus 10 on hand.
	if len(result.Orders) == 0 || result.Orders[0].Ingredient != "batter" {
		t.Fatalf("Orders = %+v", result.Orders)
	}
	got := result.Orders[0].Qty
	if got < 5.599 || got > 5.601 {
		t.Errorf("batter order = %v, want 5.6", got)
	}
}

func TestBuildPlanWeekdayModel(t *testing.T) {
	cfg := PlanConfig{
		Model:         forecast.ModelWeekday,
		LeadTimeDays:  2,
		AdjustmentPct: 100,
		// 2026-08-17 is a Monday; lead 2 targets Wednesday.
		Now: func() time.Time { return time.Date(2026, 8, 17, 9, 0, 0, 0, time.UTC) },
	}

	result, err := BuildPlan(planInputs(), cfg)
	if err != nil {
		t.Fatalf("BuildPlan() error = %v", err)
	}

	// Both dosa rows fall on Wednesdays: mean of 30 and 20 is 25.
	if result.ItemForecast[0].Key != "dosa" || result.ItemForecast[0].ForecastQty != 25 {
		t.Errorf("dosa = %+v, want weekday mean 25", result.ItemForecast[0])
	}
}

func TestBuildPlanSchemaFailureNamesFile(t *testing.T) {
	in := planInputs()
	in.Stock = ingest.RawTable{Source: "stock.xlsx", Rows: [][]string{
		{"totally", "unrelated"},
		{"a", "b"},
	}}

	_, err := BuildPlan(in, PlanConfig{AdjustmentPct: 100})
	var schemaErr *ingest.SchemaNotFoundError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error = %v, want *SchemaNotFoundError", err)
	}
	if schemaErr.Source != "stock.xlsx" {
		t.Errorf("Source = %q, want the stock file named", schemaErr.Source)
	}
}

func TestBuildPlanInvalidAdjustment(t *testing.T) {
	_, err := BuildPlan(planInputs(), PlanConfig{AdjustmentPct: -5})
	var factorErr *forecast.InvalidAdjustmentFactorError
	if !errors.As(err, &factorErr) {
		t.Fatalf("error = %v, want *InvalidAdjustmentFactorError", err)
	}
}

func TestBuildAccuracy(t *testing.T) {
	forecastRaw := ingest.RawTable{Source: "forecast.csv", Rows: [][]string{
		{"Item", "Qty"},
		{"Rice", "100"},
		{"Oil", "10"},
	}}
	actualRaw := ingest.RawTable{Source: "actual.csv", Rows: [][]string{
		{"Item", "Qty"},
		{"Rice", "95"},
		{"Oil", "14"},
	}}

	records, err := BuildAccuracy(forecastRaw, actualRaw, 10, PlanConfig{})
	if err != nil {
		t.Fatalf("BuildAccuracy() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %+v, want 2", records)
	}
	if records[1].Key != "rice" || records[1].Status != domain.StatusAccurate {
		t.Errorf("rice = %+v, want accurate", records[1])
	}
	if records[0].Key != "oil" || records[0].Status != domain.StatusUnderForecasted {
		t.Errorf("oil = %+v, want under-forecasted", records[0])
	}
}

func TestBuildAccuracySchemaFailureNamesSide(t *testing.T) {
	good := ingest.RawTable{Source: "forecast.csv", Rows: [][]string{
		{"Item", "Qty"},
		{"Rice", "100"},
	}}
	bad := ingest.RawTable{Source: "actual.csv", Rows: [][]string{
		{"nope"},
	}}

	_, err := BuildAccuracy(good, bad, 10, PlanConfig{})
	if err == nil {
		t.Fatal("BuildAccuracy() should fail on an unresolvable file")
	}
	var schemaErr *ingest.SchemaNotFoundError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error = %v, want *SchemaNotFoundError", err)
	}
	if schemaErr.Source != "actual.csv" {
		t.Errorf("Source = %q, want the actual file named", schemaErr.Source)
	}
}
