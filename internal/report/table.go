// Package report renders computed output tables into durable artifacts.
// Every table is fully materialized in memory before a single byte is
// written, so a failed write never leaves a partial report behind.
package report

import (
	"fmt"
	"strconv"

	"github.com/templestreet/forecast-app/internal/domain"
)

// Table is an ordered, immutable output table handed to a Writer.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PurchasePlanTable renders the full forecast/purchase-plan view: every
// ingredient requirement with its stock position and computed order quantity.
func PurchasePlanTable(required []domain.IngredientRequirement, stock map[string]float64) Table {
	t := Table{
		Name:   "Forecast_Purchase_Plan",
		Header: []string{"Ingredient", "Unit", "Required Qty", "Current Stock", "To Order"},
	}
	for _, req := range required {
		onHand := stock[req.Ingredient]
		toOrder := req.RequiredQty - onHand
		if toOrder < 0 {
			toOrder = 0
		}
		t.Rows = append(t.Rows, []string{
			req.Ingredient,
			req.Unit,
			formatQty(req.RequiredQty),
			formatQty(onHand),
			formatQty(toOrder),
		})
	}
	return t
}

// PurchaseOrderTable renders the actionable order lines only.
func PurchaseOrderTable(lines []domain.PurchaseOrderLine) Table {
	t := Table{
		Name:   "Purchase_Order",
		Header: []string{"Ingredient", "To Order", "Unit"},
	}
	for _, line := range lines {
		t.Rows = append(t.Rows, []string{line.Ingredient, formatQty(line.Qty), line.Unit})
	}
	return t
}

// UnmatchedItemsTable renders sales items that found no recipe row.
func UnmatchedItemsTable(items []domain.UnmatchedItem) Table {
	t := Table{
		Name:   "Unmatched_Items",
		Header: []string{"Item", "Qty Sold"},
	}
	for _, item := range items {
		t.Rows = append(t.Rows, []string{item.Item, formatQty(item.QtySold)})
	}
	return t
}

// AccuracyTable renders the forecast-vs-actual report with both the signed
// percent error and the clipped accuracy score.
func AccuracyTable(records []domain.AccuracyRecord) Table {
	t := Table{
		Name: "Forecast_vs_Actual",
		Header: []string{
			"Item", "Forecast Qty", "Actual Qty", "Difference",
			"% Error", "Accuracy (%)", "Status",
		},
	}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			r.Key,
			formatQty(r.ForecastQty),
			formatQty(r.ActualQty),
			formatQty(r.Difference),
			fmt.Sprintf("%.2f", r.PercentError),
			fmt.Sprintf("%.2f", r.Score),
			domain.AccuracyStatusLabel(r.Status),
		})
	}
	return t
}
