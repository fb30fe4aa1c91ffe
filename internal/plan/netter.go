// Package plan nets forecast ingredient requirements against stock on hand
// to produce the purchase-order list.
package plan

import (
	"sort"

	"github.com/templestreet/forecast-app/internal/domain"
)

// Net computes quantity-to-order = max(0, required − stock) per ingredient.
// An ingredient absent from stock means nothing on hand, never an error.
// Lines that net to zero or below are dropped; output is stable-ordered by
// ingredient name so repeated runs produce identical reports.
func Net(required []domain.IngredientRequirement, stock map[string]float64) []domain.PurchaseOrderLine {
	lines := make([]domain.PurchaseOrderLine, 0, len(required))
	for _, req := range required {
		onHand := stock[req.Ingredient]
		toOrder := req.RequiredQty - onHand
		if toOrder <= 0 {
			continue
		}
		lines = append(lines, domain.PurchaseOrderLine{
			Ingredient: req.Ingredient,
			Qty:        toOrder,
			Unit:       req.Unit,
		})
	}

	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Ingredient != lines[j].Ingredient {
			return lines[i].Ingredient < lines[j].Ingredient
		}
		return lines[i].Unit < lines[j].Unit
	})

	return lines
}
