package plan

import (
	"reflect"
	"testing"

	"github.com/templestreet/forecast-app/internal/domain"
)

func TestNet(t *testing.T) {
	tests := []struct {
		name     string
		required []domain.IngredientRequirement
		stock    map[string]float64
		want     []domain.PurchaseOrderLine
	}{
		{
			name: "nets against stock on hand",
			required: []domain.IngredientRequirement{
				{Ingredient: "batter", Unit: "kg", RequiredQty: 50},
			},
			stock: map[string]float64{"batter": 10},
			want: []domain.PurchaseOrderLine{
				{Ingredient: "batter", Qty: 40, Unit: "kg"},
			},
		},
		{
			name: "missing stock means zero on hand",
			required: []domain.IngredientRequirement{
				{Ingredient: "oil", Unit: "l", RequiredQty: 2},
			},
			stock: map[string]float64{},
			want: []domain.PurchaseOrderLine{
				{Ingredient: "oil", Qty: 2, Unit: "l"},
			},
		},
		{
			name: "covered ingredients drop out",
			required: []domain.IngredientRequirement{
				{Ingredient: "batter", Unit: "kg", RequiredQty: 5},
				{Ingredient: "oil", Unit: "l", RequiredQty: 2},
			},
			stock: map[string]float64{"batter": 8, "oil": 2},
			want:  []domain.PurchaseOrderLine{},
		},
		{
			name: "output sorted by ingredient then unit",
			required: []domain.IngredientRequirement{
				{Ingredient: "oil", Unit: "l", RequiredQty: 2},
				{Ingredient: "batter", Unit: "kg", RequiredQty: 5},
				{Ingredient: "batter", Unit: "g", RequiredQty: 100},
			},
			stock: map[string]float64{},
			want: []domain.PurchaseOrderLine{
				{Ingredient: "batter", Qty: 100, Unit: "g"},
				{Ingredient: "batter", Qty: 5, Unit: "kg"},
				{Ingredient: "oil", Qty: 2, Unit: "l"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Net(tt.required, tt.stock)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Net() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNetIsDeterministic(t *testing.T) {
	required := []domain.IngredientRequirement{
		{Ingredient: "rice", Unit: "kg", RequiredQty: 20},
		{Ingredient: "batter", Unit: "kg", RequiredQty: 50},
		{Ingredient: "oil", Unit: "l", RequiredQty: 3},
	}
	stock := map[string]float64{"batter": 10}

	first := Net(required, stock)
	for i := 0; i < 10; i++ {
		if got := Net(required, stock); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}
