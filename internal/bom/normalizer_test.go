package bom

import (
	"testing"

	"github.com/templestreet/forecast-app/internal/ingest"
)

func resolveRecipe(t *testing.T, rows ...[]string) *ingest.Table {
	t.Helper()
	tbl, err := ingest.Resolve(
		ingest.RawTable{Source: "recipe.xlsx", Rows: rows},
		[]string{RoleItem, "rawmaterial"},
		ingest.Options{},
	)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	return tbl
}

func TestNormalizeExplodesSuffixedSlots(t *testing.T) {
	tbl := resolveRecipe(t,
		[]string{"Item", "Raw Material", "Qty", "Unit", "Raw Material.1", "Qty.1", "Unit.1"},
		[]string{"Dosa", "Batter", "0.2", "kg", "Oil", "0.01", "l"},
		[]string{"Idli", "Batter", "0.15", "kg", "", "", ""},
	)

	entries := Normalize(tbl, 0)
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}

	byItem := Index(entries)
	if len(byItem["dosa"]) != 2 {
		t.Errorf("dosa entries = %d, want 2", len(byItem["dosa"]))
	}
	if len(byItem["idli"]) != 1 {
		t.Errorf("idli entries = %d, want 1", len(byItem["idli"]))
	}

	first := byItem["dosa"][0]
	if first.Ingredient != "batter" || first.QtyPerUnit != 0.2 || first.Unit != "kg" {
		t.Errorf("unexpected first dosa entry: %+v", first)
	}
	second := byItem["dosa"][1]
	if second.Ingredient != "oil" || second.QtyPerUnit != 0.01 || second.Unit != "l" {
		t.Errorf("unexpected second dosa entry: %+v", second)
	}
}

func TestNormalizeSkipsInvalidSlots(t *testing.T) {
	tbl := resolveRecipe(t,
		[]string{"Item", "Raw Material", "Qty", "Unit"},
		[]string{"Dosa", "Batter", "0.2", "kg"},
		[]string{"Tea", "", "0.5", "l"},     // no ingredient name
		[]string{"Vada", "Batter", "0", ""}, // zero quantity
		[]string{"", "Batter", "0.1", "kg"}, // no item name
	)

	entries := Normalize(tbl, 0)
	if len(entries) != 1 {
		t.Fatalf("entries = %+v, want only the dosa row", entries)
	}
	if entries[0].Item != "dosa" {
		t.Errorf("Item = %q, want %q", entries[0].Item, "dosa")
	}
}

func TestNormalizeRespectsMaxSlots(t *testing.T) {
	tbl := resolveRecipe(t,
		[]string{"Item", "Raw Material", "Qty", "Unit", "Raw Material.1", "Qty.1", "Unit.1"},
		[]string{"Dosa", "Batter", "0.2", "kg", "Oil", "0.01", "l"},
	)

	entries := Normalize(tbl, 1)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want slot 1 to be ignored", len(entries))
	}
	if entries[0].Ingredient != "batter" {
		t.Errorf("Ingredient = %q, want %q", entries[0].Ingredient, "batter")
	}
}

func TestNormalizeKeysAreCanonical(t *testing.T) {
	tbl := resolveRecipe(t,
		[]string{"Item", "Raw Material", "Qty", "Unit"},
		[]string{"  Masala DOSA  ", "  BATTER ", "0.25", " kg "},
	)

	entries := Normalize(tbl, 0)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Item != "masala dosa" {
		t.Errorf("Item = %q, want %q", e.Item, "masala dosa")
	}
	if e.Ingredient != "batter" {
		t.Errorf("Ingredient = %q, want %q", e.Ingredient, "batter")
	}
	if e.Unit != "kg" {
		t.Errorf("Unit = %q, want %q", e.Unit, "kg")
	}
}
