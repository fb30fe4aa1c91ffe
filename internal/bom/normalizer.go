// Package bom converts the wide recipe export, where one row is a finished
// menu item and ingredients occupy repeated column groups, into a long
// item→ingredient bill of materials.
package bom

import (
	"strconv"
	"strings"

	"github.com/templestreet/forecast-app/internal/domain"
	"github.com/templestreet/forecast-app/internal/ingest"
)

// DefaultMaxSlots bounds how many ingredient column groups are probed. The
// recipe export writes RawMaterial, Qty, Unit and then suffixed variants
// (RawMaterial.1, Qty.1, ...) up to however many ingredients the widest
// item carries.
const DefaultMaxSlots = 20

// Column roles used by the recipe export. Labels arrive normalized, so
// "Raw Material.1" has already become "rawmaterial1".
const (
	RoleItem      = "item"
	colIngredient = "rawmaterial"
	colSlotQty    = "qty"
	colSlotUnit   = "unit"
)

// Normalize explodes the wide recipe table into one BomEntry per
// (item, ingredient) pair. Slots missing an ingredient name or a positive
// quantity contribute nothing; an item with zero valid slots simply yields
// no rows. Output order follows input row order, slots left to right.
func Normalize(wide *ingest.Table, maxSlots int) []domain.BomEntry {
	if maxSlots <= 0 {
		maxSlots = DefaultMaxSlots
	}

	entries := make([]domain.BomEntry, 0, wide.Len())
	for slot := 0; slot < maxSlots; slot++ {
		ingredientCol := slotLabel(colIngredient, slot)
		if !wide.HasColumn(ingredientCol) {
			continue
		}
		qtyCol := slotLabel(colSlotQty, slot)
		unitCol := slotLabel(colSlotUnit, slot)

		for i := 0; i < wide.Len(); i++ {
			item := ingest.NormalizeKey(wide.RoleValue(i, RoleItem))
			ingredient := ingest.NormalizeKey(wide.Value(i, ingredientCol))
			if item == "" || ingredient == "" {
				continue
			}
			qty := wide.Number(i, qtyCol)
			if qty == 0 {
				continue
			}
			entries = append(entries, domain.BomEntry{
				Item:       item,
				Ingredient: ingredient,
				QtyPerUnit: qty,
				Unit:       strings.TrimSpace(wide.Value(i, unitCol)),
			})
		}
	}

	return entries
}

// Index groups entries by item key for the forecast join.
func Index(entries []domain.BomEntry) map[string][]domain.BomEntry {
	byItem := make(map[string][]domain.BomEntry)
	for _, e := range entries {
		byItem[e.Item] = append(byItem[e.Item], e)
	}
	return byItem
}

func slotLabel(base string, slot int) string {
	if slot == 0 {
		return base
	}
	return base + strconv.Itoa(slot)
}
