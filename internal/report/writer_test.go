package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/templestreet/forecast-app/internal/domain"
)

var testClock = func() time.Time {
	return time.Date(2026, 8, 30, 14, 5, 9, 0, time.UTC)
}

func sampleOrderTable() Table {
	return PurchaseOrderTable([]domain.PurchaseOrderLine{
		{Ingredient: "batter", Qty: 3, Unit: "kg"},
		{Ingredient: "oil", Qty: 0.5, Unit: "l"},
	})
}

func TestCSVWriterRoundTrip(t *testing.T) {
	root := t.TempDir()
	w := &CSVWriter{Root: root, Now: testClock}

	path, err := w.Write(sampleOrderTable())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	wantPath := filepath.Join(root, "2026-08-30", "Purchase_Order_14-05-09.csv")
	if path != wantPath {
		t.Errorf("path = %q, want %q", path, wantPath)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header plus 2 lines", len(rows))
	}
	if rows[0][0] != "Ingredient" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "batter" || rows[1][1] != "3" || rows[1][2] != "kg" {
		t.Errorf("first line = %v", rows[1])
	}
	if rows[2][1] != "0.5" {
		t.Errorf("oil qty = %q, want %q", rows[2][1], "0.5")
	}
}

func TestXLSXWriterRoundTrip(t *testing.T) {
	root := t.TempDir()
	w := &XLSXWriter{Root: root, Now: testClock}

	path, err := w.Write(sampleOrderTable())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if filepath.Base(path) != "Purchase_Order_14-05-09.xlsx" {
		t.Errorf("artifact name = %q", filepath.Base(path))
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("read workbook: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[1][0] != "batter" || rows[1][1] != "3" {
		t.Errorf("first line = %v", rows[1])
	}
}

func TestXLSXWriterWithChart(t *testing.T) {
	root := t.TempDir()
	w := &XLSXWriter{Root: root, WithChart: true, Now: testClock}

	tbl := AccuracyTable([]domain.AccuracyRecord{
		{Key: "rice", ForecastQty: 100, ActualQty: 95, Difference: -5, PercentError: -5, Score: 95, Status: domain.StatusAccurate},
		{Key: "oil", ForecastQty: 10, ActualQty: 14, Difference: 4, PercentError: 40, Score: 60, Status: domain.StatusUnderForecasted},
	})

	path, err := w.Write(tbl)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("read workbook: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[1][6] != "Accurate" || rows[2][6] != "Under Forecasted" {
		t.Errorf("status column = %q, %q", rows[1][6], rows[2][6])
	}
}

func TestWritersGroupArtifactsByDate(t *testing.T) {
	root := t.TempDir()

	morning := &CSVWriter{Root: root, Now: func() time.Time {
		return time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	}}
	nextDay := &CSVWriter{Root: root, Now: func() time.Time {
		return time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	}}

	p1, err := morning.Write(sampleOrderTable())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	p2, err := nextDay.Write(sampleOrderTable())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if filepath.Dir(p1) == filepath.Dir(p2) {
		t.Errorf("runs on different days share a folder: %q", filepath.Dir(p1))
	}
	if filepath.Base(filepath.Dir(p1)) != "2026-08-30" {
		t.Errorf("dir = %q, want dated folder", filepath.Dir(p1))
	}
}

func TestPurchasePlanTable(t *testing.T) {
	tbl := PurchasePlanTable(
		[]domain.IngredientRequirement{
			{Ingredient: "batter", Unit: "kg", RequiredQty: 13},
			{Ingredient: "oil", Unit: "l", RequiredQty: 0.5},
		},
		map[string]float64{"batter": 20},
	)

	if len(tbl.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(tbl.Rows))
	}
	// Covered ingredient still appears in the plan view with To Order 0.
	if tbl.Rows[0][4] != "0" {
		t.Errorf("batter to-order = %q, want clamped to 0", tbl.Rows[0][4])
	}
	if tbl.Rows[1][4] != "0.5" {
		t.Errorf("oil to-order = %q, want 0.5", tbl.Rows[1][4])
	}
}
