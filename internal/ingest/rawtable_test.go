package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadFileXLSX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := [][]interface{}{
		{"Item", "Qty"},
		{"Dosa", 10},
		{"Idli", 4},
	}
	for i, row := range cells {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	raw, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if raw.Source != path {
		t.Errorf("Source = %q, want %q", raw.Source, path)
	}
	if len(raw.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(raw.Rows))
	}
	if raw.Rows[1][0] != "Dosa" || raw.Rows[1][1] != "10" {
		t.Errorf("row 1 = %v", raw.Rows[1])
	}
}

func TestReadFileCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stock.csv")
	if err := os.WriteFile(path, []byte("Item,Current Stock\nBatter,10\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	raw, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(raw.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(raw.Rows))
	}
}

func TestReadFileUnsupportedExtension(t *testing.T) {
	if _, err := ReadFile("report.pdf"); err == nil {
		t.Fatal("ReadFile() should reject unsupported extensions")
	}
}
