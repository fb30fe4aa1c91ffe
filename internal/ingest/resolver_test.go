package ingest

import (
	"errors"
	"strings"
	"testing"
)

func rawTable(rows ...[]string) RawTable {
	return RawTable{Source: "test.xlsx", Rows: rows}
}

func TestResolveFindsHeaderRegardlessOfPosition(t *testing.T) {
	tests := []struct {
		name      string
		raw       RawTable
		wantRow   int
		wantItems []string
	}{
		{
			name: "header on first row",
			raw: rawTable(
				[]string{"Item", "Qty"},
				[]string{"Dosa", "10"},
			),
			wantRow:   0,
			wantItems: []string{"Dosa"},
		},
		{
			name: "banner rows above header",
			raw: rawTable(
				[]string{"Temple Street Cafe"},
				[]string{""},
				[]string{"Sales Report, March"},
				[]string{"Item", "Qty"},
				[]string{"Dosa", "10"},
				[]string{"Idli", "4"},
			),
			wantRow:   3,
			wantItems: []string{"Dosa", "Idli"},
		},
		{
			name: "free-text labels resolve by substring",
			raw: rawTable(
				[]string{"Item Name", "Qty Sold"},
				[]string{"Dosa", "10"},
			),
			wantRow:   0,
			wantItems: []string{"Dosa"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Resolve(tt.raw, []string{"item", "qty"}, Options{})
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if tbl.HeaderRow != tt.wantRow {
				t.Errorf("HeaderRow = %d, want %d", tbl.HeaderRow, tt.wantRow)
			}
			if tbl.Len() != len(tt.wantItems) {
				t.Fatalf("Len() = %d, want %d", tbl.Len(), len(tt.wantItems))
			}
			for i, want := range tt.wantItems {
				if got := tbl.RoleValue(i, "item"); got != want {
					t.Errorf("RoleValue(%d, item) = %q, want %q", i, got, want)
				}
			}
		})
	}
}

func TestResolveExactMatchWinsOverSubstring(t *testing.T) {
	raw := rawTable(
		[]string{"Line Item Code", "Item", "Qty"},
		[]string{"X1", "Dosa", "10"},
	)

	tbl, err := Resolve(raw, []string{"item", "qty"}, Options{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := tbl.RoleValue(0, "item"); got != "Dosa" {
		t.Errorf("RoleValue(0, item) = %q, want %q", got, "Dosa")
	}
}

func TestResolveStrictnessDisablesSubstring(t *testing.T) {
	raw := rawTable(
		[]string{"Item Name", "Qty Sold"},
		[]string{"Dosa", "10"},
	)

	if _, err := Resolve(raw, []string{"item", "qty"}, Options{Strictness: MatchExact}); err == nil {
		t.Fatal("Resolve() with MatchExact should fail on free-text labels")
	}

	raw = rawTable(
		[]string{"Item", "Qty"},
		[]string{"Dosa", "10"},
	)
	if _, err := Resolve(raw, []string{"item", "qty"}, Options{Strictness: MatchExact}); err != nil {
		t.Fatalf("Resolve() with MatchExact on exact labels: %v", err)
	}
}

func TestResolveSchemaNotFound(t *testing.T) {
	rows := make([][]string, 0, 15)
	rows = append(rows, []string{"nothing", "useful"})
	for i := 0; i < 14; i++ {
		rows = append(rows, []string{"data", "data"})
	}

	_, err := Resolve(RawTable{Source: "bad.xlsx", Rows: rows}, []string{"item", "qty"}, Options{})
	if err == nil {
		t.Fatal("Resolve() should fail when no header candidate matches")
	}

	var schemaErr *SchemaNotFoundError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error = %T, want *SchemaNotFoundError", err)
	}
	if schemaErr.Source != "bad.xlsx" {
		t.Errorf("Source = %q, want %q", schemaErr.Source, "bad.xlsx")
	}
	if schemaErr.RowsScanned != DefaultRowBudget {
		t.Errorf("RowsScanned = %d, want %d", schemaErr.RowsScanned, DefaultRowBudget)
	}
}

func TestResolveCustomRowBudget(t *testing.T) {
	raw := rawTable(
		[]string{"banner"},
		[]string{"banner"},
		[]string{"Item", "Qty"},
		[]string{"Dosa", "10"},
	)

	if _, err := Resolve(raw, []string{"item", "qty"}, Options{RowBudget: 2}); err == nil {
		t.Fatal("Resolve() should not look past the row budget")
	}
	if _, err := Resolve(raw, []string{"item", "qty"}, Options{RowBudget: 3}); err != nil {
		t.Fatalf("Resolve() within budget: %v", err)
	}
}

func TestResolveDropsFullyEmptyColumns(t *testing.T) {
	raw := rawTable(
		[]string{"Item", "", "Qty", ""},
		[]string{"Dosa", "", "10", ""},
		[]string{"Idli", "", "4", ""},
	)

	tbl, err := Resolve(raw, []string{"item", "qty"}, Options{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := len(tbl.Columns()); got != 2 {
		t.Errorf("Columns() = %v, want 2 surviving columns", tbl.Columns())
	}
	if got := tbl.RoleNumber(1, "qty"); got != 4 {
		t.Errorf("RoleNumber(1, qty) = %v, want 4", got)
	}
}

func TestResolveKeepsUnlabeledColumnWithData(t *testing.T) {
	raw := rawTable(
		[]string{"Item", "Qty", ""},
		[]string{"Dosa", "10", "note"},
	)

	tbl, err := Resolve(raw, []string{"item", "qty"}, Options{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := len(tbl.Columns()); got != 3 {
		t.Errorf("Columns() = %v, want the data-bearing unlabeled column kept", tbl.Columns())
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Item", "item"},
		{"  Qty Sold  ", "qtysold"},
		{"Raw Material.1", "rawmaterial1"},
		{"Current_Stock", "currentstock"},
		{"", ""},
		{"###", ""},
	}
	for _, tt := range tests {
		if got := NormalizeLabel(tt.in); got != tt.want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Masala Dosa", "masala dosa"},
		{"  DOSA  ", "dosa"},
		{"idli", "idli"},
	}
	for _, tt := range tests {
		if got := NormalizeKey(tt.in); got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"10", 10},
		{"1,250.5", 1250.5},
		{" 3 ", 3},
		{"", 0},
		{"n/a", 0},
	}
	for _, tt := range tests {
		if got := ParseNumber(tt.in); got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestReadCSVRaggedRows(t *testing.T) {
	data := "Item,Qty\nDosa,10\nIdli,4,extra\nVada\n"

	raw, err := ReadCSV("sales.csv", strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(raw.Rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(raw.Rows))
	}
	if raw.Source != "sales.csv" {
		t.Errorf("Source = %q, want %q", raw.Source, "sales.csv")
	}
}
