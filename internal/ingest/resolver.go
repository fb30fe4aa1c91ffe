package ingest

import (
	"strconv"
	"strings"
)

// DefaultRowBudget bounds how many leading rows are tried as header
// candidates. Ten covers every observed export variant; operators insert
// banner rows and logos above the real header, never that many.
const DefaultRowBudget = 10

// Strictness controls how a required role token is matched against a
// normalized column label.
type Strictness int

const (
	// MatchSubstring prefers an exact label match and falls back to a
	// substring match, so free-text labels like "Qty Sold" still resolve.
	MatchSubstring Strictness = iota
	// MatchExact disables the substring fallback.
	MatchExact
)

// Options tune schema resolution. The zero value uses DefaultRowBudget and
// substring matching.
type Options struct {
	RowBudget  int
	Strictness Strictness
}

// Table is a RawTable with a resolved schema: a known header row, normalized
// column labels, and a mapping from required roles to concrete columns.
type Table struct {
	Source    string
	HeaderRow int

	labels []string
	colOf  map[string]int
	roleOf map[string]int
	rows   [][]string
}

var labelSanitizer = func(r rune) rune {
	if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
		return r
	}
	return -1
}

// NormalizeLabel canonicalizes a raw column label: trim, lower-case, strip
// everything that is not a letter or digit.
func NormalizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	return strings.Map(labelSanitizer, label)
}

// NormalizeKey canonicalizes an item or ingredient name into the join key
// shared by the sales, recipe and stock tables. Equality of this key is the
// sole join rule; no fuzzy matching happens anywhere downstream.
func NormalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ParseNumber parses a cell as a float, tolerating thousands separators and
// blank cells. Blank or unparseable cells read as 0.
func ParseNumber(cell string) float64 {
	v := strings.TrimSpace(cell)
	if v == "" {
		return 0
	}
	v = strings.ReplaceAll(v, ",", "")
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

// Resolve scans raw for the true header row: the first candidate within the
// row budget whose normalized labels cover every required role. Rows below
// the header become the table body. The scan is deterministic; on exhaustion
// it fails with *SchemaNotFoundError.
func Resolve(raw RawTable, requiredRoles []string, opts Options) (*Table, error) {
	budget := opts.RowBudget
	if budget <= 0 {
		budget = DefaultRowBudget
	}
	if budget > len(raw.Rows) {
		budget = len(raw.Rows)
	}

	for r := 0; r < budget; r++ {
		labels := make([]string, len(raw.Rows[r]))
		for i, cell := range raw.Rows[r] {
			labels[i] = NormalizeLabel(cell)
		}

		roleCols, ok := matchRoles(labels, requiredRoles, opts.Strictness)
		if !ok {
			continue
		}

		return buildTable(raw, r, labels, roleCols), nil
	}

	return nil, &SchemaNotFoundError{
		Source:      raw.Source,
		Roles:       requiredRoles,
		RowsScanned: budget,
	}
}

// matchRoles maps each role to the leftmost matching column. Exact matches
// win over substring matches regardless of position.
func matchRoles(labels []string, roles []string, strictness Strictness) (map[string]int, bool) {
	out := make(map[string]int, len(roles))
	for _, role := range roles {
		idx := -1
		for i, label := range labels {
			if label == role {
				idx = i
				break
			}
		}
		if idx < 0 && strictness == MatchSubstring {
			for i, label := range labels {
				if label != "" && strings.Contains(label, role) {
					idx = i
					break
				}
			}
		}
		if idx < 0 {
			return nil, false
		}
		out[role] = idx
	}
	return out, true
}

func buildTable(raw RawTable, headerRow int, labels []string, roleCols map[string]int) *Table {
	body := raw.Rows[headerRow+1:]

	// A column survives when it has a label or any cell content below the
	// header. Everything else is merged-cell or logo residue.
	keep := make([]int, 0, len(labels))
	for i, label := range labels {
		if label != "" {
			keep = append(keep, i)
			continue
		}
		for _, row := range body {
			if i < len(row) && strings.TrimSpace(row[i]) != "" {
				keep = append(keep, i)
				break
			}
		}
	}

	t := &Table{
		Source:    raw.Source,
		HeaderRow: headerRow,
		labels:    make([]string, len(keep)),
		colOf:     make(map[string]int, len(keep)),
		roleOf:    make(map[string]int, len(roleCols)),
		rows:      make([][]string, 0, len(body)),
	}

	rawToKept := make(map[int]int, len(keep))
	for kept, rawIdx := range keep {
		t.labels[kept] = labels[rawIdx]
		rawToKept[rawIdx] = kept
		if _, seen := t.colOf[labels[rawIdx]]; !seen && labels[rawIdx] != "" {
			t.colOf[labels[rawIdx]] = kept
		}
	}
	for role, rawIdx := range roleCols {
		t.roleOf[role] = rawToKept[rawIdx]
	}

	for _, row := range body {
		cells := make([]string, len(keep))
		for kept, rawIdx := range keep {
			if rawIdx < len(row) {
				cells[kept] = row[rawIdx]
			}
		}
		t.rows = append(t.rows, cells)
	}

	return t
}

// Len returns the number of data rows below the header.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns the normalized labels of all surviving columns, in
// original column order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}

// HasColumn reports whether a normalized label exists in the table.
func (t *Table) HasColumn(label string) bool {
	_, ok := t.colOf[label]
	return ok
}

// Value returns the cell at data row i under the first column carrying the
// given normalized label, or "" when the column does not exist.
func (t *Table) Value(i int, label string) string {
	col, ok := t.colOf[label]
	if !ok || i < 0 || i >= len(t.rows) {
		return ""
	}
	return t.rows[i][col]
}

// Number returns Value parsed as a float.
func (t *Table) Number(i int, label string) float64 {
	return ParseNumber(t.Value(i, label))
}

// RoleValue returns the cell at data row i under the column resolved for the
// given required role.
func (t *Table) RoleValue(i int, role string) string {
	col, ok := t.roleOf[role]
	if !ok || i < 0 || i >= len(t.rows) {
		return ""
	}
	return t.rows[i][col]
}

// RoleNumber returns RoleValue parsed as a float.
func (t *Table) RoleNumber(i int, role string) float64 {
	return ParseNumber(t.RoleValue(i, role))
}
