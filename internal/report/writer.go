package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

// Writer persists a fully computed table as a named artifact and returns
// the path it wrote. Implementations must write the whole artifact or
// nothing.
type Writer interface {
	Write(table Table) (string, error)
}

// artifactDir returns `<root>/<YYYY-MM-DD>`, creating it if needed. Exports
// are grouped by run date so repeated runs never clobber each other.
func artifactDir(root string, now time.Time) (string, error) {
	dir := filepath.Join(root, now.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory %s: %w", dir, err)
	}
	return dir, nil
}

func artifactName(table Table, now time.Time, ext string) string {
	return fmt.Sprintf("%s_%s%s", table.Name, now.Format("15-04-05"), ext)
}

// CSVWriter writes tables as CSV files under a dated export folder.
type CSVWriter struct {
	Root string
	Now  func() time.Time
}

func (w *CSVWriter) Write(table Table) (string, error) {
	now := time.Now()
	if w.Now != nil {
		now = w.Now()
	}
	dir, err := artifactDir(w.Root, now)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, artifactName(table, now, ".csv"))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(table.Header); err != nil {
		return "", err
	}
	for _, row := range table.Rows {
		if err := cw.Write(row); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to flush %s: %w", path, err)
	}

	return path, nil
}

// XLSXWriter writes tables as single-sheet workbooks. WithChart embeds a
// grouped column chart of the second and third columns (forecast vs actual)
// next to the data, matching the accuracy report variant.
type XLSXWriter struct {
	Root      string
	WithChart bool
	Now       func() time.Time
}

func (w *XLSXWriter) Write(table Table) (string, error) {
	now := time.Now()
	if w.Now != nil {
		now = w.Now()
	}
	dir, err := artifactDir(w.Root, now)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, artifactName(table, now, ".xlsx"))

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	if err := f.SetSheetRow(sheet, "A1", rowPtr(table.Header)); err != nil {
		return "", err
	}
	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		if err := f.SetSheetRow(sheet, cell, rowPtr(row)); err != nil {
			return "", err
		}
	}

	if w.WithChart && len(table.Rows) > 0 && len(table.Header) >= 3 {
		if err := w.addComparisonChart(f, sheet, table); err != nil {
			return "", err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}

	return path, nil
}

func (w *XLSXWriter) addComparisonChart(f *excelize.File, sheet string, table Table) error {
	lastRow := len(table.Rows) + 1
	categories := fmt.Sprintf("%s!$A$2:$A$%d", sheet, lastRow)

	series := make([]excelize.ChartSeries, 0, 2)
	for _, col := range []string{"B", "C"} {
		headerCell := fmt.Sprintf("%s!$%s$1", sheet, col)
		values := fmt.Sprintf("%s!$%s$2:$%s$%d", sheet, col, col, lastRow)
		series = append(series, excelize.ChartSeries{
			Name:       headerCell,
			Categories: categories,
			Values:     values,
		})
	}

	anchor, err := excelize.CoordinatesToCellName(len(table.Header)+2, 2)
	if err != nil {
		return err
	}

	return f.AddChart(sheet, anchor, &excelize.Chart{
		Type: excelize.Col,
		Title: []excelize.RichTextRun{
			{Text: "Forecast vs Actual"},
		},
		Series: series,
	})
}

func rowPtr(cells []string) *[]interface{} {
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return &row
}
