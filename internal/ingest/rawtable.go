package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RawTable is an untrusted grid of cells read straight from a spreadsheet.
// Row offsets and column labels mean nothing until a schema has been
// resolved against it.
type RawTable struct {
	Source string
	Rows   [][]string
}

// ReadFile loads a spreadsheet into a RawTable, dispatching on extension.
// XLSX files are read from their first sheet.
func ReadFile(path string) (RawTable, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return readXLSX(path)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return RawTable{}, err
		}
		defer f.Close()
		return ReadCSV(path, f)
	default:
		return RawTable{}, fmt.Errorf("unsupported file extension %s for %s", ext, path)
	}
}

func readXLSX(path string) (RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return RawTable{}, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return RawTable{}, fmt.Errorf("xlsx file %s has no sheets", path)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return RawTable{}, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	defer rows.Close()

	table := RawTable{Source: path}
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return RawTable{}, fmt.Errorf("failed to read row from %s: %w", path, err)
		}
		table.Rows = append(table.Rows, record)
	}
	if err := rows.Error(); err != nil {
		return RawTable{}, fmt.Errorf("error iterating rows in %s: %w", path, err)
	}

	return table, nil
}

// ReadCSV reads CSV content into a RawTable. Records may have ragged
// lengths; operator-edited exports often do.
func ReadCSV(source string, r io.Reader) (RawTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	table := RawTable{Source: source}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return RawTable{}, fmt.Errorf("failed to read csv %s: %w", source, err)
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}
