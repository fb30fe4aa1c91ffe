package ingest

import "fmt"

// SchemaNotFoundError reports that no candidate header row satisfied the
// required column roles within the scan budget. It carries enough context
// for an operator to fix the source file.
type SchemaNotFoundError struct {
	Source      string
	Roles       []string
	RowsScanned int
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("required columns %v not found in %s (scanned %d header candidates)",
		e.Roles, e.Source, e.RowsScanned)
}
