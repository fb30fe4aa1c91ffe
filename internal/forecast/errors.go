package forecast

import "fmt"

// InvalidAdjustmentFactorError rejects a negative or non-numeric adjustment
// percentage before any computation happens. The caller re-prompts.
type InvalidAdjustmentFactorError struct {
	Factor float64
}

func (e *InvalidAdjustmentFactorError) Error() string {
	return fmt.Sprintf("invalid adjustment factor %v: must be a non-negative percentage", e.Factor)
}

// NoMatchesError reports that the sales/recipe join matched nothing at all.
// Surfaced as its own condition because it usually indicates a naming
// convention mismatch between the two exports, not a bug.
type NoMatchesError struct {
	SalesItems int
	BomItems   int
}

func (e *NoMatchesError) Error() string {
	return fmt.Sprintf("no sales item matched any recipe row (%d sales items, %d recipe items)",
		e.SalesItems, e.BomItems)
}
