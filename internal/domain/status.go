package domain

import "strings"

// AccuracyStatus classifies a forecast against actual consumption.
type AccuracyStatus string

const (
	StatusAccurate        AccuracyStatus = "Accurate"
	StatusOverForecasted  AccuracyStatus = "OverForecasted"
	StatusUnderForecasted AccuracyStatus = "UnderForecasted"
)

var accuracyStatusLabels = map[AccuracyStatus]string{
	StatusAccurate:        "Accurate",
	StatusOverForecasted:  "Over Forecasted",
	StatusUnderForecasted: "Under Forecasted",
}

var accuracyStatusCodes = map[string]AccuracyStatus{
	"accurate":         StatusAccurate,
	"over forecasted":  StatusOverForecasted,
	"overforecasted":   StatusOverForecasted,
	"under forecasted": StatusUnderForecasted,
	"underforecasted":  StatusUnderForecasted,
}

// AccuracyStatusLabel returns the human-readable report label for a status.
func AccuracyStatusLabel(status AccuracyStatus) string {
	if label, ok := accuracyStatusLabels[status]; ok {
		return label
	}

	return string(status)
}

// ParseAccuracyStatus returns the status for a report label (case-insensitive).
func ParseAccuracyStatus(label string) (AccuracyStatus, bool) {
	status, ok := accuracyStatusCodes[strings.ToLower(strings.TrimSpace(label))]

	return status, ok
}

// ClassifyPercentError maps a signed percent error to a status given a
// tolerance band. Zero-vs-zero lands inside the band and reads Accurate.
func ClassifyPercentError(percentError, tolerancePct float64) AccuracyStatus {
	switch {
	case percentError < -tolerancePct:
		return StatusOverForecasted
	case percentError > tolerancePct:
		return StatusUnderForecasted
	default:
		return StatusAccurate
	}
}
