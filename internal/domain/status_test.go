package domain

import "testing"

func TestClassifyPercentError(t *testing.T) {
	tests := []struct {
		pe, tol float64
		want    AccuracyStatus
	}{
		{0, 10, StatusAccurate},
		{10, 10, StatusAccurate},
		{-10, 10, StatusAccurate},
		{10.1, 10, StatusUnderForecasted},
		{-10.1, 10, StatusOverForecasted},
		{3, 2, StatusUnderForecasted},
	}
	for _, tt := range tests {
		if got := ClassifyPercentError(tt.pe, tt.tol); got != tt.want {
			t.Errorf("ClassifyPercentError(%v, %v) = %v, want %v", tt.pe, tt.tol, got, tt.want)
		}
	}
}

func TestAccuracyStatusLabelRoundTrip(t *testing.T) {
	for _, status := range []AccuracyStatus{StatusAccurate, StatusOverForecasted, StatusUnderForecasted} {
		label := AccuracyStatusLabel(status)
		parsed, ok := ParseAccuracyStatus(label)
		if !ok || parsed != status {
			t.Errorf("ParseAccuracyStatus(%q) = %v, %v; want %v", label, parsed, ok, status)
		}
	}

	if _, ok := ParseAccuracyStatus("wildly off"); ok {
		t.Error("ParseAccuracyStatus should reject unknown labels")
	}
}
