package pipeline

import "time"

// RunKind names the two pipeline flavors this service executes.
type RunKind string

const (
	RunPurchasePlan RunKind = "purchase_plan"
	RunAccuracy     RunKind = "forecast_accuracy"
)

// RunStatus represents the lifecycle of a recorded pipeline run.
type RunStatus string

const (
	StatusPending    RunStatus = "pending"
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// Run is the audit record of a single pipeline invocation. It exists for
// operators; the computation itself never reads it back.
type Run struct {
	ID           int64
	Kind         RunKind
	SourceFiles  int
	OutputRows   int
	StartedAt    time.Time
	CompletedAt  *time.Time
	Status       RunStatus
	ErrorMessage string
}

// AccuracyPair is one forecast/actual file pair in a batch accuracy run.
type AccuracyPair struct {
	Label        string
	ForecastPath string
	ActualPath   string
}

// PairResult is the per-pair outcome of a batch run. A failed pair carries
// its error and leaves the rest of the batch untouched.
type PairResult struct {
	Pair    AccuracyPair
	Records int
	Err     error
}
