package result

import "time"

// Status represents the terminal outcome of a single evaluated leaf.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// RunState tracks the lifecycle of one execution attempt.
type RunState string

const (
	RunStateCreated   RunState = "created"
	RunStateRunning   RunState = "running"
	RunStateCompleted RunState = "completed"
	RunStateCancelled RunState = "cancelled"
	// RunStateFailed marks an attempt abandoned after a catastrophic fault.
	RunStateFailed RunState = "catastrophically_failed"
	// RunStateAborted marks a result returned by a poisoned engine without
	// any execution having been attempted.
	RunStateAborted RunState = "aborted"
)

// Stage markers used when a failure occurs outside normal step execution.
const (
	StageContext   = "context"
	StageTraversal = "traversal"
)

// StepResult captures the outcome of one evaluated leaf, or of a fault that
// occurred outside step execution (in which case Stage names where).
type StepResult struct {
	StepID  string
	Status  Status
	Message string
	Actual  string
	Stage   string
}

// Recorder is the sink leaf execution reports into.
type Recorder interface {
	Record(res StepResult)
}

// PerformanceRecord is one named, timed stage of a run. Start is the offset
// from the beginning of the attempt.
type PerformanceRecord struct {
	Category string
	Name     string
	Start    time.Duration
	Duration time.Duration
}

// SpecResults is the unit streamed to the consumer and returned to the
// caller: one per attempt, immutable after assembly.
type SpecResults struct {
	SpecID      string
	Attempt     int
	State       RunState
	Duration    time.Duration
	Performance []PerformanceRecord
	Counts      Counts
	Results     []StepResult
}

// Passed reports whether the attempt completed with no wrong answers and no
// exceptions.
func (r *SpecResults) Passed() bool {
	if r == nil {
		return false
	}
	return r.State == RunStateCompleted && r.Counts.Wrong == 0 && r.Counts.Exceptions == 0
}

// Aborted constructs the marker result a poisoned engine returns without
// touching the context or the step tree.
func Aborted(specID, reason string) *SpecResults {
	return &SpecResults{
		SpecID: specID,
		State:  RunStateAborted,
		Counts: Counts{},
		Results: []StepResult{{
			StepID:  specID,
			Status:  StatusError,
			Message: reason,
			Stage:   StageContext,
		}},
	}
}
