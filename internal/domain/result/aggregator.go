package result

// Aggregator accumulates per-leaf outcomes into hierarchical counts and a
// flat result list. It is owned by exactly one run; callers do not need to
// synchronize access.
type Aggregator struct {
	counts  Counts
	results []StepResult
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Record appends a leaf outcome and updates the rolled-up counts.
func (a *Aggregator) Record(res StepResult) {
	a.results = append(a.results, res)
	a.counts.Tally(res.Status)
}

// Counts returns the current rolled-up counts.
func (a *Aggregator) Counts() Counts {
	return a.counts
}

// Results returns a copy of the flat result list in recording order.
func (a *Aggregator) Results() []StepResult {
	out := make([]StepResult, len(a.results))
	copy(out, a.results)
	return out
}

var _ Recorder = (*Aggregator)(nil)
