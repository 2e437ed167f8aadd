package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/result"
	"github.com/alexisbeaulieu97/specdriver/internal/domain/spec"
	"github.com/alexisbeaulieu97/specdriver/internal/logger"
	"github.com/alexisbeaulieu97/specdriver/internal/ports"
	apperrors "github.com/alexisbeaulieu97/specdriver/pkg/errors"
)

// Run interprets one attempt of a specification: it walks the step tree
// against the execution context, honors cooperative cancellation at step
// boundaries, and feeds the timing recorder and result aggregator. One Run
// instance always represents exactly one attempt.
type Run struct {
	spec     *spec.Specification
	execCtx  *Context
	recorder *Recorder
	agg      *result.Aggregator
	sink     result.Recorder
	log      *logger.Logger

	mu    sync.Mutex
	state result.RunState
}

// streamSink fans each recorded outcome into the aggregator and, as an
// intermediate progress envelope, onto the consumer queue.
type streamSink struct {
	agg   *result.Aggregator
	queue ports.Queue
}

func (s *streamSink) Record(res result.StepResult) {
	s.agg.Record(res)
	if s.queue != nil {
		s.queue.Enqueue(ports.NewEnvelope(res))
	}
}

// NewRun wires an attempt together and binds the context to its sink.
func NewRun(specification *spec.Specification, execCtx *Context, recorder *Recorder, queue ports.Queue, log *logger.Logger) *Run {
	agg := result.NewAggregator()
	sink := &streamSink{agg: agg, queue: queue}
	execCtx.bind(sink)
	if log == nil {
		log = logger.NewNop()
	}
	return &Run{
		spec:     specification,
		execCtx:  execCtx,
		recorder: recorder,
		agg:      agg,
		sink:     sink,
		log:      log,
		state:    result.RunStateCreated,
	}
}

// State returns the run's lifecycle state. Safe to call from other
// goroutines while Execute is in progress.
func (r *Run) State() result.RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Run) setState(state result.RunState) {
	r.mu.Lock()
	r.state = state
	r.mu.Unlock()
}

// Execute traverses the specification depth-first in order. The cancellation
// flag is checked before each top-level step; once set, every remaining leaf
// is recorded skipped and the run ends Cancelled. A fault escaping the
// traversal loop itself is catastrophic: the attempt is abandoned with a
// root-level error outcome and the returned error tells the orchestrator to
// poison the engine. The context is always released.
func (r *Run) Execute(ctx context.Context) (catErr error) {
	r.setState(result.RunStateRunning)

	defer func() {
		if p := recover(); p != nil {
			r.setState(result.RunStateFailed)
			catErr = apperrors.NewCatastrophicError(r.spec.ID, result.StageTraversal, fmt.Errorf("%v", p))
			r.sink.Record(result.StepResult{
				StepID:  r.spec.ID,
				Status:  result.StatusError,
				Message: catErr.Error(),
				Stage:   result.StageTraversal,
			})
			r.log.WithFields(map[string]any{"spec": r.spec.ID}).Error("catastrophic failure, abandoning attempt", catErr)
		}
		if err := r.execCtx.Close(); err != nil {
			r.log.WithFields(map[string]any{"spec": r.spec.ID}).Error("context release failed", err)
		}
	}()

	for i, step := range r.spec.Steps {
		if ctx.Err() != nil {
			for _, remaining := range r.spec.Steps[i:] {
				remaining.Skip(r.sink)
			}
			r.setState(result.RunStateCancelled)
			r.log.WithFields(map[string]any{"spec": r.spec.ID, "skipped_from": step.ID()}).Info("run cancelled")
			return nil
		}

		stage := r.recorder.BeginStage("step", step.ID())
		spec.ExecuteSafely(ctx, r.execCtx, step)
		stage.End()
	}

	// Cancellation inside the final step: containers have already skipped
	// their remaining children, so the attempt is cancelled, not completed.
	if ctx.Err() != nil {
		r.setState(result.RunStateCancelled)
		r.log.WithFields(map[string]any{"spec": r.spec.ID}).Info("run cancelled")
		return nil
	}

	r.setState(result.RunStateCompleted)
	return nil
}

// Results assembles the attempt's immutable result object. It finishes the
// timing recorder, so no further stages may be recorded.
func (r *Run) Results() *result.SpecResults {
	performance, total := r.recorder.Finish()
	return &result.SpecResults{
		SpecID:      r.spec.ID,
		Attempt:     r.spec.Attempts(),
		State:       r.State(),
		Duration:    total,
		Performance: performance,
		Counts:      r.agg.Counts(),
		Results:     r.agg.Results(),
	}
}
