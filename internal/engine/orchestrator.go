package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/result"
	"github.com/alexisbeaulieu97/specdriver/internal/domain/spec"
	"github.com/alexisbeaulieu97/specdriver/internal/logger"
	"github.com/alexisbeaulieu97/specdriver/internal/ports"
	apperrors "github.com/alexisbeaulieu97/specdriver/pkg/errors"
)

// State tracks engine validity. A catastrophic failure flips the engine to
// Invalid and it stays there until explicitly Reset.
type State string

const (
	StateValid   State = "valid"
	StateInvalid State = "invalid"
)

// StopConditions governs the retry policy for subsequent runs.
type StopConditions struct {
	MaxRetries int
}

// Request asks the orchestrator to execute one specification.
type Request struct {
	ID   string
	Spec *spec.Specification
}

// NewRequest wraps a specification with a fresh request identifier.
func NewRequest(specification *spec.Specification) *Request {
	return &Request{ID: uuid.NewString(), Spec: specification}
}

// ExecutionMode customizes a run from the outside: BeforeRunning may mutate
// or validate the request, AfterRunning is always notified of the final
// results and engine state, even for aborted runs.
type ExecutionMode interface {
	BeforeRunning(req *Request) error
	AfterRunning(req *Request, results *result.SpecResults, queue ports.Queue, state State)
}

// Diagnostic is the payload published on the side diagnostic channel when
// the engine is poisoned.
type Diagnostic struct {
	SpecID string
	Reason string
}

// Orchestrator owns run lifecycle: single-flight execution, cooperative
// cancellation, retry policy, and engine poisoning. Execute is synchronous;
// Cancel, IsRunning and RunningSpecID are safe to call concurrently from
// other goroutines.
type Orchestrator struct {
	factory ContextFactory
	mode    ExecutionMode
	pub     ports.Publisher
	log     *logger.Logger

	mu        sync.RWMutex
	state     State
	reason    string
	stop      StopConditions
	running   *Run
	inFlight  bool
	requestID string
	specID    string
	cancelRun context.CancelFunc
}

// Option configures an orchestrator instance.
type Option func(*Orchestrator)

// WithLogger injects a logger.
func WithLogger(log *logger.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithMode installs the execution-mode hooks.
func WithMode(mode ExecutionMode) Option {
	return func(o *Orchestrator) { o.mode = mode }
}

// WithPublisher installs the side diagnostic channel.
func WithPublisher(pub ports.Publisher) Option {
	return func(o *Orchestrator) { o.pub = pub }
}

// WithStopConditions sets the initial retry policy.
func WithStopConditions(stop StopConditions) Option {
	return func(o *Orchestrator) { o.stop = stop }
}

// New constructs an orchestrator around a context factory.
func New(factory ContextFactory, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		factory: factory,
		state:   StateValid,
		log:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Execute runs the request's specification to completion, retrying failed
// attempts up to the configured maximum, and streams results onto queue.
// Exactly one Execute may be in progress per orchestrator; Cancel and the
// status queries remain safe concurrently. A nil result with nil error means
// the request was cancelled before anything executed.
func (o *Orchestrator) Execute(ctx context.Context, req *Request, queue ports.Queue) (results *result.SpecResults, err error) {
	if req == nil || req.Spec == nil {
		return nil, fmt.Errorf("request must carry a specification")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if queue == nil {
		return nil, fmt.Errorf("consumer queue is required")
	}

	if o.mode != nil {
		if err := o.mode.BeforeRunning(req); err != nil {
			return nil, err
		}
	}

	defer func() {
		if o.mode != nil {
			o.mode.AfterRunning(req, results, queue, o.State())
		}
	}()

	if state, reason := o.snapshot(); state == StateInvalid {
		o.log.WithFields(map[string]any{"spec": req.Spec.ID, "reason": reason}).Warn("refusing run: engine poisoned")
		results = result.Aborted(req.Spec.ID, "engine poisoned: "+reason)
		queue.Enqueue(ports.NewEnvelope(results))
		return results, nil
	}

	maxRetries := o.StopConditions().MaxRetries
	for {
		attempt, poisoned := o.runAttempt(ctx, req, queue)
		if attempt == nil {
			// Cancelled before the context finished creating: nothing
			// executed, nothing to report.
			return nil, nil
		}
		results = attempt
		if poisoned || attempt.Passed() || attempt.State != result.RunStateCompleted {
			return results, nil
		}
		if req.Spec.Attempts() > maxRetries {
			return results, nil
		}
		o.log.WithFields(map[string]any{
			"spec":    req.Spec.ID,
			"attempt": req.Spec.Attempts(),
			"counts":  attempt.Counts.String(),
		}).Info("attempt failed, retrying")
	}
}

// runAttempt executes a single attempt. It returns the attempt's results
// (nil when cancelled before the context existed) and whether the engine was
// poisoned by this attempt.
func (o *Orchestrator) runAttempt(parent context.Context, req *Request, queue ports.Queue) (*result.SpecResults, bool) {
	runCtx, cancel := context.WithCancel(parent)
	defer cancel()

	o.mu.Lock()
	o.inFlight = true
	o.requestID = req.ID
	o.specID = req.Spec.ID
	o.cancelRun = cancel
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.running = nil
		o.requestID = ""
		o.specID = ""
		o.cancelRun = nil
		o.mu.Unlock()
	}()

	attempt := req.Spec.BeginAttempt()
	recorder := NewRecorder()

	stage := recorder.BeginStage("context", "creation")
	execCtx, err := o.factory(runCtx)
	stage.End()

	if err != nil {
		creationErr := apperrors.NewContextCreationError(req.Spec.ID, err)
		o.poison(req.Spec.ID, creationErr.Error())

		performance, total := recorder.Finish()
		res := &result.SpecResults{
			SpecID:      req.Spec.ID,
			Attempt:     attempt,
			State:       result.RunStateFailed,
			Duration:    total,
			Performance: performance,
			Results: []result.StepResult{{
				StepID:  req.Spec.ID,
				Status:  result.StatusError,
				Message: creationErr.Error(),
				Stage:   result.StageContext,
			}},
		}
		res.Counts.Tally(result.StatusError)
		queue.Enqueue(ports.NewEnvelope(res))
		return res, true
	}

	if runCtx.Err() != nil {
		if closeErr := execCtx.Close(); closeErr != nil {
			o.log.WithFields(map[string]any{"spec": req.Spec.ID}).Error("context release failed", closeErr)
		}
		recorder.Finish()
		return nil, false
	}

	run := NewRun(req.Spec, execCtx, recorder, queue, o.log)
	o.mu.Lock()
	o.running = run
	o.mu.Unlock()

	catErr := run.Execute(runCtx)
	res := run.Results()

	poisoned := false
	if catErr != nil {
		o.poison(req.Spec.ID, catErr.Error())
		poisoned = true
	}

	queue.Enqueue(ports.NewEnvelope(res))
	return res, poisoned
}

// Cancel requests cooperative cancellation of the in-flight run. A no-op
// when nothing is running or the id names a different request; an empty id
// cancels whatever is running. Cancel never panics out to the caller.
func (o *Orchestrator) Cancel(id string) {
	defer func() {
		if p := recover(); p != nil {
			o.log.WithFields(map[string]any{"request": id}).Error("cancellation failed", fmt.Errorf("%v", p))
		}
	}()

	o.mu.RLock()
	cancel := o.cancelRun
	requestID := o.requestID
	o.mu.RUnlock()

	if cancel == nil {
		return
	}
	if id != "" && id != requestID {
		return
	}
	cancel()
}

// IsRunning reports whether a run exists that has neither finished nor been
// cancelled.
func (o *Orchestrator) IsRunning() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.running == nil {
		return o.inFlight
	}
	switch o.running.State() {
	case result.RunStateCreated, result.RunStateRunning:
		return true
	}
	return false
}

// RunningSpecID returns the identifier of the in-flight specification.
func (o *Orchestrator) RunningSpecID() (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if !o.inFlight {
		return "", false
	}
	return o.specID, true
}

// UseStopConditions replaces the retry policy for subsequent runs.
func (o *Orchestrator) UseStopConditions(stop StopConditions) {
	o.mu.Lock()
	o.stop = stop
	o.mu.Unlock()
}

// StopConditions returns the current retry policy.
func (o *Orchestrator) StopConditions() StopConditions {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.stop
}

// State returns the engine's validity.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Reset restores a poisoned engine to Valid. There is no automatic
// self-healing; this is the external reset.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.state = StateValid
	o.reason = ""
	o.mu.Unlock()
	o.log.Info("engine state reset to valid")
}

func (o *Orchestrator) snapshot() (State, string) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state, o.reason
}

// poison marks the engine invalid and reports the condition on the side
// diagnostic channel.
func (o *Orchestrator) poison(specID, reason string) {
	o.mu.Lock()
	o.state = StateInvalid
	o.reason = reason
	o.mu.Unlock()

	o.log.WithFields(map[string]any{"spec": specID, "reason": reason}).Error("engine poisoned", nil)
	if o.pub != nil {
		_ = o.pub.Publish(context.Background(), ports.NewEnvelope(Diagnostic{SpecID: specID, Reason: reason}))
	}
}
