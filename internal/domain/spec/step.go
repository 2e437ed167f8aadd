package spec

import (
	"context"
	"fmt"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/result"
)

// Runtime is the ambient state a step executes against: a mutable key-typed
// state store, service lookup, and the results sink leaf execution reports
// into. Exactly one runtime exists per run and it is passed explicitly; steps
// never read ambient globals.
type Runtime interface {
	// Set stores a named value for later steps of the same run.
	Set(key string, value any)
	// Get returns a previously stored value.
	Get(key string) (any, bool)
	// Service resolves a collaborator by name. Returns a
	// ServiceNotFoundError when absent.
	Service(name string) (any, error)
	// Record emits a leaf outcome to the run's result sink.
	Record(res result.StepResult)
}

// Step is an executable node of the specification tree. Steps hold no hidden
// mutable execution state: re-executing against an equivalent runtime yields
// an equivalent outcome.
type Step interface {
	ID() string
	Grammar() string
	Cells() Cells
	Children() []Step

	// Execute evaluates the step against the runtime, emitting outcomes to
	// the runtime's sink. A returned error is an unexpected fault the caller
	// records as an error outcome; assertion failures and conversion errors
	// are recorded by the step itself and never returned.
	Execute(ctx context.Context, rt Runtime) error

	// Skip records a skipped outcome for every leaf this step would have
	// evaluated.
	Skip(rec result.Recorder)

	// Describe returns the structural model for transmission.
	Describe() Model
}

// Model is the transmissible structure of a step: cells and children,
// independent of how the step was constructed.
type Model struct {
	ID       string
	Grammar  string
	Cells    []CellModel
	Children []Model
}

// CellModel mirrors a cell's current state for transmission.
type CellModel struct {
	Name   string
	Value  string
	Actual string
	Status result.Status
}

// node carries the fields every variant shares.
type node struct {
	id      string
	grammar string
	cells   Cells
	kids    []Step
}

func (n *node) ID() string       { return n.id }
func (n *node) Grammar() string  { return n.grammar }
func (n *node) Cells() Cells     { return n.cells }
func (n *node) Children() []Step { return n.kids }

func (n *node) describe() Model {
	m := Model{ID: n.id, Grammar: n.grammar}
	for _, c := range n.cells {
		m.Cells = append(m.Cells, CellModel{Name: c.Name, Value: c.Value, Actual: c.Actual, Status: c.Status})
	}
	for _, child := range n.kids {
		m.Children = append(m.Children, child.Describe())
	}
	return m
}

// ExecuteSafely executes a step, converting an unexpected fault into an
// error outcome on that step so siblings keep running.
func ExecuteSafely(ctx context.Context, rt Runtime, step Step) {
	defer func() {
		if p := recover(); p != nil {
			rt.Record(result.StepResult{
				StepID:  step.ID(),
				Status:  result.StatusError,
				Message: fmt.Sprintf("unexpected error: %v", p),
			})
		}
	}()

	if err := step.Execute(ctx, rt); err != nil {
		rt.Record(result.StepResult{
			StepID:  step.ID(),
			Status:  result.StatusError,
			Message: err.Error(),
		})
	}
}

// skipAll records skipped outcomes for the given steps and their descendants.
func skipAll(rec result.Recorder, steps []Step) {
	for _, s := range steps {
		s.Skip(rec)
	}
}
