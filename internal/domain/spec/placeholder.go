package spec

import (
	"context"
	"fmt"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/result"
)

// Missing is the placeholder compiled for a reference to an unknown grammar.
// Execution always yields an error outcome and never touches the runtime
// state.
type Missing struct {
	node
}

// NewMissing constructs a missing-grammar placeholder from the definition
// that referenced it.
func NewMissing(def Definition) *Missing {
	return &Missing{node: node{id: def.ID, grammar: def.Grammar, cells: DefCells(def.Cells)}}
}

func (m *Missing) Execute(ctx context.Context, rt Runtime) error {
	rt.Record(result.StepResult{
		StepID:  m.id,
		Status:  result.StatusError,
		Message: fmt.Sprintf("no grammar registered for key %q", m.grammar),
	})
	return nil
}

func (m *Missing) Skip(rec result.Recorder) {
	rec.Record(result.StepResult{StepID: m.id, Status: result.StatusSkipped})
}

func (m *Missing) Describe() Model { return m.describe() }

// Invalid is the placeholder compiled for a malformed grammar reference.
// Execution always yields an error outcome carrying the compilation problem.
type Invalid struct {
	node
	reason string
}

// NewInvalid constructs an invalid-grammar placeholder.
func NewInvalid(def Definition, reason string) *Invalid {
	return &Invalid{node: node{id: def.ID, grammar: def.Grammar, cells: DefCells(def.Cells)}, reason: reason}
}

// Reason returns the compilation problem.
func (i *Invalid) Reason() string { return i.reason }

func (i *Invalid) Execute(ctx context.Context, rt Runtime) error {
	rt.Record(result.StepResult{
		StepID:  i.id,
		Status:  result.StatusError,
		Message: fmt.Sprintf("grammar %q is invalid: %s", i.grammar, i.reason),
	})
	return nil
}

func (i *Invalid) Skip(rec result.Recorder) {
	rec.Record(result.StepResult{StepID: i.id, Status: result.StatusSkipped})
}

func (i *Invalid) Describe() Model { return i.describe() }
