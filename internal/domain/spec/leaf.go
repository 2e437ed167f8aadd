package spec

import (
	"context"
	"fmt"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/result"
)

// ComputeFunc produces the actual value a check compares its expected cell
// value against.
type ComputeFunc func(rt Runtime, cells Cells) (any, error)

// ActionFunc performs a side effect with no pass/fail of its own.
type ActionFunc func(rt Runtime, cells Cells) error

// AssertFunc evaluates a boolean fact.
type AssertFunc func(rt Runtime, cells Cells) (bool, error)

// RowsFunc builds the actual row sequence a set verifies against.
type RowsFunc func(rt Runtime) ([]map[string]string, error)

// SentenceBinding wires a sentence to its fixture behavior: an optional side
// effect plus per-cell actual-value computations. Cells without an entry in
// Checks are plain inputs.
type SentenceBinding struct {
	Do     ActionFunc
	Checks map[string]ComputeFunc
}

// Sentence is a leaf executing a single action/check using its cells.
type Sentence struct {
	node
	binding SentenceBinding
}

// NewSentence constructs a sentence leaf.
func NewSentence(id, grammar string, cells Cells, binding SentenceBinding) *Sentence {
	return &Sentence{node: node{id: id, grammar: grammar, cells: cells}, binding: binding}
}

func (s *Sentence) Execute(ctx context.Context, rt Runtime) error {
	if s.binding.Do != nil {
		if err := s.binding.Do(rt, s.cells); err != nil {
			s.recordFault(rt, err)
			return nil
		}
	}

	checked := false
	for _, cell := range s.cells {
		compute, ok := s.binding.Checks[cell.Name]
		if !ok {
			continue
		}
		checked = true
		evaluateCheck(rt, s.id, cell, compute, s.cells)
	}

	if !checked {
		// Pure side-effect sentence: success unless the action failed above.
		rt.Record(result.StepResult{StepID: s.id, Status: result.StatusSuccess})
	}
	return nil
}

// recordFault marks every check cell as an exception when the side effect
// failed before any comparison could run.
func (s *Sentence) recordFault(rt Runtime, err error) {
	recorded := false
	for _, cell := range s.cells {
		if _, ok := s.binding.Checks[cell.Name]; !ok {
			continue
		}
		cell.Status = result.StatusError
		rt.Record(result.StepResult{
			StepID:  cellID(s.id, cell.Name),
			Status:  result.StatusError,
			Message: err.Error(),
		})
		recorded = true
	}
	if !recorded {
		rt.Record(result.StepResult{StepID: s.id, Status: result.StatusError, Message: err.Error()})
	}
}

func (s *Sentence) Skip(rec result.Recorder) {
	recorded := false
	for _, cell := range s.cells {
		if _, ok := s.binding.Checks[cell.Name]; !ok {
			continue
		}
		cell.Status = result.StatusSkipped
		rec.Record(result.StepResult{StepID: cellID(s.id, cell.Name), Status: result.StatusSkipped})
		recorded = true
	}
	if !recorded {
		rec.Record(result.StepResult{StepID: s.id, Status: result.StatusSkipped})
	}
}

func (s *Sentence) Describe() Model { return s.describe() }

// Check is a leaf comparing one expected cell value against a computed
// actual value, type-converted before comparison.
type Check struct {
	node
	expect  string
	compute ComputeFunc
}

// NewCheck constructs a check leaf. expect names the cell holding the
// expected value.
func NewCheck(id, grammar string, cells Cells, expect string, compute ComputeFunc) *Check {
	return &Check{node: node{id: id, grammar: grammar, cells: cells}, expect: expect, compute: compute}
}

func (c *Check) Execute(ctx context.Context, rt Runtime) error {
	cell, ok := c.cells.Lookup(c.expect)
	if !ok {
		rt.Record(result.StepResult{
			StepID:  c.id,
			Status:  result.StatusError,
			Message: fmt.Sprintf("expected cell %q is not present", c.expect),
		})
		return nil
	}
	evaluateCheck(rt, c.id, cell, c.compute, c.cells)
	return nil
}

func (c *Check) Skip(rec result.Recorder) {
	if cell, ok := c.cells.Lookup(c.expect); ok {
		cell.Status = result.StatusSkipped
	}
	rec.Record(result.StepResult{StepID: cellID(c.id, c.expect), Status: result.StatusSkipped})
}

func (c *Check) Describe() Model { return c.describe() }

// Fact is a leaf boolean assertion.
type Fact struct {
	node
	assert AssertFunc
}

// NewFact constructs a fact leaf.
func NewFact(id, grammar string, cells Cells, assert AssertFunc) *Fact {
	return &Fact{node: node{id: id, grammar: grammar, cells: cells}, assert: assert}
}

func (f *Fact) Execute(ctx context.Context, rt Runtime) error {
	ok, err := f.assert(rt, f.cells)
	switch {
	case err != nil:
		rt.Record(result.StepResult{StepID: f.id, Status: result.StatusError, Message: err.Error()})
	case ok:
		rt.Record(result.StepResult{StepID: f.id, Status: result.StatusSuccess})
	default:
		rt.Record(result.StepResult{StepID: f.id, Status: result.StatusFailure, Message: "assertion failed"})
	}
	return nil
}

func (f *Fact) Skip(rec result.Recorder) {
	rec.Record(result.StepResult{StepID: f.id, Status: result.StatusSkipped})
}

func (f *Fact) Describe() Model { return f.describe() }

// Action is a leaf with a side effect and no pass/fail cell: always success
// unless the side effect fails.
type Action struct {
	node
	do ActionFunc
}

// NewAction constructs an action leaf.
func NewAction(id, grammar string, cells Cells, do ActionFunc) *Action {
	return &Action{node: node{id: id, grammar: grammar, cells: cells}, do: do}
}

func (a *Action) Execute(ctx context.Context, rt Runtime) error {
	if err := a.do(rt, a.cells); err != nil {
		rt.Record(result.StepResult{StepID: a.id, Status: result.StatusError, Message: err.Error()})
		return nil
	}
	rt.Record(result.StepResult{StepID: a.id, Status: result.StatusSuccess})
	return nil
}

func (a *Action) Skip(rec result.Recorder) {
	rec.Record(result.StepResult{StepID: a.id, Status: result.StatusSkipped})
}

func (a *Action) Describe() Model { return a.describe() }

// evaluateCheck settles one expected cell against its computed actual value.
func evaluateCheck(rt Runtime, stepID string, cell *Cell, compute ComputeFunc, cells Cells) {
	actual, err := compute(rt, cells)
	if err != nil {
		cell.Status = result.StatusError
		rt.Record(result.StepResult{
			StepID:  cellID(stepID, cell.Name),
			Status:  result.StatusError,
			Message: err.Error(),
		})
		return
	}

	equal, actualText, err := compareCell(cell.Name, cell.Value, actual)
	if err != nil {
		cell.Status = result.StatusError
		rt.Record(result.StepResult{
			StepID:  cellID(stepID, cell.Name),
			Status:  result.StatusError,
			Message: err.Error(),
		})
		return
	}

	if equal {
		cell.Status = result.StatusSuccess
		rt.Record(result.StepResult{StepID: cellID(stepID, cell.Name), Status: result.StatusSuccess})
		return
	}

	cell.Status = result.StatusFailure
	cell.Actual = actualText
	rt.Record(result.StepResult{
		StepID:  cellID(stepID, cell.Name),
		Status:  result.StatusFailure,
		Message: fmt.Sprintf("expected %q, got %q", cell.Value, actualText),
		Actual:  actualText,
	})
}

func cellID(stepID, cellName string) string {
	return stepID + "." + cellName
}
