package spec

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/result"
)

// Paragraph executes its children in order. It has no pass/fail of its own;
// outcomes roll up from the children.
type Paragraph struct {
	node
}

// NewParagraph constructs a paragraph container.
func NewParagraph(id, grammar string, children []Step) *Paragraph {
	return &Paragraph{node: node{id: id, grammar: grammar, kids: children}}
}

func (p *Paragraph) Execute(ctx context.Context, rt Runtime) error {
	runChildren(ctx, rt, p.kids)
	return nil
}

func (p *Paragraph) Skip(rec result.Recorder) { skipAll(rec, p.kids) }

func (p *Paragraph) Describe() Model { return p.describe() }

// Table evaluates each child row independently against the same grammar. A
// row's failure never stops its siblings. The header names the cells every
// row must carry.
type Table struct {
	node
	header []string
}

// NewTable constructs a table container.
func NewTable(id, grammar string, header []string, rows []Step) *Table {
	return &Table{node: node{id: id, grammar: grammar, kids: rows}, header: header}
}

// Header returns the table's cell contract.
func (t *Table) Header() []string {
	return append([]string(nil), t.header...)
}

func (t *Table) Execute(ctx context.Context, rt Runtime) error {
	for _, row := range t.kids {
		if ctx.Err() != nil {
			row.Skip(rt)
			continue
		}
		if missing := t.missingHeaderCells(row); len(missing) > 0 {
			rt.Record(result.StepResult{
				StepID:  row.ID(),
				Status:  result.StatusError,
				Message: fmt.Sprintf("row is missing header cells: %s", strings.Join(missing, ", ")),
			})
			continue
		}
		ExecuteSafely(ctx, rt, row)
	}
	return nil
}

func (t *Table) missingHeaderCells(row Step) []string {
	var missing []string
	for _, name := range t.header {
		if _, ok := row.Cells().Lookup(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func (t *Table) Skip(rec result.Recorder) { skipAll(rec, t.kids) }

func (t *Table) Describe() Model { return t.describe() }

// Set verifies an actual collection against expected rows with unordered
// matching: each expected row must match exactly one actual item. Unmatched
// expected rows are emitted as synthetic missing rows, unmatched actual
// items as synthetic extra rows; both count as failures.
type Set struct {
	node
	source RowsFunc
	keys   []string
}

// NewSet constructs a set container. keys names the comparable cells; when
// empty, every cell of an expected row participates in matching.
func NewSet(id, grammar string, rows []Step, keys []string, source RowsFunc) *Set {
	return &Set{node: node{id: id, grammar: grammar, kids: rows}, source: source, keys: keys}
}

func (s *Set) Execute(ctx context.Context, rt Runtime) error {
	actual, err := s.source(rt)
	if err != nil {
		// The data source failed; every expected row becomes an exception.
		for _, row := range s.kids {
			rt.Record(result.StepResult{StepID: row.ID(), Status: result.StatusError, Message: err.Error()})
		}
		return nil
	}

	matched := make([]bool, len(actual))
	for _, row := range s.kids {
		idx := s.match(row.Cells(), actual, matched)
		if idx >= 0 {
			matched[idx] = true
			rt.Record(result.StepResult{StepID: row.ID(), Status: result.StatusSuccess})
			continue
		}
		rt.Record(result.StepResult{
			StepID:  row.ID(),
			Status:  result.StatusFailure,
			Message: "missing row: no actual item matches",
		})
	}

	for i, item := range actual {
		if matched[i] {
			continue
		}
		rt.Record(result.StepResult{
			StepID:  fmt.Sprintf("%s.extra[%d]", s.id, i),
			Status:  result.StatusFailure,
			Message: "extra row: no expected row matches",
			Actual:  renderRow(item),
		})
	}
	return nil
}

// match returns the index of the first unmatched actual item equal to the
// expected row on the comparable cells, or -1.
func (s *Set) match(expected Cells, actual []map[string]string, matched []bool) int {
	names := s.keys
	if len(names) == 0 {
		names = expected.Names()
	}
	for i, item := range actual {
		if matched[i] {
			continue
		}
		equal := true
		for _, name := range names {
			if expected.Value(name) != item[name] {
				equal = false
				break
			}
		}
		if equal {
			return i
		}
	}
	return -1
}

func (s *Set) Skip(rec result.Recorder) { skipAll(rec, s.kids) }

func (s *Set) Describe() Model { return s.describe() }

// EmbeddedSection delegates execution to a nested fixture's own steps,
// sharing the same runtime. SetUp runs before the children and TearDown
// always runs after, even when a child faults.
type EmbeddedSection struct {
	node
	fixture Fixture
}

// NewEmbeddedSection constructs an embedded section bound to a fixture.
func NewEmbeddedSection(id, grammar string, fixture Fixture, children []Step) *EmbeddedSection {
	return &EmbeddedSection{node: node{id: id, grammar: grammar, kids: children}, fixture: fixture}
}

func (e *EmbeddedSection) Execute(ctx context.Context, rt Runtime) error {
	if e.fixture != nil {
		if err := e.fixture.SetUp(rt); err != nil {
			rt.Record(result.StepResult{
				StepID:  e.id,
				Status:  result.StatusError,
				Message: fmt.Sprintf("fixture setup failed: %v", err),
			})
			skipAll(rt, e.kids)
			return nil
		}
		defer func() {
			if err := e.fixture.TearDown(rt); err != nil {
				rt.Record(result.StepResult{
					StepID:  e.id,
					Status:  result.StatusError,
					Message: fmt.Sprintf("fixture teardown failed: %v", err),
				})
			}
		}()
	}

	runChildren(ctx, rt, e.kids)
	return nil
}

func (e *EmbeddedSection) Skip(rec result.Recorder) { skipAll(rec, e.kids) }

func (e *EmbeddedSection) Describe() Model { return e.describe() }

// runChildren walks children in order, checking for cooperative cancellation
// at each boundary. Children remaining after cancellation are skipped.
func runChildren(ctx context.Context, rt Runtime, children []Step) {
	for i, child := range children {
		if ctx.Err() != nil {
			skipAll(rt, children[i:])
			return
		}
		ExecuteSafely(ctx, rt, child)
	}
}

func renderRow(row map[string]string) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + row[k]
	}
	return strings.Join(parts, ", ")
}
