package spec

import (
	"time"
)

// Specification is a compiled tree of executable steps plus root metadata.
// The tree is immutable once compiled; only the attempt counter changes, and
// only under the orchestrator's single-flight guarantee.
type Specification struct {
	ID          string
	Lifecycle   string
	MaxRetries  int
	Tags        []string
	LastUpdated time.Time
	Steps       []Step

	attempts int
}

// Attempts returns how many times this specification has been executed.
func (s *Specification) Attempts() int {
	return s.attempts
}

// BeginAttempt increments and returns the attempt counter.
func (s *Specification) BeginAttempt() int {
	s.attempts++
	return s.attempts
}

// CellDef is one raw name/value pair from the specification source.
type CellDef struct {
	Name  string
	Value string
}

// Definition is the uncompiled form of a step as produced by a loader. The
// grammar registry turns definitions into executable steps; references to
// unknown or malformed grammars compile to Missing and Invalid placeholders
// rather than failing the load.
type Definition struct {
	ID       string
	Grammar  string
	Cells    []CellDef
	Rows     [][]CellDef
	Children []Definition
}

// DefCells converts raw cell definitions into pending execution cells.
func DefCells(defs []CellDef) Cells {
	cells := make(Cells, 0, len(defs))
	for _, d := range defs {
		cells = append(cells, NewCell(d.Name, d.Value))
	}
	return cells
}
