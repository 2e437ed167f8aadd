package spec

import (
	"strings"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/result"
)

// Cell is a single named input or expected value on a step. Status starts
// pending and is settled during execution; Actual carries the computed value
// for diagnostic display when the comparison fails.
type Cell struct {
	Name   string
	Value  string
	Status result.Status
	Actual string
}

// NewCell returns a pending cell.
func NewCell(name, value string) *Cell {
	return &Cell{Name: name, Value: value, Status: result.StatusPending}
}

// Cells is an ordered collection of cells keyed by unique names.
type Cells []*Cell

// Lookup returns the cell with the given name.
func (cs Cells) Lookup(name string) (*Cell, bool) {
	for _, c := range cs {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Value returns the raw value of the named cell, or the empty string.
func (cs Cells) Value(name string) string {
	if c, ok := cs.Lookup(name); ok {
		return c.Value
	}
	return ""
}

// Names returns the cell names in order.
func (cs Cells) Names() []string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name
	}
	return names
}

// Clone returns a deep copy with statuses reset to pending.
func (cs Cells) Clone() Cells {
	out := make(Cells, len(cs))
	for i, c := range cs {
		out[i] = NewCell(c.Name, c.Value)
	}
	return out
}

func (cs Cells) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.Name + "=" + c.Value
	}
	return strings.Join(parts, ", ")
}
