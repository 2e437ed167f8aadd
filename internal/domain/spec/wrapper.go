package spec

import (
	"context"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/result"
)

// Imported wraps another grammar under rewritten cell labels. The wrapped
// step executes unchanged; only the presented structure differs.
type Imported struct {
	node
	inner Step
}

// NewImported constructs an imported wrapper. cells carry the rewritten
// labels for presentation; inner was compiled with the target grammar's own
// labels.
func NewImported(id, grammar string, cells Cells, inner Step) *Imported {
	return &Imported{node: node{id: id, grammar: grammar, cells: cells}, inner: inner}
}

func (i *Imported) Execute(ctx context.Context, rt Runtime) error {
	return i.inner.Execute(ctx, rt)
}

func (i *Imported) Skip(rec result.Recorder) { i.inner.Skip(rec) }

func (i *Imported) Describe() Model { return i.describe() }

// Curried wraps another grammar with some cells pre-bound to default values.
// Execution is the wrapped step's own.
type Curried struct {
	node
	inner    Step
	defaults map[string]string
}

// NewCurried constructs a curried wrapper. defaults records the pre-bound
// cells for presentation; inner was compiled with those values filled in.
func NewCurried(id, grammar string, cells Cells, defaults map[string]string, inner Step) *Curried {
	return &Curried{node: node{id: id, grammar: grammar, cells: cells}, inner: inner, defaults: defaults}
}

// Defaults returns the pre-bound cell values.
func (c *Curried) Defaults() map[string]string {
	out := make(map[string]string, len(c.defaults))
	for k, v := range c.defaults {
		out[k] = v
	}
	return out
}

func (c *Curried) Execute(ctx context.Context, rt Runtime) error {
	return c.inner.Execute(ctx, rt)
}

func (c *Curried) Skip(rec result.Recorder) { c.inner.Skip(rec) }

func (c *Curried) Describe() Model { return c.describe() }
