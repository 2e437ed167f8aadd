package engine

import (
	"context"
	"sync"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/result"
	"github.com/alexisbeaulieu97/specdriver/internal/domain/spec"
	apperrors "github.com/alexisbeaulieu97/specdriver/pkg/errors"
)

// Context is the mutable bag of ambient state and service lookup one run
// executes against. Exactly one context exists per run; it is owned by that
// run for its whole lifetime and released when the run finishes, whatever
// the outcome.
type Context struct {
	values   map[string]any
	services map[string]any
	sink     result.Recorder

	closeOnce sync.Once
	closers   []func() error
}

// ContextFactory builds the execution context for an attempt. The supplied
// context carries the run's cancellation signal.
type ContextFactory func(ctx context.Context) (*Context, error)

// NewContext returns an empty execution context.
func NewContext() *Context {
	return &Context{
		values:   map[string]any{},
		services: map[string]any{},
	}
}

// WithService registers a collaborator under the given name.
func (c *Context) WithService(name string, service any) *Context {
	c.services[name] = service
	return c
}

// OnClose registers a release hook. Hooks run in reverse registration order
// exactly once.
func (c *Context) OnClose(fn func() error) *Context {
	c.closers = append(c.closers, fn)
	return c
}

// Set stores a named value for later steps of the same run.
func (c *Context) Set(key string, value any) {
	c.values[key] = value
}

// Get returns a previously stored value.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Service resolves a collaborator by name.
func (c *Context) Service(name string) (any, error) {
	if svc, ok := c.services[name]; ok {
		return svc, nil
	}
	return nil, apperrors.NewServiceNotFoundError(name)
}

// Record emits a leaf outcome to the run's sink. A context not yet bound to
// a run drops outcomes.
func (c *Context) Record(res result.StepResult) {
	if c.sink != nil {
		c.sink.Record(res)
	}
}

// bind installs the run's result sink.
func (c *Context) bind(sink result.Recorder) {
	c.sink = sink
}

// Close releases the context, running hooks in reverse order. The first hook
// error is returned; Close is idempotent.
func (c *Context) Close() error {
	var firstErr error
	c.closeOnce.Do(func() {
		for i := len(c.closers) - 1; i >= 0; i-- {
			if err := c.closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	})
	return firstErr
}

var _ spec.Runtime = (*Context)(nil)
