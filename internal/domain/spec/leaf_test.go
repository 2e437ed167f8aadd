package spec

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/result"
	apperrors "github.com/alexisbeaulieu97/specdriver/pkg/errors"
)

// testRuntime is a minimal Runtime for exercising steps in isolation.
type testRuntime struct {
	values   map[string]any
	services map[string]any
	agg      *result.Aggregator
}

func newTestRuntime() *testRuntime {
	return &testRuntime{
		values:   map[string]any{},
		services: map[string]any{},
		agg:      result.NewAggregator(),
	}
}

func (rt *testRuntime) Set(key string, value any) { rt.values[key] = value }

func (rt *testRuntime) Get(key string) (any, bool) {
	v, ok := rt.values[key]
	return v, ok
}

func (rt *testRuntime) Service(name string) (any, error) {
	if svc, ok := rt.services[name]; ok {
		return svc, nil
	}
	return nil, apperrors.NewServiceNotFoundError(name)
}

func (rt *testRuntime) Record(res result.StepResult) { rt.agg.Record(res) }

func sumCompute(rt Runtime, cells Cells) (any, error) {
	x, err := strconv.Atoi(cells.Value("x"))
	if err != nil {
		return nil, err
	}
	y, err := strconv.Atoi(cells.Value("y"))
	if err != nil {
		return nil, err
	}
	return x + y, nil
}

func TestCheckEqualAfterConversion(t *testing.T) {
	t.Parallel()

	rt := newTestRuntime()
	check := NewCheck("add", "addition", Cells{
		NewCell("x", "1"), NewCell("y", "2"), NewCell("sum", "3"),
	}, "sum", sumCompute)

	require.NoError(t, check.Execute(context.Background(), rt))
	require.Equal(t, result.Counts{Right: 1}, rt.agg.Counts())

	cell, ok := check.Cells().Lookup("sum")
	require.True(t, ok)
	require.Equal(t, result.StatusSuccess, cell.Status)
}

func TestCheckUnequalCarriesActual(t *testing.T) {
	t.Parallel()

	rt := newTestRuntime()
	check := NewCheck("add", "addition", Cells{
		NewCell("x", "1"), NewCell("y", "2"), NewCell("sum", "5"),
	}, "sum", sumCompute)

	require.NoError(t, check.Execute(context.Background(), rt))
	require.Equal(t, result.Counts{Wrong: 1}, rt.agg.Counts())

	results := rt.agg.Results()
	require.Equal(t, "3", results[0].Actual)

	cell, _ := check.Cells().Lookup("sum")
	require.Equal(t, result.StatusFailure, cell.Status)
	require.Equal(t, "3", cell.Actual)
}

func TestCheckConversionFailureIsException(t *testing.T) {
	t.Parallel()

	rt := newTestRuntime()
	check := NewCheck("add", "addition", Cells{
		NewCell("x", "1"), NewCell("y", "2"), NewCell("sum", "three"),
	}, "sum", sumCompute)

	require.NoError(t, check.Execute(context.Background(), rt))
	require.Equal(t, result.Counts{Exceptions: 1}, rt.agg.Counts())

	cell, _ := check.Cells().Lookup("sum")
	require.Equal(t, result.StatusError, cell.Status)
}

func TestCheckComputeErrorIsException(t *testing.T) {
	t.Parallel()

	rt := newTestRuntime()
	check := NewCheck("add", "addition", Cells{NewCell("sum", "3")}, "sum",
		func(rt Runtime, cells Cells) (any, error) {
			return nil, errors.New("fixture unavailable")
		})

	require.NoError(t, check.Execute(context.Background(), rt))
	require.Equal(t, result.Counts{Exceptions: 1}, rt.agg.Counts())
	require.Contains(t, rt.agg.Results()[0].Message, "fixture unavailable")
}

func TestSentenceComparesEveryCheckCell(t *testing.T) {
	t.Parallel()

	type address struct{ City, State, PostalCode string }
	current := address{City: "Austin", State: "TX", PostalCode: "78701"}

	binding := SentenceBinding{Checks: map[string]ComputeFunc{
		"city":        func(Runtime, Cells) (any, error) { return current.City, nil },
		"state":       func(Runtime, Cells) (any, error) { return current.State, nil },
		"postal_code": func(Runtime, Cells) (any, error) { return current.PostalCode, nil },
	}}

	rt := newTestRuntime()
	row := NewSentence("verify-1", "verify-address", Cells{
		NewCell("city", "Austin"),
		NewCell("state", "CA"),
		NewCell("postal_code", "78701"),
	}, binding)

	require.NoError(t, row.Execute(context.Background(), rt))
	require.Equal(t, result.Counts{Right: 2, Wrong: 1}, rt.agg.Counts())

	state, _ := row.Cells().Lookup("state")
	require.Equal(t, "TX", state.Actual)
}

func TestSentenceSideEffectFailureMarksChecksAsExceptions(t *testing.T) {
	t.Parallel()

	binding := SentenceBinding{
		Do: func(Runtime, Cells) error { return errors.New("load failed") },
		Checks: map[string]ComputeFunc{
			"city": func(Runtime, Cells) (any, error) { return "Austin", nil },
		},
	}

	rt := newTestRuntime()
	row := NewSentence("verify-1", "verify-address", Cells{NewCell("city", "Austin")}, binding)

	require.NoError(t, row.Execute(context.Background(), rt))
	require.Equal(t, result.Counts{Exceptions: 1}, rt.agg.Counts())
}

func TestPureActionSentenceSucceeds(t *testing.T) {
	t.Parallel()

	rt := newTestRuntime()
	ran := false
	step := NewSentence("prime", "prime-state", nil, SentenceBinding{
		Do: func(rt Runtime, _ Cells) error {
			ran = true
			rt.Set("primed", true)
			return nil
		},
	})

	require.NoError(t, step.Execute(context.Background(), rt))
	require.True(t, ran)
	require.Equal(t, result.Counts{Right: 1}, rt.agg.Counts())

	v, ok := rt.Get("primed")
	require.True(t, ok)
	require.Equal(t, true, v)
}

func TestFactOutcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		assert AssertFunc
		want   result.Counts
	}{
		{"true fact", func(Runtime, Cells) (bool, error) { return true, nil }, result.Counts{Right: 1}},
		{"false fact", func(Runtime, Cells) (bool, error) { return false, nil }, result.Counts{Wrong: 1}},
		{"erroring fact", func(Runtime, Cells) (bool, error) { return false, errors.New("boom") }, result.Counts{Exceptions: 1}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rt := newTestRuntime()
			fact := NewFact("f", "fact", nil, tt.assert)
			require.NoError(t, fact.Execute(context.Background(), rt))
			require.Equal(t, tt.want, rt.agg.Counts())
		})
	}
}

func TestActionErrorIsExceptionNotFailure(t *testing.T) {
	t.Parallel()

	rt := newTestRuntime()
	act := NewAction("reset", "reset", nil, func(Runtime, Cells) error {
		return errors.New("device busy")
	})

	require.NoError(t, act.Execute(context.Background(), rt))
	require.Equal(t, result.Counts{Exceptions: 1}, rt.agg.Counts())
}

func TestServiceLookupErrorSurfacesAsException(t *testing.T) {
	t.Parallel()

	rt := newTestRuntime()
	check := NewCheck("lookup", "lookup", Cells{NewCell("value", "42")}, "value",
		func(rt Runtime, cells Cells) (any, error) {
			svc, err := rt.Service("calculator")
			if err != nil {
				return nil, err
			}
			return svc, nil
		})

	require.NoError(t, check.Execute(context.Background(), rt))
	require.Equal(t, result.Counts{Exceptions: 1}, rt.agg.Counts())
	require.Contains(t, rt.agg.Results()[0].Message, "calculator")
}

func TestCheckIsIdempotent(t *testing.T) {
	t.Parallel()

	build := func() *Check {
		return NewCheck("add", "addition", Cells{
			NewCell("x", "2"), NewCell("y", "2"), NewCell("sum", "4"),
		}, "sum", sumCompute)
	}

	first := newTestRuntime()
	require.NoError(t, build().Execute(context.Background(), first))

	second := newTestRuntime()
	require.NoError(t, build().Execute(context.Background(), second))

	require.Equal(t, first.agg.Counts(), second.agg.Counts())
}
