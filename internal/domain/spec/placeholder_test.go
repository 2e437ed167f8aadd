package spec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/result"
)

func TestMissingAlwaysErrorsWithoutTouchingState(t *testing.T) {
	t.Parallel()

	def := Definition{ID: "s1", Grammar: "no-such-grammar", Cells: []CellDef{{Name: "x", Value: "1"}}}
	missing := NewMissing(def)

	rt := newTestRuntime()
	require.NoError(t, missing.Execute(context.Background(), rt))

	require.Equal(t, result.Counts{Exceptions: 1}, rt.agg.Counts())
	require.Contains(t, rt.agg.Results()[0].Message, `no grammar registered for key "no-such-grammar"`)
	require.Empty(t, rt.values)
}

func TestInvalidCarriesCompilationReason(t *testing.T) {
	t.Parallel()

	def := Definition{ID: "s2", Grammar: "addition"}
	invalid := NewInvalid(def, "expected cell \"sum\" is not declared")

	rt := newTestRuntime()
	require.NoError(t, invalid.Execute(context.Background(), rt))

	require.Equal(t, result.Counts{Exceptions: 1}, rt.agg.Counts())
	require.Contains(t, rt.agg.Results()[0].Message, "is invalid")
	require.Equal(t, "expected cell \"sum\" is not declared", invalid.Reason())
}

func TestPlaceholdersSkipAsSingleLeaf(t *testing.T) {
	t.Parallel()

	agg := result.NewAggregator()
	NewMissing(Definition{ID: "a", Grammar: "x"}).Skip(agg)
	NewInvalid(Definition{ID: "b", Grammar: "y"}, "bad").Skip(agg)
	require.Equal(t, result.Counts{Skipped: 2}, agg.Counts())
}

func TestImportedDelegatesExecution(t *testing.T) {
	t.Parallel()

	inner := additionRow("inner", "2", "2", "4")
	imported := NewImported("imported", "sum-check", Cells{
		NewCell("left", "2"), NewCell("right", "2"), NewCell("total", "4"),
	}, inner)

	rt := newTestRuntime()
	require.NoError(t, imported.Execute(context.Background(), rt))
	require.Equal(t, result.Counts{Right: 1}, rt.agg.Counts())

	// Presented structure keeps the rewritten labels.
	model := imported.Describe()
	require.Equal(t, []string{"left", "right", "total"}, []string{
		model.Cells[0].Name, model.Cells[1].Name, model.Cells[2].Name,
	})
}

func TestCurriedDelegatesExecutionWithDefaults(t *testing.T) {
	t.Parallel()

	inner := additionRow("inner", "1", "10", "11")
	curried := NewCurried("curried", "add-ten", Cells{
		NewCell("x", "1"), NewCell("sum", "11"),
	}, map[string]string{"y": "10"}, inner)

	rt := newTestRuntime()
	require.NoError(t, curried.Execute(context.Background(), rt))
	require.Equal(t, result.Counts{Right: 1}, rt.agg.Counts())
	require.Equal(t, map[string]string{"y": "10"}, curried.Defaults())
}
