package fixtures

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/result"
	"github.com/alexisbeaulieu97/specdriver/internal/domain/spec"
	sderrors "github.com/alexisbeaulieu97/specdriver/pkg/errors"
)

type fakeRuntime struct {
	values   map[string]any
	services map[string]any
	results  []result.StepResult
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		values: map[string]any{},
		services: map[string]any{
			ServiceCalculator:  &Calculator{},
			ServiceAddressBook: NewAddressBook(Address{ID: "1", Name: "Ada Lovelace", Street: "12 Analytical Way", City: "London", Zip: "EC1A", Phone: "020-7946-0101", Email: "ada@example.org"}),
			ServiceInventory:   NewInventory(),
		},
	}
}

func (rt *fakeRuntime) Set(key string, value any) { rt.values[key] = value }

func (rt *fakeRuntime) Get(key string) (any, bool) {
	v, ok := rt.values[key]
	return v, ok
}

func (rt *fakeRuntime) Service(name string) (any, error) {
	svc, ok := rt.services[name]
	if !ok {
		return nil, sderrors.NewServiceNotFoundError(name)
	}
	return svc, nil
}

func (rt *fakeRuntime) Record(res result.StepResult) { rt.results = append(rt.results, res) }

func (rt *fakeRuntime) counts() result.Counts {
	var c result.Counts
	for _, res := range rt.results {
		c.Tally(res.Status)
	}
	return c
}

func cellDefs(pairs ...string) []spec.CellDef {
	defs := make([]spec.CellDef, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		defs = append(defs, spec.CellDef{Name: pairs[i], Value: pairs[i+1]})
	}
	return defs
}

func TestRegisterInstallsEveryGrammar(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	keys := reg.Keys()
	for _, key := range []string{
		"addition", "addition-table", "increment", "sum-check",
		"load-address", "verify-address", "address-set", "address-row",
		"restock", "in-stock", "stock-set", "stock-row", "stockroom",
	} {
		require.Contains(t, keys, key)
	}
}

func TestAdditionCheck(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	t.Run("right", func(t *testing.T) {
		t.Parallel()
		rt := newFakeRuntime()
		step := reg.Compile(spec.Definition{ID: "add", Grammar: "addition", Cells: cellDefs("x", "2", "y", "3", "sum", "5")})
		require.NoError(t, step.Execute(context.Background(), rt))
		require.Equal(t, result.Counts{Right: 1}, rt.counts())
	})

	t.Run("wrong carries the actual", func(t *testing.T) {
		t.Parallel()
		rt := newFakeRuntime()
		step := reg.Compile(spec.Definition{ID: "add", Grammar: "addition", Cells: cellDefs("x", "2", "y", "3", "sum", "6")})
		require.NoError(t, step.Execute(context.Background(), rt))
		require.Equal(t, result.Counts{Wrong: 1}, rt.counts())
		require.Equal(t, "add.sum", rt.results[0].StepID)
		require.Equal(t, "5", rt.results[0].Actual)
	})

	t.Run("unparsable operand is an exception", func(t *testing.T) {
		t.Parallel()
		rt := newFakeRuntime()
		step := reg.Compile(spec.Definition{ID: "add", Grammar: "addition", Cells: cellDefs("x", "two", "y", "3", "sum", "5")})
		require.NoError(t, step.Execute(context.Background(), rt))
		require.Equal(t, result.Counts{Exceptions: 1}, rt.counts())
	})
}

func TestAdditionTableScenario(t *testing.T) {
	t.Parallel()

	rt := newFakeRuntime()
	step := NewRegistry().Compile(spec.Definition{
		ID:      "sums",
		Grammar: "addition-table",
		Rows: [][]spec.CellDef{
			cellDefs("x", "1", "y", "2", "sum", "3"),
			cellDefs("x", "1", "y", "2", "sum", "4"),
			cellDefs("x", "3", "y", "5", "sum", "8"),
			cellDefs("x", "3", "y", "5", "sum", "9"),
		},
	})

	require.NoError(t, step.Execute(context.Background(), rt))
	require.Equal(t, result.Counts{Right: 2, Wrong: 2}, rt.counts())
}

func TestIncrementCurriesTheSecondOperand(t *testing.T) {
	t.Parallel()

	rt := newFakeRuntime()
	step := NewRegistry().Compile(spec.Definition{ID: "inc", Grammar: "increment", Cells: cellDefs("x", "4", "sum", "5")})

	require.NoError(t, step.Execute(context.Background(), rt))
	require.Equal(t, result.Counts{Right: 1}, rt.counts())
}

func TestSumCheckImportsUnderAlternateLabels(t *testing.T) {
	t.Parallel()

	rt := newFakeRuntime()
	step := NewRegistry().Compile(spec.Definition{ID: "imp", Grammar: "sum-check", Cells: cellDefs("a", "1", "b", "2", "total", "3")})

	require.NoError(t, step.Execute(context.Background(), rt))
	require.Equal(t, result.Counts{Right: 1}, rt.counts())
}

func TestVerifyAddressScenario(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	rt := newFakeRuntime()

	load := reg.Compile(spec.Definition{ID: "load", Grammar: "load-address", Cells: cellDefs("id", "1")})
	require.NoError(t, load.Execute(context.Background(), rt))
	require.Equal(t, result.Counts{Right: 1}, rt.counts())

	verify := reg.Compile(spec.Definition{ID: "verify", Grammar: "verify-address", Cells: cellDefs(
		"name", "Ada Lovelace",
		"street", "12 Analytical Way",
		"city", "London",
		"zip", "EC1A",
		"phone", "020-7946-0101",
		"email", "wrong@example.org",
	)})
	require.NoError(t, verify.Execute(context.Background(), rt))

	// One outcome per written cell: five match, the email does not.
	require.Len(t, rt.results, 7)
	require.Equal(t, result.Counts{Right: 6, Wrong: 1}, rt.counts())
}

func TestVerifyAddressWithoutLoadIsException(t *testing.T) {
	t.Parallel()

	rt := newFakeRuntime()
	verify := NewRegistry().Compile(spec.Definition{ID: "verify", Grammar: "verify-address", Cells: cellDefs("name", "Ada Lovelace", "city", "London")})

	require.NoError(t, verify.Execute(context.Background(), rt))
	require.Equal(t, result.Counts{Exceptions: 2}, rt.counts())
}

func TestVerifyAddressRejectsUnknownField(t *testing.T) {
	t.Parallel()

	step := NewRegistry().Compile(spec.Definition{ID: "verify", Grammar: "verify-address", Cells: cellDefs("shoe_size", "42")})
	require.IsType(t, &spec.Invalid{}, step)
}

func TestStockroomSectionSeedsAndCleansUp(t *testing.T) {
	t.Parallel()

	rt := newFakeRuntime()
	step := NewRegistry().Compile(spec.Definition{
		ID:      "room",
		Grammar: "stockroom",
		Cells:   cellDefs("widget", "3"),
		Children: []spec.Definition{
			{ID: "check", Grammar: "in-stock", Cells: cellDefs("sku", "widget")},
		},
	})

	require.NoError(t, step.Execute(context.Background(), rt))
	require.Equal(t, result.Counts{Right: 1}, rt.counts())

	inv := rt.services[ServiceInventory].(*Inventory)
	require.Zero(t, inv.Quantity("widget"), "teardown must clear the seed")
}

func TestStockSetDisjointScenario(t *testing.T) {
	t.Parallel()

	rt := newFakeRuntime()
	inv := rt.services[ServiceInventory].(*Inventory)
	inv.Restock("bolt", 10)
	inv.Restock("nut", 20)

	step := NewRegistry().Compile(spec.Definition{
		ID:      "stock",
		Grammar: "stock-set",
		Rows: [][]spec.CellDef{
			cellDefs("sku", "bolt", "qty", "10"),
			cellDefs("sku", "washer", "qty", "5"),
		},
	})

	require.NoError(t, step.Execute(context.Background(), rt))

	// bolt matches; washer is missing; nut is extra.
	require.Equal(t, result.Counts{Right: 1, Wrong: 2}, rt.counts())

	var messages []string
	for _, res := range rt.results {
		messages = append(messages, res.Message)
	}
	require.Contains(t, messages, "missing row: no actual item matches")
	require.Contains(t, messages, "extra row: no expected row matches")
}

func TestContextFactoryWiresServices(t *testing.T) {
	t.Parallel()

	execCtx, err := ContextFactory(context.Background())
	require.NoError(t, err)

	for _, name := range []string{ServiceCalculator, ServiceAddressBook, ServiceInventory} {
		svc, err := execCtx.Service(name)
		require.NoError(t, err)
		require.NotNil(t, svc)
	}
	require.NoError(t, execCtx.Close())
}
