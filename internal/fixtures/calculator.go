package fixtures

import (
	"fmt"
	"strconv"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/spec"
	"github.com/alexisbeaulieu97/specdriver/internal/registry"
)

// ServiceCalculator is the context key the arithmetic grammars resolve.
const ServiceCalculator = "calculator"

// Calculator is the collaborator behind the arithmetic grammars.
type Calculator struct{}

// Add returns the sum of two integers.
func (c *Calculator) Add(x, y int) int { return x + y }

// additionCompute resolves the calculator and adds the x and y cells. The
// expected sum cell is compared by the check itself.
func additionCompute(rt spec.Runtime, cells spec.Cells) (any, error) {
	svc, err := rt.Service(ServiceCalculator)
	if err != nil {
		return nil, err
	}
	calc, ok := svc.(*Calculator)
	if !ok {
		return nil, fmt.Errorf("service %q has unexpected type %T", ServiceCalculator, svc)
	}

	x, err := strconv.Atoi(cells.Value("x"))
	if err != nil {
		return nil, fmt.Errorf("cell x: %w", err)
	}
	y, err := strconv.Atoi(cells.Value("y"))
	if err != nil {
		return nil, fmt.Errorf("cell y: %w", err)
	}
	return calc.Add(x, y), nil
}

func additionRegistration() registry.Registration {
	return registry.Registration{
		Key: "addition",
		New: func(def spec.Definition, compile registry.CompileFunc) (spec.Step, error) {
			cells := spec.DefCells(def.Cells)
			if _, ok := cells.Lookup("sum"); !ok {
				return nil, fmt.Errorf("addition requires a sum cell")
			}
			return spec.NewCheck(def.ID, def.Grammar, cells, "sum", additionCompute), nil
		},
	}
}

func additionTableRegistration() registry.Registration {
	return registry.Table("addition-table", "addition", []string{"x", "y", "sum"})
}

// incrementRegistration exposes addition with y pre-bound to 1.
func incrementRegistration() registry.Registration {
	return registry.Curry("increment", "addition", map[string]string{"y": "1"})
}

// sumCheckRegistration exposes addition under alternate cell labels.
func sumCheckRegistration() registry.Registration {
	return registry.Import("sum-check", "addition", map[string]string{
		"a":     "x",
		"b":     "y",
		"total": "sum",
	})
}
