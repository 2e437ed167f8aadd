package registry

import (
	"sort"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/spec"
)

// Import returns a registration exposing target's grammar under rewritten
// cell labels. aliases maps the presented labels to target's canonical
// names. Execution is the target grammar's own.
func Import(key, target string, aliases map[string]string) Registration {
	return Registration{
		Key: key,
		New: func(def spec.Definition, compile CompileFunc) (spec.Step, error) {
			inner := def
			inner.Grammar = target
			inner.Cells = renameCells(def.Cells, aliases)
			return spec.NewImported(def.ID, key, spec.DefCells(def.Cells), compile(inner)), nil
		},
	}
}

// Curry returns a registration exposing target's grammar with some cells
// pre-bound to fixed values. Execution is the target grammar's own.
func Curry(key, target string, defaults map[string]string) Registration {
	return Registration{
		Key: key,
		New: func(def spec.Definition, compile CompileFunc) (spec.Step, error) {
			inner := def
			inner.Grammar = target
			present := map[string]bool{}
			for _, c := range def.Cells {
				present[c.Name] = true
			}
			for _, name := range sortedKeys(defaults) {
				if !present[name] {
					inner.Cells = append(inner.Cells, spec.CellDef{Name: name, Value: defaults[name]})
				}
			}
			return spec.NewCurried(def.ID, key, spec.DefCells(def.Cells), defaults, compile(inner)), nil
		},
	}
}

// Table returns a registration exposing rowGrammar as a row-oriented table
// with the given header contract.
func Table(key, rowGrammar string, header []string) Registration {
	return Registration{
		Key:     key,
		Options: Options{Table: true, RowGrammar: rowGrammar},
		New: func(def spec.Definition, compile CompileFunc) (spec.Step, error) {
			rows := make([]spec.Step, 0, len(def.Children))
			for _, child := range def.Children {
				rows = append(rows, compile(child))
			}
			return spec.NewTable(def.ID, key, header, rows), nil
		},
	}
}

func renameCells(cells []spec.CellDef, aliases map[string]string) []spec.CellDef {
	if len(aliases) == 0 {
		return cells
	}
	out := make([]spec.CellDef, len(cells))
	for i, c := range cells {
		if canonical, ok := aliases[c.Name]; ok {
			c.Name = canonical
		}
		out[i] = c
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
