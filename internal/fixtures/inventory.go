package fixtures

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/spec"
	"github.com/alexisbeaulieu97/specdriver/internal/registry"
)

// ServiceInventory is the context key the stock grammars resolve.
const ServiceInventory = "inventory"

// Inventory tracks stock quantities by sku. Safe for concurrent use.
type Inventory struct {
	mu    sync.Mutex
	stock map[string]int
}

// NewInventory builds an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{stock: map[string]int{}}
}

// Restock adds quantity to a sku.
func (inv *Inventory) Restock(sku string, qty int) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.stock[sku] += qty
}

// Quantity returns the current stock level of a sku.
func (inv *Inventory) Quantity(sku string) int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.stock[sku]
}

// Clear empties the inventory.
func (inv *Inventory) Clear() {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.stock = map[string]int{}
}

// Rows returns the stock as cell rows for set verification.
func (inv *Inventory) Rows() []map[string]string {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	rows := make([]map[string]string, 0, len(inv.stock))
	for sku, qty := range inv.stock {
		rows = append(rows, map[string]string{"sku": sku, "qty": strconv.Itoa(qty)})
	}
	return rows
}

func resolveInventory(rt spec.Runtime) (*Inventory, error) {
	svc, err := rt.Service(ServiceInventory)
	if err != nil {
		return nil, err
	}
	inv, ok := svc.(*Inventory)
	if !ok {
		return nil, fmt.Errorf("service %q has unexpected type %T", ServiceInventory, svc)
	}
	return inv, nil
}

// restockRegistration adds stock as a side effect.
func restockRegistration() registry.Registration {
	return registry.Registration{
		Key: "restock",
		New: func(def spec.Definition, compile registry.CompileFunc) (spec.Step, error) {
			return spec.NewAction(def.ID, def.Grammar, spec.DefCells(def.Cells),
				func(rt spec.Runtime, cells spec.Cells) error {
					inv, err := resolveInventory(rt)
					if err != nil {
						return err
					}
					qty, err := strconv.Atoi(cells.Value("qty"))
					if err != nil {
						return fmt.Errorf("cell qty: %w", err)
					}
					inv.Restock(cells.Value("sku"), qty)
					return nil
				}), nil
		},
	}
}

// inStockRegistration asserts that a sku has stock on hand.
func inStockRegistration() registry.Registration {
	return registry.Registration{
		Key: "in-stock",
		New: func(def spec.Definition, compile registry.CompileFunc) (spec.Step, error) {
			return spec.NewFact(def.ID, def.Grammar, spec.DefCells(def.Cells),
				func(rt spec.Runtime, cells spec.Cells) (bool, error) {
					inv, err := resolveInventory(rt)
					if err != nil {
						return false, err
					}
					return inv.Quantity(cells.Value("sku")) > 0, nil
				}), nil
		},
	}
}

// stockSetRegistration verifies the full stock as an unordered collection.
func stockSetRegistration() registry.Registration {
	return registry.Registration{
		Key:     "stock-set",
		Options: registry.Options{Table: true, RowGrammar: "stock-row"},
		New: func(def spec.Definition, compile registry.CompileFunc) (spec.Step, error) {
			rows := make([]spec.Step, 0, len(def.Children))
			for _, child := range def.Children {
				rows = append(rows, compile(child))
			}
			source := func(rt spec.Runtime) ([]map[string]string, error) {
				inv, err := resolveInventory(rt)
				if err != nil {
					return nil, err
				}
				return inv.Rows(), nil
			}
			return spec.NewSet(def.ID, def.Grammar, rows, []string{"sku", "qty"}, source), nil
		},
	}
}

func stockRowRegistration() registry.Registration {
	return registry.Registration{
		Key: "stock-row",
		New: func(def spec.Definition, compile registry.CompileFunc) (spec.Step, error) {
			return spec.NewAction(def.ID, def.Grammar, spec.DefCells(def.Cells),
				func(spec.Runtime, spec.Cells) error { return nil }), nil
		},
	}
}

// stockroomFixture seeds the inventory before its section runs and empties it
// afterwards, so sections stay independent.
type stockroomFixture struct {
	spec.FixtureBase
	seed map[string]int
}

func (f *stockroomFixture) Name() string { return "stockroom" }

func (f *stockroomFixture) SetUp(rt spec.Runtime) error {
	inv, err := resolveInventory(rt)
	if err != nil {
		return err
	}
	for sku, qty := range f.seed {
		inv.Restock(sku, qty)
	}
	return nil
}

func (f *stockroomFixture) TearDown(rt spec.Runtime) error {
	inv, err := resolveInventory(rt)
	if err != nil {
		return err
	}
	inv.Clear()
	return nil
}

// stockroomRegistration embeds a seeded stockroom section: children run with
// the seed applied and the inventory is cleared afterwards.
func stockroomRegistration() registry.Registration {
	return registry.Registration{
		Key: "stockroom",
		New: func(def spec.Definition, compile registry.CompileFunc) (spec.Step, error) {
			seed := map[string]int{}
			for _, c := range def.Cells {
				qty, err := strconv.Atoi(c.Value)
				if err != nil {
					return nil, fmt.Errorf("seed cell %s: %w", c.Name, err)
				}
				seed[c.Name] = qty
			}
			children := make([]spec.Step, 0, len(def.Children))
			for _, child := range def.Children {
				children = append(children, compile(child))
			}
			fixture := &stockroomFixture{seed: seed}
			return spec.NewEmbeddedSection(def.ID, def.Grammar, fixture, children), nil
		},
	}
}
