package fixtures

import (
	"fmt"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/spec"
	"github.com/alexisbeaulieu97/specdriver/internal/registry"
)

// ServiceAddressBook is the context key the address grammars resolve.
const ServiceAddressBook = "address-book"

// stateCurrentAddress is the runtime state key load-address stores under.
const stateCurrentAddress = "address.current"

// Address is one entry of the address book.
type Address struct {
	ID     string
	Name   string
	Street string
	City   string
	Zip    string
	Phone  string
	Email  string
}

// AddressBook is an in-memory collaborator backing the address grammars.
type AddressBook struct {
	entries map[string]Address
}

// NewAddressBook builds a book from the given entries.
func NewAddressBook(entries ...Address) *AddressBook {
	book := &AddressBook{entries: make(map[string]Address, len(entries))}
	for _, e := range entries {
		book.entries[e.ID] = e
	}
	return book
}

// Load returns the address with the given id.
func (b *AddressBook) Load(id string) (Address, error) {
	addr, ok := b.entries[id]
	if !ok {
		return Address{}, fmt.Errorf("no address with id %q", id)
	}
	return addr, nil
}

// All returns every entry as cell rows keyed by field label.
func (b *AddressBook) All() []map[string]string {
	rows := make([]map[string]string, 0, len(b.entries))
	for _, addr := range b.entries {
		rows = append(rows, map[string]string{
			"id":   addr.ID,
			"name": addr.Name,
			"city": addr.City,
		})
	}
	return rows
}

func resolveBook(rt spec.Runtime) (*AddressBook, error) {
	svc, err := rt.Service(ServiceAddressBook)
	if err != nil {
		return nil, err
	}
	book, ok := svc.(*AddressBook)
	if !ok {
		return nil, fmt.Errorf("service %q has unexpected type %T", ServiceAddressBook, svc)
	}
	return book, nil
}

func currentAddress(rt spec.Runtime) (Address, error) {
	v, ok := rt.Get(stateCurrentAddress)
	if !ok {
		return Address{}, fmt.Errorf("no address loaded; run load-address first")
	}
	addr, ok := v.(Address)
	if !ok {
		return Address{}, fmt.Errorf("loaded address has unexpected type %T", v)
	}
	return addr, nil
}

// loadAddressRegistration is a pure action: it loads an address by id into
// the run state for later verification steps.
func loadAddressRegistration() registry.Registration {
	return registry.Registration{
		Key: "load-address",
		New: func(def spec.Definition, compile registry.CompileFunc) (spec.Step, error) {
			cells := spec.DefCells(def.Cells)
			if _, ok := cells.Lookup("id"); !ok {
				return nil, fmt.Errorf("load-address requires an id cell")
			}
			return spec.NewAction(def.ID, def.Grammar, cells, func(rt spec.Runtime, cells spec.Cells) error {
				book, err := resolveBook(rt)
				if err != nil {
					return err
				}
				addr, err := book.Load(cells.Value("id"))
				if err != nil {
					return err
				}
				rt.Set(stateCurrentAddress, addr)
				return nil
			}), nil
		},
	}
}

// verifyAddressRegistration checks every written cell of the sentence against
// the loaded address, one outcome per cell.
func verifyAddressRegistration() registry.Registration {
	fieldOf := map[string]func(Address) string{
		"name":   func(a Address) string { return a.Name },
		"street": func(a Address) string { return a.Street },
		"city":   func(a Address) string { return a.City },
		"zip":    func(a Address) string { return a.Zip },
		"phone":  func(a Address) string { return a.Phone },
		"email":  func(a Address) string { return a.Email },
	}

	return registry.Registration{
		Key: "verify-address",
		New: func(def spec.Definition, compile registry.CompileFunc) (spec.Step, error) {
			cells := spec.DefCells(def.Cells)
			checks := make(map[string]spec.ComputeFunc, len(cells))
			for _, cell := range cells {
				field, ok := fieldOf[cell.Name]
				if !ok {
					return nil, fmt.Errorf("verify-address has no field %q", cell.Name)
				}
				checks[cell.Name] = func(rt spec.Runtime, _ spec.Cells) (any, error) {
					addr, err := currentAddress(rt)
					if err != nil {
						return nil, err
					}
					return field(addr), nil
				}
			}
			return spec.NewSentence(def.ID, def.Grammar, cells, spec.SentenceBinding{Checks: checks}), nil
		},
	}
}

// addressSetRegistration verifies the book's full contents as an unordered
// collection keyed by id.
func addressSetRegistration() registry.Registration {
	return registry.Registration{
		Key:     "address-set",
		Options: registry.Options{Table: true, RowGrammar: "address-row"},
		New: func(def spec.Definition, compile registry.CompileFunc) (spec.Step, error) {
			rows := make([]spec.Step, 0, len(def.Children))
			for _, child := range def.Children {
				rows = append(rows, compile(child))
			}
			source := func(rt spec.Runtime) ([]map[string]string, error) {
				book, err := resolveBook(rt)
				if err != nil {
					return nil, err
				}
				return book.All(), nil
			}
			return spec.NewSet(def.ID, def.Grammar, rows, []string{"id", "name", "city"}, source), nil
		},
	}
}

// addressRowRegistration compiles one expected row of an address set. Rows
// never execute directly; the owning set matches them against the book.
func addressRowRegistration() registry.Registration {
	return registry.Registration{
		Key: "address-row",
		New: func(def spec.Definition, compile registry.CompileFunc) (spec.Step, error) {
			return spec.NewAction(def.ID, def.Grammar, spec.DefCells(def.Cells),
				func(spec.Runtime, spec.Cells) error { return nil }), nil
		},
	}
}
