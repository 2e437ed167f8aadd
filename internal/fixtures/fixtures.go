// Package fixtures wires the sample grammars and their collaborating
// services: arithmetic checks, address verification, and stock keeping. It is
// both the demonstration suite and the reference for writing new fixtures.
package fixtures

import (
	"context"

	"github.com/alexisbeaulieu97/specdriver/internal/engine"
	"github.com/alexisbeaulieu97/specdriver/internal/registry"
)

// Register installs every sample grammar into the registry.
func Register(reg *registry.Registry) error {
	registrations := []registry.Registration{
		additionRegistration(),
		additionTableRegistration(),
		incrementRegistration(),
		sumCheckRegistration(),
		loadAddressRegistration(),
		verifyAddressRegistration(),
		addressSetRegistration(),
		addressRowRegistration(),
		restockRegistration(),
		inStockRegistration(),
		stockSetRegistration(),
		stockRowRegistration(),
		stockroomRegistration(),
	}
	for _, r := range registrations {
		if err := reg.Register(r); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry preloaded with the sample grammars.
func NewRegistry() *registry.Registry {
	reg := registry.New()
	if err := Register(reg); err != nil {
		panic(err)
	}
	return reg
}

// ContextFactory builds a fresh execution context wired with the sample
// services. Every attempt gets its own inventory and address book, so runs
// never observe each other's state.
func ContextFactory(ctx context.Context) (*engine.Context, error) {
	book := NewAddressBook(
		Address{ID: "1", Name: "Ada Lovelace", Street: "12 Analytical Way", City: "London", Zip: "EC1A", Phone: "020-7946-0101", Email: "ada@example.org"},
		Address{ID: "2", Name: "Grace Hopper", Street: "90 Compiler Road", City: "Arlington", Zip: "22201", Phone: "703-555-0188", Email: "grace@example.org"},
	)

	return engine.NewContext().
		WithService(ServiceCalculator, &Calculator{}).
		WithService(ServiceAddressBook, book).
		WithService(ServiceInventory, NewInventory()), nil
}
