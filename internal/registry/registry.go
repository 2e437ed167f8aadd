package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/spec"
)

// Registry is the explicit registration table mapping grammar keys to step
// constructors. It is built once per fixture set and read concurrently; the
// execution core never performs reflection.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Registration
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: map[string]Registration{}}
}

// Register adds a grammar registration. Duplicate keys are an error.
func (r *Registry) Register(reg Registration) error {
	if reg.Key == "" {
		return fmt.Errorf("grammar key is required")
	}
	if reg.New == nil {
		return fmt.Errorf("grammar %q has no factory", reg.Key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[reg.Key]; exists {
		return fmt.Errorf("grammar %q is already registered", reg.Key)
	}
	r.entries[reg.Key] = reg
	return nil
}

// MustRegister panics on registration failure. Intended for fixture wiring
// at startup.
func (r *Registry) MustRegister(reg Registration) {
	if err := r.Register(reg); err != nil {
		panic(err)
	}
}

// Get retrieves a registration by grammar key.
func (r *Registry) Get(key string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[key]
	return reg, ok
}

// Keys returns the registered grammar keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.entries))
	for key := range r.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Compile turns a definition into an executable step. References to unknown
// grammars compile to Missing; factory failures compile to Invalid. Compile
// itself never fails, so a whole specification always loads.
func (r *Registry) Compile(def spec.Definition) (step spec.Step) {
	reg, ok := r.Get(def.Grammar)
	if !ok {
		return spec.NewMissing(def)
	}

	def = applyOptions(def, reg.Options)

	defer func() {
		if p := recover(); p != nil {
			step = spec.NewInvalid(def, fmt.Sprintf("factory panicked: %v", p))
		}
	}()

	built, err := reg.New(def, r.Compile)
	if err != nil {
		return spec.NewInvalid(def, err.Error())
	}
	return built
}

// CompileAll compiles a sequence of top-level definitions.
func (r *Registry) CompileAll(defs []spec.Definition) []spec.Step {
	steps := make([]spec.Step, 0, len(defs))
	for _, def := range defs {
		steps = append(steps, r.Compile(def))
	}
	return steps
}

// applyOptions rewrites a definition per the registration's declarative
// metadata: aliases first, then defaults, then hiding, then row expansion.
func applyOptions(def spec.Definition, opts Options) spec.Definition {
	if len(opts.Aliases) > 0 {
		cells := make([]spec.CellDef, len(def.Cells))
		for i, c := range def.Cells {
			if canonical, ok := opts.Aliases[c.Name]; ok {
				c.Name = canonical
			}
			cells[i] = c
		}
		def.Cells = cells
	}

	if len(opts.Defaults) > 0 {
		present := map[string]bool{}
		for _, c := range def.Cells {
			present[c.Name] = true
		}
		names := make([]string, 0, len(opts.Defaults))
		for name := range opts.Defaults {
			if !present[name] {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			def.Cells = append(def.Cells, spec.CellDef{Name: name, Value: opts.Defaults[name]})
		}
	}

	if len(opts.Hidden) > 0 {
		hidden := map[string]bool{}
		for _, name := range opts.Hidden {
			hidden[name] = true
		}
		cells := def.Cells[:0:0]
		for _, c := range def.Cells {
			if !hidden[c.Name] {
				cells = append(cells, c)
			}
		}
		def.Cells = cells
	}

	if opts.Table && opts.RowGrammar != "" && len(def.Rows) > 0 {
		for i, row := range def.Rows {
			def.Children = append(def.Children, spec.Definition{
				ID:      fmt.Sprintf("%s[%d]", def.ID, i),
				Grammar: opts.RowGrammar,
				Cells:   row,
			})
		}
		def.Rows = nil
	}

	return def
}
