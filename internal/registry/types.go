package registry

import (
	"github.com/alexisbeaulieu97/specdriver/internal/domain/spec"
)

// CompileFunc compiles a definition into an executable step. It never fails:
// unknown grammars become Missing placeholders and construction problems
// become Invalid placeholders.
type CompileFunc func(def spec.Definition) spec.Step

// Factory builds an executable step from a definition. Factories for
// container grammars use compile for their children.
type Factory func(def spec.Definition, compile CompileFunc) (spec.Step, error)

// Options is the declarative metadata attached to a registration, replacing
// runtime type inspection: cell aliasing, hiding, defaults, and table
// exposure are all explicit.
type Options struct {
	// Aliases maps presented cell labels to the grammar's canonical names.
	Aliases map[string]string
	// Defaults fills cells absent from the definition.
	Defaults map[string]string
	// Hidden removes cells from the compiled step's presentation.
	Hidden []string
	// Table marks the grammar as row-oriented; RowGrammar names the grammar
	// each row compiles against.
	Table      bool
	RowGrammar string
}

// Registration binds a grammar key to its step factory and options.
type Registration struct {
	Key     string
	Options Options
	New     Factory
}
