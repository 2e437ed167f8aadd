package spec

// Fixture is an out-of-scope collaborator exposing named grammars plus
// optional lifecycle hooks. The engine only depends on the hooks; grammar
// construction happens at registration time.
type Fixture interface {
	Name() string
	SetUp(rt Runtime) error
	TearDown(rt Runtime) error
}

// FixtureBase provides no-op hooks so fixtures only implement what they need.
type FixtureBase struct{}

func (FixtureBase) SetUp(Runtime) error    { return nil }
func (FixtureBase) TearDown(Runtime) error { return nil }
