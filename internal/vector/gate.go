package vector

// inactiveMessage is the fixed explanation returned whenever a vector
// operation is attempted with the gate closed. The wording is part of the
// contract: callers and operators see the same text regardless of which
// entry point was blocked.
const inactiveMessage = "Vectors are inactive and must not influence system behavior until explicitly activated. " +
	"Activation requires explicit decision, documented scope, and VECTORS_ACTIVE=true."

// Gate is the single source of truth for whether vector features may execute.
// It is constructed once from configuration and injected into every component
// that reads or writes embeddings — there is no global flag lookup, so tests
// never need to mutate the environment.
type Gate struct {
	// active is true iff the configured flag was exactly the string "true".
	active bool
}

// NewGate constructs a Gate from the raw flag value. Only the literal string
// "true" activates vector features; unset, empty, and every other value
// (including "TRUE" and "1") leave the gate closed.
func NewGate(flag string) *Gate {
	return &Gate{active: flag == "true"}
}

// IsActive reports whether vector reads and writes may execute.
func (g *Gate) IsActive() bool { return g.active }

// RequireActive returns an *InactiveFeatureError when the gate is closed and
// nil when it is open. It has no side effects either way.
func (g *Gate) RequireActive() error {
	if !g.active {
		return &InactiveFeatureError{Message: inactiveMessage}
	}
	return nil
}
