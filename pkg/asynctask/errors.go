package asynctask

import "fmt"

// ConfigurationError is a programmer error: a worker or emitter Link was
// cleared but the object it wraps exposes none of the destructor shapes
// the coordinator recognizes for its kind. The registry entry is still
// removed — leaking the bookkeeping is worse than shouting about it. A
// listener registration also returns one, before any Link is installed,
// when the emitter exposes none of the subscribe shapes.
type ConfigurationError struct {
	Kind   Kind
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("asynctask: missing destructor for kind %q: %s", e.Kind, e.Detail)
}

// CancelledError is carried, never thrown: it is the rejection reason of
// every promise-bridged task that was cleared instead of completing.
type CancelledError struct {
	Context CancelContext
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("asynctask: %s cancelled (kind=%s label=%v)", e.Context.Type, e.Context.Kind, e.Context.Label)
}

// ReplacementOverflowError is what a promise bridge rejects with once a
// join=Replace forwarding chain reaches maxReplacementDepth.
type ReplacementOverflowError struct {
	Label any
	Depth int
}

func (e *ReplacementOverflowError) Error() string {
	return fmt.Sprintf("asynctask: replacement chain for label %v exceeded depth %d", e.Label, e.Depth)
}
