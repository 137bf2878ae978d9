package asynctask

// Kind identifies which primitive family a Link belongs to. Every bulk
// and label-scoped operation is partitioned first by Kind.
type Kind string

const (
	KindImmediate Kind = "immediate"
	KindTimeout   Kind = "timeout"
	KindInterval  Kind = "interval"
	KindFrame     Kind = "frame"
	KindIdle      Kind = "idle"
	KindWorker    Kind = "worker"
	KindRequest   Kind = "request"
	KindProxy     Kind = "proxy"
	KindListener  Kind = "listener"
	KindDnD       Kind = "dnd"
)

// JoinPolicy governs what happens when a new registration shares a label
// with a task that is still live.
type JoinPolicy int

const (
	// JoinNone cascades-clears the prior task and installs the new one.
	// This is the default when a label collides and no policy is given.
	JoinNone JoinPolicy = iota
	// JoinMerge discards the new registration's payload and returns the id
	// of the still-live prior task; the new registration's OnComplete and
	// OnClear hooks are attached to that prior task.
	JoinMerge
	// JoinReplace cascades-clears the prior task like JoinNone, but also
	// marks the new task as its successor so promise bridges can forward
	// resolution instead of rejecting.
	JoinReplace
)

func (j JoinPolicy) String() string {
	switch j {
	case JoinMerge:
		return "merge"
	case JoinReplace:
		return "replace"
	default:
		return "none"
	}
}

// ReasonType distinguishes why a CancelContext was raised. Today there is
// only one source of cancellation — a clearAsync call, whether issued
// directly, in bulk, or as a cascade from a label replacement.
type ReasonType string

// ReasonClearAsync is the ReasonType of every CancelContext the coordinator
// produces.
const ReasonClearAsync ReasonType = "clearAsync"

// CancelContext is handed to onClear hooks and to destructors. It carries
// enough information for a listener to tell a plain cancellation apart
// from a replacement cascade (ReplacedBy set) and from a caller-supplied
// Reason.
type CancelContext struct {
	Kind       Kind
	Group      string
	Label      any
	Link       *Link
	Type       ReasonType
	ReplacedBy *Link
	Reason     any
}

// Result is what a single-shot task produced: either a Value or an Err,
// never both set meaningfully.
type Result struct {
	Value any
	Err   error
}

// CompletionHook observes a Link's natural completion. It never runs for
// a Link that was cleared instead of completing.
type CompletionHook func(Result)

// ClearHook observes a Link's cancellation, whatever triggered it. It
// never runs for a Link that completed naturally.
type ClearHook func(CancelContext)

// Options configures a single registration. The zero value registers an
// unlabeled, ungrouped task with JoinNone semantics (meaningless unless a
// Label is also set, since join policy only matters on label collision).
type Options struct {
	Join       JoinPolicy
	Label      any
	Group      string
	ObjName    string
	OnClear    []ClearHook
	OnComplete []CompletionHook
}

// WithOnClear returns a copy of o with h appended to its OnClear chain.
func (o Options) WithOnClear(h ClearHook) Options {
	next := make([]ClearHook, 0, len(o.OnClear)+1)
	next = append(next, o.OnClear...)
	next = append(next, h)
	o.OnClear = next
	return o
}

// WithOnComplete returns a copy of o with h appended to its OnComplete
// chain. OnComplete hooks only ever fire for single-shot kinds — the
// ones that can complete naturally rather than merely being torn down.
func (o Options) WithOnComplete(h CompletionHook) Options {
	next := make([]CompletionHook, 0, len(o.OnComplete)+1)
	next = append(next, o.OnComplete...)
	next = append(next, h)
	o.OnComplete = next
	return o
}
