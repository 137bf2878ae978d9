package asynctask

import (
	"fmt"
	"sync"
)

// destroyFunc tears down whatever primitive a Link wraps. It receives the
// primitive id, the stored object (payload, worker, request, handler —
// whatever Start returned), and the CancelContext that triggered the
// clear.
type destroyFunc func(id any, obj any, ctx CancelContext) error

// Link is the in-registry record of one live task. Callers never
// construct a Link directly; Manager.setAsync does, via a linkSpec.
type Link struct {
	ID      any
	Kind    Kind
	Group   string
	Label   any
	ObjName string
	Obj     any

	isInterval bool
	destroy    destroyFunc
	cache      *localCache

	mu         sync.Mutex
	removed    bool
	completed  bool
	result     Result
	onComplete []CompletionHook
	cleared    bool
	onClear    []ClearHook
}

// addOnComplete registers h to run when the Link completes naturally. If
// the Link already completed, h runs immediately with the stored result
// — late subscribers (e.g. a join=merge caller returning the prior id)
// must still observe the outcome.
func (l *Link) addOnComplete(h CompletionHook) {
	l.mu.Lock()
	if l.completed {
		res := l.result
		l.mu.Unlock()
		h(res)
		return
	}
	l.onComplete = append(l.onComplete, h)
	l.mu.Unlock()
}

// addOnClear registers h to run when the Link is cleared. Hooks added
// after the Link has already cleared are dropped: under the remove-
// before-call rule no correctly written caller should observe a cleared
// Link and still try to attach to it.
func (l *Link) addOnClear(h ClearHook) {
	l.mu.Lock()
	if l.cleared {
		l.mu.Unlock()
		return
	}
	l.onClear = append(l.onClear, h)
	l.mu.Unlock()
}

// complete fires every onComplete hook, in registration order, exactly
// once.
func (l *Link) complete(res Result) {
	l.mu.Lock()
	if l.completed {
		l.mu.Unlock()
		return
	}
	l.completed = true
	l.result = res
	hooks := l.onComplete
	l.mu.Unlock()

	for _, h := range hooks {
		h(res)
	}
}

// fireClear runs every onClear hook exactly once, in registration order,
// even if an earlier hook panics. The first error encountered (a
// recovered panic is wrapped into one) is returned once every hook has
// been attempted — a misbehaving hook never prevents its siblings from
// running.
func (l *Link) fireClear(ctx CancelContext) error {
	l.mu.Lock()
	if l.cleared {
		l.mu.Unlock()
		return nil
	}
	l.cleared = true
	hooks := l.onClear
	l.mu.Unlock()

	var firstErr error
	for _, h := range hooks {
		if err := runClearHook(h, ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func runClearHook(h ClearHook, ctx CancelContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("asynctask: onClear hook panicked: %v", r)
		}
	}()
	h(ctx)
	return nil
}
