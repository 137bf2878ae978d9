package asynctask

import (
	"context"
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// Future is the coordinator's promise bridge: a single-shot primitive
// turned into a cancellable, awaitable value. It settles exactly once,
// either by resolving with a T or by rejecting with an error — typically
// a *CancelledError or *ReplacementOverflowError when the underlying task
// was cleared rather than completed.
type Future[T any] struct {
	mu       sync.Mutex
	done     chan struct{}
	val      T
	err      error
	resolved bool
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(v T) {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		return
	}
	f.resolved = true
	f.val = v
	f.mu.Unlock()
	close(f.done)
}

func (f *Future[T]) reject(err error) {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		return
	}
	f.resolved = true
	f.err = err
	f.mu.Unlock()
	close(f.done)
}

// Await blocks until the Future settles or ctx is done, whichever comes
// first.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done reports whether the Future has settled, without blocking.
func (f *Future[T]) Done() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// maxReplacementDepth caps the depth of a join=Replace forwarding chain:
// a promise bridge is forwarded onto at most maxReplacementDepth-1
// successors, and the replacement that would bring its chain to
// maxReplacementDepth rejects it with a ReplacementOverflowError
// instead. Unbounded forwarding would
// let a runaway replace loop hold an ever-growing chain of Futures alive
// in memory.
const maxReplacementDepth = 25

// completeFuture returns a CompletionHook that settles fut from a Link's
// natural-completion Result. It is the single place that decides how a
// Result maps onto a typed Future, so both a bridge's own Link and — on
// a join=Merge collision or a join=Replace forwarding hop — any other
// Link that later notifies it resolve/reject the same way.
func completeFuture[T any](fut *Future[T]) CompletionHook {
	return func(res Result) {
		if res.Err != nil {
			fut.reject(res.Err)
			return
		}
		if v, ok := res.Value.(T); ok {
			fut.resolve(v)
			return
		}
		var zero T
		fut.resolve(zero)
	}
}

// bindBridge is the promise bridge's onClear hook. On a plain
// cancellation it rejects with a CancelledError. On a join=Replace
// cascade (ctx.ReplacedBy set) it forwards both the eventual resolution
// and the remaining onClear chain onto the successor Link as an explicit
// queue — not a recursive call — so maxReplacementDepth is actually
// enforceable rather than just a suggestion.
func bindBridge[T any](fut *Future[T], depth int) ClearHook {
	return func(ctx CancelContext) {
		if ctx.ReplacedBy != nil {
			if depth+1 >= maxReplacementDepth {
				fut.reject(&ReplacementOverflowError{Label: ctx.Label, Depth: depth + 1})
				return
			}
			successor := ctx.ReplacedBy
			nextDepth := depth + 1
			successor.addOnComplete(completeFuture(fut))
			successor.addOnClear(bindBridge(fut, nextDepth))
			return
		}
		fut.reject(&CancelledError{Context: ctx})
	}
}

// Sleep resolves once d elapses, unless cleared first — by label
// replacement or by an explicit ClearTimeout. Resolution is wired through
// the Link's onComplete hook, not a closure captured only by this call,
// so a join=Merge late arrival sharing the same label also observes it.
func (m *Manager) Sleep(d time.Duration, opts Options) (*Future[struct{}], error) {
	fut := newFuture[struct{}]()
	opts = opts.WithOnClear(bindBridge(fut, 0)).WithOnComplete(completeFuture(fut))
	_, err := m.SetTimeout(func() {}, d, opts)
	if err != nil {
		return nil, err
	}
	return fut, nil
}

// NextTick resolves on the next scheduler tick.
func (m *Manager) NextTick(opts Options) (*Future[struct{}], error) {
	fut := newFuture[struct{}]()
	opts = opts.WithOnClear(bindBridge(fut, 0)).WithOnComplete(completeFuture(fut))
	_, err := m.SetImmediate(func() {}, opts)
	if err != nil {
		return nil, err
	}
	return fut, nil
}

// Idle resolves the next time the frame source reports an idle slot.
func (m *Manager) Idle(timeout time.Duration, opts Options) (*Future[IdleDeadline], error) {
	fut := newFuture[IdleDeadline]()
	opts = opts.WithOnClear(bindBridge(fut, 0)).WithOnComplete(completeFuture(fut))
	_, err := m.SetIdle(func(d IdleDeadline) {}, timeout, opts)
	if err != nil {
		return nil, err
	}
	return fut, nil
}

// AnimationFrame resolves on the next animation frame.
func (m *Manager) AnimationFrame(opts Options) (*Future[time.Time], error) {
	fut := newFuture[time.Time]()
	opts = opts.WithOnClear(bindBridge(fut, 0)).WithOnComplete(completeFuture(fut))
	_, err := m.SetAnimationFrame(func(t time.Time) {}, opts)
	if err != nil {
		return nil, err
	}
	return fut, nil
}

// FromRequest bridges an abortable Request directly into a Future,
// without requiring the caller to also call SetRequest.
func (m *Manager) FromRequest(req Request, opts Options) (*Future[any], error) {
	fut := newFuture[any]()
	opts = opts.WithOnClear(bindBridge(fut, 0)).WithOnComplete(completeFuture(fut))
	_, err := m.setAsync(linkSpec{
		kind: KindRequest, group: opts.Group, label: opts.Label, join: opts.Join,
		objName: opts.ObjName, onClear: opts.OnClear, onComplete: opts.OnComplete,
		start: func(link *Link) (any, any, error) {
			req.Then(
				func(v any) { m.completeOnce(link, Result{Value: v}) },
				func(rerr error) { m.completeOnce(link, Result{Err: rerr}) },
			)
			return req, req, nil
		},
		destroy: abortRequestDestroy,
	})
	if err != nil {
		return nil, err
	}
	return fut, nil
}

// PromisifyOnce bridges a single Once registration into a Future carrying
// the raw event arguments.
func (m *Manager) PromisifyOnce(e Emitter, events string, opts ListenOptions) (*Future[[]any], error) {
	fut := newFuture[[]any]()
	opts.Single = true
	opts.Options = opts.Options.WithOnClear(bindBridge(fut, 0)).WithOnComplete(completeFuture(fut))
	_, err := m.Once(e, events, func(args ...any) {}, opts)
	if err != nil {
		return nil, err
	}
	return fut, nil
}

// Wait polls predicate every 15ms and resolves once it returns true.
// Clearing the underlying Link — directly, via label replacement, or by
// cancelling ctx — rejects the returned Future.
func (m *Manager) Wait(ctx context.Context, predicate func() bool, opts Options) (*Future[struct{}], error) {
	fut := newFuture[struct{}]()
	pollCtx, cancel := context.WithCancel(ctx)

	_, err := m.setAsync(linkSpec{
		kind: KindInterval, group: opts.Group, label: opts.Label, join: opts.Join,
		objName: opts.ObjName, isInterval: true,
		onClear: opts.WithOnClear(func(cctx CancelContext) {
			cancel()
			bindBridge(fut, 0)(cctx)
		}).OnClear,
		onComplete: []CompletionHook{completeFuture(fut)},
		start: func(link *Link) (any, any, error) {
			go func() {
				_ = wait.PollUntilContextCancel(pollCtx, 15*time.Millisecond, true, func(context.Context) (bool, error) {
					return predicate(), nil
				})
				if pollCtx.Err() == nil {
					m.completeOnce(link, Result{Value: struct{}{}})
				} else if ctx.Err() != nil {
					_ = m.clearLink(link, CancelContext{Kind: KindInterval, Group: opts.Group, Label: opts.Label, Link: link, Type: ReasonClearAsync, Reason: ctx.Err()})
				}
			}()
			return &cancel, predicate, nil
		},
		destroy: func(id, obj any, ctx CancelContext) error {
			(*id.(*context.CancelFunc))()
			return nil
		},
	})
	if err != nil {
		cancel()
		return nil, err
	}
	return fut, nil
}
