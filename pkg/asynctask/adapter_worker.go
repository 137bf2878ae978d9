package asynctask

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Worker is any long-running resource the coordinator merely tracks for
// lifecycle purposes — it never starts one, only stops it. The value
// registered must be comparable (it doubles as the task's id) and must
// implement at least one of Terminate, Destroy, or Close.
type Worker any

type terminator interface{ Terminate() error }
type destroyer interface{ Destroy() error }
type closer interface{ Close() error }

func destroyWorker(w Worker) (handled bool, err error) {
	switch t := w.(type) {
	case terminator:
		return true, t.Terminate()
	case destroyer:
		return true, t.Destroy()
	case closer:
		return true, t.Close()
	default:
		return false, nil
	}
}

// SetWorker registers an already-running Worker. Workers are interval-
// like: the coordinator never invokes them, so they never self-remove —
// only an explicit clear or a label replacement ever tears one down.
func (m *Manager) SetWorker(w Worker, opts Options) (any, error) {
	return m.setAsync(linkSpec{
		kind: KindWorker, group: opts.Group, label: opts.Label, join: opts.Join,
		objName: opts.ObjName, onClear: opts.OnClear, isInterval: true,
		start: func(link *Link) (any, any, error) {
			return w, w, nil
		},
		destroy: func(id, obj any, ctx CancelContext) error {
			handled, err := destroyWorker(obj)
			if !handled {
				return &ConfigurationError{Kind: KindWorker, Detail: fmt.Sprintf("worker %T exposes none of Terminate/Destroy/Close", obj)}
			}
			return err
		},
	})
}

func (m *Manager) ClearWorker(opts ClearOptions) error { return m.clearAsync(KindWorker, opts) }

// GoroutineWorker is a reference Worker implementation backed by a single
// errgroup-managed goroutine: Close cancels its context and waits for the
// goroutine to return.
type GoroutineWorker struct {
	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewGoroutineWorker launches fn in its own goroutine under a context
// derived from ctx, returning a Worker whose Close cancels that context
// and waits for fn to return.
func NewGoroutineWorker(ctx context.Context, fn func(ctx context.Context) error) *GoroutineWorker {
	cctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(cctx)
	g.Go(func() error { return fn(gctx) })
	return &GoroutineWorker{cancel: cancel, group: g}
}

// Close cancels the worker's context and waits for its goroutine to
// return, surfacing whatever error it returned (context.Canceled is
// filtered out, since that is the expected outcome of a normal Close).
func (w *GoroutineWorker) Close() error {
	w.cancel()
	if err := w.group.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
