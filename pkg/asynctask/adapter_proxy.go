package asynctask

import "sync/atomic"

// SetProxy wraps fn so the returned function becomes permanently inert
// once its Link is cleared, without requiring the caller to check
// anything before every call. Proxies are single-shot: the first call
// takes the Link out of the registry before invoking fn (the same
// remove-before-call rule as every other single-shot kind) and returns
// fn's result; every later call returns nil without invoking fn. On a
// join=Merge collision no Link is created and the returned function is
// inert from the start.
func (m *Manager) SetProxy(fn func(args ...any) any, opts Options) (any, func(args ...any) any, error) {
	var inert atomic.Bool
	var link *Link
	var wrapped func(args ...any) any
	wrapped = func(args ...any) any {
		if inert.Load() || link == nil {
			return nil
		}
		var out any
		m.fireOnce(link, func() Result {
			out = fn(args...)
			return Result{Value: out}
		})
		return out
	}

	id, err := m.setAsync(linkSpec{
		kind: KindProxy, group: opts.Group, label: opts.Label, join: opts.Join,
		objName: opts.ObjName, onClear: opts.OnClear, onComplete: opts.OnComplete,
		start: func(l *Link) (any, any, error) {
			link = l
			return &wrapped, wrapped, nil
		},
		destroy: func(id, obj any, ctx CancelContext) error {
			inert.Store(true)
			return nil
		},
	})
	return id, wrapped, err
}

func (m *Manager) ClearProxy(opts ClearOptions) error { return m.clearAsync(KindProxy, opts) }
