package asynctask

import "time"

// SetImmediate schedules fn to run on the next tick. It behaves like
// SetTimeout with a zero delay, grouped under KindImmediate so it can be
// cleared and bulk-cleared independently of real timeouts.
func (m *Manager) SetImmediate(fn func(), opts Options) (any, error) {
	return m.scheduleOneShot(KindImmediate, fn, opts, func(fire func()) CancelFunc {
		return m.clock.AfterFunc(0, fire)
	})
}

// SetTimeout schedules fn to run once, after d elapses.
func (m *Manager) SetTimeout(fn func(), d time.Duration, opts Options) (any, error) {
	return m.scheduleOneShot(KindTimeout, fn, opts, func(fire func()) CancelFunc {
		return m.clock.AfterFunc(d, fire)
	})
}

// SetInterval schedules fn to run every d until cleared. Unlike the other
// timer kinds, intervals never self-remove on fire.
func (m *Manager) SetInterval(fn func(), d time.Duration, opts Options) (any, error) {
	return m.setAsync(linkSpec{
		kind: KindInterval, group: opts.Group, label: opts.Label, join: opts.Join,
		objName: opts.ObjName, onClear: opts.OnClear, isInterval: true,
		start: func(link *Link) (any, any, error) {
			var cancel CancelFunc
			cancel = m.clock.TickFunc(d, func() {
				m.fireRepeating(link, fn)
			})
			return &cancel, fn, nil
		},
		destroy: cancelHandleDestroy,
	})
}

// scheduleOneShot is the shared implementation of every single-shot
// timer-family kind: fn runs exactly once, after which the remove-
// before-call rule takes its Link out of the registry before fn is
// invoked.
func (m *Manager) scheduleOneShot(kind Kind, fn func(), opts Options, start func(fire func()) CancelFunc) (any, error) {
	return m.setAsync(linkSpec{
		kind: kind, group: opts.Group, label: opts.Label, join: opts.Join,
		objName: opts.ObjName, onClear: opts.OnClear, onComplete: opts.OnComplete,
		start: func(link *Link) (any, any, error) {
			var cancel CancelFunc
			cancel = start(func() {
				m.fireOnce(link, func() Result {
					fn()
					return Result{}
				})
			})
			return &cancel, fn, nil
		},
		destroy: cancelHandleDestroy,
	})
}

func cancelHandleDestroy(id, obj any, ctx CancelContext) error {
	cancel := id.(*CancelFunc)
	(*cancel)()
	return nil
}

func (m *Manager) ClearImmediate(opts ClearOptions) error { return m.clearAsync(KindImmediate, opts) }
func (m *Manager) ClearTimeout(opts ClearOptions) error   { return m.clearAsync(KindTimeout, opts) }
func (m *Manager) ClearInterval(opts ClearOptions) error  { return m.clearAsync(KindInterval, opts) }
