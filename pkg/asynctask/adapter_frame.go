package asynctask

import "time"

// SetAnimationFrame schedules fn to run once on the next animation
// frame.
func (m *Manager) SetAnimationFrame(fn func(t time.Time), opts Options) (any, error) {
	return m.setAsync(linkSpec{
		kind: KindFrame, group: opts.Group, label: opts.Label, join: opts.Join,
		objName: opts.ObjName, onClear: opts.OnClear, onComplete: opts.OnComplete,
		start: func(link *Link) (any, any, error) {
			var cancel CancelFunc
			cancel = m.frames.RequestFrame(func(t time.Time) {
				m.fireOnce(link, func() Result {
					fn(t)
					return Result{Value: t}
				})
			})
			return &cancel, fn, nil
		},
		destroy: cancelHandleDestroy,
	})
}

// SetIdle schedules fn to run once the next time the frame source reports
// an idle slot, or after timeout elapses, whichever comes first. A
// timeout <= 0 means "no explicit timeout".
func (m *Manager) SetIdle(fn func(d IdleDeadline), timeout time.Duration, opts Options) (any, error) {
	return m.setAsync(linkSpec{
		kind: KindIdle, group: opts.Group, label: opts.Label, join: opts.Join,
		objName: opts.ObjName, onClear: opts.OnClear, onComplete: opts.OnComplete,
		start: func(link *Link) (any, any, error) {
			var cancel CancelFunc
			cancel = m.frames.RequestIdle(timeout, func(dl IdleDeadline) {
				m.fireOnce(link, func() Result {
					fn(dl)
					return Result{Value: dl}
				})
			})
			return &cancel, fn, nil
		},
		destroy: cancelHandleDestroy,
	})
}

func (m *Manager) ClearAnimationFrame(opts ClearOptions) error { return m.clearAsync(KindFrame, opts) }
func (m *Manager) ClearIdle(opts ClearOptions) error           { return m.clearAsync(KindIdle, opts) }
