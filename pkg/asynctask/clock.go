package asynctask

import (
	"sync"
	"time"
)

// CancelFunc stops whatever AfterFunc, TickFunc, RequestFrame, or
// RequestIdle scheduled it. Calling it more than once, or after the
// callback already fired, is a no-op.
type CancelFunc func()

// Clock abstracts real-time scheduling so the timeout/interval/immediate
// adapters can be driven deterministically in tests instead of sleeping.
// A Clock implementation must invoke its callback asynchronously — never
// synchronously from within AfterFunc/TickFunc itself — since the
// coordinator relies on that to avoid reentering its own mutex.
type Clock interface {
	AfterFunc(d time.Duration, f func()) CancelFunc
	TickFunc(d time.Duration, f func()) CancelFunc
}

// realClock is the production Clock, backed directly by the time package.
type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) CancelFunc {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

func (realClock) TickFunc(d time.Duration, f func()) CancelFunc {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				f()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

// IdleDeadline mirrors the browser requestIdleCallback deadline argument:
// whether the callback fired because its timeout elapsed rather than
// because the host was actually idle, and how much idle time is left.
type IdleDeadline struct {
	DidTimeout    bool
	TimeRemaining func() time.Duration
}

// FrameSource abstracts animation-frame and idle-callback scheduling —
// the two host-loop primitives that have no direct Go stdlib analogue.
type FrameSource interface {
	RequestFrame(f func(t time.Time)) CancelFunc
	RequestIdle(timeout time.Duration, f func(d IdleDeadline)) CancelFunc
}

// defaultFrameSource approximates a 60Hz frame source and a best-effort
// idle callback on top of a Clock: idle work runs on the next tick,
// honoring an explicit timeout the same way requestIdleCallback does when
// one is given. It is a reasonable non-browser default; callers that need
// real frame pacing inject their own FrameSource via WithFrameSource.
type defaultFrameSource struct {
	clock Clock
}

func newDefaultFrameSource(c Clock) FrameSource {
	return &defaultFrameSource{clock: c}
}

const frameInterval = 16 * time.Millisecond

func (d *defaultFrameSource) RequestFrame(f func(t time.Time)) CancelFunc {
	return d.clock.AfterFunc(frameInterval, func() { f(time.Now()) })
}

func (d *defaultFrameSource) RequestIdle(timeout time.Duration, f func(dl IdleDeadline)) CancelFunc {
	delay := frameInterval
	didTimeout := false
	if timeout > 0 && timeout < frameInterval {
		delay = timeout
		didTimeout = true
	}
	return d.clock.AfterFunc(delay, func() {
		f(IdleDeadline{
			DidTimeout:    didTimeout,
			TimeRemaining: func() time.Duration { return 0 },
		})
	})
}
