package asynctask

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() (*Manager, *fakeClock) {
	fc := newFakeClock()
	m := NewManager(WithClock(fc))
	return m, fc
}

func TestLabelCollisionJoinNoneReplacesPrior(t *testing.T) {
	m, fc := newTestManager()

	var priorCleared bool
	_, err := m.SetTimeout(func() {}, time.Second, Options{
		Label:   "poll",
		OnClear: []ClearHook{func(ctx CancelContext) { priorCleared = true }},
	})
	require.NoError(t, err)

	secondID, err := m.SetTimeout(func() {}, 2*time.Second, Options{Label: "poll"})
	require.NoError(t, err)

	assert.True(t, priorCleared, "prior labeled task must be cancelled on collision")

	fc.Advance(2 * time.Second)
	_ = secondID
}

func TestLabelCollisionJoinMergeReturnsPriorID(t *testing.T) {
	m, _ := newTestManager()

	firstID, err := m.SetTimeout(func() {}, time.Second, Options{Label: "poll"})
	require.NoError(t, err)

	secondID, err := m.SetTimeout(func() {}, time.Second, Options{Label: "poll", Join: JoinMerge})
	require.NoError(t, err)

	assert.Equal(t, firstID, secondID, "join=merge must discard the new registration and hand back the live one")
}

func TestLabelCollisionJoinReplaceMarksSuccessor(t *testing.T) {
	m, _ := newTestManager()

	var gotCtx CancelContext
	_, err := m.SetTimeout(func() {}, time.Second, Options{
		Label:   "poll",
		OnClear: []ClearHook{func(ctx CancelContext) { gotCtx = ctx }},
	})
	require.NoError(t, err)

	secondID, err := m.SetTimeout(func() {}, time.Second, Options{Label: "poll", Join: JoinReplace})
	require.NoError(t, err)

	require.NotNil(t, gotCtx.ReplacedBy)
	assert.Equal(t, secondID, gotCtx.ReplacedBy.ID)
}

func TestDestructionExactlyOnce(t *testing.T) {
	m, fc := newTestManager()

	var clearCount int
	var fired bool
	var mu sync.Mutex
	id, err := m.SetTimeout(func() { mu.Lock(); fired = true; mu.Unlock() }, time.Second, Options{
		OnClear: []ClearHook{func(ctx CancelContext) {
			mu.Lock()
			clearCount++
			mu.Unlock()
		}},
	})
	require.NoError(t, err)

	// Clearing twice must only ever run the onClear chain once.
	require.NoError(t, m.ClearTimeout(ClearOptions{ID: id}))
	require.NoError(t, m.ClearTimeout(ClearOptions{ID: id}))

	fc.Advance(time.Second) // must not fire: already cleared

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, clearCount, "onClear must run exactly once even if ClearTimeout is called twice")
	assert.False(t, fired, "a cleared timeout must never invoke its payload")
}

func TestReentrantRegistrationFromCompletionFindsEmptySlot(t *testing.T) {
	m, fc := newTestManager()

	done := make(chan any, 1)
	var second func()
	second = func() {
		id, err := m.SetTimeout(func() {}, time.Second, Options{Label: "tick"})
		if err == nil {
			done <- id
		} else {
			done <- err
		}
	}

	_, err := m.SetTimeout(func() {
		// Re-entrant registration under the SAME label, from inside the
		// first task's own completion: the remove-before-call rule means
		// the label slot must already be empty by the time this runs.
		second()
	}, time.Second, Options{Label: "tick"})
	require.NoError(t, err)

	fc.Advance(time.Second)

	select {
	case v := <-done:
		_, isErr := v.(error)
		assert.False(t, isErr, "re-entrant same-label registration should succeed: %v", v)
	case <-time.After(time.Second):
		t.Fatal("re-entrant registration never ran")
	}
}

func TestClearAllOrderListenersBeforeTimers(t *testing.T) {
	m, _ := newTestManager()

	var order []string
	var mu sync.Mutex
	record := func(name string) ClearHook {
		return func(ctx CancelContext) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	_, err := m.SetTimeout(func() {}, time.Hour, Options{OnClear: []ClearHook{record("timeout")}})
	require.NoError(t, err)

	fe := newFakeEmitter()
	_, err = m.On(fe, "click", func(args ...any) {}, ListenOptions{Options: Options{OnClear: []ClearHook{record("listener")}}})
	require.NoError(t, err)

	w := &fakeWorker{}
	_, err = m.SetWorker(w, Options{OnClear: []ClearHook{record("worker")}})
	require.NoError(t, err)

	require.NoError(t, m.ClearAll(ClearAllOptions{}))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"listener", "timeout", "worker"}, order, "ClearAll must clear listeners, then timers, then worker/request/proxy, in that order")
	assert.True(t, w.closed)
}

type fakeWorker struct{ closed bool }

func (w *fakeWorker) Close() error { w.closed = true; return nil }

// fakeEmitter is a minimal Emitter used across the test suite: On/Off
// backed by a per-event handler slice, Trigger dispatches synchronously
// to every registered handler (tests call Trigger from their own
// goroutine, never from inside Start, matching the Clock contract).
type fakeEmitter struct {
	mu       sync.Mutex
	handlers map[string][]EventHandler
}

func newFakeEmitter() *fakeEmitter {
	return &fakeEmitter{handlers: map[string][]EventHandler{}}
}

func (e *fakeEmitter) On(event string, h EventHandler) error {
	e.mu.Lock()
	e.handlers[event] = append(e.handlers[event], h)
	e.mu.Unlock()
	return nil
}

func (e *fakeEmitter) Off(event string, h EventHandler) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	list := e.handlers[event]
	for i, existing := range list {
		if fnEqual(existing, h) {
			e.handlers[event] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	return nil
}

func (e *fakeEmitter) Trigger(event string, args ...any) {
	e.mu.Lock()
	list := append([]EventHandler{}, e.handlers[event]...)
	e.mu.Unlock()
	for _, h := range list {
		h(args...)
	}
}

// fnEqual compares two EventHandler values by identity. Go forbids
// comparing func values directly; reflect.ValueOf(...).Pointer() is the
// idiomatic workaround for "is this the same closure" checks in test
// doubles like this one.
func fnEqual(a, b EventHandler) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
