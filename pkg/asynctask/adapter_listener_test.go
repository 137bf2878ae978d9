package asynctask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnDispatchesToHandler(t *testing.T) {
	m, _ := newTestManager()
	fe := newFakeEmitter()

	var calls int
	_, err := m.On(fe, "click", func(args ...any) { calls++ }, ListenOptions{})
	require.NoError(t, err)

	fe.Trigger("click")
	fe.Trigger("click")
	assert.Equal(t, 2, calls)
}

func TestOnceSelfRemovesAfterFirstFire(t *testing.T) {
	m, _ := newTestManager()
	fe := newFakeEmitter()

	var calls int
	_, err := m.Once(fe, "click", func(args ...any) { calls++ }, ListenOptions{})
	require.NoError(t, err)

	fe.Trigger("click")
	fe.Trigger("click")
	assert.Equal(t, 1, calls, "a once-subscription must fire at most once")
}

func TestOffRemovesListener(t *testing.T) {
	m, _ := newTestManager()
	fe := newFakeEmitter()

	var calls int
	_, err := m.On(fe, "click", func(args ...any) { calls++ }, ListenOptions{Options: Options{Label: "clicker"}})
	require.NoError(t, err)

	require.NoError(t, m.Off(ClearOptions{Label: "clicker", Group: "click"}))
	fe.Trigger("click")
	assert.Equal(t, 0, calls)
}

func TestDragSequenceLifecycle(t *testing.T) {
	m, _ := newTestManager()
	fe := newFakeEmitter()

	var moveCalls, endCalls int
	_, err := m.DragSequence(fe, DragOptions{
		OnMove: func(args ...any) { moveCalls++ },
		OnEnd:  func(args ...any) { endCalls++ },
	})
	require.NoError(t, err)

	fe.Trigger("mousedown")
	fe.Trigger("mousemove")
	fe.Trigger("mousemove")
	fe.Trigger("mouseup")

	assert.Equal(t, 2, moveCalls, "every mousemove between down and up must dispatch")
	assert.Equal(t, 1, endCalls)

	// After mouseup, just that gesture's listeners must be torn down: a
	// further mousemove/mouseup with no new mousedown must be inert.
	fe.Trigger("mousemove")
	fe.Trigger("mouseup")
	assert.Equal(t, 2, moveCalls)
	assert.Equal(t, 1, endCalls)
}

func TestDragSequenceSupportsRepeatedGestures(t *testing.T) {
	m, _ := newTestManager()
	fe := newFakeEmitter()

	var moveCalls, endCalls int
	_, err := m.DragSequence(fe, DragOptions{
		OnMove: func(args ...any) { moveCalls++ },
		OnEnd:  func(args ...any) { endCalls++ },
	})
	require.NoError(t, err)

	fe.Trigger("mousedown")
	fe.Trigger("mousemove")
	fe.Trigger("mouseup")
	assert.Equal(t, 1, moveCalls)
	assert.Equal(t, 1, endCalls)

	// A second mousedown after the first gesture ended must start a new
	// gesture: the persistent mousedown binding must survive the first
	// gesture's teardown.
	fe.Trigger("mousedown")
	fe.Trigger("mousemove")
	fe.Trigger("mousemove")
	fe.Trigger("mouseup")
	assert.Equal(t, 3, moveCalls, "a second drag gesture must dispatch its own mousemoves")
	assert.Equal(t, 2, endCalls, "a second drag gesture must dispatch its own mouseup")
}
