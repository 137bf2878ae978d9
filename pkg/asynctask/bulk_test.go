package asynctask

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearGroupPatternMatchesOnlyNamedGroups(t *testing.T) {
	m, _ := newTestManager()

	var cleared []string
	var mu sync.Mutex
	record := func(name string) ClearHook {
		return func(ctx CancelContext) {
			mu.Lock()
			cleared = append(cleared, name)
			mu.Unlock()
		}
	}

	_, err := m.SetTimeout(func() {}, time.Hour, Options{Group: "panel-a", OnClear: []ClearHook{record("panel-a")}})
	require.NoError(t, err)
	_, err = m.SetTimeout(func() {}, time.Hour, Options{Group: "panel-b", OnClear: []ClearHook{record("panel-b")}})
	require.NoError(t, err)
	_, err = m.SetTimeout(func() {}, time.Hour, Options{Group: "modal-a", OnClear: []ClearHook{record("modal-a")}})
	require.NoError(t, err)

	require.NoError(t, m.ClearGroupPattern(KindTimeout, regexp.MustCompile(`^panel-`), nil))

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"panel-a", "panel-b"}, cleared)
}

func TestClearAllByLabelCrossesKinds(t *testing.T) {
	m, _ := newTestManager()
	fe := newFakeEmitter()

	var timeoutCleared, listenerCleared bool
	_, err := m.SetTimeout(func() {}, time.Hour, Options{
		Label:   "shared",
		OnClear: []ClearHook{func(ctx CancelContext) { timeoutCleared = true }},
	})
	require.NoError(t, err)

	_, err = m.On(fe, "click", func(args ...any) {}, ListenOptions{
		Options: Options{Label: "shared", OnClear: []ClearHook{func(ctx CancelContext) { listenerCleared = true }}},
	})
	require.NoError(t, err)

	require.NoError(t, m.ClearAll(ClearAllOptions{Label: "shared"}))

	assert.True(t, timeoutCleared)
	assert.True(t, listenerCleared)
}

func TestClearAllCancelContextShape(t *testing.T) {
	m, _ := newTestManager()

	var got CancelContext
	_, err := m.SetTimeout(func() {}, time.Hour, Options{
		Group:   "reason-group",
		Label:   "reason-label",
		OnClear: []ClearHook{func(ctx CancelContext) { got = ctx }},
	})
	require.NoError(t, err)

	require.NoError(t, m.ClearAll(ClearAllOptions{Reason: "shutdown"}))

	want := CancelContext{
		Kind:   KindTimeout,
		Group:  "reason-group",
		Label:  "reason-label",
		Type:   ReasonClearAsync,
		Reason: "shutdown",
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(CancelContext{}, "Link")); diff != "" {
		t.Fatalf("unexpected CancelContext (-want +got):\n%s", diff)
	}
}
