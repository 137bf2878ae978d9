package asynctask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyBecomesInertAfterClear(t *testing.T) {
	m, _ := newTestManager()

	var calls int
	id, wrapped, err := m.SetProxy(func(args ...any) any {
		calls++
		return nil
	}, Options{})
	require.NoError(t, err)

	wrapped()
	assert.Equal(t, 1, calls)

	require.NoError(t, m.ClearProxy(ClearOptions{ID: id}))

	wrapped()
	assert.Equal(t, 1, calls, "a cleared proxy must never invoke its wrapped function again")
}
