package asynctask

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnimationFrameFiresOnce(t *testing.T) {
	m, fc := newTestManager()

	var calls int
	_, err := m.SetAnimationFrame(func(ts time.Time) { calls++ }, Options{})
	require.NoError(t, err)

	fc.Advance(frameInterval)
	fc.Advance(frameInterval)
	assert.Equal(t, 1, calls, "an animation frame callback must fire at most once")
}

func TestIdleHonorsExplicitTimeout(t *testing.T) {
	m, fc := newTestManager()

	var gotTimeout bool
	_, err := m.SetIdle(func(d IdleDeadline) { gotTimeout = d.DidTimeout }, 5*time.Millisecond, Options{})
	require.NoError(t, err)

	fc.Advance(5 * time.Millisecond)
	assert.True(t, gotTimeout)
}
