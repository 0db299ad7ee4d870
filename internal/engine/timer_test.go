package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdownFiresOnceOnExpiry(t *testing.T) {
	var fired atomic.Int32
	c := NewCountdown(2*time.Millisecond, func() { fired.Add(1) })
	defer c.Close()

	c.Start(2)

	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, time.Second, time.Millisecond)

	// The countdown stays stopped after firing; no further expiries.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestCountdownStopPreventsExpiry(t *testing.T) {
	var fired atomic.Int32
	c := NewCountdown(5*time.Millisecond, func() { fired.Add(1) })
	defer c.Close()

	c.Start(100)
	c.Stop()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestCountdownResetReArms(t *testing.T) {
	var fired atomic.Int32
	c := NewCountdown(2*time.Millisecond, func() { fired.Add(1) })
	defer c.Close()

	c.Start(1)
	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, time.Second, time.Millisecond)

	c.Reset(1)
	require.Eventually(t, func() bool {
		return fired.Load() == 2
	}, time.Second, time.Millisecond)
}

func TestCountdownRemainingDecreases(t *testing.T) {
	c := NewCountdown(2*time.Millisecond, func() {})
	defer c.Close()

	c.Start(1000)
	require.Eventually(t, func() bool {
		return c.Remaining() < 1000
	}, time.Second, time.Millisecond)
}

func TestCountdownCloseIsIdempotent(t *testing.T) {
	c := NewCountdown(time.Millisecond, func() {})
	c.Start(5)
	c.Close()
	c.Close()
}
