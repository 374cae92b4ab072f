package client

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestDebouncer_RunsLastOnly(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var calls atomic.Int32
	var last atomic.Int32

	for i := 1; i <= 5; i++ {
		d.Trigger(func() {
			calls.Add(1)
			last.Store(int32(i))
		})
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(5), last.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_Flush(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDebouncer(time.Hour)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	require.True(t, d.Pending())

	d.Flush()

	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, d.Pending())

	d.Flush()
	assert.Equal(t, int32(1), calls.Load(), "flush with nothing pending is a no-op")
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })

	d.Stop()
	time.Sleep(40 * time.Millisecond)

	assert.Zero(t, calls.Load())
	assert.False(t, d.Pending())
}

func TestNewDebouncer_DefaultWindow(t *testing.T) {
	assert.Equal(t, DefaultDebounceWindow, NewDebouncer(0).window)
	assert.Equal(t, 2*time.Second, DefaultDebounceWindow)
}
