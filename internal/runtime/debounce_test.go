package runtime

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerTrailingCoalescesBurst(t *testing.T) {
	d := NewDebouncer(20*time.Millisecond, false)
	defer d.Stop()

	var mu sync.Mutex
	var got []int
	for i := 0; i < 10; i++ {
		i := i
		d.Call(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
		time.Sleep(time.Millisecond)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	// Only the final call of the burst ran.
	assert.Equal(t, []int{9}, got)
}

func TestDebouncerTrailingRunsAgainAfterQuiet(t *testing.T) {
	d := NewDebouncer(5*time.Millisecond, false)
	defer d.Stop()

	var calls atomic.Int32
	d.Call(func() { calls.Add(1) })
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	d.Call(func() { calls.Add(1) })
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)
}

func TestDebouncerLeadingRunsFirstCallImmediately(t *testing.T) {
	d := NewDebouncer(50*time.Millisecond, true)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.Call(func() { calls.Add(1) })
	}

	// The first call ran synchronously, the rest fell into the quiet window.
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncerLeadingReopensAfterQuiet(t *testing.T) {
	d := NewDebouncer(5*time.Millisecond, true)
	defer d.Stop()

	var calls atomic.Int32
	d.Call(func() { calls.Add(1) })
	require.Equal(t, int32(1), calls.Load())

	require.Eventually(t, func() bool {
		d.Call(func() { calls.Add(1) })
		return calls.Load() >= 2
	}, time.Second, 10*time.Millisecond)
}

func TestDebouncerStopDiscardsPending(t *testing.T) {
	d := NewDebouncer(10*time.Millisecond, false)

	var calls atomic.Int32
	d.Call(func() { calls.Add(1) })
	d.Stop()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	// Calls after Stop are rejected outright.
	d.Call(func() { calls.Add(1) })
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}
