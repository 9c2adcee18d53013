package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogical_FiresOnInterval(t *testing.T) {
	l := NewLogical()
	var fired []time.Duration
	l.Every(3*time.Second, func() { fired = append(fired, l.Now()) })

	l.Advance(2 * time.Second)
	assert.Empty(t, fired)

	l.Advance(8 * time.Second)
	assert.Equal(t, []time.Duration{3 * time.Second, 6 * time.Second, 9 * time.Second}, fired)
	assert.Equal(t, 10*time.Second, l.Now())
}

func TestLogical_OrdersByDueThenRegistration(t *testing.T) {
	l := NewLogical()
	var order []string
	l.Every(2*time.Second, func() { order = append(order, "a") })
	l.Every(time.Second, func() { order = append(order, "b") })

	l.Advance(2 * time.Second)
	assert.Equal(t, []string{"b", "a", "b"}, order)
}

func TestLogical_Cancel(t *testing.T) {
	l := NewLogical()
	var n int
	sub := l.Every(time.Second, func() { n++ })
	assert.Equal(t, 1, l.Pending())

	l.Advance(2 * time.Second)
	sub.Cancel()
	sub.Cancel()
	l.Advance(5 * time.Second)

	assert.Equal(t, 2, n)
	assert.Equal(t, 0, l.Pending())
}

func TestLogical_CancelInsideCallback(t *testing.T) {
	l := NewLogical()
	var n int
	var self interface{ Cancel() }
	self = l.Every(time.Second, func() {
		n++
		self.Cancel()
	})

	l.Advance(10 * time.Second)
	assert.Equal(t, 1, n)
}

func TestLogical_NegativeAdvanceIgnored(t *testing.T) {
	l := NewLogical()
	l.Advance(time.Second)
	l.Advance(-time.Hour)
	assert.Equal(t, time.Second, l.Now())
}

func TestLogical_PanicsOnNonPositiveInterval(t *testing.T) {
	assert.Panics(t, func() { NewLogical().Every(0, func() {}) })
}

func runLoop(t *testing.T) *Loop {
	t.Helper()
	loop := NewLoop(8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return loop
}

func TestLoop_DoRunsInOrder(t *testing.T) {
	loop := runLoop(t)
	var got []int
	for i := 0; i < 5; i++ {
		require.NoError(t, loop.Do(context.Background(), func() { got = append(got, i) }))
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestLoop_PostIsFIFO(t *testing.T) {
	loop := runLoop(t)
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		require.True(t, loop.Post(func() { got = append(got, i) }))
	}
	require.NoError(t, loop.Do(context.Background(), func() {}))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestLoop_DoRecoversPanic(t *testing.T) {
	loop := runLoop(t)
	err := loop.Do(context.Background(), func() { panic("boom") })
	assert.ErrorContains(t, err, "boom")

	// The loop survives.
	assert.NoError(t, loop.Do(context.Background(), func() {}))
}

func TestLoop_Stopped(t *testing.T) {
	loop := NewLoop(1)
	loop.Stop()
	loop.Stop()

	assert.ErrorIs(t, loop.Do(context.Background(), func() {}), ErrLoopStopped)
	assert.False(t, loop.Post(func() {}))
	assert.NoError(t, loop.Run(context.Background()))
}

func TestLoop_DoHonoursContext(t *testing.T) {
	loop := NewLoop(0) // never run, so the hand-off blocks
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, loop.Do(ctx, func() {}), context.DeadlineExceeded)
}

func TestLoop_RunStopsOnContext(t *testing.T) {
	loop := NewLoop(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, loop.Run(ctx), context.Canceled)
	select {
	case <-loop.Done():
	default:
		t.Fatal("loop should be stopped")
	}
}

func TestWall_DeliversOnLoopUntilCancelled(t *testing.T) {
	loop := runLoop(t)
	w := NewWall(loop)

	var n atomic.Int64
	sub := w.Every(5*time.Millisecond, func() { n.Add(1) })

	require.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, time.Millisecond)

	sub.Cancel()
	// Flush anything queued before the cancel.
	require.NoError(t, loop.Do(context.Background(), func() {}))
	after := n.Load()

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, loop.Do(context.Background(), func() {}))
	assert.Equal(t, after, n.Load())
	sub.Cancel()
}

func TestWall_StopsWithLoop(t *testing.T) {
	loop := NewLoop(1)
	w := NewWall(loop)
	sub := w.Every(time.Millisecond, func() {})

	loop.Stop()
	done := make(chan struct{})
	go func() {
		sub.Cancel()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cancel did not return after loop stopped")
	}
}
