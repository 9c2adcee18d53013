package schedule

import (
	"sync"
	"time"

	"github.com/Zachkp/showcase/internal/carousel"
)

// Wall schedules callbacks on real time and delivers them on a Loop, so
// subscribers only ever run on the loop goroutine.
type Wall struct {
	loop *Loop
}

// NewWall creates a wall-clock scheduler delivering onto loop.
func NewWall(loop *Loop) *Wall {
	return &Wall{loop: loop}
}

type wallSub struct {
	stop   chan struct{}
	exited chan struct{}
	once   sync.Once
}

// Cancel stops the ticker. Once Cancel returns no further callback is
// queued, though one queued earlier may still run.
func (s *wallSub) Cancel() {
	s.once.Do(func() { close(s.stop) })
	<-s.exited
}

// Every posts fn to the loop once per interval until cancelled or until the
// loop stops. It panics if interval is not positive.
func (w *Wall) Every(interval time.Duration, fn func()) carousel.Subscription {
	if interval <= 0 {
		panic("schedule: non-positive interval for Wall.Every")
	}
	s := &wallSub{
		stop:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	t := time.NewTicker(interval)
	go func() {
		defer close(s.exited)
		defer t.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-w.loop.done:
				return
			case <-t.C:
			}
			// Prefer stopping over one more delivery.
			select {
			case <-s.stop:
				return
			default:
			}
			if !w.loop.post(fn, s.stop) {
				return
			}
		}
	}()
	return s
}
