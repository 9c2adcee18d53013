// Package schedule provides the timer collaborators a carousel engine
// subscribes to: a deterministic logical clock for tests and previews, a
// single-owner event loop, and a wall-clock scheduler that delivers ticks
// onto that loop.
package schedule

import (
	"time"

	"github.com/Zachkp/showcase/internal/carousel"
)

// Logical is a scheduler driven entirely by calls to Advance. No goroutines
// are involved: callbacks run on the caller's goroutine inside Advance.
//
// Logical is not safe for concurrent use.
type Logical struct {
	now     time.Duration
	nextSeq int
	subs    []*logicalSub
}

type logicalSub struct {
	interval  time.Duration
	due       time.Duration
	seq       int
	fn        func()
	cancelled bool
}

func (s *logicalSub) Cancel() {
	s.cancelled = true
}

// NewLogical creates a logical clock at time zero.
func NewLogical() *Logical {
	return &Logical{}
}

// Every registers fn to run each time another interval of logical time has
// elapsed. It panics if interval is not positive, like time.NewTicker.
func (l *Logical) Every(interval time.Duration, fn func()) carousel.Subscription {
	if interval <= 0 {
		panic("schedule: non-positive interval for Logical.Every")
	}
	s := &logicalSub{
		interval: interval,
		due:      l.now + interval,
		seq:      l.nextSeq,
		fn:       fn,
	}
	l.nextSeq++
	l.subs = append(l.subs, s)
	return s
}

// Now returns the logical time elapsed since creation.
func (l *Logical) Now() time.Duration {
	return l.now
}

// Pending returns the number of live subscriptions.
func (l *Logical) Pending() int {
	l.compact()
	return len(l.subs)
}

// Advance moves logical time forward by d, firing every callback that
// falls due on the way in due-time order. Callbacks due at the same instant
// fire in registration order. A callback may cancel any subscription,
// including its own. Negative durations are ignored.
func (l *Logical) Advance(d time.Duration) {
	if d < 0 {
		return
	}
	target := l.now + d
	for {
		next := l.nextDue(target)
		if next == nil {
			break
		}
		l.now = next.due
		next.due += next.interval
		next.fn()
	}
	l.now = target
	l.compact()
}

func (l *Logical) nextDue(target time.Duration) *logicalSub {
	var best *logicalSub
	for _, s := range l.subs {
		if s.cancelled || s.due > target {
			continue
		}
		if best == nil || s.due < best.due || (s.due == best.due && s.seq < best.seq) {
			best = s
		}
	}
	return best
}

func (l *Logical) compact() {
	live := l.subs[:0]
	for _, s := range l.subs {
		if !s.cancelled {
			live = append(live, s)
		}
	}
	for i := len(live); i < len(l.subs); i++ {
		l.subs[i] = nil
	}
	l.subs = live
}
