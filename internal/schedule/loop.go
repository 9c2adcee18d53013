package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrLoopStopped is returned when work is submitted to a stopped loop.
var ErrLoopStopped = errors.New("schedule: loop stopped")

// Loop runs submitted functions one at a time on a single goroutine. State
// that is only touched from inside the loop needs no further locking.
type Loop struct {
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once
}

// NewLoop creates a loop whose queue holds up to buffer pending functions.
func NewLoop(buffer int) *Loop {
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Run executes queued functions until ctx is cancelled or Stop is called.
// It must be called from exactly one goroutine. Functions still queued when
// the loop stops are dropped.
func (l *Loop) Run(ctx context.Context) error {
	slog.Debug("loop starting")
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			slog.Debug("loop stopping: context cancelled")
			return ctx.Err()
		case <-l.done:
			slog.Debug("loop stopping: stopped")
			return nil
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Stop stops the loop. It is safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

// Done is closed once the loop has been stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Post queues fn without waiting for it to run. It reports false if the
// loop has stopped.
func (l *Loop) Post(fn func()) bool {
	return l.post(fn, nil)
}

// post queues fn, giving up if the loop stops or cancel is closed.
func (l *Loop) post(fn func(), cancel <-chan struct{}) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	case <-cancel:
		return false
	}
}

// Do runs fn on the loop and waits for it to finish. A panic inside fn is
// recovered and returned as an error. If ctx ends first Do returns ctx.Err()
// and fn may still run later.
//
// Do must not be called from inside the loop; it would wait on itself.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	result := make(chan error, 1)
	task := func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("schedule: task panicked: %v", r)
			}
		}()
		fn()
		result <- nil
	}

	select {
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	case l.tasks <- task:
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}
}
