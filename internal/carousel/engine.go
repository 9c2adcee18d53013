package carousel

import (
	"fmt"
	"sort"
	"time"
)

// Scheduler invokes a callback periodically until the returned
// subscription is cancelled. Callbacks must be delivered on the goroutine
// that owns the engine.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Subscription
}

// Subscription is a cancellable scheduler registration. Cancel must be
// safe to call more than once.
type Subscription interface {
	Cancel()
}

// Engine maintains the active item of a carousel and its auto-advance
// schedule. Create one per hosted carousel and call Dispose when the view
// goes away.
type Engine struct {
	cfg    Config
	n      int
	active int

	autoAdvance bool
	sub         Subscription
	ticks       int64
	disposed    bool
}

// New creates an engine for n items. Zero tuning fields in cfg fall back to
// their defaults. When sched is non-nil the engine subscribes to it right
// away and advances once per cfg.Interval until a manual navigation or
// Dispose.
func New(n int, cfg Config, sched Scheduler) (*Engine, error) {
	if n < 1 {
		return nil, ErrNoItems
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkIndex("New", cfg.StartIndex, n); err != nil {
		return nil, fmt.Errorf("start index: %w", err)
	}

	e := &Engine{
		cfg:         cfg,
		n:           n,
		active:      cfg.StartIndex,
		autoAdvance: true,
	}
	if sched != nil {
		e.sub = sched.Every(cfg.Interval, e.onTick)
	}
	return e, nil
}

// Config returns the effective configuration, defaults included.
func (e *Engine) Config() Config {
	return e.cfg.WithDefaults()
}

// Len returns the number of items.
func (e *Engine) Len() int {
	return e.n
}

// ActiveIndex returns the index of the frontmost item.
func (e *Engine) ActiveIndex() int {
	return e.active
}

// AutoAdvanceEnabled reports whether the timer still drives the carousel.
// Once false it stays false.
func (e *Engine) AutoAdvanceEnabled() bool {
	return e.autoAdvance
}

// Ticks returns how many timer-driven advances have happened.
func (e *Engine) Ticks() int64 {
	return e.ticks
}

// Advance moves to the next item, wrapping around. It leaves auto-advance
// untouched; it is what the timer calls.
func (e *Engine) Advance() {
	e.active = (e.active + 1) % e.n
}

// AdvanceManual moves to the next item on behalf of the user and turns
// auto-advance off.
func (e *Engine) AdvanceManual() {
	e.stopAutoAdvance()
	e.Advance()
}

// Retreat moves to the previous item on behalf of the user and turns
// auto-advance off.
func (e *Engine) Retreat() {
	e.stopAutoAdvance()
	e.active = (e.active - 1 + e.n) % e.n
}

// SelectIndex jumps directly to item i and turns auto-advance off. An index
// outside [0, Len) returns an *OutOfRangeError and changes nothing.
func (e *Engine) SelectIndex(i int) error {
	if err := checkIndex("SelectIndex", i, e.n); err != nil {
		return err
	}
	e.stopAutoAdvance()
	e.active = i
	return nil
}

// Transform returns the placement of item i for the current active index.
// It has no side effects.
func (e *Engine) Transform(i int) (Placement, error) {
	if err := checkIndex("Transform", i, e.n); err != nil {
		return Placement{}, err
	}
	return place(e.cfg, i, e.active, e.n), nil
}

// Placements returns the placements of every visible item ordered by
// ascending stack order, so drawing them in order leaves the active item
// on top. Items with equal stack order keep index order.
func (e *Engine) Placements() []Placement {
	out := make([]Placement, 0, e.n)
	for i := 0; i < e.n; i++ {
		p := place(e.cfg, i, e.active, e.n)
		if p.Visible {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].StackOrder < out[b].StackOrder
	})
	return out
}

// Dispose cancels the timer subscription. The engine keeps answering
// queries but never auto-advances again.
func (e *Engine) Dispose() {
	e.disposed = true
	e.cancelSub()
}

func (e *Engine) onTick() {
	// A tick queued before cancellation may still arrive.
	if !e.autoAdvance || e.disposed {
		return
	}
	e.ticks++
	e.Advance()
}

func (e *Engine) stopAutoAdvance() {
	if !e.autoAdvance {
		return
	}
	e.autoAdvance = false
	e.cancelSub()
}

func (e *Engine) cancelSub() {
	if e.sub != nil {
		e.sub.Cancel()
		e.sub = nil
	}
}
