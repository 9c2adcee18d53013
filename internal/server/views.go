package server

import (
	"log/slog"
	"time"

	"github.com/Zachkp/showcase/internal/carousel"
	"github.com/Zachkp/showcase/internal/deck"
)

// viewKey identifies one visitor's view of one deck.
type viewKey struct {
	session string
	deck    string
}

// view is a mounted carousel. It lives from the first request for a deck
// until it is unmounted or goes idle.
type view struct {
	engine   *carousel.Engine
	lastSeen time.Time
}

// viewRegistry owns every mounted engine. It must only be used from the
// server's loop goroutine.
type viewRegistry struct {
	views map[viewKey]*view
	sched carousel.Scheduler
	now   func() time.Time
	limit int // 0 means unlimited
}

func newViewRegistry(sched carousel.Scheduler, now func() time.Time, limit int) *viewRegistry {
	return &viewRegistry{
		views: make(map[viewKey]*view),
		sched: sched,
		now:   now,
		limit: limit,
	}
}

// mount returns the view for key, creating its engine on first use.
func (r *viewRegistry) mount(key viewKey, d deck.Deck) (*view, bool, error) {
	if v, ok := r.views[key]; ok {
		v.lastSeen = r.now()
		return v, false, nil
	}
	e, err := d.NewEngine(r.sched)
	if err != nil {
		return nil, false, err
	}
	if r.limit > 0 {
		for len(r.views) >= r.limit {
			r.evictOldest()
		}
	}
	v := &view{engine: e, lastSeen: r.now()}
	r.views[key] = v
	return v, true, nil
}

// unmount disposes the view for key. It reports whether one existed.
func (r *viewRegistry) unmount(key viewKey) bool {
	v, ok := r.views[key]
	if !ok {
		return false
	}
	v.engine.Dispose()
	delete(r.views, key)
	return true
}

// evictOldest disposes the least recently seen view.
func (r *viewRegistry) evictOldest() {
	var (
		oldest viewKey
		seen   time.Time
		found  bool
	)
	for key, v := range r.views {
		if !found || v.lastSeen.Before(seen) {
			oldest, seen, found = key, v.lastSeen, true
		}
	}
	if !found {
		return
	}
	r.views[oldest].engine.Dispose()
	delete(r.views, oldest)
	slog.Debug("evicted carousel view", "deck", oldest.deck, "limit", r.limit)
}

// sweep unmounts views not seen for longer than idle.
func (r *viewRegistry) sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	n := 0
	for key, v := range r.views {
		if v.lastSeen.Before(cutoff) {
			v.engine.Dispose()
			delete(r.views, key)
			n++
		}
	}
	if n > 0 {
		slog.Debug("swept idle carousel views", "count", n, "remaining", len(r.views))
	}
	return n
}

func (r *viewRegistry) closeAll() {
	for key, v := range r.views {
		v.engine.Dispose()
		delete(r.views, key)
	}
}

func (r *viewRegistry) count() int {
	return len(r.views)
}
