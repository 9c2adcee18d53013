package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Zachkp/showcase/internal/carousel"
	"github.com/Zachkp/showcase/internal/deck"
	"github.com/Zachkp/showcase/internal/schedule"
	"github.com/Zachkp/showcase/internal/store"
)

const (
	sessionCookie = "showcase_session"
	sessionKey    = "session"
	sessionMaxAge = 3600 * 24
)

// viewState is the JSON body returned for a mounted view.
type viewState struct {
	Deck        string               `json:"deck"`
	ActiveIndex int                  `json:"activeIndex"`
	AutoAdvance bool                 `json:"autoAdvance"`
	Ticks       int64                `json:"ticks"`
	ItemCount   int                  `json:"itemCount"`
	Placements  []carousel.Placement `json:"placements"`
}

func snapshot(name string, e *carousel.Engine) viewState {
	return viewState{
		Deck:        name,
		ActiveIndex: e.ActiveIndex(),
		AutoAdvance: e.AutoAdvanceEnabled(),
		Ticks:       e.Ticks(),
		ItemCount:   e.Len(),
		Placements:  e.Placements(),
	}
}

func (s *Server) listDecks(c *gin.Context) {
	type summary struct {
		Name  string `json:"name"`
		Title string `json:"title"`
		Items int    `json:"items"`
	}
	decks := s.catalogue.All()
	out := make([]summary, len(decks))
	for i, d := range decks {
		out[i] = summary{Name: d.Name, Title: d.Title, Items: len(d.Items)}
	}
	c.JSON(http.StatusOK, gin.H{"decks": out})
}

func (s *Server) getDeck(c *gin.Context) {
	d, ok := s.lookupDeck(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) lookupDeck(c *gin.Context) (deck.Deck, bool) {
	d, err := s.catalogue.Get(c.Param("deck"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return deck.Deck{}, false
	}
	return d, true
}

// sessionMiddleware makes sure the visitor has a session id, issuing a new
// cookie when the current one is missing or malformed.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookie)
		if err != nil || !validSession(id) {
			id = uuid.NewString()
			c.SetCookie(sessionCookie, id, sessionMaxAge, "/api", "", false, true)
		}
		c.Set(sessionKey, id)
		c.Next()
	}
}

// withView runs fn against the visitor's engine for the requested deck on
// the loop goroutine, mounting the view if needed.
func (s *Server) withView(c *gin.Context, d deck.Deck, fn func(e *carousel.Engine) error) (viewState, bool) {
	key := viewKey{session: c.GetString(sessionKey), deck: d.Name}

	var (
		state      viewState
		mounted    bool
		mountIndex int
		opErr      error
	)
	err := s.loop.Do(c.Request.Context(), func() {
		v, created, err := s.views.mount(key, d)
		if err != nil {
			opErr = err
			return
		}
		mounted, mountIndex = created, v.engine.ActiveIndex()
		if fn != nil {
			if opErr = fn(v.engine); opErr != nil {
				return
			}
		}
		state = snapshot(d.Name, v.engine)
	})

	switch {
	case errors.Is(err, schedule.ErrLoopStopped):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "shutting down"})
		return viewState{}, false
	case err != nil:
		slog.Error("carousel view failed", "deck", d.Name, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "carousel unavailable"})
		return viewState{}, false
	}

	if mounted {
		s.record(c, d.Name, store.ActionMount, mountIndex)
	}

	var oor *carousel.OutOfRangeError
	switch {
	case errors.As(opErr, &oor):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": oor.Error()})
		return viewState{}, false
	case opErr != nil:
		slog.Error("carousel view failed", "deck", d.Name, "error", opErr)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "carousel unavailable"})
		return viewState{}, false
	}
	return state, true
}

func (s *Server) getView(c *gin.Context) {
	d, ok := s.lookupDeck(c)
	if !ok {
		return
	}
	state, ok := s.withView(c, d, nil)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, state)
}

// navigate handles the manual navigation endpoints. Every one of them turns
// auto-advance off for the view.
func (s *Server) navigate(action store.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, ok := s.lookupDeck(c)
		if !ok {
			return
		}

		var op func(e *carousel.Engine) error
		switch action {
		case store.ActionNext:
			op = func(e *carousel.Engine) error { e.AdvanceManual(); return nil }
		case store.ActionPrev:
			op = func(e *carousel.Engine) error { e.Retreat(); return nil }
		case store.ActionSelect:
			idx, err := strconv.Atoi(c.Param("index"))
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
				return
			}
			op = func(e *carousel.Engine) error { return e.SelectIndex(idx) }
		}

		state, ok := s.withView(c, d, op)
		if !ok {
			return
		}
		s.record(c, d.Name, action, state.ActiveIndex)
		c.JSON(http.StatusOK, state)
	}
}

func (s *Server) unmountView(c *gin.Context) {
	d, ok := s.lookupDeck(c)
	if !ok {
		return
	}
	key := viewKey{session: c.GetString(sessionKey), deck: d.Name}

	var existed bool
	if err := s.loop.Do(c.Request.Context(), func() {
		existed = s.views.unmount(key)
	}); err != nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if !existed {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// record logs a navigation unless the visitor opted out with DNT or no
// store is configured. Failures are logged, never surfaced.
func (s *Server) record(c *gin.Context, deckName string, action store.Action, index int) {
	if s.store == nil || c.GetHeader("DNT") == "1" {
		return
	}
	err := s.store.Record(c.Request.Context(), store.Interaction{
		VisitorHash: s.visitorHash(c),
		Deck:        deckName,
		Action:      action,
		Index:       index,
		At:          s.now(),
	})
	if err != nil {
		slog.Error("error recording interaction", "deck", deckName, "action", action, "error", err)
	}
}

func validSession(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
