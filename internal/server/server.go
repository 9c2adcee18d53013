// Package server exposes the deck catalogue and per-visitor carousel views
// over HTTP. Placement descriptors are returned as JSON for the client to
// draw.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/showcase/internal/carousel"
	"github.com/Zachkp/showcase/internal/config"
	"github.com/Zachkp/showcase/internal/deck"
	"github.com/Zachkp/showcase/internal/schedule"
	"github.com/Zachkp/showcase/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Config    config.Config
	Catalogue *deck.Catalogue

	// Store records interactions. Nil disables tracking and the admin
	// statistics endpoints report an error.
	Store *store.Store

	// Loop owns every carousel engine. Run starts it.
	Loop *schedule.Loop

	// Scheduler drives auto-advance and idle sweeps. Its callbacks must be
	// delivered on Loop. Defaults to a wall-clock scheduler on Loop.
	Scheduler carousel.Scheduler

	// Now defaults to time.Now.
	Now func() time.Time
}

// Server is the showcase HTTP service.
type Server struct {
	cfg       config.Config
	catalogue *deck.Catalogue
	store     *store.Store
	loop      *schedule.Loop
	sched     carousel.Scheduler
	views     *viewRegistry
	now       func() time.Time

	adminToken string
	salt       string
}

// New creates a server. It does not start anything.
func New(opts Options) (*Server, error) {
	if opts.Catalogue == nil {
		return nil, errors.New("server: catalogue is required")
	}
	if opts.Loop == nil {
		return nil, errors.New("server: loop is required")
	}
	if opts.Scheduler == nil {
		opts.Scheduler = schedule.NewWall(opts.Loop)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	token, err := randomHex(32)
	if err != nil {
		return nil, fmt.Errorf("generate admin token: %w", err)
	}
	salt, err := randomHex(32)
	if err != nil {
		return nil, fmt.Errorf("generate hashing salt: %w", err)
	}

	return &Server{
		cfg:        opts.Config,
		catalogue:  opts.Catalogue,
		store:      opts.Store,
		loop:       opts.Loop,
		sched:      opts.Scheduler,
		views:      newViewRegistry(opts.Scheduler, opts.Now, opts.Config.MaxViews),
		now:        opts.Now,
		adminToken: token,
		salt:       salt,
	}, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Handler builds the gin router.
func (s *Server) Handler() *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/decks", s.listDecks)
	api.GET("/decks/:deck", s.getDeck)

	v := api.Group("/decks/:deck/view")
	v.Use(s.sessionMiddleware())
	v.GET("", s.getView)
	v.POST("/next", s.navigate(store.ActionNext))
	v.POST("/prev", s.navigate(store.ActionPrev))
	v.POST("/select/:index", s.navigate(store.ActionSelect))
	v.DELETE("", s.unmountView)

	s.setupAdminRoutes(r)
	return r
}

// Run starts the loop, the idle sweeper and the HTTP listener, and blocks
// until ctx is cancelled or the listener fails. Mounted views are disposed
// before it returns.
func (s *Server) Run(ctx context.Context) error {
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = s.loop.Run(loopCtx)
	}()

	var sweeper carousel.Subscription
	if err := s.loop.Do(ctx, func() {
		sweeper = s.sched.Every(sweepInterval(s.cfg.SessionIdle), func() {
			s.views.sweep(s.cfg.SessionIdle)
		})
	}); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.Handler(),
	}
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("showcase listening", "addr", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("showcase stopping: context cancelled")
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}
	if err := s.loop.Do(shutdownCtx, func() {
		sweeper.Cancel()
		s.views.closeAll()
	}); err != nil {
		slog.Error("closing carousel views failed", "error", err)
	}
	stopLoop()
	<-loopDone
	return runErr
}

func sweepInterval(idle time.Duration) time.Duration {
	d := idle / 4
	if d < time.Second {
		d = time.Second
	}
	return d
}

// SweepIdle unmounts views idle longer than the configured session idle
// time and returns how many were removed.
func (s *Server) SweepIdle(ctx context.Context) (int, error) {
	var n int
	err := s.loop.Do(ctx, func() {
		n = s.views.sweep(s.cfg.SessionIdle)
	})
	return n, err
}
