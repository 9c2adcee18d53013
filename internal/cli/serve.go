package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Zachkp/showcase/internal/config"
	"github.com/Zachkp/showcase/internal/deck"
	"github.com/Zachkp/showcase/internal/schedule"
	"github.com/Zachkp/showcase/internal/server"
	"github.com/Zachkp/showcase/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	EnvFiles []string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the showcase HTTP service",
		Long: `Run the showcase HTTP service.

Settings come from the environment (PORT, SHOWCASE_DB, SHOWCASE_DECKS,
ADMIN_USERNAME, ADMIN_PASSWORD, SESSION_IDLE, RETENTION, MAX_VIEWS, GIN_MODE), seeded
from .env files when present.

Example:
  showcase serve
  showcase serve --env-file prod.env --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.EnvFiles, "env-file", nil, "additional .env files to load")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	cfg, err := config.Load(opts.EnvFiles...)
	if err != nil {
		return err
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	catalogue, err := loadCatalogue(cfg.DecksFile)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	// Retention cleanup runs once at startup; admins can trigger more.
	if n, err := st.Cleanup(ctx, time.Now().Add(-cfg.Retention)); err != nil {
		slog.Error("error cleaning up old interactions", "error", err)
	} else if n > 0 {
		slog.Info("privacy cleanup", "removed", n)
	}

	loop := schedule.NewLoop(256)
	srv, err := server.New(server.Options{
		Config:    cfg,
		Catalogue: catalogue,
		Store:     st,
		Loop:      loop,
	})
	if err != nil {
		return err
	}

	slog.Info("showcase starting", "decks", catalogue.Names(), "db", cfg.Database)
	return srv.Run(ctx)
}

func loadCatalogue(path string) (*deck.Catalogue, error) {
	if path == "" {
		return deck.Default()
	}
	return deck.Load(path)
}
