package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nicorema/wedding/internal/database"
	"github.com/nicorema/wedding/internal/httpserver"
	"github.com/nicorema/wedding/internal/messages"
	"github.com/nicorema/wedding/internal/scores"
	"github.com/nicorema/wedding/internal/store"
	"github.com/nicorema/wedding/internal/words"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

// serve runs until ctx is cancelled or the listener fails, then drains
// in-flight requests.
func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg

	db, err := database.OpenAndMigrate(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	list, err := words.Load(cfg.Game.WordsFile, cfg.Game.GridSize)
	if err != nil {
		return err
	}

	sessions := store.NewMemoryStore()
	defer sessions.Close()

	srv, err := httpserver.New(httpserver.Deps{
		Config:   cfg,
		Sessions: sessions,
		Scores:   scores.NewStore(db),
		Messages: messages.NewStore(db),
		Words:    list,
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("addr", cfg.Addr()).
		Str("env", cfg.Server.Env).
		Int("words", list.Len()).
		Int("grid", cfg.Game.GridSize).
		Msg("starting wedding server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(cfg.Addr()) })
	g.Go(func() error {
		store.Run(gctx, sessions, cfg.Game.SweepInterval, cfg.Game.SessionTTL)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
