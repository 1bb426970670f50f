package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"handtracker/cmd/handtracker/shared"
	"handtracker/internal/api"
)

// ServeCmd runs the HTTP API. Hands imported through the API stay in the
// process; statistics snapshots persist through the configured store.
type ServeCmd struct {
	User  string   `help:"Subject user the statistics describe (overrides config)"`
	Paths []string `name:"preload" help:"Hand history files to import before serving"`
}

func (cmd *ServeCmd) Run(cli *CLI) error {
	a, err := setup(cli, cmd.User, true)
	if err != nil {
		return err
	}

	ctx := shared.SetupSignalHandler(a.logger)

	if len(cmd.Paths) > 0 {
		sources, err := loadSources(cmd.Paths, "")
		if err != nil {
			return err
		}
		if _, err := a.tracker.Import(ctx, sources); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:              a.cfg.ListenAddress(),
		Handler:           api.NewServer(a.logger, a.tracker).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn().Err(err).Msg("shutdown")
		}
	}()

	a.logger.Info().Str("addr", server.Addr).Msg("serving")
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
