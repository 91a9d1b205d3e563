package main

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dsyorkd/assisted-console/internal/api"
	"github.com/dsyorkd/assisted-console/internal/errors"
)

const shutdownTimeout = 30 * time.Second

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the console backend",
		Long:  `Serve the console REST API in front of the assisted installer`,
		RunE:  a.runServer,
	}
}

func (a *app) runServer(cmd *cobra.Command, args []string) error {
	if a.cfg.App.Version == "" || a.cfg.App.Version == "dev" {
		a.cfg.App.Version = version
	}

	a.log.WithFields(map[string]interface{}{
		"version":   version,
		"commit":    commit,
		"date":      date,
		"installer": a.cfg.Installer.BaseURL,
	}).Info("Starting Assisted Console")

	server := api.New(a.cfg, a.log, a.api)
	serverErrors := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	select {
	case <-cmd.Context().Done():
		a.log.Info("Received shutdown signal")
	case err := <-serverErrors:
		return errors.Wrapf(err, "API server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		a.log.WithError(err).Error("Error stopping API server")
		return err
	}

	a.log.Info("Assisted Console shutdown complete")
	return nil
}
