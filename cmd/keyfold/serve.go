// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyfold Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/keyfold/keyfold/internal/auth"
	"github.com/keyfold/keyfold/internal/auth/memstore"
	"github.com/keyfold/keyfold/internal/config"
	"github.com/keyfold/keyfold/internal/httpapi"
	"github.com/keyfold/keyfold/internal/logging"
	"github.com/keyfold/keyfold/internal/observability"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the credential service",
		Long: `Start the HTTP API for account registration and login,
plus the metrics/health endpoints when configured.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configFile, cmd.Flags())
		},
	}

	config.BindFlags(cmd.Flags())

	return cmd
}

func runServe(ctx context.Context, configPath string, flags *pflag.FlagSet) error {
	cfg, err := config.Load(configPath, flags)
	if err != nil {
		return err
	}

	logging.SetDefault("keyfold", version, cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))

	hasher := auth.NewArgon2idHasher(auth.Argon2Params{
		Time:      cfg.Argon2.Time,
		MemoryKiB: cfg.Argon2.MemoryKiB,
		Threads:   cfg.Argon2.Threads,
	})
	store := memstore.New()

	service, err := auth.NewService(store, hasher)
	if err != nil {
		return err
	}

	// The API server is created after the observability server so it can
	// record outcome metrics; readiness closes over it.
	var apiServer *httpapi.Server

	var obsServer *observability.Server
	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool {
			return apiServer != nil && apiServer.Running()
		})
		metrics = obsServer.Metrics()
	}

	apiServer, err = httpapi.NewServer(cfg.ListenAddr, service, metrics)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if obsServer != nil {
		obsErrCh, obsErr := obsServer.Start()
		if obsErr != nil {
			return obsErr
		}
		go func() {
			if serveErr := <-obsErrCh; serveErr != nil {
				slog.Error("observability server failed", "error", serveErr)
			}
		}()
	}

	apiErrCh, err := apiServer.Start()
	if err != nil {
		if obsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			_ = obsServer.Stop(shutdownCtx)
		}
		return err
	}

	slog.Info("keyfold ready",
		"listen_addr", apiServer.Addr(),
		"metrics_addr", cfg.MetricsAddr,
	)

	// Wait for a shutdown signal or an API server failure.
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case serveErr, ok := <-apiErrCh:
		if ok && serveErr != nil {
			slog.Error("api server failed", "error", serveErr)
		}
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping api server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	return nil
}
