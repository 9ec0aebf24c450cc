// SPDX-License-Identifier: MIT

// Command kzrecd serves an enriched, filterable view of a Kazoo account's
// call recordings.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kazlabs/kzrec/internal/api"
	"github.com/kazlabs/kzrec/internal/config"
	"github.com/kazlabs/kzrec/internal/kazoo"
	kzlog "github.com/kazlabs/kzrec/internal/log"
	"github.com/kazlabs/kzrec/internal/pipeline"
	"github.com/kazlabs/kzrec/internal/view"
)

func main() {
	kzlog.Configure(kzlog.Config{
		Level:   os.Getenv("KZREC_LOG_LEVEL"),
		Service: "kzrec",
	})
	logger := kzlog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Msg("failed to load configuration")
	}
	logger.Info().
		Str("event", "config.loaded").
		Str("listen", cfg.ListenAddr).
		Str("upstream", cfg.KazooBaseURL).
		Msg("configuration loaded")

	client := kazoo.New(kazoo.Options{
		BaseURL:   cfg.KazooBaseURL,
		AccountID: cfg.AccountID,
		AuthToken: cfg.AuthToken,
		PageSize:  cfg.PageSize,
		Timeout:   cfg.HTTPTimeout,
		RPS:       cfg.UpstreamRPS,
	})

	svc := view.NewService(client, view.Config{
		WithCDRs:    cfg.WithCDRs,
		DateOrder:   pipeline.DateOrder(cfg.DateOrder),
		SnapshotTTL: cfg.SnapshotTTL,
		ExportFile:  cfg.ExportFile,
	})

	srv := api.NewServer(svc, api.Config{
		DateOrder:        pipeline.DateOrder(cfg.DateOrder),
		DefaultPreset:    cfg.DefaultPreset,
		RefreshRateLimit: cfg.RefreshRateLimit,
		RefreshRateWin:   cfg.RefreshRateWin,
	})

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("stopped")
}
