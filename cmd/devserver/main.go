// Command devserver runs the in-memory game server for local play.
package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/osse101/TokenArcade_Go/internal/config"
	"github.com/osse101/TokenArcade_Go/internal/devserver"
	"github.com/osse101/TokenArcade_Go/internal/event"
	"github.com/osse101/TokenArcade_Go/internal/logger"
	"github.com/osse101/TokenArcade_Go/internal/sse"
)

const (
	serviceName     = "arcade-devserver"
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.Logger(serviceName))

	settings := devserver.Settings{
		DailyLimit:    cfg.DevDailyLimit,
		InitialTokens: cfg.DevInitialTokens,
		TrialTokens:   cfg.DevTrialTokens,
		TokenCost:     cfg.DevTokenCost,
	}
	seed := uint64(time.Now().UnixNano())
	store := devserver.NewStore(settings, rand.New(rand.NewPCG(seed, seed>>1)), time.Now) //nolint:gosec // game outcomes, not security critical

	hub := sse.NewHub()
	hub.Start()
	defer hub.Stop()

	bus := event.NewMemoryBus()
	sse.NewSubscriber(hub, bus, store).Subscribe()

	srv := devserver.NewServer(cfg.DevServerPort, cfg.APIKey, store, hub, bus)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("Shutting down dev game server", "signal", sig.String())
	case err := <-errCh:
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// streams hold their requests open, so the hub goes first
	hub.Stop()
	if err := srv.Stop(ctx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
