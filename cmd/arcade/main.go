// Command arcade is a terminal front end for the rewards mini-games.
package main

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/osse101/TokenArcade_Go/internal/client"
	"github.com/osse101/TokenArcade_Go/internal/config"
	"github.com/osse101/TokenArcade_Go/internal/domain"
	"github.com/osse101/TokenArcade_Go/internal/event"
	"github.com/osse101/TokenArcade_Go/internal/game"
	"github.com/osse101/TokenArcade_Go/internal/logger"
	"github.com/osse101/TokenArcade_Go/internal/messages"
	"github.com/osse101/TokenArcade_Go/internal/metrics"
	"github.com/osse101/TokenArcade_Go/internal/scheduler"
	"github.com/osse101/TokenArcade_Go/internal/views"
)

const (
	serviceName     = "arcade"
	shutdownTimeout = 5 * time.Second
	helpText        = "commands: wheel | dice | card | topup <game> | status | quit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.Logger(serviceName))

	warnings, err := config.ValidateEnvWithWarnings()
	if err != nil {
		slog.Warn("Environment check failed, running on defaults", "error", err)
	}
	for _, w := range warnings {
		slog.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := &console{out: os.Stdout}
	api := client.NewAPIClient(cfg.Client())

	bus := event.NewMemoryBus()
	if err := metrics.NewEventMetricsCollector().Register(bus); err != nil {
		slog.Error("Failed to register metrics collector", "error", err)
		os.Exit(1)
	}

	registry := views.NewRegistry(cfg.ViewCacheSize, cfg.ViewCacheTTL)
	views.RegisterSource(registry, api)
	invalidator := views.NewInvalidator(registry, bus)

	root := scheduler.NewScope(scheduler.Real())
	defer root.Close()

	lobby := game.NewDefaultLobby(game.Deps{
		API:         api,
		Registry:    registry,
		Invalidator: invalidator,
		Bus:         bus,
		Catalog:     messages.For(cfg.Locale),
		Notifier:    out,
		TopUp:       game.TrialTopUp{API: api},
		Scope:       root,
		Vibrator:    tickVibrator{console: out},
		Haptics:     cfg.Haptics(),
	}, cfg.Durations())
	defer lobby.Close()

	printPage := func(_ context.Context, evt event.Event) error {
		var g domain.GameType
		switch p := evt.Payload.(type) {
		case domain.PlayRevealedPayload:
			g = p.Game
		case domain.PlayFailedPayload:
			g = p.Game
		}
		if page, err := lobby.Page(g); err == nil {
			out.Println()
			out.Println(page.Render())
		}
		return nil
	}
	bus.Subscribe(event.PlayRevealed, printPage)
	bus.Subscribe(event.PlayFailed, printPage)

	if cfg.EventStream {
		stream := client.NewEventStream(api, []string{
			domain.PushLedgerUpdated,
			domain.PushLevelingUpdated,
			domain.PushTeamUpdated,
			domain.PushGameUpdated,
		})
		stream.Bind(invalidator)
		stream.Start(ctx)
		defer stream.Stop()
	}

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if err := lobby.Refresh(ctx); err != nil {
		slog.Warn("Initial status refresh failed", "error", err)
	}
	// reveals and pushed updates mark views stale; refetch them and show the shared totals
	lobby.Watch(ctx, func(err error) {
		if err != nil {
			slog.Warn("View refresh failed", "error", err)
			return
		}
		if lines := lobby.Render(); len(lines) > 0 {
			out.Println(lines[len(lines)-1])
		}
	})
	printLobby(out, lobby)
	out.Println(helpText)

	run(ctx, lobby, out)
}

// run reads commands until quit, EOF or a signal
func run(ctx context.Context, lobby *game.Lobby, out *console) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if !handle(ctx, lobby, out, strings.Fields(line)) {
				return
			}
		}
	}
}

func handle(ctx context.Context, lobby *game.Lobby, out *console, args []string) bool {
	if len(args) == 0 {
		return true
	}

	switch cmd := strings.ToLower(args[0]); cmd {
	case "quit", "exit":
		return false
	case "status":
		if err := lobby.Refresh(ctx); err != nil {
			out.Println("refresh failed:", err)
		}
		printLobby(out, lobby)
	case "topup":
		if len(args) < 2 {
			out.Println(helpText)
			return true
		}
		page, err := lobby.Page(domain.GameType(strings.ToLower(args[1])))
		if err != nil {
			out.Println(err)
			return true
		}
		if err := page.RequestTopUp(ctx); err != nil {
			out.Println("top-up failed:", err)
		}
		out.Println(page.Render())
	default:
		g := domain.GameType(cmd)
		if !g.Valid() {
			out.Println(helpText)
			return true
		}
		err := lobby.Trigger(ctx, g)
		switch {
		case errors.Is(err, domain.ErrAlreadyPending):
			// a play is in flight; the tap is swallowed
		case err != nil && !errors.Is(err, domain.ErrBalanceExhausted):
			// failures are rendered by the play.failed subscriber
		default:
			if page, perr := lobby.Page(g); perr == nil {
				out.Println(page.Render())
			}
		}
	}
	return true
}

func printLobby(out *console, lobby *game.Lobby) {
	for _, line := range lobby.Render() {
		out.Println(line)
	}
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
	slog.Info("Serving metrics", "addr", addr)
	return srv
}
