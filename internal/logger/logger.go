package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

type ctxKey string

const (
	playIDKey ctxKey = "playID"
	gameKey   ctxKey = "game"
)

// Init installs the default slog logger writing to stdout
func Init(cfg Config) {
	InitWithWriter(cfg, os.Stdout)
}

// InitWithWriter installs the default slog logger writing to w
func InitWithWriter(cfg Config, w io.Writer) {
	opts := &slog.HandlerOptions{
		Level:     cfg.LogLevel(),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.IsJSON() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	handler = handler.WithAttrs(cfg.BaseAttributes())

	slog.SetDefault(slog.New(handler))
}

// NewPlayID creates a new UUID for tracing one play from trigger to reveal.
func NewPlayID() string {
	return uuid.NewString()
}

// WithPlayID returns a new context containing the play ID.
func WithPlayID(ctx context.Context, playID string) context.Context {
	return context.WithValue(ctx, playIDKey, playID)
}

// PlayIDFromContext extracts the play ID from the context, if present.
func PlayIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(playIDKey).(string)
	return id, ok
}

// WithGame returns a new context tagged with the game type name.
func WithGame(ctx context.Context, game string) context.Context {
	return context.WithValue(ctx, gameKey, game)
}

// GameFromContext extracts the game type name from the context, if present.
func GameFromContext(ctx context.Context) (string, bool) {
	game, ok := ctx.Value(gameKey).(string)
	return game, ok
}

// FromContext returns a logger that includes the play_id and game attributes when present.
func FromContext(ctx context.Context) *slog.Logger {
	log := slog.Default()
	if ctx == nil {
		return log
	}
	if id, ok := PlayIDFromContext(ctx); ok {
		log = log.With(AttrKeyPlayID, id)
	}
	if game, ok := GameFromContext(ctx); ok {
		log = log.With(AttrKeyGame, game)
	}
	return log
}

// Debug logs at debug level on the default logger
func Debug(msg string, args ...any) { slog.Debug(msg, args...) }

// Info logs at info level on the default logger
func Info(msg string, args ...any) { slog.Info(msg, args...) }

// Warn logs at warn level on the default logger
func Warn(msg string, args ...any) { slog.Warn(msg, args...) }

// Error logs at error level on the default logger
func Error(msg string, args ...any) { slog.Error(msg, args...) }
