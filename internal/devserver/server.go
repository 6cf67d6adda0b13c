package devserver

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/osse101/TokenArcade_Go/internal/event"
	"github.com/osse101/TokenArcade_Go/internal/logger"
	"github.com/osse101/TokenArcade_Go/internal/metrics"
	"github.com/osse101/TokenArcade_Go/internal/sse"
)

// publicPaths skip the API key check
var publicPaths = []string{"/healthz", "/metrics"}

// Server is the dev game server
type Server struct {
	httpServer *http.Server
	store      *Store
	bus        event.Bus
	validator  *Validator
}

// NewServer wires the API routes. An empty apiKey disables authentication.
func NewServer(port int, apiKey string, store *Store, hub *sse.Hub, bus event.Bus) *Server {
	s := &Server{
		store:     store,
		bus:       bus,
		validator: NewValidator(),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(authMiddleware(apiKey))
	r.Use(requestSizeLimitMiddleware(MaxRequestBodyBytes))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handleHealthz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/games/{game}", func(r chi.Router) {
			r.Post("/play", s.handlePlay)
			r.Get("/status", s.handleStatus)
		})
		r.Get("/ledger", s.handleLedger)
		r.Get("/leveling", s.handleLeveling)
		r.Get("/team", s.handleTeam)
		r.Post("/tokens/trial", s.handleTrial)
		r.Get("/events", sse.Handler(hub))

		r.Route("/admin", func(r chi.Router) {
			r.Put("/features/{game}", s.handleSetFeature)
			r.Put("/tokens", s.handleSetTokens)
		})
	})

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}
	return s
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func authMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			for _, path := range publicPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			provided := r.Header.Get(HeaderAPIKey)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				logger.FromContext(r.Context()).Warn(LogMsgAuthFailed,
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
					"has_key", provided != "")
				respondError(w, http.StatusUnauthorized, CodeUnauthorized, ErrMsgUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// loggingMiddleware carries the client's play id into the request context so server
// logs line up with the client's
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/healthz") || strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ctx := r.Context()
		if playID := r.Header.Get(HeaderPlayID); playID != "" {
			ctx = logger.WithPlayID(ctx, playID)
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.FromContext(ctx).Debug(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}
