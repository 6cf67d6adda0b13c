// Package client talks to the games API: one non-retried POST per play, retried GETs for
// the cached status views, and an optional event stream of server-side changes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/osse101/TokenArcade_Go/internal/domain"
	"github.com/osse101/TokenArcade_Go/internal/logger"
	"github.com/osse101/TokenArcade_Go/internal/metrics"
)

// Config configures an APIClient
type Config struct {
	BaseURL        string
	APIKey         string
	UserID         string
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// APIClient handles communication with the games API
type APIClient struct {
	BaseURL string
	Client  *http.Client
	APIKey  string
	UserID  string

	maxRetries int
	newBackoff func() backoff.BackOff
}

// NewAPIClient creates a new API client
func NewAPIClient(cfg Config) *APIClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	initial, maxInterval := cfg.InitialBackoff, cfg.MaxBackoff
	if initial <= 0 {
		initial = DefaultInitialBackoff
	}
	if maxInterval <= 0 {
		maxInterval = DefaultMaxBackoff
	}

	return &APIClient{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		Client: &http.Client{
			Timeout: cfg.Timeout,
		},
		APIKey:     cfg.APIKey,
		UserID:     cfg.UserID,
		maxRetries: cfg.MaxRetries,
		newBackoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = initial
			b.MaxInterval = maxInterval
			return b
		},
	}
}

// errorBody is the error shape returned by the games API
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *APIClient) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set(HeaderAPIKey, c.APIKey)
	}
	if c.UserID != "" {
		req.Header.Set(HeaderUserID, c.UserID)
	}
	if playID, ok := logger.PlayIDFromContext(ctx); ok {
		req.Header.Set(HeaderPlayID, playID)
	}
	return req, nil
}

// decodeError turns a non-2xx response into an UpstreamError
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBodySize))
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Code == "" {
		return domain.NewUpstreamError(string(domain.CodeUnknown), strings.TrimSpace(string(data)), resp.StatusCode)
	}
	return domain.NewUpstreamError(body.Code, body.Message, resp.StatusCode)
}

// Play submits one play of game. It is never retried: a retry after a lost response
// could spend a second token.
func (c *APIClient) Play(ctx context.Context, game domain.GameType) (domain.PlayResponse, error) {
	var out domain.PlayResponse
	if !game.Valid() {
		return out, fmt.Errorf("%w: %s", domain.ErrInvalidGame, game)
	}

	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf(PathPlayFormat, game), nil)
	if err != nil {
		return out, err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgRequestFailed, "path", req.URL.Path, "error", err)
		return out, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("%w: failed to decode play response: %v", domain.ErrInvalidOutcome, err)
	}
	return out, nil
}

// getJSON performs a GET, retrying transport failures and 5xx responses with backoff.
// 4xx responses and undecodable bodies are permanent.
func getJSON[T any](ctx context.Context, c *APIClient, endpoint, path string) (T, error) {
	log := logger.FromContext(ctx)
	attempt := 0

	op := func() (T, error) {
		var out T
		attempt++
		if attempt > 1 {
			metrics.UpstreamRetries.WithLabelValues(endpoint).Inc()
		}

		req, err := c.newRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return out, backoff.Permanent(err)
		}

		resp, err := c.Client.Do(req)
		if err != nil {
			return out, fmt.Errorf("%w: %v", domain.ErrTransport, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return out, decodeError(resp)
		}
		if resp.StatusCode >= 300 {
			return out, backoff.Permanent(decodeError(resp))
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return out, backoff.Permanent(fmt.Errorf("failed to decode %s: %w", endpoint, err))
		}
		return out, nil
	}

	out, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(c.newBackoff()),
		backoff.WithMaxTries(uint(c.maxRetries+1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn(LogMsgRetrying, "endpoint", endpoint, "error", err, "backoff", next)
		}),
	)
	if err != nil {
		var upstream *domain.UpstreamError
		if !errors.As(err, &upstream) && !errors.Is(err, domain.ErrTransport) && ctx.Err() == nil {
			log.Warn(LogMsgRequestFailed, "endpoint", endpoint, "error", err)
		}
		return out, err
	}
	return out, nil
}

// GameStatus returns the status view of one game
func (c *APIClient) GameStatus(ctx context.Context, game domain.GameType) (domain.GameStatus, error) {
	if !game.Valid() {
		return domain.GameStatus{}, fmt.Errorf("%w: %s", domain.ErrInvalidGame, game)
	}
	return getJSON[domain.GameStatus](ctx, c, string(domain.StatusView(game)), fmt.Sprintf(PathStatusFormat, game))
}

// LedgerStatus returns the shared currency ledger
func (c *APIClient) LedgerStatus(ctx context.Context) (domain.LedgerStatus, error) {
	return getJSON[domain.LedgerStatus](ctx, c, string(domain.ViewLedger), PathLedger)
}

// LevelingStatus returns the season leveling progress
func (c *APIClient) LevelingStatus(ctx context.Context) (domain.LevelingStatus, error) {
	return getJSON[domain.LevelingStatus](ctx, c, string(domain.ViewLeveling), PathLeveling)
}

// TeamStatus returns the team competition standing
func (c *APIClient) TeamStatus(ctx context.Context) (domain.TeamStatus, error) {
	return getJSON[domain.TeamStatus](ctx, c, string(domain.ViewTeam), PathTeam)
}

// TrialRequest asks for trial tokens for a game
type TrialRequest struct {
	Game domain.GameType `json:"game"`
}

// RequestTrialTokens hands the exhausted-balance flow to the trial token endpoint.
// Like Play it mutates server state and is not retried.
func (c *APIClient) RequestTrialTokens(ctx context.Context, game domain.GameType) (domain.GameStatus, error) {
	var out domain.GameStatus
	req, err := c.newRequest(ctx, http.MethodPost, PathTrialTokens, TrialRequest{Game: game})
	if err != nil {
		return out, err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return out, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("failed to decode trial response: %w", err)
	}
	return out, nil
}
