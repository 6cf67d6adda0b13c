package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/TokenArcade_Go/internal/domain"
	"github.com/osse101/TokenArcade_Go/internal/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAPIClient(Config{
		BaseURL:        srv.URL,
		APIKey:         "key",
		UserID:         "user-1",
		Timeout:        time.Second,
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestPlay_DecodesResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/games/dice/play", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get(HeaderAPIKey))
		assert.Equal(t, "user-1", r.Header.Get(HeaderUserID))
		assert.Equal(t, "play-123", r.Header.Get(HeaderPlayID))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"dice":            [][2]int{{3, 4}},
			"reward_type":     "TOKEN",
			"reward_value":    5,
			"remaining_plays": 2,
			"ledger_accrual":  10,
		})
	})
	c := newTestClient(t, mux)

	ctx := logger.WithPlayID(context.Background(), "play-123")
	resp, err := c.Play(ctx, domain.GameDice)
	require.NoError(t, err)

	assert.Equal(t, &domain.Reward{Type: "TOKEN", Value: 5}, resp.Reward())
	assert.Equal(t, 2, resp.RemainingPlays)
	assert.Equal(t, int64(10), resp.LedgerAccrual)
	assert.Contains(t, string(resp.Raw), `"dice"`)
}

func TestPlay_UpstreamErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/games/wheel/play", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Code: "FEATURE_DISABLED", Message: "off"})
	})
	c := newTestClient(t, mux)

	_, err := c.Play(context.Background(), domain.GameWheel)
	assert.ErrorIs(t, err, domain.ErrFeatureDisabled)
	assert.Equal(t, int32(1), calls.Load())

	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusServiceUnavailable, upstream.Status)
	assert.Equal(t, "off", upstream.Message)
}

func TestPlay_UnknownErrorBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/games/card/play", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})
	c := newTestClient(t, mux)

	_, err := c.Play(context.Background(), domain.GameCard)
	code, ok := domain.UpstreamCode(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeUnknown, code)
}

func TestPlay_TransportError(t *testing.T) {
	c := NewAPIClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond})
	_, err := c.Play(context.Background(), domain.GameDice)
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestPlay_InvalidGame(t *testing.T) {
	c := NewAPIClient(Config{BaseURL: "http://unused"})
	_, err := c.Play(context.Background(), domain.GameType("slots"))
	assert.ErrorIs(t, err, domain.ErrInvalidGame)
}

func TestGameStatus_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/games/dice/status", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusInternalServerError, errorBody{Code: "UNKNOWN"})
			return
		}
		writeJSON(w, http.StatusOK, domain.GameStatus{Game: domain.GameDice, Enabled: true, RemainingPlays: 4})
	})
	c := newTestClient(t, mux)

	status, err := c.GameStatus(context.Background(), domain.GameDice)
	require.NoError(t, err)
	assert.Equal(t, 4, status.RemainingPlays)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGameStatus_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/ledger", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := newTestClient(t, mux)

	_, err := c.LedgerStatus(context.Background())
	assert.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestStatus_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/team", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusForbidden, errorBody{Code: "NO_FEATURE_TODAY"})
	})
	c := newTestClient(t, mux)

	_, err := c.TeamStatus(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoFeatureToday)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLevelingStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/leveling", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.LevelingStatus{Season: "S1", Level: 3, XP: 40, NextLevelXP: 100})
	})
	c := newTestClient(t, mux)

	lv, err := c.LevelingStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, lv.Level)
}

func TestRequestTrialTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/tokens/trial", func(w http.ResponseWriter, r *http.Request) {
		var req TrialRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, domain.GameWheel, req.Game)
		writeJSON(w, http.StatusOK, domain.GameStatus{Game: req.Game, Enabled: true, RemainingPlays: 3})
	})
	c := newTestClient(t, mux)

	status, err := c.RequestTrialTokens(context.Background(), domain.GameWheel)
	require.NoError(t, err)
	assert.Equal(t, 3, status.RemainingPlays)
}
