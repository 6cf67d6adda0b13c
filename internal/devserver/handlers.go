package devserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/TokenArcade_Go/internal/domain"
	"github.com/osse101/TokenArcade_Go/internal/event"
	"github.com/osse101/TokenArcade_Go/internal/logger"
)

// ErrorResponse is the error body the arcade client decodes
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// HealthResponse represents the response for health endpoints
type HealthResponse struct {
	Status string `json:"status"`
}

// TrialRequest asks for trial tokens for a game
type TrialRequest struct {
	Game string `json:"game" validate:"required,game"`
}

// FeatureRequest replaces a game's schedule. Day numbers follow time.Weekday; values
// outside 0-6 are stored and reported as an invalid schedule on play.
type FeatureRequest struct {
	Enabled bool  `json:"enabled"`
	Days    []int `json:"days" validate:"max=7"`
}

// TokensRequest overwrites the caller's token balance
type TokensRequest struct {
	Tokens int `json:"tokens" validate:"gte=0"`
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{Status: HealthStatusOK})
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	game, ok := s.gameParam(w, r)
	if !ok {
		return
	}
	userID := userFromRequest(r)
	ctx := logger.WithGame(r.Context(), string(game))
	log := logger.FromContext(ctx)

	body, settled, err := s.store.Play(userID, game)
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			log.Info(LogMsgPlayRejected, "user_id", userID, "code", upstream.Code)
			respondError(w, upstream.Status, string(upstream.Code), upstream.Message)
			return
		}
		respondError(w, http.StatusBadRequest, CodeInvalidGame, ErrMsgInvalidGame)
		return
	}

	log.Info(LogMsgPlayApplied,
		"user_id", userID,
		"reward_type", *body.RewardType,
		"reward_value", *body.RewardValue,
		"remaining_plays", body.RemainingPlays)

	if s.bus != nil {
		if err := s.bus.Publish(ctx, event.NewPlaySettledEvent(settled)); err != nil {
			log.Error(LogMsgPublishFailed, "error", err)
		}
	}
	respondJSON(w, http.StatusOK, body)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	game, ok := s.gameParam(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.store.Status(userFromRequest(r), game))
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Ledger(userFromRequest(r)))
}

func (s *Server) handleLeveling(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Leveling(userFromRequest(r)))
}

func (s *Server) handleTeam(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Team(userFromRequest(r)))
}

func (s *Server) handleTrial(w http.ResponseWriter, r *http.Request) {
	var req TrialRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	userID := userFromRequest(r)
	status, granted := s.store.GrantTrial(userID, domain.GameType(req.Game))
	if granted {
		logger.FromContext(r.Context()).Info(LogMsgTrialGranted, "user_id", userID, "game", req.Game)
	}
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleSetFeature(w http.ResponseWriter, r *http.Request) {
	game, ok := s.gameParam(w, r)
	if !ok {
		return
	}
	var req FeatureRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	f := Feature{Enabled: req.Enabled}
	for _, d := range req.Days {
		f.Days = append(f.Days, time.Weekday(d))
	}
	s.store.SetFeature(game, f)
	slog.Info(LogMsgFeatureUpdated, "game", game, "enabled", f.Enabled, "days", req.Days)

	respondJSON(w, http.StatusOK, s.store.Status(userFromRequest(r), game))
}

func (s *Server) handleSetTokens(w http.ResponseWriter, r *http.Request) {
	var req TokensRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	userID := userFromRequest(r)
	s.store.SetTokens(userID, req.Tokens)
	w.WriteHeader(http.StatusNoContent)
}

// gameParam reads and validates the {game} path parameter, writing the error response
// when it is unknown
func (s *Server) gameParam(w http.ResponseWriter, r *http.Request) (domain.GameType, bool) {
	game := chi.URLParam(r, "game")
	if err := s.validator.ValidateGame(game); err != nil {
		respondError(w, http.StatusNotFound, CodeInvalidGame, ErrMsgInvalidGame)
		return "", false
	}
	return domain.GameType(game), true
}

// decodeAndValidate decodes a JSON body into req and validates it. On failure the
// response has already been written.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		logger.FromContext(r.Context()).Warn(ErrMsgInvalidRequest, "error", err)
		respondError(w, http.StatusBadRequest, CodeInvalidRequest, ErrMsgInvalidRequest)
		return false
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:    CodeInvalidRequest,
			Message: ErrMsgInvalidRequest,
			Fields:  FormatValidationError(err),
		})
		return false
	}
	return true
}

func userFromRequest(r *http.Request) string {
	if id := r.Header.Get(HeaderUserID); id != "" {
		return id
	}
	return DefaultUserID
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error(LogMsgEncodeFailed, "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Code: code, Message: message})
}
