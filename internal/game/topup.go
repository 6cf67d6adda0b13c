package game

import (
	"context"

	"github.com/osse101/TokenArcade_Go/internal/domain"
)

// TrialTokens grants trial tokens for a game
type TrialTokens interface {
	RequestTrialTokens(ctx context.Context, game domain.GameType) (domain.GameStatus, error)
}

// TrialTopUp adapts the trial token endpoint to the TopUp flow
type TrialTopUp struct {
	API TrialTokens
}

// RequestTokens asks for trial tokens and returns the new remaining plays
func (t TrialTopUp) RequestTokens(ctx context.Context, game domain.GameType) (int, error) {
	status, err := t.API.RequestTrialTokens(ctx, game)
	if err != nil {
		return 0, err
	}
	return status.RemainingPlays, nil
}
