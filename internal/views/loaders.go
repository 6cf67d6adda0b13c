package views

import (
	"context"

	"github.com/osse101/TokenArcade_Go/internal/domain"
)

// Source serves the status views of the games API
type Source interface {
	GameStatus(ctx context.Context, game domain.GameType) (domain.GameStatus, error)
	LedgerStatus(ctx context.Context) (domain.LedgerStatus, error)
	LevelingStatus(ctx context.Context) (domain.LevelingStatus, error)
	TeamStatus(ctx context.Context) (domain.TeamStatus, error)
}

// RegisterSource installs loaders for every game's status view and the shared views
func RegisterSource(r *Registry, src Source) {
	for _, game := range domain.AllGames {
		r.Register(domain.StatusView(game), func(ctx context.Context) (any, error) {
			return src.GameStatus(ctx, game)
		})
	}
	r.Register(domain.ViewLedger, func(ctx context.Context) (any, error) {
		return src.LedgerStatus(ctx)
	})
	r.Register(domain.ViewLeveling, func(ctx context.Context) (any, error) {
		return src.LevelingStatus(ctx)
	})
	r.Register(domain.ViewTeam, func(ctx context.Context) (any, error) {
		return src.TeamStatus(ctx)
	})
}
