package views

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/TokenArcade_Go/internal/domain"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) GameStatus(ctx context.Context, game domain.GameType) (domain.GameStatus, error) {
	args := m.Called(ctx, game)
	return args.Get(0).(domain.GameStatus), args.Error(1)
}

func (m *MockSource) LedgerStatus(ctx context.Context) (domain.LedgerStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.LedgerStatus), args.Error(1)
}

func (m *MockSource) LevelingStatus(ctx context.Context) (domain.LevelingStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.LevelingStatus), args.Error(1)
}

func (m *MockSource) TeamStatus(ctx context.Context) (domain.TeamStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.TeamStatus), args.Error(1)
}

func TestRegisterSource(t *testing.T) {
	src := new(MockSource)
	src.On("GameStatus", mock.Anything, domain.GameCard).Return(domain.GameStatus{Game: domain.GameCard, RemainingPlays: 2}, nil).Once()
	src.On("LedgerStatus", mock.Anything).Return(domain.LedgerStatus{Balance: 7}, nil).Once()
	src.On("TeamStatus", mock.Anything).Return(domain.TeamStatus{TeamID: "red"}, nil).Once()

	r := NewRegistry(16, time.Hour)
	RegisterSource(r, src)
	assert.Len(t, r.Keys(), len(domain.AllGames)+3)

	status, err := Typed[domain.GameStatus](context.Background(), r, domain.StatusView(domain.GameCard))
	require.NoError(t, err)
	assert.Equal(t, 2, status.RemainingPlays)

	ledger, err := Typed[domain.LedgerStatus](context.Background(), r, domain.ViewLedger)
	require.NoError(t, err)
	assert.Equal(t, int64(7), ledger.Balance)

	_, err = Typed[domain.TeamStatus](context.Background(), r, domain.ViewTeam)
	require.NoError(t, err)
	// cached
	_, err = Typed[domain.TeamStatus](context.Background(), r, domain.ViewTeam)
	require.NoError(t, err)

	src.AssertExpectations(t)
}
