package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpstreamError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("play failed: %w", NewUpstreamError("DAILY_LIMIT_REACHED", "limit", 429))

	assert.True(t, errors.Is(err, ErrDailyLimitReached))
	assert.False(t, errors.Is(err, ErrNotEnoughTokens))

	code, ok := UpstreamCode(err)
	assert.True(t, ok)
	assert.Equal(t, CodeDailyLimitReached, code)
	assert.Contains(t, err.Error(), "limit")
}

func TestNewUpstreamError_UnknownCodeFolds(t *testing.T) {
	err := NewUpstreamError("SOMETHING_NEW", "", 500)
	assert.Equal(t, CodeUnknown, err.Code)
	assert.Equal(t, fmt.Sprintf(ErrMsgUpstreamNoMessage, CodeUnknown, 500), err.Error())
}

func TestFailureCode(t *testing.T) {
	assert.Equal(t, CodeFeatureDisabled, FailureCode(NewUpstreamError("FEATURE_DISABLED", "", 403)))
	assert.Equal(t, CodeTransport, FailureCode(fmt.Errorf("%w: connection refused", ErrTransport)))
	assert.Equal(t, CodeUnknown, FailureCode(errors.New("boom")))
}

func TestDependentViewSet_SameSupersetForEveryGame(t *testing.T) {
	for _, g := range AllGames {
		set := DependentViewSet(g)
		assert.Len(t, set, 4)
		assert.Equal(t, StatusView(g), set[0])
		assert.Equal(t, []ViewKey{ViewLedger, ViewLeveling, ViewTeam}, set[1:])
	}
}
