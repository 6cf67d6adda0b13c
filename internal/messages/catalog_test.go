package messages

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/osse101/TokenArcade_Go/internal/domain"
)

func TestFor_LocaleMatching(t *testing.T) {
	assert.Equal(t, language.Korean, For().Locale())
	assert.Equal(t, language.Korean, For("ko-KR").Locale())
	assert.Equal(t, language.English, For("en-US").Locale())
	assert.Equal(t, language.English, For("fr-FR, en;q=0.8").Locale())
	assert.Equal(t, language.Korean, For("xx").Locale())
}

func TestMessage_UpstreamCodes(t *testing.T) {
	ko := For("ko")
	err := fmt.Errorf("play failed: %w", &domain.UpstreamError{Code: domain.CodeDailyLimitReached, Status: 429})

	assert.Equal(t, "오늘 참여 횟수를 모두 사용했습니다.", ko.Message(err))

	seen := map[string]bool{}
	for _, code := range domain.KnownCodes {
		msg := ko.Code(code)
		assert.NotEqual(t, ko.Generic(), msg, code)
		assert.False(t, seen[msg], "each code maps to a distinct message: %s", code)
		seen[msg] = true
	}
}

func TestMessage_Fallbacks(t *testing.T) {
	en := For("en")

	assert.Equal(t, en.Generic(), en.Message(&domain.UpstreamError{Code: domain.CodeUnknown}))
	assert.Equal(t, en.Generic(), en.Message(fmt.Errorf("%w: connection refused", domain.ErrTransport)))
	assert.Equal(t, en.Generic(), en.Message(errors.New("boom")))
	assert.Equal(t, en.Exhausted(), en.Message(domain.ErrBalanceExhausted))
}

func TestMessage_GateRejectionNotSurfaced(t *testing.T) {
	ko := For("ko")
	assert.Empty(t, ko.Message(nil))
	assert.Empty(t, ko.Message(domain.ErrAlreadyPending))
	assert.Empty(t, ko.Message(domain.ErrControllerClosed))
}

func TestFormats(t *testing.T) {
	assert.Equal(t, "You won 5 TOKEN!", fmt.Sprintf(For("en").RewardFormat(), "TOKEN", 5))
	assert.Equal(t, "금고에 30 코인이 적립되었습니다.", fmt.Sprintf(For("ko").AccruedFormat(), 30))
}
