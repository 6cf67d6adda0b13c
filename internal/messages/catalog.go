// Package messages maps play errors to user-facing text.
package messages

import (
	"errors"

	"golang.org/x/text/language"

	"github.com/osse101/TokenArcade_Go/internal/domain"
)

// Catalog holds the messages of one locale
type Catalog struct {
	tag      language.Tag
	codes    map[domain.ErrorCode]string
	generic  string
	exhaust  string
	accrued  string
	rewarded string
}

var supported = []language.Tag{
	language.Korean, // first entry is the fallback
	language.English,
}

var matcher = language.NewMatcher(supported)

var catalogs = map[language.Tag]*Catalog{
	language.Korean: {
		tag: language.Korean,
		codes: map[domain.ErrorCode]string{
			domain.CodeNoFeatureToday:         "오늘은 진행 중인 게임이 없습니다.",
			domain.CodeInvalidFeatureSchedule: "게임 일정이 올바르지 않습니다.",
			domain.CodeFeatureDisabled:        "현재 이용할 수 없는 게임입니다.",
			domain.CodeDailyLimitReached:      "오늘 참여 횟수를 모두 사용했습니다.",
			domain.CodeNotEnoughTokens:        "토큰이 부족합니다.",
		},
		generic:  "일시적인 오류가 발생했습니다. 잠시 후 다시 시도해주세요.",
		exhaust:  "남은 참여 횟수가 없습니다. 토큰을 충전해주세요.",
		accrued:  "금고에 %d 코인이 적립되었습니다.",
		rewarded: "%s %d 획득!",
	},
	language.English: {
		tag: language.English,
		codes: map[domain.ErrorCode]string{
			domain.CodeNoFeatureToday:         "There is no game running today.",
			domain.CodeInvalidFeatureSchedule: "The game schedule is invalid.",
			domain.CodeFeatureDisabled:        "This game is currently unavailable.",
			domain.CodeDailyLimitReached:      "You have used all of today's plays.",
			domain.CodeNotEnoughTokens:        "You do not have enough tokens.",
		},
		generic:  "Something went wrong. Please try again in a moment.",
		exhaust:  "No plays left. Top up your tokens to keep playing.",
		accrued:  "%d coins were added to your vault.",
		rewarded: "You won %[2]d %[1]s!",
	},
}

// For returns the catalog best matching the requested locales (BCP 47 strings or
// Accept-Language values). Unknown or empty locales fall back to Korean.
func For(locales ...string) *Catalog {
	tag, index := language.MatchStrings(matcher, locales...)
	if c, ok := catalogs[supported[index]]; ok {
		return c
	}
	if c, ok := catalogs[tag]; ok {
		return c
	}
	return catalogs[supported[0]]
}

// Locale returns the catalog's language tag
func (c *Catalog) Locale() language.Tag {
	return c.tag
}

// Message returns the text shown for err. Gate rejections are not surfaced and map to "".
func (c *Catalog) Message(err error) string {
	if err == nil || errors.Is(err, domain.ErrAlreadyPending) || errors.Is(err, domain.ErrControllerClosed) {
		return ""
	}
	if errors.Is(err, domain.ErrBalanceExhausted) {
		return c.exhaust
	}
	if code, ok := domain.UpstreamCode(err); ok {
		return c.Code(code)
	}
	return c.generic
}

// Code returns the text for an upstream error code, or the generic message
func (c *Catalog) Code(code domain.ErrorCode) string {
	if msg, ok := c.codes[code]; ok {
		return msg
	}
	return c.generic
}

// Generic returns the fallback message for transport and unknown errors
func (c *Catalog) Generic() string {
	return c.generic
}

// Exhausted returns the top-up affordance text
func (c *Catalog) Exhausted() string {
	return c.exhaust
}

// AccruedFormat is a fmt format taking the accrued amount
func (c *Catalog) AccruedFormat() string {
	return c.accrued
}

// RewardFormat is a fmt format taking the reward type and value
func (c *Catalog) RewardFormat() string {
	return c.rewarded
}
