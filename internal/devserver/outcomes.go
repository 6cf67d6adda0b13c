package devserver

import (
	"fmt"

	"github.com/osse101/TokenArcade_Go/internal/domain"
)

// Rand is the randomness the outcome tables draw from
type Rand interface {
	IntN(n int) int
}

// randomInt returns a value between min and max inclusive
func randomInt(r Rand, min, max int) int {
	if min >= max {
		return min
	}
	return r.IntN(max-min+1) + min
}

type segment struct {
	label  string
	reward domain.Reward
}

// wheelSegments is the fixed wheel face in clockwise order
var wheelSegments = []segment{
	{"100 points", domain.Reward{Type: "POINT", Value: 100}},
	{"blank", domain.Reward{Type: domain.RewardTypeNone}},
	{"2 tickets", domain.Reward{Type: "TICKET", Value: 2}},
	{"50 points", domain.Reward{Type: "POINT", Value: 50}},
	{"coupon", domain.Reward{Type: "COUPON", Value: 1}},
	{"blank", domain.Reward{Type: domain.RewardTypeNone}},
	{"bonus token", domain.Reward{Type: "BONUS_TOKEN", Value: 1}},
	{"sticker", domain.Reward{Type: "STICKER", Value: 1}},
}

type prize struct {
	prize   domain.Prize
	reward  domain.Reward
	weight  int
	accrual int64
}

// cardPrizes is the scratch-card prize pool, drawn by weight
var cardPrizes = []prize{
	{domain.Prize{ID: "p-gold", Name: "Gold Coupon", Tier: "S"}, domain.Reward{Type: "COUPON", Value: 1}, 2, 0},
	{domain.Prize{ID: "p-key", Name: "Mystery Key", Tier: "A"}, domain.Reward{Type: "KEY", Value: 1}, 8, 0},
	{domain.Prize{ID: "p-points", Name: "500 Points", Tier: "B"}, domain.Reward{Type: "POINT", Value: 500}, 20, 0},
	{domain.Prize{ID: "p-ticket", Name: "Play Ticket", Tier: "B"}, domain.Reward{Type: "TICKET", Value: 1}, 20, 0},
	{domain.Prize{ID: "p-miss", Name: "Better luck next time", Tier: "C"}, domain.Reward{Type: domain.RewardTypeNone}, 50, 5},
}

// draw is one generated outcome before it is applied to an account
type draw struct {
	body    PlayBody
	reward  domain.Reward
	accrual int64
}

func drawOutcome(r Rand, game domain.GameType) (draw, error) {
	switch game {
	case domain.GameWheel:
		return drawWheel(r), nil
	case domain.GameDice:
		return drawDice(r), nil
	case domain.GameCard:
		return drawCard(r), nil
	default:
		return draw{}, fmt.Errorf("%w: %s", domain.ErrInvalidGame, game)
	}
}

// drawWheel lands on a segment; points also accrue to the vault at a tenth of their value
func drawWheel(r Rand) draw {
	idx := r.IntN(len(wheelSegments))
	seg := wheelSegments[idx]

	var accrual int64
	if seg.reward.Type == "POINT" {
		accrual = seg.reward.Value / 10
	}
	return draw{
		body: PlayBody{WheelResult: &domain.WheelResult{
			SelectedIndex: idx,
			Label:         seg.label,
			SegmentCount:  len(wheelSegments),
		}},
		reward:  seg.reward,
		accrual: accrual,
	}
}

// drawDice rolls DiceRolls pairs. The total is paid in points, doubled when any pair
// matched, and every double accrues 50 coins.
func drawDice(r Rand) draw {
	result := domain.DiceResult{Pairs: make([][2]int, DiceRolls)}
	doubles := 0
	for i := range result.Pairs {
		result.Pairs[i] = [2]int{randomInt(r, 1, 6), randomInt(r, 1, 6)}
		if result.Pairs[i][0] == result.Pairs[i][1] {
			doubles++
		}
	}

	value := int64(result.Total())
	if doubles > 0 {
		value *= 2
	}
	return draw{
		body:    PlayBody{DiceResult: &result},
		reward:  domain.Reward{Type: "POINT", Value: value},
		accrual: int64(doubles) * 50,
	}
}

func drawCard(r Rand) draw {
	total := 0
	for _, p := range cardPrizes {
		total += p.weight
	}

	pick := r.IntN(total)
	chosen := cardPrizes[len(cardPrizes)-1]
	for _, p := range cardPrizes {
		if pick < p.weight {
			chosen = p
			break
		}
		pick -= p.weight
	}

	return draw{
		body:    PlayBody{CardResult: &domain.CardResult{Prize: chosen.prize}},
		reward:  chosen.reward,
		accrual: chosen.accrual,
	}
}
