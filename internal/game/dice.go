package game

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/osse101/TokenArcade_Go/internal/domain"
)

// DecodeDice reads the rolled pairs; every die must be 1..6
func DecodeDice(resp domain.PlayResponse) (domain.DiceResult, error) {
	var r domain.DiceResult
	if err := json.Unmarshal(resp.Raw, &r); err != nil {
		return r, err
	}
	if len(r.Pairs) == 0 {
		return r, fmt.Errorf("missing dice")
	}
	for _, pair := range r.Pairs {
		for _, die := range pair {
			if die < 1 || die > 6 {
				return r, fmt.Errorf("die value %d out of range", die)
			}
		}
	}
	return r, nil
}

// RenderDice lists every pair and the total
func RenderDice(r domain.DiceResult) string {
	pairs := make([]string, len(r.Pairs))
	for i, p := range r.Pairs {
		pairs[i] = fmt.Sprintf("%d+%d", p[0], p[1])
	}
	return fmt.Sprintf("rolled %s = %d", strings.Join(pairs, ", "), r.Total())
}

// NewDicePage creates the dice roll page; a zero duration uses the default
func NewDicePage(d Deps, duration time.Duration) *Page[domain.DiceResult] {
	if duration <= 0 {
		duration = DefaultDiceDuration
	}
	return newPage(domain.GameDice, d, duration, DecodeDice, RenderDice)
}
