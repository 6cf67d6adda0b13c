package game

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/osse101/TokenArcade_Go/internal/domain"
)

// DecodeCard reads the drawn prize
func DecodeCard(resp domain.PlayResponse) (domain.CardResult, error) {
	var r domain.CardResult
	if err := json.Unmarshal(resp.Raw, &r); err != nil {
		return r, err
	}
	if r.Prize.ID == "" && r.Prize.Name == "" {
		return r, fmt.Errorf("missing prize")
	}
	return r, nil
}

// RenderCard names the prize under the scratch layer
func RenderCard(r domain.CardResult) string {
	name := r.Prize.Name
	if name == "" {
		name = r.Prize.ID
	}
	if r.Prize.Tier != "" {
		return fmt.Sprintf("scratched a %s prize: %s", r.Prize.Tier, name)
	}
	return "scratched: " + name
}

// NewCardPage creates the scratch-card page; a zero duration uses the default
func NewCardPage(d Deps, duration time.Duration) *Page[domain.CardResult] {
	if duration <= 0 {
		duration = DefaultCardDuration
	}
	return newPage(domain.GameCard, d, duration, DecodeCard, RenderCard)
}
