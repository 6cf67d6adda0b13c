package domain

import (
	"encoding/json"
	"time"
)

// RewardTypeNone marks a blank result with nothing to show
const RewardTypeNone = "NONE"

// Reward is the headline reward descriptor attached to an outcome
type Reward struct {
	Type  string `json:"type"`
	Value int64  `json:"value"`
}

// PlayResponse is the server's answer to a play request.
// The outcome-specific fields stay in Raw so each game decodes its own result.
type PlayResponse struct {
	RewardType     *string `json:"reward_type,omitempty"`
	RewardValue    *int64  `json:"reward_value,omitempty"`
	RemainingPlays int     `json:"remaining_plays"`
	LedgerAccrual  int64   `json:"ledger_accrual,omitempty"`
	Message        string  `json:"message,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps the full body alongside the common fields
func (r *PlayResponse) UnmarshalJSON(data []byte) error {
	type common PlayResponse
	var c common
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	*r = PlayResponse(c)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// Reward returns the reward descriptor, or nil when the server sent none
func (r PlayResponse) Reward() *Reward {
	if r.RewardType == nil && r.RewardValue == nil {
		return nil
	}
	reward := &Reward{}
	if r.RewardType != nil {
		reward.Type = *r.RewardType
	}
	if r.RewardValue != nil {
		reward.Value = *r.RewardValue
	}
	return reward
}

// Outcome is the server-decided, immutable result of one play
type Outcome[T any] struct {
	PlayID         string
	Game           GameType
	Result         T
	Reward         *Reward
	LedgerAccrual  int64
	RemainingPlays int
	Message        string
	ReceivedAt     time.Time
}

// WheelResult is the outcome of a wheel spin
type WheelResult struct {
	SelectedIndex int    `json:"selected_index"`
	Label         string `json:"label,omitempty"`
	SegmentCount  int    `json:"segment_count,omitempty"`
}

// DiceResult is the outcome of a dice roll, one pair per roll
type DiceResult struct {
	Pairs [][2]int `json:"dice"`
}

// Total sums every die in the result
func (d DiceResult) Total() int {
	total := 0
	for _, p := range d.Pairs {
		total += p[0] + p[1]
	}
	return total
}

// Prize is the record revealed by a scratch card
type Prize struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tier string `json:"tier,omitempty"`
}

// CardResult is the outcome of a scratch-card draw
type CardResult struct {
	Prize Prize `json:"prize"`
}

// ClassificationReason explains a reward classification
type ClassificationReason string

const (
	ReasonDisplayable      ClassificationReason = "displayable"
	ReasonNoReward         ClassificationReason = "no_reward"
	ReasonBlankType        ClassificationReason = "blank_type"
	ReasonNonPositiveValue ClassificationReason = "non_positive_value"
	ReasonUnsupportedType  ClassificationReason = "unsupported_type"
)

// RewardClassification is derived from an outcome's reward and never persisted
type RewardClassification struct {
	Displayable bool                 `json:"displayable"`
	Reason      ClassificationReason `json:"reason"`
}

// TimelineStatus is the visual state of a reveal animation
type TimelineStatus string

const (
	TimelineIdle     TimelineStatus = "idle"
	TimelineSpinning TimelineStatus = "spinning"
	TimelineRevealed TimelineStatus = "revealed"
)

// AnimationTimeline is the ephemeral timing record of one play's reveal
type AnimationTimeline struct {
	StartedAt time.Time
	Duration  time.Duration
	Status    TimelineStatus
}

// RevealAt is the earliest instant the outcome may be disclosed
func (t AnimationTimeline) RevealAt() time.Time {
	return t.StartedAt.Add(t.Duration)
}
