package game

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/osse101/TokenArcade_Go/internal/domain"
)

// DecodeWheel reads the selected segment from a play response
func DecodeWheel(resp domain.PlayResponse) (domain.WheelResult, error) {
	var r domain.WheelResult
	var probe struct {
		SelectedIndex *int `json:"selected_index"`
	}
	if err := json.Unmarshal(resp.Raw, &probe); err != nil {
		return r, err
	}
	if probe.SelectedIndex == nil {
		return r, fmt.Errorf("missing selected_index")
	}
	if err := json.Unmarshal(resp.Raw, &r); err != nil {
		return r, err
	}
	if r.SelectedIndex < 0 || (r.SegmentCount > 0 && r.SelectedIndex >= r.SegmentCount) {
		return r, fmt.Errorf("selected_index %d out of range", r.SelectedIndex)
	}
	return r, nil
}

// RenderWheel describes where the wheel stopped
func RenderWheel(r domain.WheelResult) string {
	s := fmt.Sprintf("wheel stopped on segment %d", r.SelectedIndex+1)
	if r.SegmentCount > 0 {
		s += fmt.Sprintf("/%d", r.SegmentCount)
	}
	if r.Label != "" {
		s += fmt.Sprintf(" (%s)", r.Label)
	}
	return s
}

// NewWheelPage creates the wheel spin page; a zero duration uses the default
func NewWheelPage(d Deps, duration time.Duration) *Page[domain.WheelResult] {
	if duration <= 0 {
		duration = DefaultWheelDuration
	}
	return newPage(domain.GameWheel, d, duration, DecodeWheel, RenderWheel)
}
