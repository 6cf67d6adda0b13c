// Package haptic fires short vibration pulses while a reveal animation runs. Pulses are
// driven by scheduler timers, not animation frames, and every timer lives in a scope
// owned by the game instance.
package haptic

import (
	"time"

	"github.com/osse101/TokenArcade_Go/internal/logger"
	"github.com/osse101/TokenArcade_Go/internal/scheduler"
)

// Vibrator is the device vibration capability
type Vibrator interface {
	Supported() bool
	Vibrate(pattern ...time.Duration) error
}

// Visibility reports whether the game view is in the foreground
type Visibility interface {
	Foreground() bool
}

// PulseFunc observes pulses that reached the device
type PulseFunc func(accent bool)

// Config is the pulse cadence
type Config struct {
	InitialDelay time.Duration
	Interval     time.Duration
	MaxPulses    int
	Pulse        time.Duration
	AccentLead   time.Duration
	Accent       []time.Duration
}

// DefaultConfig returns the standard cadence: six short ticks every 420ms after a 350ms
// lead-in, then a three-part accent just before the reveal.
func DefaultConfig() Config {
	return Config{
		InitialDelay: DefaultInitialDelay,
		Interval:     DefaultInterval,
		MaxPulses:    DefaultMaxPulses,
		Pulse:        DefaultPulse,
		AccentLead:   DefaultAccentLead,
		Accent:       []time.Duration{DefaultPulse, 40 * time.Millisecond, 60 * time.Millisecond},
	}
}

// Scheduler plans pulses for one reveal at a time
type Scheduler struct {
	cfg        Config
	vibrator   Vibrator
	visibility Visibility
	onPulse    PulseFunc
}

// New creates a pulse scheduler. A nil visibility counts as always foregrounded.
func New(cfg Config, vibrator Vibrator, visibility Visibility) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		vibrator:   vibrator,
		visibility: visibility,
	}
}

// OnPulse registers an observer for delivered pulses
func (s *Scheduler) OnPulse(fn PulseFunc) {
	s.onPulse = fn
}

// Config returns the cadence in use
func (s *Scheduler) Config() Config {
	return s.cfg
}

// Start schedules the pulses of one reveal lasting total inside a run scope of parent.
// Cancelling the returned handle, or closing parent, clears every pending pulse; a run
// that plays out drops out of parent on its own.
func (s *Scheduler) Start(parent *scheduler.Scope, total time.Duration) scheduler.Handle {
	run := parent.Run()

	accentAt := total - s.cfg.AccentLead
	if accentAt < 0 {
		accentAt = 0
	}

	if s.cfg.MaxPulses > 0 && s.cfg.InitialDelay < accentAt {
		count := 0
		tick := func() bool {
			s.fire(run, false)
			count++
			next := s.cfg.InitialDelay + time.Duration(count)*s.cfg.Interval
			return count < s.cfg.MaxPulses && next < accentAt
		}
		run.After(s.cfg.InitialDelay, func() {
			if tick() && s.cfg.Interval > 0 {
				run.Every(s.cfg.Interval, tick)
			}
		})
	}

	if len(s.cfg.Accent) > 0 {
		run.After(accentAt, func() {
			s.fire(run, true)
		})
	}

	if run.Pending() == 0 {
		run.Close()
	}
	return run
}

func (s *Scheduler) fire(run *scheduler.Scope, accent bool) {
	if run.Closed() {
		return
	}
	if s.visibility != nil && !s.visibility.Foreground() {
		return
	}
	if s.vibrator == nil || !s.vibrator.Supported() {
		return
	}

	pattern := []time.Duration{s.cfg.Pulse}
	if accent {
		pattern = s.cfg.Accent
	}
	if err := s.vibrator.Vibrate(pattern...); err != nil {
		logger.Debug(LogMsgVibrateFailed, "error", err, "accent", accent)
		return
	}
	if s.onPulse != nil {
		s.onPulse(accent)
	}
}
