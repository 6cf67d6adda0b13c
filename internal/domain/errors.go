package domain

import (
	"errors"
	"fmt"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Play errors
	ErrMsgAlreadyPending    = "a play is already in progress"
	ErrMsgBalanceExhausted  = "no plays remaining"
	ErrMsgControllerClosed  = "game instance is closed"
	ErrMsgInvalidOutcome    = "invalid outcome"
	ErrMsgTransport         = "transport error"
	ErrMsgUnknownView       = "unknown view"
	ErrMsgInvalidGame       = "invalid game type"
	ErrMsgUpstreamFormat    = "upstream error %s (status %d): %s"
	ErrMsgUpstreamNoMessage = "upstream error %s (status %d)"
)

// Common domain errors
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// ErrAlreadyPending is returned when a play is triggered while another has not settled
	ErrAlreadyPending = errors.New(ErrMsgAlreadyPending)

	// ErrBalanceExhausted is returned when the ticket balance is zero; no request is sent
	ErrBalanceExhausted = errors.New(ErrMsgBalanceExhausted)

	// ErrControllerClosed is returned for work addressed to a torn-down game instance
	ErrControllerClosed = errors.New(ErrMsgControllerClosed)

	ErrInvalidOutcome = errors.New(ErrMsgInvalidOutcome)
	ErrTransport      = errors.New(ErrMsgTransport)
	ErrUnknownView    = errors.New(ErrMsgUnknownView)
	ErrInvalidGame    = errors.New(ErrMsgInvalidGame)
)

// ErrorCode is the machine-readable code carried by upstream business errors
type ErrorCode string

const (
	CodeNoFeatureToday         ErrorCode = "NO_FEATURE_TODAY"
	CodeInvalidFeatureSchedule ErrorCode = "INVALID_FEATURE_SCHEDULE"
	CodeFeatureDisabled        ErrorCode = "FEATURE_DISABLED"
	CodeDailyLimitReached      ErrorCode = "DAILY_LIMIT_REACHED"
	CodeNotEnoughTokens        ErrorCode = "NOT_ENOUGH_TOKENS"
	CodeUnknown                ErrorCode = "UNKNOWN"
	CodeTransport              ErrorCode = "TRANSPORT"
)

// KnownCodes is the fixed vocabulary of upstream business error codes
var KnownCodes = []ErrorCode{
	CodeNoFeatureToday,
	CodeInvalidFeatureSchedule,
	CodeFeatureDisabled,
	CodeDailyLimitReached,
	CodeNotEnoughTokens,
}

// Known reports whether c belongs to the fixed vocabulary
func (c ErrorCode) Known() bool {
	for _, k := range KnownCodes {
		if c == k {
			return true
		}
	}
	return false
}

// UpstreamError is a business error reported by the game server
type UpstreamError struct {
	Code    ErrorCode
	Message string
	Status  int
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf(ErrMsgUpstreamNoMessage, e.Code, e.Status)
	}
	return fmt.Sprintf(ErrMsgUpstreamFormat, e.Code, e.Status, e.Message)
}

// Is matches another *UpstreamError by code, so errors.Is(err, &UpstreamError{Code: c}) works
func (e *UpstreamError) Is(target error) bool {
	var t *UpstreamError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Per-code sentinels for errors.Is
var (
	ErrNoFeatureToday         = &UpstreamError{Code: CodeNoFeatureToday}
	ErrInvalidFeatureSchedule = &UpstreamError{Code: CodeInvalidFeatureSchedule}
	ErrFeatureDisabled        = &UpstreamError{Code: CodeFeatureDisabled}
	ErrDailyLimitReached      = &UpstreamError{Code: CodeDailyLimitReached}
	ErrNotEnoughTokens        = &UpstreamError{Code: CodeNotEnoughTokens}
)

// NewUpstreamError builds an UpstreamError, folding unrecognised codes into CodeUnknown
func NewUpstreamError(code string, message string, status int) *UpstreamError {
	c := ErrorCode(code)
	if !c.Known() {
		c = CodeUnknown
	}
	return &UpstreamError{Code: c, Message: message, Status: status}
}

// UpstreamCode extracts the business error code from err, if any
func UpstreamCode(err error) (ErrorCode, bool) {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Code, true
	}
	return "", false
}

// FailureCode classifies any play failure for events and metrics
func FailureCode(err error) ErrorCode {
	if code, ok := UpstreamCode(err); ok {
		return code
	}
	if errors.Is(err, ErrTransport) {
		return CodeTransport
	}
	return CodeUnknown
}
