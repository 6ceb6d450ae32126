package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIntent is returned when an intent is not legal in the current view
	// or carries out-of-range arguments.
	ErrInvalidIntent = errors.New("invalid intent")
	// ErrCertificateUnavailable means no certificate could be produced.
	ErrCertificateUnavailable = errors.New("certificate unavailable")
	// ErrSessionClosed is returned for intents that reach an evicted session.
	ErrSessionClosed = errors.New("session closed")
)

func invalidIntent(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidIntent, fmt.Sprintf(format, args...))
}

// GenerationError reports a quiz source failure: transport, upstream refusal or
// content that does not honour the quiz contract.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("quiz generation failed: %s: %v", e.Reason, e.Err)
	}
	return "quiz generation failed: " + e.Reason
}

func (e *GenerationError) Unwrap() error { return e.Err }
