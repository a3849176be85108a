package tts

import (
	"errors"
	"fmt"
)

// Common errors for the synthesis system.
var (
	// Document/markup errors
	ErrMalformedSSML = errors.New("malformed SSML document")
	ErrEmptyDocument = errors.New("no synthesizable content in document")

	// Voice resolution errors
	ErrVoiceNotFound   = errors.New("voice not found")
	ErrSpeakerNotFound = errors.New("speaker not found")
	ErrInvalidVoiceKey = errors.New("invalid voice key")

	// Normalization warnings (recoverable)
	ErrUnsupportedFormat        = errors.New("unsupported say-as interpretation")
	ErrUnsupportedNormalization = errors.New("phonemizer cannot interpret say-as hint")

	// Pipeline errors
	ErrUnitSynthesisFailed = errors.New("unit synthesis failed")
	ErrRendererUnavailable = errors.New("renderer is not available")

	// Registry errors
	ErrVoiceNotLocal = errors.New("voice is not materialized locally")
)

// IsRecoverable reports whether processing may continue after err.
// Recoverable errors degrade a single span or unit; everything else
// aborts the request.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}

	switch {
	case errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrUnsupportedNormalization),
		errors.Is(err, ErrUnitSynthesisFailed):
		return true
	}

	return false
}

// UnitError reports a synthesis failure for a single utterance. It
// carries the unit's source text so callers can diagnose which
// sentence failed without replaying the document.
type UnitError struct {
	Index int    // utterance index in document order
	Text  string // source text of the failed unit
	Err   error  // underlying cause
}

// Error implements the error interface.
func (e *UnitError) Error() string {
	return fmt.Sprintf("%v: unit %d (%q): %v", ErrUnitSynthesisFailed, e.Index, e.Text, e.Err)
}

// Unwrap returns ErrUnitSynthesisFailed so errors.Is matches the
// pipeline's per-unit failure class.
func (e *UnitError) Unwrap() error {
	return ErrUnitSynthesisFailed
}

// Cause returns the underlying error that failed the unit.
func (e *UnitError) Cause() error {
	return e.Err
}

// Warning records a recoverable degradation encountered while
// processing a document (for example an unsupported say-as format that
// fell back to literal text).
type Warning struct {
	Err    error  // one of the recoverable sentinel errors
	Detail string // human-readable context (offending span, hint, ...)
}

func (w Warning) String() string {
	if w.Detail == "" {
		return w.Err.Error()
	}
	return fmt.Sprintf("%v: %s", w.Err, w.Detail)
}
