package session

import (
	"errors"
	"fmt"
)

// ErrNotLoaded is returned by Refresh and Submit before a successful
// Load has produced an option set.
var ErrNotLoaded = errors.New("session has no option set loaded")

// ErrSuperseded is returned by a Refresh whose response was discarded
// because a later refresh was initiated while it was in flight.
var ErrSuperseded = errors.New("refresh superseded by a later edit")

// ErrComplete is returned by operations on a session that already
// submitted successfully.
var ErrComplete = errors.New("session already completed")

// LoadError is a failed initial dry-run. Fatal to the session until the
// user starts over; the session performs no automatic retry.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load provider options: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// RefreshError is a failed dependency-triggered dry-run. The option set
// and baseline values stay at their last good generation; further edits
// remain possible.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("failed to refresh provider options: %v", e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// SubmitError is a failed configure call. The session stays open so the
// user can correct input and resubmit.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("failed to configure provider: %v", e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// ValidationError is a field-scoped input problem. It blocks submission
// without any network call and never overwrites the session's network
// error slot.
type ValidationError struct {
	Option string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("option %q: %s", e.Option, e.Reason)
}
