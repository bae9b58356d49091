// Package notifications turns live match state into chat notifications.
//
// Pipeline: fetch live matches → extract goals and status → drop anything
// already sent (Store) → format → send. Run repeats the cycle on a fixed
// interval until its context is cancelled.
package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/albapepper/goalbot/internal/match"
)

// --------------------------------------------------------------------------
// Collaborators
// --------------------------------------------------------------------------

// Source returns the matches currently live.
type Source interface {
	LiveMatches(ctx context.Context) ([]match.Match, error)
}

// Sender delivers one notification text to the configured destination.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// DispatchPolicy decides what a failed send does to the rest of the cycle.
type DispatchPolicy int

const (
	// PolicyAbort ends the cycle at the first failed send.
	PolicyAbort DispatchPolicy = iota
	// PolicySkip drops the failed notification for this cycle and carries on.
	PolicySkip
)

// ParsePolicy maps "abort" / "skip" onto a DispatchPolicy.
func ParsePolicy(s string) (DispatchPolicy, error) {
	switch strings.ToLower(s) {
	case "", "abort":
		return PolicyAbort, nil
	case "skip":
		return PolicySkip, nil
	default:
		return PolicyAbort, fmt.Errorf("unknown dispatch policy %q", s)
	}
}

func (p DispatchPolicy) String() string {
	if p == PolicySkip {
		return "skip"
	}
	return "abort"
}

// CycleResult tracks the outcome of one fetch-extract-dispatch pass.
type CycleResult struct {
	Matches    int
	Sent       int
	Suppressed int
	Failed     int
	Purged     int
}

// Summary returns a human-readable summary.
func (r CycleResult) Summary() string {
	return fmt.Sprintf("matches=%d sent=%d suppressed=%d failed=%d purged=%d",
		r.Matches, r.Sent, r.Suppressed, r.Failed, r.Purged)
}

// FetchError wraps a failure to read from the Source.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return "fetch live matches: " + e.Err.Error() }
func (e *FetchError) Unwrap() error { return e.Err }

// DispatchError wraps a failure to send a notification. Under PolicySkip,
// Count may be greater than one and Err is the first failure.
type DispatchError struct {
	MatchID string
	Count   int
	Err     error
}

func (e *DispatchError) Error() string {
	if e.Count > 1 {
		return fmt.Sprintf("dispatch %d notifications failed, first for match %s: %v", e.Count, e.MatchID, e.Err)
	}
	return fmt.Sprintf("dispatch notification for match %s: %v", e.MatchID, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
