package notifications

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/albapepper/goalbot/internal/match"
)

// Notifier owns the dedup store and runs notification cycles.
type Notifier struct {
	source Source
	sender Sender
	store  *Store
	policy DispatchPolicy
	logger *slog.Logger

	mu    sync.Mutex
	stats Stats
}

// Stats is a snapshot of loop progress, safe to read from other goroutines.
type Stats struct {
	Cycles      int         `json:"cycles"`
	Failures    int         `json:"failures"`
	Sent        int         `json:"sent"`
	LastCycleAt time.Time   `json:"last_cycle_at"`
	LastError   string      `json:"last_error,omitempty"`
	LastResult  CycleResult `json:"last_result"`
	Tracked     int         `json:"tracked_matches"`
}

// NewNotifier wires a Notifier. A nil store gets a fresh one that never purges.
func NewNotifier(source Source, sender Sender, store *Store, policy DispatchPolicy, logger *slog.Logger) *Notifier {
	if store == nil {
		store = NewStore(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		source: source,
		sender: sender,
		store:  store,
		policy: policy,
		logger: logger,
	}
}

// RunCycle performs one fetch-extract-dispatch pass. Within a match all
// goals go out in source order before its status is considered. A fetch
// failure dispatches nothing and returns *FetchError; a send failure returns
// *DispatchError after applying the dispatch policy.
func (n *Notifier) RunCycle(ctx context.Context) (CycleResult, error) {
	var result CycleResult

	matches, err := n.source.LiveMatches(ctx)
	if err != nil {
		err = &FetchError{Err: err}
		n.finish(result, err)
		return result, err
	}
	result.Matches = len(matches)

	var dispatchErr *DispatchError
	fail := func(matchID string, err error) bool {
		result.Failed++
		if dispatchErr == nil {
			dispatchErr = &DispatchError{MatchID: matchID, Err: err}
		}
		dispatchErr.Count++
		n.logger.Warn("Notification send failed", "match_id", matchID, "policy", n.policy, "error", err)
		return n.policy == PolicyAbort
	}

feed:
	for _, m := range matches {
		goalFailed := false
		for _, g := range match.ExtractGoals(m) {
			if n.store.HasGoal(m.ID, g) {
				result.Suppressed++
				continue
			}
			if err := n.sender.Send(ctx, FormatGoal(m, g)); err != nil {
				if fail(m.ID, err) {
					break feed
				}
				goalFailed = true
				continue
			}
			n.store.RecordGoal(m.ID, g)
			result.Sent++
			n.logger.Info("Goal notified", "match_id", m.ID, "team", g.Team, "player", g.Player, "minute", g.Minute)
		}

		// The status waits until every goal of the match has gone out.
		if goalFailed {
			continue
		}
		text, ok := FormatStatus(m, match.DeriveStatusLabel(m))
		if !ok {
			continue
		}
		if n.store.HasStatus(m.ID, text) {
			result.Suppressed++
			continue
		}
		if err := n.sender.Send(ctx, text); err != nil {
			if fail(m.ID, err) {
				break feed
			}
			continue
		}
		n.store.RecordStatus(m.ID, text)
		result.Sent++
		n.logger.Info("Status notified", "match_id", m.ID, "status", m.Status)
	}

	// Every returned match counts as seen, even past an aborted dispatch.
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	if purged := n.store.Sweep(ids); len(purged) > 0 {
		result.Purged = len(purged)
		n.logger.Info("Purged finished matches", "count", len(purged), "match_ids", purged)
	}

	if dispatchErr != nil {
		n.finish(result, dispatchErr)
		return result, dispatchErr
	}
	n.finish(result, nil)
	return result, nil
}

func (n *Notifier) finish(result CycleResult, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stats.Cycles++
	n.stats.Sent += result.Sent
	n.stats.LastCycleAt = time.Now().UTC()
	n.stats.LastResult = result
	if err != nil {
		n.stats.Failures++
		n.stats.LastError = err.Error()
	} else {
		n.stats.LastError = ""
	}
}

// Stats returns a snapshot of loop progress.
func (n *Notifier) Stats() Stats {
	n.mu.Lock()
	s := n.stats
	n.mu.Unlock()
	s.Tracked = n.store.Len()
	return s
}
