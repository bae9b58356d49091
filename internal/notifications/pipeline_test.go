package notifications

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/albapepper/goalbot/internal/match"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource returns one scripted response per call; the last one repeats.
type fakeSource struct {
	responses [][]match.Match
	errs      []error
	calls     int
}

func (f *fakeSource) LiveMatches(context.Context) ([]match.Match, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}

// fakeSender records messages and fails the sends listed in failOn.
type fakeSender struct {
	sent   []string
	failOn map[int]bool // zero-based attempt index
	tries  int
}

func (f *fakeSender) Send(_ context.Context, text string) error {
	i := f.tries
	f.tries++
	if f.failOn[i] {
		return errors.New("telegram unavailable")
	}
	f.sent = append(f.sent, text)
	return nil
}

func goalEvent(player, team string, minute int, assist string) map[string]any {
	ev := map[string]any{
		"type":   "REGULAR",
		"minute": float64(minute),
		"scorer": map[string]any{"name": player},
		"team":   map[string]any{"name": team},
	}
	if assist != "" {
		ev["assist"] = map[string]any{"name": assist}
	}
	return ev
}

func withGoals(m match.Match, goals ...map[string]any) match.Match {
	m.Goals = goals
	return m
}

func TestRunCycleLiveThenRepeat(t *testing.T) {
	m1 := testMatch("LIVE", 0, 0)
	source := &fakeSource{responses: [][]match.Match{{m1}}}
	sender := &fakeSender{}
	n := NewNotifier(source, sender, NewStore(0), PolicyAbort, quietLogger())

	res, err := n.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}
	if res.Sent != 1 || len(sender.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(sender.sent))
	}
	if want := "🟢 Match Live:\nHome vs Away"; sender.sent[0] != want {
		t.Errorf("message = %q, want %q", sender.sent[0], want)
	}

	res, err = n.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("second RunCycle() error = %v", err)
	}
	if len(sender.sent) != 1 {
		t.Errorf("second cycle sent %d extra messages, want 0", len(sender.sent)-1)
	}
	if res.Suppressed != 1 {
		t.Errorf("Suppressed = %d, want 1", res.Suppressed)
	}
}

func TestRunCycleGoalSentOnce(t *testing.T) {
	live := testMatch("LIVE", 0, 0)
	scored := withGoals(testMatch("LIVE", 1, 0), goalEvent("A", "Home", 23, ""))

	source := &fakeSource{responses: [][]match.Match{{live}, {scored}, {scored}}}
	sender := &fakeSender{}
	n := NewNotifier(source, sender, NewStore(0), PolicyAbort, quietLogger())

	for i := 0; i < 3; i++ {
		if _, err := n.RunCycle(context.Background()); err != nil {
			t.Fatalf("cycle %d error = %v", i, err)
		}
	}

	if len(sender.sent) != 2 {
		t.Fatalf("sent %d messages, want live + one goal:\n%q", len(sender.sent), sender.sent)
	}
	goal := sender.sent[1]
	for _, want := range []string{"Player: A", "Time: 23'", "Score: Home 1 - 0 Away"} {
		if !strings.Contains(goal, want) {
			t.Errorf("goal message missing %q:\n%s", want, goal)
		}
	}
	if strings.Contains(goal, "Assist") {
		t.Errorf("goal message has an assist line:\n%s", goal)
	}
}

func TestRunCycleGoalsBeforeStatus(t *testing.T) {
	m := withGoals(testMatch("FINISHED", 2, 0),
		goalEvent("A", "Home", 10, "B"),
		goalEvent("C", "Home", 80, ""),
	)
	sender := &fakeSender{}
	n := NewNotifier(&fakeSource{responses: [][]match.Match{{m}}}, sender, nil, PolicyAbort, quietLogger())

	if _, err := n.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 3 {
		t.Fatalf("sent %d, want 3", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0], "Player: A") || !strings.Contains(sender.sent[1], "Player: C") {
		t.Errorf("goals out of source order: %q", sender.sent[:2])
	}
	if !strings.HasPrefix(sender.sent[2], "🏁 Fulltime:") {
		t.Errorf("status not last: %q", sender.sent[2])
	}
}

func TestRunCycleFulltimeCorrection(t *testing.T) {
	final := testMatch("FINISHED", 2, 1)
	corrected := testMatch("FINISHED", 2, 2)
	source := &fakeSource{responses: [][]match.Match{{final}, {final}, {corrected}}}
	sender := &fakeSender{}
	n := NewNotifier(source, sender, nil, PolicyAbort, quietLogger())

	for i := 0; i < 3; i++ {
		if _, err := n.RunCycle(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	want := []string{
		"🏁 Fulltime:\nHome 2 - 1 Away",
		"🏁 Fulltime:\nHome 2 - 2 Away",
	}
	if len(sender.sent) != len(want) {
		t.Fatalf("sent = %q, want %q", sender.sent, want)
	}
	for i := range want {
		if sender.sent[i] != want[i] {
			t.Errorf("sent[%d] = %q, want %q", i, sender.sent[i], want[i])
		}
	}
}

func TestRunCycleFetchFailure(t *testing.T) {
	m := testMatch("LIVE", 0, 0)
	source := &fakeSource{
		responses: [][]match.Match{nil, {m}},
		errs:      []error{errors.New("connection refused")},
	}
	sender := &fakeSender{}
	n := NewNotifier(source, sender, nil, PolicyAbort, quietLogger())

	_, err := n.RunCycle(context.Background())
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("RunCycle() error = %v, want *FetchError", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent %d messages during a failed fetch", len(sender.sent))
	}

	if _, err := n.RunCycle(context.Background()); err != nil {
		t.Fatalf("next cycle error = %v", err)
	}
	if len(sender.sent) != 1 {
		t.Errorf("next cycle sent %d, want 1", len(sender.sent))
	}

	stats := n.Stats()
	if stats.Cycles != 2 || stats.Failures != 1 || stats.LastError != "" {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestRunCycleDispatchAbort(t *testing.T) {
	m1 := testMatch("LIVE", 0, 0)
	m2 := testMatch("LIVE", 0, 0)
	m2.ID = "M2"
	m2.HomeTeam = "Other"

	source := &fakeSource{responses: [][]match.Match{{m1, m2}}}
	sender := &fakeSender{failOn: map[int]bool{0: true}}
	n := NewNotifier(source, sender, nil, PolicyAbort, quietLogger())

	res, err := n.RunCycle(context.Background())
	var dispatchErr *DispatchError
	if !errors.As(err, &dispatchErr) {
		t.Fatalf("RunCycle() error = %v, want *DispatchError", err)
	}
	if dispatchErr.MatchID != "M1" {
		t.Errorf("MatchID = %q, want M1", dispatchErr.MatchID)
	}
	if len(sender.sent) != 0 || res.Failed != 1 {
		t.Errorf("abort policy continued: sent=%q failed=%d", sender.sent, res.Failed)
	}

	// The failed notification was not recorded, so both go out next cycle.
	if _, err := n.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 2 {
		t.Errorf("retry cycle sent %d, want 2", len(sender.sent))
	}
}

func TestRunCycleDispatchSkip(t *testing.T) {
	m1 := testMatch("LIVE", 0, 0)
	m2 := testMatch("LIVE", 0, 0)
	m2.ID = "M2"
	m2.HomeTeam = "Other"

	source := &fakeSource{responses: [][]match.Match{{m1, m2}}}
	sender := &fakeSender{failOn: map[int]bool{0: true}}
	n := NewNotifier(source, sender, nil, PolicySkip, quietLogger())

	res, err := n.RunCycle(context.Background())
	var dispatchErr *DispatchError
	if !errors.As(err, &dispatchErr) {
		t.Fatalf("RunCycle() error = %v, want *DispatchError", err)
	}
	if res.Sent != 1 || res.Failed != 1 {
		t.Errorf("result = %s, want sent=1 failed=1", res.Summary())
	}
	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0], "Other vs Away") {
		t.Errorf("skip policy did not reach M2: %q", sender.sent)
	}

	// Only the failed M1 status is retried.
	if _, err := n.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 2 || !strings.Contains(sender.sent[1], "Home vs Away") {
		t.Errorf("retry sent = %q", sender.sent)
	}
}

func TestRunCycleSkipHoldsStatusBehindFailedGoal(t *testing.T) {
	m := withGoals(testMatch("FINISHED", 1, 0), goalEvent("A", "Home", 10, ""))
	source := &fakeSource{responses: [][]match.Match{{m}}}
	sender := &fakeSender{failOn: map[int]bool{0: true}}
	n := NewNotifier(source, sender, nil, PolicySkip, quietLogger())

	res, err := n.RunCycle(context.Background())
	var dispatchErr *DispatchError
	if !errors.As(err, &dispatchErr) {
		t.Fatalf("RunCycle() error = %v, want *DispatchError", err)
	}
	if res.Sent != 0 || len(sender.sent) != 0 {
		t.Fatalf("first cycle sent %q, want nothing while the goal is pending", sender.sent)
	}

	if _, err := n.RunCycle(context.Background()); err != nil {
		t.Fatalf("second RunCycle() error = %v", err)
	}
	want := []string{
		"⚽ GOAL! Home\nPlayer: A\nTime: 10'\nScore: Home 1 - 0 Away",
		"🏁 Fulltime:\nHome 1 - 0 Away",
	}
	if len(sender.sent) != len(want) {
		t.Fatalf("sent = %q, want %q", sender.sent, want)
	}
	for i := range want {
		if sender.sent[i] != want[i] {
			t.Errorf("sent[%d] = %q, want %q", i, sender.sent[i], want[i])
		}
	}
}

func TestRunCyclePurgesVanishedMatches(t *testing.T) {
	m := testMatch("LIVE", 0, 0)
	source := &fakeSource{responses: [][]match.Match{{m}, {}, {}, {m}}}
	sender := &fakeSender{}
	n := NewNotifier(source, sender, NewStore(2), PolicyAbort, quietLogger())

	var purged int
	for i := 0; i < 4; i++ {
		res, err := n.RunCycle(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		purged += res.Purged
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}
	// Purged record is forgotten, so the reappearing match is announced again.
	if len(sender.sent) != 2 {
		t.Errorf("sent = %d, want 2", len(sender.sent))
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    DispatchPolicy
		wantErr bool
	}{
		{"", PolicyAbort, false},
		{"abort", PolicyAbort, false},
		{"SKIP", PolicySkip, false},
		{"retry", PolicyAbort, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePolicy(%q) = (%v, %v), want (%v, err=%v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}
