package notifications

import (
	"fmt"
	"strings"

	"github.com/albapepper/goalbot/internal/match"
)

// FormatGoal renders a goal notification. The assist line is present only
// when the goal has an assist.
func FormatGoal(m match.Match, g match.Goal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚽ GOAL! %s\n", g.Team)
	fmt.Fprintf(&b, "Player: %s\n", g.Player)
	if g.HasAssist() {
		fmt.Fprintf(&b, "Assist: %s\n", g.Assist)
	}
	fmt.Fprintf(&b, "Time: %s'\n", g.Minute)
	fmt.Fprintf(&b, "Score: %s %s %s", m.HomeTeam, m.Score, m.AwayTeam)
	return b.String()
}

// FormatStatus renders a status notification. It returns false for
// StatusNone, which produces no message.
func FormatStatus(m match.Match, label match.StatusLabel) (string, bool) {
	switch label {
	case match.StatusLive:
		return fmt.Sprintf("🟢 Match Live:\n%s vs %s", m.HomeTeam, m.AwayTeam), true
	case match.StatusHalftime:
		return fmt.Sprintf("⏸️ Halftime:\n%s vs %s", m.HomeTeam, m.AwayTeam), true
	case match.StatusExtraTime:
		return fmt.Sprintf("⏱️ Extra Time:\n%s vs %s", m.HomeTeam, m.AwayTeam), true
	case match.StatusFulltime:
		return fmt.Sprintf("🏁 Fulltime:\n%s %s %s", m.HomeTeam, m.Score, m.AwayTeam), true
	default:
		return "", false
	}
}
