package match

import "strconv"

// goalTypes are the event type markers that denote a goal. football-data.org
// v4 reports REGULAR, PENALTY and OWN; GOAL is the generic marker.
var goalTypes = map[string]bool{
	"GOAL":    true,
	"REGULAR": true,
	"PENALTY": true,
	"OWN":     true,
}

// ExtractGoals returns the match's goal events in source order. It never
// fails: missing sub-fields come back as empty strings.
func ExtractGoals(m Match) []Goal {
	goals := make([]Goal, 0, len(m.Goals))
	for _, ev := range m.Goals {
		if !goalTypes[stringAt(ev, "type")] {
			continue
		}
		goals = append(goals, Goal{
			Player: stringAt(ev, "scorer", "name"),
			Team:   stringAt(ev, "team", "name"),
			Minute: minute(ev),
			Assist: stringAt(ev, "assist", "name"),
		})
	}
	return goals
}

// minute renders "23", or "90+3" when injury time is reported.
func minute(ev map[string]any) string {
	base, ok := intValue(ev["minute"])
	if !ok {
		return ""
	}
	s := strconv.Itoa(base)
	if extra, ok := intValue(ev["injuryTime"]); ok && extra > 0 {
		s += "+" + strconv.Itoa(extra)
	}
	return s
}
