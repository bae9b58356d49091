// Package match models live football matches as returned by the data source
// and extracts the notifiable events from them.
//
// Decoding is lenient: a single match with irregular fields degrades to empty
// values instead of failing the whole feed.
package match

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrNoID is returned by FromRaw when a match object has no usable identifier.
var ErrNoID = errors.New("match has no id")

// Match is one live fixture.
type Match struct {
	ID       string
	HomeTeam string
	AwayTeam string
	Status   string
	Score    Score

	// Goals holds the raw goal sub-objects in source order.
	Goals []map[string]any
}

// Score is the current full-time score pair. Either side may be unknown.
type Score struct {
	Home *int
	Away *int
}

// String renders "home - away", with "?" for an unknown side.
func (s Score) String() string {
	return side(s.Home) + " - " + side(s.Away)
}

func side(n *int) string {
	if n == nil {
		return "?"
	}
	return strconv.Itoa(*n)
}

// Goal is one scoring event. It is a comparable value: two goals with equal
// fields are the same goal.
type Goal struct {
	Player string
	Team   string
	Minute string
	Assist string // empty when unassisted
}

// HasAssist reports whether the goal carries an assisting player.
func (g Goal) HasAssist() bool {
	return g.Assist != ""
}

// FromRaw builds a Match from one decoded JSON match object.
func FromRaw(raw map[string]any) (Match, error) {
	id, ok := scalarString(raw["id"])
	if !ok || id == "" {
		return Match{}, ErrNoID
	}

	m := Match{
		ID:       id,
		HomeTeam: stringAt(raw, "homeTeam", "name"),
		AwayTeam: stringAt(raw, "awayTeam", "name"),
		Status:   stringAt(raw, "status"),
	}
	if h, ok := intValue(lookup(raw, "score", "fullTime", "home")); ok {
		m.Score.Home = &h
	}
	if a, ok := intValue(lookup(raw, "score", "fullTime", "away")); ok {
		m.Score.Away = &a
	}

	if list, ok := raw["goals"].([]any); ok {
		m.Goals = make([]map[string]any, 0, len(list))
		for _, item := range list {
			if obj, ok := item.(map[string]any); ok {
				m.Goals = append(m.Goals, obj)
			}
		}
	}
	return m, nil
}

// --------------------------------------------------------------------------
// Lenient field access
// --------------------------------------------------------------------------

// lookup walks nested objects by key. Any missing or non-object step yields nil.
func lookup(raw map[string]any, path ...string) any {
	var cur any = raw
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[key]
	}
	return cur
}

func stringAt(raw map[string]any, path ...string) string {
	s, _ := scalarString(lookup(raw, path...))
	return s
}

// scalarString renders strings and JSON numbers. Objects, arrays and null
// are not scalars.
func scalarString(val any) (string, bool) {
	switch v := val.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}

// intValue normalizes a JSON number (or numeric string) to int.
func intValue(val any) (int, bool) {
	switch v := val.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return 0, false
			}
			return int(f), true
		}
		return int(n), true
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
		return 0, false
	default:
		return 0, false
	}
}
