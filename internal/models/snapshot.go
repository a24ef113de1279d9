package models

import (
	"sort"
	"time"
)

// DaySnapshot is the counter state of a repository on one day.
type DaySnapshot struct {
	Stars      int  `json:"stars"`
	Downloads  int  `json:"downloads"`
	OpenIssues *int `json:"open_issues,omitempty"`
}

// History maps YYYY-MM-DD keys to the snapshot taken that day.
type History map[string]DaySnapshot

// On returns the snapshot stored for the UTC day containing t.
func (h History) On(t time.Time) (DaySnapshot, bool) {
	snap, ok := h[DayKey(t)]
	return snap, ok
}

// Keys returns the history keys in ascending order.
func (h History) Keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Prune removes every entry older than cutoff and returns how many were
// dropped. Keys that do not parse are left alone.
func (h History) Prune(cutoff time.Time) int {
	cutoff = StartOfDay(cutoff)
	removed := 0
	for k := range h {
		day, err := ParseDayKey(k)
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			delete(h, k)
			removed++
		}
	}
	return removed
}
