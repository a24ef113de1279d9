package models

import "time"

// CollectedData is everything fetched for one repository in one run.
type CollectedData struct {
	Owner      string         `json:"owner"`
	Name       string         `json:"name"`
	Since      time.Time      `json:"since"`
	Stars      int            `json:"stars"`
	OpenIssues int            `json:"open_issues"`
	Downloads  int            `json:"downloads"`
	Issues     []Item         `json:"issues"`
	Pulls      []Item         `json:"pulls"`
	Referrers  []ReferrerStat `json:"referrers"`
	Traffic    TrafficWindow  `json:"traffic"`
}

// Snapshot returns the counters of c as a history entry.
func (c *CollectedData) Snapshot() DaySnapshot {
	open := c.OpenIssues
	return DaySnapshot{
		Stars:      c.Stars,
		Downloads:  c.Downloads,
		OpenIssues: &open,
	}
}
