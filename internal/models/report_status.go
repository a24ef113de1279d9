package models

import (
	"time"
)

// ReportState is the position of a repository in its report lifecycle.
type ReportState string

const (
	StateRegistered ReportState = "registered"
	StateDue        ReportState = "due"
	StateCollecting ReportState = "collecting"
	StateDelivered  ReportState = "delivered"
)

// StateOf derives the persisted lifecycle state of r at now. Collecting and
// Delivered only exist inside a pipeline run.
func StateOf(r *Repository, now time.Time) ReportState {
	if r.NextReportAt != nil && !r.NextReportAt.After(now) {
		return StateDue
	}
	return StateRegistered
}

// NextReportAfter advances next by whole days until it is after now.
func NextReportAfter(next, now time.Time) time.Time {
	next = next.Add(24 * time.Hour)
	for !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// BatchProgress tracks a run over many repositories
type BatchProgress struct {
	Job            string    `json:"job"`
	Total          int       `json:"total"`
	Processed      int       `json:"processed"`
	Failed         int       `json:"failed"`
	Skipped        int       `json:"skipped"`
	StartTime      time.Time `json:"start_time"`
	LastUpdateTime time.Time `json:"last_update_time"`
	Errors         []string  `json:"errors,omitempty"`
}
