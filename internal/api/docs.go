package api

import (
	"time"

	"github.com/Kamar-Folarin/github-reporter/internal/models"
)

// ErrorResponse represents an API error
// @Description Error response from the API
type ErrorResponse struct {
	// Error message
	Error string `json:"error" example:"repository not found"`
	// Error type from the application taxonomy
	Type string `json:"type,omitempty" example:"NOT_FOUND" enums:"NOT_FOUND,TRANSIENT_UPSTREAM,COLLECTION_FAILED,RENDER_OR_DISPATCH_FAILED,INVALID_INPUT,INTERNAL"`
}

// AddRepositoryRequest registers a repository by owner and name or by URL
// @Description Repository to track
type AddRepositoryRequest struct {
	Owner string `json:"owner" example:"leits"`
	Name  string `json:"name" example:"MeetingBar"`
	URL   string `json:"url,omitempty" example:"https://github.com/leits/MeetingBar"`
}

// UpdateRepositoryRequest moves the next scheduled report
// @Description Report schedule update
type UpdateRepositoryRequest struct {
	NextReportAt time.Time `json:"next_report_at" binding:"required" example:"2024-03-21T06:00:00Z"`
}

// DayStats is one stored snapshot
type DayStats struct {
	Date string `json:"date" example:"2024-03-20"`
	models.DaySnapshot
}

// StatsResponse lists the stored snapshots of a repository, oldest first
// @Description Snapshot history of a repository
type StatsResponse struct {
	RepositoryID string     `json:"repository_id" example:"leits_meetingbar"`
	Days         []DayStats `json:"days"`
}

// StatusResponse is a plain acknowledgement
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}
