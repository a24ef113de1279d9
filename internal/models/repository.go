package models

import (
	"strings"
	"time"
)

// Repository is a tracked GitHub repository together with its snapshot
// history and report schedule.
type Repository struct {
	ID           string     `json:"id"`
	Owner        string     `json:"owner"`
	Name         string     `json:"name"`
	Stats        History    `json:"stats"`
	ReportedAt   *time.Time `json:"reported_at,omitempty"`
	NextReportAt *time.Time `json:"next_report_at,omitempty"`
	BaseModel
}

// RecordID derives the primary key of a repository record. GitHub compares
// names case-insensitively and owners never contain an underscore, so the
// first underscore of an id always separates owner from name.
func RecordID(owner, name string) string {
	return NormalizeID(owner) + "_" + NormalizeID(name)
}

// NormalizeID canonicalizes a record id received from a caller.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// FullName returns "owner/name".
func (r *Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// NewRepository builds a record registered at now. The first report is
// scheduled for 06:00 UTC on the following day.
func NewRepository(owner, name string, now time.Time) *Repository {
	owner = strings.TrimSpace(owner)
	name = strings.TrimSpace(name)
	next := StartOfDay(now).Add(24*time.Hour + 6*time.Hour)
	return &Repository{
		ID:           RecordID(owner, name),
		Owner:        owner,
		Name:         name,
		Stats:        History{},
		NextReportAt: &next,
	}
}
