package models

import "time"

// ItemKind discriminates issues from pull requests. It is fixed when the
// item is ingested and never re-derived.
type ItemKind string

const (
	KindIssue       ItemKind = "issue"
	KindPullRequest ItemKind = "pull_request"
)

// ItemState is the open/closed state of an issue or pull request.
type ItemState string

const (
	StateOpen   ItemState = "open"
	StateClosed ItemState = "closed"
)

// Item is an issue or a pull request.
type Item struct {
	Kind      ItemKind  `json:"kind"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	State     ItemState `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	HTMLURL   string    `json:"html_url"`
}

// IsPullRequest reports whether the item is a pull request.
func (i Item) IsPullRequest() bool {
	return i.Kind == KindPullRequest
}

// IsOpen reports whether the item is open.
func (i Item) IsOpen() bool {
	return i.State == StateOpen
}

// CreatedSince reports whether the item was opened after t.
func (i Item) CreatedSince(t time.Time) bool {
	return i.CreatedAt.After(t)
}
