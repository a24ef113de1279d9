package github

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	gh "github.com/google/go-github/v62/github"

	apperrors "github.com/Kamar-Folarin/github-reporter/internal/errors"
)

// Error types for GitHub client operations
type GitHubError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *GitHubError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("GitHub API error (status %d): %s: %v", e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("GitHub API error (status %d): %s", e.StatusCode, e.Message)
}

func (e *GitHubError) Unwrap() error {
	return e.Err
}

// ValidationError represents invalid input to GitHub client methods
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: invalid %s: %s", e.Field, e.Value)
}

// RepositoryNotFoundError represents when a repository cannot be found
type RepositoryNotFoundError struct {
	Owner string
	Name  string
}

func (e *RepositoryNotFoundError) Error() string {
	return fmt.Sprintf("repository not found: %s/%s", e.Owner, e.Name)
}

// NewGitHubError creates a new GitHubError with the given status code and message
func NewGitHubError(statusCode int, message string, err error) error {
	return &GitHubError{
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, value string) error {
	return &ValidationError{
		Field: field,
		Value: value,
	}
}

func classifyRepoError(err error, owner, name string) error {
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound {
		return apperrors.NewNotFoundError(fmt.Sprintf("%s/%s", owner, name), &RepositoryNotFoundError{Owner: owner, Name: name})
	}
	return classifyError(err, owner+"/"+name)
}

// classifyError maps go-github failures onto the application taxonomy.
// Quota exhaustion, 5xx responses, timeouts and transport failures are
// transient; everything else is a permanent GitHubError.
func classifyError(err error, what string) error {
	if err == nil {
		return nil
	}

	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	var errResp *gh.ErrorResponse
	var netErr net.Error

	switch {
	case errors.As(err, &rateErr):
		return apperrors.NewTransientError(fmt.Sprintf("rate limit exhausted for %s, resets at %v", what, rateErr.Rate.Reset.Time), err)
	case errors.As(err, &abuseErr):
		return apperrors.NewTransientError(fmt.Sprintf("secondary rate limit hit for %s", what), err)
	case errors.As(err, &errResp) && errResp.Response != nil:
		status := errResp.Response.StatusCode
		ghErr := NewGitHubError(status, errResp.Message, err)
		if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
			return apperrors.NewTransientError(fmt.Sprintf("GitHub returned %d for %s", status, what), ghErr)
		}
		if status == http.StatusNotFound {
			return apperrors.NewNotFoundError(what, ghErr)
		}
		return ghErr
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTransientError(fmt.Sprintf("request for %s timed out", what), err)
	case errors.Is(err, context.Canceled):
		return err
	case errors.As(err, &netErr):
		return apperrors.NewTransientError(fmt.Sprintf("request for %s failed", what), err)
	}
	return NewGitHubError(0, "request failed", err)
}
