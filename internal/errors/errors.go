package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrNotFound               ErrorType = "NOT_FOUND"
	ErrTransientUpstream      ErrorType = "TRANSIENT_UPSTREAM"
	ErrCollectionFailed       ErrorType = "COLLECTION_FAILED"
	ErrRenderOrDispatchFailed ErrorType = "RENDER_OR_DISPATCH_FAILED"
	ErrInvalidInput           ErrorType = "INVALID_INPUT"
	ErrConflict               ErrorType = "CONFLICT"
	ErrInternal               ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type      ErrorType
	Message   string
	Cause     error
	Timestamp time.Time
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:      errType,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// TypeOf returns the type of the outermost classified error in err's chain,
// or ErrInternal when there is none. A collection failure keeps its own type
// whatever its cause was.
func TypeOf(err error) ErrorType {
	for err != nil {
		switch e := err.(type) {
		case *CollectionFailedError:
			return ErrCollectionFailed
		case *AppError:
			return e.Type
		}
		err = stderrors.Unwrap(err)
	}
	return ErrInternal
}

func hasType(err error, t ErrorType) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Type == t {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return hasType(err, ErrNotFound)
}

// IsTransient reports whether err, or anything it wraps, is a transient
// upstream failure that the next scheduled tick should retry.
func IsTransient(err error) bool {
	return hasType(err, ErrTransientUpstream)
}

// IsCollectionFailed checks if the error is a collection failure
func IsCollectionFailed(err error) bool {
	var collErr *CollectionFailedError
	return stderrors.As(err, &collErr) || hasType(err, ErrCollectionFailed)
}

// IsRenderOrDispatchFailed checks if the error came from rendering or sending a report
func IsRenderOrDispatchFailed(err error) bool {
	return hasType(err, ErrRenderOrDispatchFailed)
}

// IsInvalidInput checks if the error is an invalid input error
func IsInvalidInput(err error) bool {
	return hasType(err, ErrInvalidInput)
}

// IsConflict checks if the error reports work already in progress
func IsConflict(err error) bool {
	return hasType(err, ErrConflict)
}

// CollectionFailedError is returned when any sub-fetch of a repository
// collection fails. No partial data accompanies it.
type CollectionFailedError struct {
	Repo  string
	Cause error
}

func (e *CollectionFailedError) Error() string {
	return fmt.Sprintf("collection failed for %s: %v", e.Repo, e.Cause)
}

func (e *CollectionFailedError) Unwrap() error {
	return e.Cause
}

// NewCollectionFailedError creates a new CollectionFailedError
func NewCollectionFailedError(repo string, cause error) *CollectionFailedError {
	return &CollectionFailedError{
		Repo:  repo,
		Cause: cause,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, err error) *AppError {
	return New(ErrNotFound, message, err)
}

// NewTransientError creates a new transient upstream error
func NewTransientError(message string, err error) *AppError {
	return New(ErrTransientUpstream, message, err)
}

// NewRenderOrDispatchError creates a new render/dispatch error
func NewRenderOrDispatchError(message string, err error) *AppError {
	return New(ErrRenderOrDispatchFailed, message, err)
}

// NewValidationError creates a new validation error
func NewValidationError(message string, err error) *AppError {
	return New(ErrInvalidInput, message, err)
}

// NewConflictError creates a new conflict error
func NewConflictError(message string, err error) *AppError {
	return New(ErrConflict, message, err)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return New(ErrInternal, message, err)
}

// ResourceNotFound builds a not found error naming the missing resource.
func ResourceNotFound(resource, id string) *AppError {
	return New(ErrNotFound, fmt.Sprintf("%s not found: %s", resource, id), nil)
}
