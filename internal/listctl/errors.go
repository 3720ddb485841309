package listctl

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSuperseded          = errors.New("response superseded by a newer query")
	ErrMutationInFlight    = errors.New("another change to this item is still in progress")
	ErrEmptySelection      = errors.New("no items selected")
	ErrItemNotLoaded       = errors.New("item is not on the current page")
	ErrPageSizeNotAllowed  = errors.New("page size is not one of the configured options")
	ErrInvalidSortOrder    = errors.New("sort order must be asc or desc")
	ErrScopeNotSupported   = errors.New("selection scope is not supported for this list")
	ErrIncompleteMutation  = errors.New("mutation requires both an apply and a commit step")
	ErrMissingIDAccessor   = errors.New("list controller requires an id accessor")
	ErrMissingResourceName = errors.New("list controller requires a resource name")
)

// FetchError reports a failed read. The list keeps showing its previous data.
type FetchError struct {
	Resource string
	Query    Query
	Message  string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s", e.Resource, e.Message)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MutationError reports a failed write. Optimistic changes have already been
// rolled back by the time it is returned.
type MutationError struct {
	Resource string
	Op       string
	ID       string
	Message  string
	Err      error
}

func (e *MutationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Resource, e.Message)
	}
	return fmt.Sprintf("%s %s %s: %s", e.Op, e.Resource, e.ID, e.Message)
}

func (e *MutationError) Unwrap() error { return e.Err }

// ValidationError is a local precondition failure. No request was sent.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// userMessager is implemented by data source errors that carry a message
// meant for the operator.
type userMessager interface {
	UserMessage() string
}

// UserMessage extracts the operator-facing message from err, or fallback.
func UserMessage(err error, fallback string) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "The request timed out. Please try again."
	}
	var um userMessager
	if errors.As(err, &um) {
		if msg := strings.TrimSpace(um.UserMessage()); msg != "" {
			return msg
		}
	}
	return fallback
}
