package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEditInFlight means a mutation on the same entity is still
	// outstanding; the trigger is a no-op, not a queued retry.
	ErrEditInFlight = errors.New("another edit is already in flight for this entity")

	ErrTokenExpired  = errors.New("access token expired")
	ErrSessionClosed = errors.New("calendar session is closed")
)

// ValidationError is a locally detected precondition violation. The request
// is never sent and no state is mutated.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation failed: %s: %v", e.Message, e.Err)
	}
	return "validation failed: " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ConflictError is a service-side rejection of a well-formed request, e.g.
// an open cycle already exists in another session. Optimistic local state
// is rolled back before this surfaces.
type ConflictError struct {
	Detail string
}

func (e *ConflictError) Error() string {
	return "service rejected request: " + e.Detail
}

// FetchError is a transport or HTTP failure. Status is zero for
// transport-level failures that never produced a response.
type FetchError struct {
	Op     string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: service returned %d %s", e.Op, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsFetch(err error) bool {
	var target *FetchError
	return errors.As(err, &target)
}
