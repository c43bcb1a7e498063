// Package apperr defines the typed failures the enrollment core returns to
// its callers. Handlers map these to HTTP statuses; everything else is an
// infrastructure error and propagates wrapped.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrCourseNotFound is returned when the referenced course does not exist.
	ErrCourseNotFound = errors.New("course not found")

	// ErrInsufficientCredit is returned when the user has no unconsumed
	// purchased credits left.
	ErrInsufficientCredit = errors.New("insufficient credit")

	// ErrCourseFull is returned when the course has reached max_participants.
	ErrCourseFull = errors.New("course full")

	// ErrAlreadyBooked is returned when the user already holds an active
	// booking for the course.
	ErrAlreadyBooked = errors.New("already booked")

	// ErrNotBooked is returned on cancel when no active booking exists for
	// the (user, course) pair.
	ErrNotBooked = errors.New("not booked")

	// ErrAlreadyTerminal is returned when a transition is applied to a
	// completed or cancelled booking.
	ErrAlreadyTerminal = errors.New("booking already in terminal state")

	// ErrConflictRetryable is returned when the storage layer detected a
	// write conflict between concurrent operations. The caller may re-issue
	// the same call; the engine itself never retries.
	ErrConflictRetryable = errors.New("concurrent write conflict, retry")
)

// CreditError carries the balance details behind an ErrInsufficientCredit.
type CreditError struct {
	UserID    string
	Purchased int
	Used      int
}

func (e *CreditError) Error() string {
	return fmt.Sprintf("insufficient credit for user %s: purchased %d, used %d", e.UserID, e.Purchased, e.Used)
}

func (e *CreditError) Unwrap() error {
	return ErrInsufficientCredit
}

// CapacityError carries the occupancy details behind an ErrCourseFull.
type CapacityError struct {
	CourseID        string
	MaxParticipants int
	Occupied        int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("course %s is full: %d/%d seats taken", e.CourseID, e.Occupied, e.MaxParticipants)
}

func (e *CapacityError) Unwrap() error {
	return ErrCourseFull
}

// IsClientError reports whether the error is a business-rule rejection caused
// by the caller's request, as opposed to an infrastructure failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInsufficientCredit) ||
		errors.Is(err, ErrCourseFull) ||
		errors.Is(err, ErrAlreadyBooked) ||
		errors.Is(err, ErrNotBooked) ||
		errors.Is(err, ErrAlreadyTerminal)
}

// IsRetryable reports whether re-issuing the same call might succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflictRetryable)
}

// IsNotFound reports whether the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCourseNotFound)
}
