package model

import (
	"fmt"
	"time"

	"app/internal/apperr"
)

// BookingStatus is the lifecycle state of a CourseBooking. The forward path
// pending → in_progress → completed is driven by the session-tracking
// collaborator; cancellation is driven exclusively by the enrollment engine
// and recorded via CancelledAt rather than a status value.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
)

// CourseBooking is the enrollment record. A booking is active while
// CancelledAt is null; an active booking consumes one credit and one seat
// regardless of status. Cancelled rows are kept forever, a renewed enrollment
// creates a new row.
type CourseBooking struct {
	BookingID          string        `db:"id" json:"booking_id"`
	UserID             string        `db:"user_id" json:"user_id"`
	CourseID           string        `db:"course_id" json:"course_id"`
	Status             BookingStatus `db:"status" json:"status"`
	BookedAt           time.Time     `db:"booked_at" json:"booked_at"`
	JoinAt             *time.Time    `db:"join_at" json:"join_at,omitempty"`
	LeaveAt            *time.Time    `db:"leave_at" json:"leave_at,omitempty"`
	CancelledAt        *time.Time    `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CancellationReason *string       `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
}

// Active reports whether the booking still consumes a seat and a credit.
func (b *CourseBooking) Active() bool {
	return b.CancelledAt == nil
}

// Terminal reports whether the booking can accept no further transition.
func (b *CourseBooking) Terminal() bool {
	return b.CancelledAt != nil || b.Status == BookingCompleted
}

// Advance moves the booking one step forward along
// pending → in_progress → completed. It rejects any move on a cancelled or
// completed booking with apperr.ErrAlreadyTerminal, and rejects skips.
func (b *CourseBooking) Advance(to BookingStatus, at time.Time) error {
	if b.Terminal() {
		return fmt.Errorf("advance booking %s to %s: %w", b.BookingID, to, apperr.ErrAlreadyTerminal)
	}
	switch {
	case b.Status == BookingPending && to == BookingInProgress:
		b.Status = BookingInProgress
		b.JoinAt = &at
	case b.Status == BookingInProgress && to == BookingCompleted:
		b.Status = BookingCompleted
		b.LeaveAt = &at
	default:
		return fmt.Errorf("invalid booking transition %s → %s", b.Status, to)
	}
	return nil
}

// Cancel marks the booking cancelled. CancelledAt, once set, is permanent.
// Completed and already-cancelled bookings cannot be cancelled.
func (b *CourseBooking) Cancel(at time.Time, reason *string) error {
	if b.Terminal() {
		return fmt.Errorf("cancel booking %s: %w", b.BookingID, apperr.ErrAlreadyTerminal)
	}
	b.CancelledAt = &at
	b.CancellationReason = reason
	return nil
}

// UserBookingView is a user's booking joined with course and coach names for
// display.
type UserBookingView struct {
	BookingID   string        `json:"booking_id"`
	CourseName  string        `json:"course_name"`
	CoachName   string        `json:"coach_name"`
	Status      BookingStatus `json:"status"`
	StartAt     time.Time     `json:"start_at"`
	EndAt       time.Time     `json:"end_at"`
	MeetingURL  string        `json:"meeting_url"`
	BookedAt    time.Time     `json:"booked_at"`
	CancelledAt *time.Time    `json:"cancelled_at,omitempty"`
}

// CourseRoster is the coach-facing occupancy summary for a course.
type CourseRoster struct {
	CourseID        string   `json:"course_id"`
	MaxParticipants int      `json:"max_participants"`
	Occupied        int      `json:"occupied"`
	Participants    []string `json:"participants,omitempty"`
}
