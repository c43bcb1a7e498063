package dto

import "time"

// BookingResponseDTO is returned when a booking is created
type BookingResponseDTO struct {
	BookingID string `json:"booking_id"`
}

// CancelBookingDTO is the optional cancel request body
type CancelBookingDTO struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=255"`
}

// UserBookingDTO is one row of the caller's booking history
type UserBookingDTO struct {
	BookingID   string     `json:"booking_id"`
	CourseName  string     `json:"course_name"`
	CoachName   string     `json:"coach_name"`
	Status      string     `json:"status"`
	StartAt     time.Time  `json:"start_at"`
	EndAt       time.Time  `json:"end_at"`
	MeetingURL  string     `json:"meeting_url"`
	BookedAt    time.Time  `json:"booked_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// CourseRosterDTO is the coach-facing occupancy summary
type CourseRosterDTO struct {
	CourseID        string   `json:"course_id"`
	MaxParticipants int      `json:"max_participants"`
	Occupied        int      `json:"occupied"`
	Participants    []string `json:"participants,omitempty"`
}
