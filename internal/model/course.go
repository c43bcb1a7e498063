package model

import "time"

// Course is a coach-published, time-bounded class with a finite number of
// seats. Courses are owned by the catalog collaborator and treated as
// immutable once referenced by a booking.
type Course struct {
	CourseID        string    `db:"id" json:"course_id"`
	UserID          string    `db:"user_id" json:"user_id"` // owning coach
	SkillID         string    `db:"skill_id" json:"skill_id"`
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description"`
	StartAt         time.Time `db:"start_at" json:"start_at"`
	EndAt           time.Time `db:"end_at" json:"end_at"`
	MaxParticipants int       `db:"max_participants" json:"max_participants"`
	MeetingURL      string    `db:"meeting_url" json:"meeting_url"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// CourseListing is the public course view joined with coach and skill names,
// including current occupancy.
type CourseListing struct {
	CourseID        string    `json:"course_id"`
	CoachName       string    `json:"coach_name"`
	SkillName       string    `json:"skill_name"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	StartAt         time.Time `json:"start_at"`
	EndAt           time.Time `json:"end_at"`
	MaxParticipants int       `json:"max_participants"`
	Occupied        int       `json:"occupied"`
}
