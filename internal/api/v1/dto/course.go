package dto

import "time"

// CourseListingDTO is one row of the public course catalog
type CourseListingDTO struct {
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
