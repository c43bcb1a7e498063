package model

import "time"

// Role is assigned by the identity collaborator and is read-only input here.
type Role string

const (
	RoleUser  Role = "USER"
	RoleCoach Role = "COACH"
	RoleAdmin Role = "ADMIN"
)

// User represents a platform account. Profile management lives outside this
// service; only identity and role are consumed by the enrollment core.
type User struct {
	UserID    string    `db:"id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
