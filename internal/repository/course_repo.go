package repository

import (
	"context"
	"errors"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CourseRepository serves the public catalog-facing course views. The catalog
// itself (create/update) is owned by another service; this is read-only.
type CourseRepository interface {
	// ListCourses returns all courses joined with coach and skill names,
	// including current occupancy.
	ListCourses(ctx context.Context) ([]model.CourseListing, error)
	// GetCourseByID returns the course or nil when it does not exist.
	GetCourseByID(ctx context.Context, courseID string) (*model.Course, error)
}

type courseRepo struct {
	pool *pgxpool.Pool
}

// NewCourseRepo creates a new CourseRepository.
func NewCourseRepo(pool *pgxpool.Pool) CourseRepository {
	return &courseRepo{pool: pool}
}

const listCoursesQ = `
	SELECT
		c.id,
		u.name AS coach_name,
		s.name AS skill_name,
		c.name,
		c.description,
		c.start_at,
		c.end_at,
		c.max_participants,
		(SELECT COUNT(*)
		 FROM course_bookings b
		 WHERE b.course_id = c.id
		   AND b.status = 'pending'
		   AND b.cancelled_at IS NULL) AS occupied
	FROM courses c
	INNER JOIN users u ON u.id = c.user_id
	INNER JOIN skills s ON s.id = c.skill_id
	ORDER BY c.start_at ASC
`

func (r *courseRepo) ListCourses(ctx context.Context) ([]model.CourseListing, error) {
	rows, err := r.pool.Query(ctx, listCoursesQ)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	defer rows.Close()

	var listings []model.CourseListing
	for rows.Next() {
		var l model.CourseListing
		if err := rows.Scan(
			&l.CourseID,
			&l.CoachName,
			&l.SkillName,
			&l.Name,
			&l.Description,
			&l.StartAt,
			&l.EndAt,
			&l.MaxParticipants,
			&l.Occupied,
		); err != nil {
			return nil, fmt.Errorf("scanning course listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}

	if len(listings) == 0 {
		return []model.CourseListing{}, nil
	}
	return listings, nil
}

func (r *courseRepo) GetCourseByID(ctx context.Context, courseID string) (*model.Course, error) {
	var c model.Course
	err := r.pool.QueryRow(ctx, courseByIDQ, courseID).Scan(
		&c.CourseID,
		&c.UserID,
		&c.SkillID,
		&c.Name,
		&c.Description,
		&c.StartAt,
		&c.EndAt,
		&c.MaxParticipants,
		&c.MeetingURL,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching course %s: %w", courseID, err)
	}
	return &c, nil
}
