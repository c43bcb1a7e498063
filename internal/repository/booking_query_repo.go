package repository

import (
	"context"
	"errors"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingQueryRepository serves read-only booking projections. These reads
// run against the pool, not the enrollment transaction, and may briefly lag
// behind the engine's writes.
type BookingQueryRepository interface {
	// GetUserBookings returns all of a user's bookings, cancelled ones
	// included, joined with course and coach names. Newest first.
	GetUserBookings(ctx context.Context, userID string) ([]model.UserBookingView, error)
	// GetCourseRoster returns the occupancy summary and participant names
	// for a course.
	GetCourseRoster(ctx context.Context, courseID string) (*model.CourseRoster, error)
}

type bookingQueryRepo struct {
	pool *pgxpool.Pool
}

// NewBookingQueryRepo creates a new BookingQueryRepository.
func NewBookingQueryRepo(pool *pgxpool.Pool) BookingQueryRepository {
	return &bookingQueryRepo{pool: pool}
}

const userBookingsQ = `
	SELECT
		b.id,
		c.name AS course_name,
		u.name AS coach_name,
		b.status,
		c.start_at,
		c.end_at,
		c.meeting_url,
		b.booked_at,
		b.cancelled_at
	FROM course_bookings b
	INNER JOIN courses c ON c.id = b.course_id
	INNER JOIN users u ON u.id = c.user_id
	WHERE b.user_id = $1
	ORDER BY b.booked_at DESC
`

func (r *bookingQueryRepo) GetUserBookings(ctx context.Context, userID string) ([]model.UserBookingView, error) {
	rows, err := r.pool.Query(ctx, userBookingsQ, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching bookings for user %s: %w", userID, err)
	}
	defer rows.Close()

	var views []model.UserBookingView
	for rows.Next() {
		var v model.UserBookingView
		if err := rows.Scan(
			&v.BookingID,
			&v.CourseName,
			&v.CoachName,
			&v.Status,
			&v.StartAt,
			&v.EndAt,
			&v.MeetingURL,
			&v.BookedAt,
			&v.CancelledAt,
		); err != nil {
			return nil, fmt.Errorf("scanning booking for user %s: %w", userID, err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetching bookings for user %s: %w", userID, err)
	}

	if len(views) == 0 {
		return []model.UserBookingView{}, nil
	}
	return views, nil
}

const rosterQ = `
	SELECT u.name
	FROM course_bookings b
	INNER JOIN users u ON u.id = b.user_id
	WHERE b.course_id = $1
	  AND b.status = 'pending'
	  AND b.cancelled_at IS NULL
	ORDER BY b.booked_at ASC
`

func (r *bookingQueryRepo) GetCourseRoster(ctx context.Context, courseID string) (*model.CourseRoster, error) {
	var maxParticipants int
	const maxQ = `SELECT max_participants FROM courses WHERE id = $1`
	if err := r.pool.QueryRow(ctx, maxQ, courseID).Scan(&maxParticipants); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching course %s for roster: %w", courseID, err)
	}

	rows, err := r.pool.Query(ctx, rosterQ, courseID)
	if err != nil {
		return nil, fmt.Errorf("fetching roster for course %s: %w", courseID, err)
	}
	defer rows.Close()

	var participants []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning roster row for course %s: %w", courseID, err)
		}
		participants = append(participants, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetching roster for course %s: %w", courseID, err)
	}

	return &model.CourseRoster{
		CourseID:        courseID,
		MaxParticipants: maxParticipants,
		Occupied:        len(participants),
		Participants:    participants,
	}, nil
}
