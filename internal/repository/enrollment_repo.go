package repository

import (
	"context"
	"errors"
	"fmt"

	"app/internal/apperr"
	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnrollmentQueries are the reads and writes available inside one atomic
// scope. The engine evaluates all admission checks and the resulting write
// against the same implementation instance, so they observe a single
// consistent view of state.
type EnrollmentQueries interface {
	// GetCourse returns the course or nil when it does not exist.
	GetCourse(ctx context.Context, courseID string) (*model.Course, error)
	// SumPurchasedCredits totals purchased_credits over the user's purchases.
	SumPurchasedCredits(ctx context.Context, userID string) (int, error)
	// CountActiveBookings counts the user's bookings with cancelled_at null,
	// regardless of status. Each one consumes a credit.
	CountActiveBookings(ctx context.Context, userID string) (int, error)
	// CountOccupiedSeats counts pending, non-cancelled bookings for a course.
	CountOccupiedSeats(ctx context.Context, courseID string) (int, error)
	// FindActiveBooking returns the user's non-cancelled booking for the
	// course, or nil when there is none.
	FindActiveBooking(ctx context.Context, userID, courseID string) (*model.CourseBooking, error)
	// InsertBooking persists a newly created booking row.
	InsertBooking(ctx context.Context, b *model.CourseBooking) error
	// MarkBookingCancelled stamps cancelled_at and cancellation_reason on an
	// existing row.
	MarkBookingCancelled(ctx context.Context, b *model.CourseBooking) error
}

// EnrollmentStore is the persistence port injected into the enrollment
// engine. InTx runs fn inside one transaction with snapshot atomicity: the
// checks and the write in fn never interleave with another InTx on the same
// rows. A detected write conflict surfaces as apperr.ErrConflictRetryable.
type EnrollmentStore interface {
	InTx(ctx context.Context, fn func(q EnrollmentQueries) error) error
}

type enrollmentStore struct {
	pool *pgxpool.Pool
}

// NewEnrollmentStore creates the Postgres-backed EnrollmentStore.
func NewEnrollmentStore(pool *pgxpool.Pool) EnrollmentStore {
	return &enrollmentStore{pool: pool}
}

// InTx wraps fn in a serializable transaction. Serializable isolation is what
// closes the check-then-act race: two concurrent bookings for the last seat
// cannot both commit.
func (s *enrollmentStore) InTx(ctx context.Context, fn func(q EnrollmentQueries) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("starting enrollment transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(&enrollmentQueries{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("committing enrollment transaction: %w", apperr.ErrConflictRetryable)
		}
		return fmt.Errorf("committing enrollment transaction: %w", err)
	}
	return nil
}

// isSerializationFailure matches the SQLSTATEs Postgres raises when a
// serializable transaction or a row lock cannot be satisfied.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

type enrollmentQueries struct {
	tx pgx.Tx
}

const courseByIDQ = `
	SELECT id, user_id, skill_id, name, description, start_at, end_at, max_participants, meeting_url, created_at, updated_at
	FROM courses
	WHERE id = $1
`

func (q *enrollmentQueries) GetCourse(ctx context.Context, courseID string) (*model.Course, error) {
	var c model.Course
	err := q.tx.QueryRow(ctx, courseByIDQ, courseID).Scan(
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
		return nil, q.wrapConflict(fmt.Errorf("fetching course %s: %w", courseID, err))
	}
	return &c, nil
}

const sumPurchasedQ = `
	SELECT COALESCE(SUM(purchased_credits), 0)
	FROM credit_purchases
	WHERE user_id = $1
`

func (q *enrollmentQueries) SumPurchasedCredits(ctx context.Context, userID string) (int, error) {
	var total int
	if err := q.tx.QueryRow(ctx, sumPurchasedQ, userID).Scan(&total); err != nil {
		return 0, q.wrapConflict(fmt.Errorf("summing purchased credits for user %s: %w", userID, err))
	}
	return total, nil
}

const countActiveBookingsQ = `
	SELECT COUNT(*)
	FROM course_bookings
	WHERE user_id = $1
	  AND cancelled_at IS NULL
`

func (q *enrollmentQueries) CountActiveBookings(ctx context.Context, userID string) (int, error) {
	var count int
	if err := q.tx.QueryRow(ctx, countActiveBookingsQ, userID).Scan(&count); err != nil {
		return 0, q.wrapConflict(fmt.Errorf("counting active bookings for user %s: %w", userID, err))
	}
	return count, nil
}

const countOccupiedSeatsQ = `
	SELECT COUNT(*)
	FROM course_bookings
	WHERE course_id = $1
	  AND status = 'pending'
	  AND cancelled_at IS NULL
`

func (q *enrollmentQueries) CountOccupiedSeats(ctx context.Context, courseID string) (int, error) {
	var count int
	if err := q.tx.QueryRow(ctx, countOccupiedSeatsQ, courseID).Scan(&count); err != nil {
		return 0, q.wrapConflict(fmt.Errorf("counting occupied seats for course %s: %w", courseID, err))
	}
	return count, nil
}

const activeBookingQ = `
	SELECT id, user_id, course_id, status, booked_at, join_at, leave_at, cancelled_at, cancellation_reason
	FROM course_bookings
	WHERE user_id = $1
	  AND course_id = $2
	  AND cancelled_at IS NULL
`

func (q *enrollmentQueries) FindActiveBooking(ctx context.Context, userID, courseID string) (*model.CourseBooking, error) {
	var b model.CourseBooking
	err := q.tx.QueryRow(ctx, activeBookingQ, userID, courseID).Scan(
		&b.BookingID,
		&b.UserID,
		&b.CourseID,
		&b.Status,
		&b.BookedAt,
		&b.JoinAt,
		&b.LeaveAt,
		&b.CancelledAt,
		&b.CancellationReason,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, q.wrapConflict(fmt.Errorf("finding active booking for user %s course %s: %w", userID, courseID, err))
	}
	return &b, nil
}

const insertBookingQ = `
	INSERT INTO course_bookings (id, user_id, course_id, status, booked_at)
	VALUES ($1, $2, $3, $4, $5)
`

func (q *enrollmentQueries) InsertBooking(ctx context.Context, b *model.CourseBooking) error {
	_, err := q.tx.Exec(ctx, insertBookingQ, b.BookingID, b.UserID, b.CourseID, b.Status, b.BookedAt)
	if err != nil {
		return q.wrapConflict(fmt.Errorf("inserting booking %s: %w", b.BookingID, err))
	}
	return nil
}

const cancelBookingQ = `
	UPDATE course_bookings
	SET cancelled_at = $2, cancellation_reason = $3
	WHERE id = $1
	  AND cancelled_at IS NULL
`

func (q *enrollmentQueries) MarkBookingCancelled(ctx context.Context, b *model.CourseBooking) error {
	tag, err := q.tx.Exec(ctx, cancelBookingQ, b.BookingID, b.CancelledAt, b.CancellationReason)
	if err != nil {
		return q.wrapConflict(fmt.Errorf("cancelling booking %s: %w", b.BookingID, err))
	}
	// The row was found inside this same transaction; affecting zero rows
	// here would mean the snapshot lied.
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cancelling booking %s: row vanished mid-transaction", b.BookingID)
	}
	return nil
}

// wrapConflict converts serialization failures raised on individual
// statements, not just at commit.
func (q *enrollmentQueries) wrapConflict(err error) error {
	if isSerializationFailure(err) {
		return fmt.Errorf("%w: %v", apperr.ErrConflictRetryable, err)
	}
	return err
}
