package service

import (
	"context"
	"fmt"

	"app/internal/apperr"
	"app/internal/model"
	"app/internal/repository"
)

// BookingQueryService serves the read-only enrollment projections consumed by
// the presentation layer. It enforces no invariants.
type BookingQueryService interface {
	// ListCourses returns the public course catalog with occupancy.
	ListCourses(ctx context.Context) ([]model.CourseListing, error)
	// GetUserBookings returns the user's bookings, cancelled ones included.
	GetUserBookings(ctx context.Context, userID string) ([]model.UserBookingView, error)
	// GetCourseRoster returns the occupancy summary for a course.
	GetCourseRoster(ctx context.Context, courseID string) (*model.CourseRoster, error)
	// GetRemainingCredit returns the user's derived credit balance.
	GetRemainingCredit(ctx context.Context, userID string) (*model.CreditBalance, error)
}

type bookingQueryService struct {
	courses  repository.CourseRepository
	bookings repository.BookingQueryRepository
	ledger   repository.LedgerRepository
}

// NewBookingQueryService creates a new BookingQueryService.
func NewBookingQueryService(
	courses repository.CourseRepository,
	bookings repository.BookingQueryRepository,
	ledger repository.LedgerRepository,
) BookingQueryService {
	return &bookingQueryService{courses: courses, bookings: bookings, ledger: ledger}
}

func (s *bookingQueryService) ListCourses(ctx context.Context) ([]model.CourseListing, error) {
	return s.courses.ListCourses(ctx)
}

func (s *bookingQueryService) GetUserBookings(ctx context.Context, userID string) ([]model.UserBookingView, error) {
	return s.bookings.GetUserBookings(ctx, userID)
}

func (s *bookingQueryService) GetCourseRoster(ctx context.Context, courseID string) (*model.CourseRoster, error) {
	roster, err := s.bookings.GetCourseRoster(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if roster == nil {
		return nil, fmt.Errorf("roster for course %s: %w", courseID, apperr.ErrCourseNotFound)
	}
	return roster, nil
}

func (s *bookingQueryService) GetRemainingCredit(ctx context.Context, userID string) (*model.CreditBalance, error) {
	return s.ledger.GetBalance(ctx, userID)
}
