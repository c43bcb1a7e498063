package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"app/internal/apperr"
	"app/internal/model"
	"app/internal/pubsub"
	"app/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EnrollmentService is the admission-control engine. It is the only writer of
// course_bookings: every seat taken and every credit consumed goes through
// Book, every release through Cancel.
type EnrollmentService interface {
	// Book reserves a seat in the course for the user and returns the new
	// booking ID. Checks run in order: course exists, credit, capacity,
	// duplicate. All checks and the insert share one atomic scope.
	Book(ctx context.Context, userID, courseID string) (string, error)
	// Cancel releases the user's active booking for the course, stamping
	// cancelled_at and the optional reason. The freed seat and credit become
	// usable immediately.
	Cancel(ctx context.Context, userID, courseID string, reason *string) error
}

// Topics consumed by the session-tracking collaborator.
type EnrollmentTopics struct {
	Booked    string
	Cancelled string
}

type enrollmentService struct {
	store  repository.EnrollmentStore
	pub    pubsub.Publisher
	topics EnrollmentTopics
	logger zerolog.Logger
	now    func() time.Time
}

// NewEnrollmentService creates the engine. pub may be nil when event
// publishing is disabled (e.g. in tests).
func NewEnrollmentService(store repository.EnrollmentStore, pub pubsub.Publisher, topics EnrollmentTopics, logger zerolog.Logger) EnrollmentService {
	return &enrollmentService{
		store:  store,
		pub:    pub,
		topics: topics,
		logger: logger,
		now:    time.Now,
	}
}

type enrollmentEvent struct {
	BookingID string    `json:"booking_id"`
	UserID    string    `json:"user_id"`
	CourseID  string    `json:"course_id"`
	At        time.Time `json:"at"`
}

func (s *enrollmentService) Book(ctx context.Context, userID, courseID string) (string, error) {
	booking := &model.CourseBooking{
		BookingID: uuid.NewString(),
		UserID:    userID,
		CourseID:  courseID,
		Status:    model.BookingPending,
		BookedAt:  s.now(),
	}

	err := s.store.InTx(ctx, func(q repository.EnrollmentQueries) error {
		course, err := q.GetCourse(ctx, courseID)
		if err != nil {
			return err
		}
		if course == nil {
			return fmt.Errorf("booking course %s: %w", courseID, apperr.ErrCourseNotFound)
		}

		purchased, err := q.SumPurchasedCredits(ctx, userID)
		if err != nil {
			return err
		}
		used, err := q.CountActiveBookings(ctx, userID)
		if err != nil {
			return err
		}
		if purchased-used <= 0 {
			return &apperr.CreditError{UserID: userID, Purchased: purchased, Used: used}
		}

		occupied, err := q.CountOccupiedSeats(ctx, courseID)
		if err != nil {
			return err
		}
		if occupied >= course.MaxParticipants {
			return &apperr.CapacityError{CourseID: courseID, MaxParticipants: course.MaxParticipants, Occupied: occupied}
		}

		existing, err := q.FindActiveBooking(ctx, userID, courseID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("booking course %s for user %s: %w", courseID, userID, apperr.ErrAlreadyBooked)
		}

		return q.InsertBooking(ctx, booking)
	})
	if err != nil {
		return "", err
	}

	s.logger.Info().
		Str("booking_id", booking.BookingID).
		Str("user_id", userID).
		Str("course_id", courseID).
		Msg("booking created")
	s.publish(ctx, s.topics.Booked, booking)
	return booking.BookingID, nil
}

func (s *enrollmentService) Cancel(ctx context.Context, userID, courseID string, reason *string) error {
	var cancelled *model.CourseBooking

	err := s.store.InTx(ctx, func(q repository.EnrollmentQueries) error {
		course, err := q.GetCourse(ctx, courseID)
		if err != nil {
			return err
		}
		if course == nil {
			return fmt.Errorf("cancelling booking for course %s: %w", courseID, apperr.ErrCourseNotFound)
		}

		booking, err := q.FindActiveBooking(ctx, userID, courseID)
		if err != nil {
			return err
		}
		if booking == nil {
			return fmt.Errorf("cancelling booking for user %s course %s: %w", userID, courseID, apperr.ErrNotBooked)
		}

		if err := booking.Cancel(s.now(), reason); err != nil {
			return err
		}
		if err := q.MarkBookingCancelled(ctx, booking); err != nil {
			return err
		}
		cancelled = booking
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("booking_id", cancelled.BookingID).
		Str("user_id", userID).
		Str("course_id", courseID).
		Msg("booking cancelled")
	s.publish(ctx, s.topics.Cancelled, cancelled)
	return nil
}

// publish emits the event after commit, best effort. A lost event never rolls
// back an enrollment; the session tracker reconciles from storage.
func (s *enrollmentService) publish(ctx context.Context, topic string, b *model.CourseBooking) {
	if s.pub == nil || topic == "" {
		return
	}
	payload, err := json.Marshal(enrollmentEvent{
		BookingID: b.BookingID,
		UserID:    b.UserID,
		CourseID:  b.CourseID,
		At:        s.now(),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("topic", topic).Msg("failed to encode enrollment event")
		return
	}
	if _, err := s.pub.Publish(ctx, topic, payload); err != nil {
		s.logger.Error().Err(err).Str("topic", topic).Str("booking_id", b.BookingID).Msg("failed to publish enrollment event")
	}
}
