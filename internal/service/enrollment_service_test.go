package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"app/internal/apperr"
	"app/internal/logger"
	"app/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(store *memStore) EnrollmentService {
	return NewEnrollmentService(store, nil, EnrollmentTopics{}, logger.New())
}

func course(id string, seats int) model.Course {
	return model.Course{
		CourseID:        id,
		UserID:          "coach-1",
		SkillID:         "skill-1",
		Name:            "course " + id,
		StartAt:         time.Now().Add(24 * time.Hour),
		EndAt:           time.Now().Add(26 * time.Hour),
		MaxParticipants: seats,
	}
}

func TestBookCreatesPendingBooking(t *testing.T) {
	store := newMemStore()
	store.addCourse(course("c1", 3))
	store.addPurchase("u1", 5)
	engine := newTestEngine(store)

	bookingID, err := engine.Book(context.Background(), "u1", "c1")
	require.NoError(t, err)
	require.NotEmpty(t, bookingID)

	bookings := store.allBookings()
	require.Len(t, bookings, 1)
	b := bookings[0]
	assert.Equal(t, bookingID, b.BookingID)
	assert.Equal(t, model.BookingPending, b.Status)
	assert.False(t, b.BookedAt.IsZero())
	assert.Nil(t, b.JoinAt)
	assert.Nil(t, b.LeaveAt)
	assert.Nil(t, b.CancelledAt)
}

func TestBookCourseNotFound(t *testing.T) {
	store := newMemStore()
	store.addPurchase("u1", 5)
	engine := newTestEngine(store)

	_, err := engine.Book(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, apperr.ErrCourseNotFound)
	assert.Empty(t, store.allBookings())
}

func TestBookInsufficientCredit(t *testing.T) {
	store := newMemStore()
	store.addCourse(course("c1", 3))
	engine := newTestEngine(store)

	_, err := engine.Book(context.Background(), "u1", "c1")
	assert.ErrorIs(t, err, apperr.ErrInsufficientCredit)

	var credErr *apperr.CreditError
	require.ErrorAs(t, err, &credErr)
	assert.Equal(t, 0, credErr.Purchased)
	assert.Empty(t, store.allBookings())
}

// Funds are checked before seats: a broke user booking a full course is told
// about the credit, not the capacity.
func TestBookCheckOrderCreditBeforeCapacity(t *testing.T) {
	store := newMemStore()
	store.addCourse(course("full", 1))
	store.addPurchase("u1", 1)
	engine := newTestEngine(store)

	_, err := engine.Book(context.Background(), "u1", "full")
	require.NoError(t, err)

	_, err = engine.Book(context.Background(), "broke", "full")
	assert.ErrorIs(t, err, apperr.ErrInsufficientCredit)
}

func TestBookCourseFull(t *testing.T) {
	store := newMemStore()
	store.addCourse(course("c1", 1))
	store.addPurchase("u1", 5)
	store.addPurchase("u2", 5)
	engine := newTestEngine(store)

	_, err := engine.Book(context.Background(), "u1", "c1")
	require.NoError(t, err)

	_, err = engine.Book(context.Background(), "u2", "c1")
	assert.ErrorIs(t, err, apperr.ErrCourseFull)

	var capErr *apperr.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 1, capErr.Occupied)
	assert.Equal(t, 1, capErr.MaxParticipants)
}

func TestBookAlreadyBooked(t *testing.T) {
	store := newMemStore()
	store.addCourse(course("c1", 5))
	store.addPurchase("u1", 5)
	engine := newTestEngine(store)

	_, err := engine.Book(context.Background(), "u1", "c1")
	require.NoError(t, err)

	_, err = engine.Book(context.Background(), "u1", "c1")
	assert.ErrorIs(t, err, apperr.ErrAlreadyBooked)
	assert.Len(t, store.allBookings(), 1)
}

// A purchase of 5 credits admits exactly 5 bookings across distinct courses.
func TestCreditBalanceDrains(t *testing.T) {
	store := newMemStore()
	store.addPurchase("u1", 5)
	for i := 0; i < 6; i++ {
		store.addCourse(course(fmt.Sprintf("c%d", i), 10))
	}
	engine := newTestEngine(store)

	for i := 0; i < 5; i++ {
		_, err := engine.Book(context.Background(), "u1", fmt.Sprintf("c%d", i))
		require.NoError(t, err, "booking %d should succeed", i)
	}

	_, err := engine.Book(context.Background(), "u1", "c5")
	assert.ErrorIs(t, err, apperr.ErrInsufficientCredit)
}

func TestCancelRestoresSeatAndCredit(t *testing.T) {
	store := newMemStore()
	store.addCourse(course("c1", 1))
	store.addPurchase("u1", 1)
	engine := newTestEngine(store)

	first, err := engine.Book(context.Background(), "u1", "c1")
	require.NoError(t, err)

	reason := "schedule conflict"
	require.NoError(t, engine.Cancel(context.Background(), "u1", "c1", &reason))

	bookings := store.allBookings()
	require.Len(t, bookings, 1)
	require.NotNil(t, bookings[0].CancelledAt)
	require.NotNil(t, bookings[0].CancellationReason)
	assert.Equal(t, reason, *bookings[0].CancellationReason)

	// The freed seat and credit admit a new booking, as a new row.
	second, err := engine.Book(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Len(t, store.allBookings(), 2)
}

func TestCancelCourseNotFound(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)

	err := engine.Cancel(context.Background(), "u1", "missing", nil)
	assert.ErrorIs(t, err, apperr.ErrCourseNotFound)
}

func TestCancelTwiceReturnsNotBooked(t *testing.T) {
	store := newMemStore()
	store.addCourse(course("c1", 1))
	store.addPurchase("u1", 1)
	engine := newTestEngine(store)

	_, err := engine.Book(context.Background(), "u1", "c1")
	require.NoError(t, err)

	require.NoError(t, engine.Cancel(context.Background(), "u1", "c1", nil))
	err = engine.Cancel(context.Background(), "u1", "c1", nil)
	assert.ErrorIs(t, err, apperr.ErrNotBooked)
}

func TestCancelWithoutBooking(t *testing.T) {
	store := newMemStore()
	store.addCourse(course("c1", 1))
	engine := newTestEngine(store)

	err := engine.Cancel(context.Background(), "u1", "c1", nil)
	assert.ErrorIs(t, err, apperr.ErrNotBooked)
}

func TestCancelCompletedBookingRejected(t *testing.T) {
	store := newMemStore()
	store.addCourse(course("c1", 1))
	store.addPurchase("u1", 1)
	engine := newTestEngine(store)

	bookingID, err := engine.Book(context.Background(), "u1", "c1")
	require.NoError(t, err)
	store.completeBooking(bookingID)

	err = engine.Cancel(context.Background(), "u1", "c1", nil)
	assert.ErrorIs(t, err, apperr.ErrAlreadyTerminal)
}

// Two racing bookings for the last seat: exactly one succeeds, the other is
// told the course is full. Never two successes.
func TestConcurrentBookLastSeat(t *testing.T) {
	for round := 0; round < 50; round++ {
		store := newMemStore()
		store.addCourse(course("c1", 1))
		store.addPurchase("u1", 5)
		store.addPurchase("u2", 5)
		engine := newTestEngine(store)

		errs := make([]error, 2)
		var wg sync.WaitGroup
		for i, user := range []string{"u1", "u2"} {
			wg.Add(1)
			go func(i int, user string) {
				defer wg.Done()
				_, errs[i] = engine.Book(context.Background(), user, "c1")
			}(i, user)
		}
		wg.Wait()

		successes, fulls := 0, 0
		for _, err := range errs {
			switch {
			case err == nil:
				successes++
			case errors.Is(err, apperr.ErrCourseFull):
				fulls++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		require.Equal(t, 1, successes, "round %d", round)
		require.Equal(t, 1, fulls, "round %d", round)
	}
}

// A 5-credit balance under parallel load admits exactly 5 bookings.
func TestConcurrentBookDrainsBalance(t *testing.T) {
	store := newMemStore()
	store.addPurchase("u1", 5)
	const attempts = 8
	for i := 0; i < attempts; i++ {
		store.addCourse(course(fmt.Sprintf("c%d", i), 10))
	}
	engine := newTestEngine(store)

	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.Book(context.Background(), "u1", fmt.Sprintf("c%d", i))
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			require.ErrorIs(t, err, apperr.ErrInsufficientCredit)
		}
	}
	assert.Equal(t, 5, successes)

	active := 0
	for _, b := range store.allBookings() {
		if b.CancelledAt == nil {
			active++
		}
	}
	assert.Equal(t, 5, active)
}
