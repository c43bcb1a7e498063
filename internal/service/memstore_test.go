package service

import (
	"context"
	"sync"

	"app/internal/model"
	"app/internal/repository"
)

// memStore is an in-memory EnrollmentStore for deterministic engine tests.
// A single mutex held across the whole InTx body gives the same snapshot
// atomicity the Postgres store gets from serializable isolation. Writes are
// staged and applied only when fn succeeds, so a failed operation leaves no
// partial state behind.
type memStore struct {
	mu        sync.Mutex
	courses   map[string]model.Course
	purchased map[string]int // userID -> total purchased credits
	bookings  []model.CourseBooking
}

func newMemStore() *memStore {
	return &memStore{
		courses:   make(map[string]model.Course),
		purchased: make(map[string]int),
	}
}

func (m *memStore) addCourse(c model.Course) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[c.CourseID] = c
}

func (m *memStore) addPurchase(userID string, credits int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purchased[userID] += credits
}

func (m *memStore) allBookings() []model.CourseBooking {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.CourseBooking, len(m.bookings))
	copy(out, m.bookings)
	return out
}

// completeBooking simulates the session-tracking collaborator driving a
// booking to its completed state.
func (m *memStore) completeBooking(bookingID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.bookings {
		if m.bookings[i].BookingID == bookingID {
			m.bookings[i].Status = model.BookingCompleted
		}
	}
}

func (m *memStore) InTx(_ context.Context, fn func(q repository.EnrollmentQueries) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := &memQueries{store: m}
	if err := fn(q); err != nil {
		return err
	}

	// Commit staged writes.
	m.bookings = append(m.bookings, q.inserted...)
	for _, c := range q.cancelled {
		for i := range m.bookings {
			if m.bookings[i].BookingID == c.BookingID {
				m.bookings[i].CancelledAt = c.CancelledAt
				m.bookings[i].CancellationReason = c.CancellationReason
			}
		}
	}
	return nil
}

type memQueries struct {
	store     *memStore
	inserted  []model.CourseBooking
	cancelled []model.CourseBooking
}

func (q *memQueries) GetCourse(_ context.Context, courseID string) (*model.Course, error) {
	c, ok := q.store.courses[courseID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (q *memQueries) SumPurchasedCredits(_ context.Context, userID string) (int, error) {
	return q.store.purchased[userID], nil
}

func (q *memQueries) CountActiveBookings(_ context.Context, userID string) (int, error) {
	count := 0
	for _, b := range q.store.bookings {
		if b.UserID == userID && b.CancelledAt == nil {
			count++
		}
	}
	return count, nil
}

func (q *memQueries) CountOccupiedSeats(_ context.Context, courseID string) (int, error) {
	count := 0
	for _, b := range q.store.bookings {
		if b.CourseID == courseID && b.Status == model.BookingPending && b.CancelledAt == nil {
			count++
		}
	}
	return count, nil
}

func (q *memQueries) FindActiveBooking(_ context.Context, userID, courseID string) (*model.CourseBooking, error) {
	for _, b := range q.store.bookings {
		if b.UserID == userID && b.CourseID == courseID && b.CancelledAt == nil {
			found := b
			return &found, nil
		}
	}
	return nil, nil
}

func (q *memQueries) InsertBooking(_ context.Context, b *model.CourseBooking) error {
	q.inserted = append(q.inserted, *b)
	return nil
}

func (q *memQueries) MarkBookingCancelled(_ context.Context, b *model.CourseBooking) error {
	q.cancelled = append(q.cancelled, *b)
	return nil
}
