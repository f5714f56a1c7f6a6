package view

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rentease/gateway/internal/rentease"
)

// Mutation errors surfaced to handlers.
var (
	// ErrMutationPending is returned when a mutation targets a property
	// that already has a mutation in flight. Mutations on a record are
	// serialized rather than queued; callers retry once the first settles.
	ErrMutationPending = errors.New("a mutation is already in flight for this property")

	// ErrUnknownProperty is returned when a mutation targets a property
	// that is not part of the current view.
	ErrUnknownProperty = errors.New("property not present in the current view")

	// ErrUnknownBooking is returned when a cancellation targets a booking
	// the tenant does not hold.
	ErrUnknownBooking = errors.New("booking not present in the current view")
)

// StateConflictError is returned when a booking request is rejected before
// any network call because the tenant already holds a live booking for the
// property.
type StateConflictError struct {
	PropertyID int64
	Status     rentease.BookingStatus
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("property %d already has a %s booking for this tenant", e.PropertyID, e.Status)
}

// SnapshotStore persists the last merged view per user so that a view can
// still render (marked stale) when the backend is unreachable.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, userID int64, records []Record, fetchedAt time.Time) error
	LoadSnapshot(ctx context.Context, userID int64) ([]Record, time.Time, error)
}

// FetchFunc retrieves the collections for one refresh cycle.
type FetchFunc func(ctx context.Context) (Collections, error)

// Store holds the merged view records for one user and applies optimistic
// mutations against them. All state is guarded by a single mutex; the lock
// is never held across a network call.
type Store struct {
	client    *rentease.Client
	fetch     FetchFunc
	user      rentease.User
	snapshots SnapshotStore

	mu        sync.Mutex
	records   []Record
	bookings  []rentease.Booking
	pending   map[int64]bool
	fetchedAt time.Time
	stale     bool
}

// NewStore creates a store for the given user. snapshots may be nil to
// disable the offline cache.
func NewStore(client *rentease.Client, fetch FetchFunc, user rentease.User, snapshots SnapshotStore) *Store {
	return &Store{
		client:    client,
		fetch:     fetch,
		user:      user,
		snapshots: snapshots,
		pending:   make(map[int64]bool),
	}
}

// User returns the user this store belongs to.
func (s *Store) User() rentease.User {
	return s.user
}

// Refresh fetches the collections, merges them, and swaps in the new
// records. A refresh whose context was cancelled while in flight is
// discarded so a dismissed view cannot overwrite newer state.
func (s *Store) Refresh(ctx context.Context) error {
	cols, err := s.fetch(ctx)
	if err != nil {
		s.restoreFromSnapshot(ctx, err)
		return err
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	records := Merge(cols.Properties, cols.Favorites, cols.Bookings)
	now := time.Now().UTC()

	s.mu.Lock()
	s.records = records
	s.bookings = cols.Bookings
	s.fetchedAt = now
	s.stale = false
	s.mu.Unlock()

	if s.snapshots != nil {
		if err := s.snapshots.SaveSnapshot(ctx, s.user.ID, records, now); err != nil {
			log.Printf("Failed to save view snapshot for user %d: %v", s.user.ID, err)
		}
	}

	return nil
}

// restoreFromSnapshot loads the cached view after a failed refresh, but only
// when the store holds nothing yet. An already-populated store keeps its
// current records.
func (s *Store) restoreFromSnapshot(ctx context.Context, cause error) {
	if s.snapshots == nil {
		return
	}

	s.mu.Lock()
	empty := s.records == nil
	s.mu.Unlock()
	if !empty {
		return
	}

	records, fetchedAt, err := s.snapshots.LoadSnapshot(ctx, s.user.ID)
	if err != nil || records == nil {
		return
	}

	log.Printf("View refresh failed for user %d, serving snapshot from %s: %v",
		s.user.ID, fetchedAt.Format(time.RFC3339), cause)

	s.mu.Lock()
	if s.records == nil {
		s.records = records
		s.fetchedAt = fetchedAt
		s.stale = true
	}
	s.mu.Unlock()
}

// Records returns a copy of the current view records together with the fetch
// time and whether the data came from the offline snapshot.
func (s *Store) Records() ([]Record, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, s.fetchedAt, s.stale
}

// Record returns the current record for a property.
func (s *Store) Record(propertyID int64) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.ID == propertyID {
			return r, true
		}
	}
	return Record{}, false
}

// Bookings returns a copy of the tenant's bookings as of the last refresh.
func (s *Store) Bookings() []rentease.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]rentease.Booking, len(s.bookings))
	copy(out, s.bookings)
	return out
}

// ToggleFavorite optimistically flips the favorite flag for a property, then
// reconciles with the backend. On failure the flag is restored to its
// pre-mutation value and the error is returned for the caller to surface.
func (s *Store) ToggleFavorite(ctx context.Context, propertyID int64) (Record, error) {
	s.mu.Lock()
	if s.pending[propertyID] {
		s.mu.Unlock()
		return Record{}, ErrMutationPending
	}

	idx := s.indexLocked(propertyID)
	if idx < 0 {
		s.mu.Unlock()
		return Record{}, ErrUnknownProperty
	}

	wasFavorited := s.records[idx].IsFavorited
	s.records[idx].IsFavorited = !wasFavorited
	s.pending[propertyID] = true
	s.mu.Unlock()

	var err error
	if wasFavorited {
		err = s.client.RemoveFavorite(ctx, s.user.ID, propertyID)
	} else {
		err = s.client.AddFavorite(ctx, s.user.ID, propertyID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, propertyID)

	// Look the record up again: a refresh may have replaced the slice
	// while the request was in flight.
	idx = s.indexLocked(propertyID)
	if idx < 0 {
		return Record{}, err
	}

	if err != nil {
		s.records[idx].IsFavorited = wasFavorited
		return s.records[idx], err
	}

	s.records[idx].IsFavorited = !wasFavorited
	return s.records[idx], nil
}

// RequestBooking creates a booking for a property. The request is rejected
// with a StateConflictError before any network call when the tenant already
// holds a PENDING or APPROVED booking for the property. The record's booking
// status is set optimistically and rolled back on failure.
func (s *Store) RequestBooking(ctx context.Context, propertyID int64) (*rentease.Booking, error) {
	s.mu.Lock()
	if s.pending[propertyID] {
		s.mu.Unlock()
		return nil, ErrMutationPending
	}

	idx := s.indexLocked(propertyID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, ErrUnknownProperty
	}

	for _, b := range s.bookings {
		if b.Property.ID == propertyID &&
			(b.Status == rentease.BookingPending || b.Status == rentease.BookingApproved) {
			status := b.Status
			s.mu.Unlock()
			return nil, &StateConflictError{PropertyID: propertyID, Status: status}
		}
	}

	prior := s.records[idx].BookingStatus
	pending := rentease.BookingPending
	s.records[idx].BookingStatus = &pending
	s.pending[propertyID] = true
	s.mu.Unlock()

	booking, err := s.client.CreateBooking(ctx, rentease.BookingRequest{
		PropertyID: propertyID,
		TenantID:   s.user.ID,
		StartDate:  rentease.Today(),
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, propertyID)

	idx = s.indexLocked(propertyID)
	if err != nil {
		if idx >= 0 {
			s.records[idx].BookingStatus = prior
		}
		return nil, err
	}

	s.bookings = append(s.bookings, *booking)
	if idx >= 0 {
		status := booking.Status
		s.records[idx].BookingStatus = &status
	}
	return booking, nil
}

// CancelBooking optimistically removes a booking and clears the property's
// booking badge, restoring both when the backend rejects the cancellation.
func (s *Store) CancelBooking(ctx context.Context, bookingID int64) error {
	s.mu.Lock()
	bookingIdx := -1
	for i, b := range s.bookings {
		if b.ID == bookingID {
			bookingIdx = i
			break
		}
	}
	if bookingIdx < 0 {
		s.mu.Unlock()
		return ErrUnknownBooking
	}

	removed := s.bookings[bookingIdx]
	propertyID := removed.Property.ID
	if s.pending[propertyID] {
		s.mu.Unlock()
		return ErrMutationPending
	}

	s.bookings = append(s.bookings[:bookingIdx], s.bookings[bookingIdx+1:]...)
	if idx := s.indexLocked(propertyID); idx >= 0 {
		s.records[idx].BookingStatus = statusForProperty(s.bookings, propertyID)
	}
	s.pending[propertyID] = true
	s.mu.Unlock()

	err := s.client.CancelBooking(ctx, bookingID)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, propertyID)

	if err != nil {
		s.bookings = append(s.bookings, removed)
		if idx := s.indexLocked(propertyID); idx >= 0 {
			s.records[idx].BookingStatus = statusForProperty(s.bookings, propertyID)
		}
		return err
	}
	return nil
}

// DeleteListing optimistically removes a property from the view, restoring
// it in place when the backend rejects the deletion. Used by landlord views,
// where the store's user owns the listings.
func (s *Store) DeleteListing(ctx context.Context, propertyID int64) error {
	s.mu.Lock()
	if s.pending[propertyID] {
		s.mu.Unlock()
		return ErrMutationPending
	}

	idx := s.indexLocked(propertyID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrUnknownProperty
	}

	removed := s.records[idx]
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	s.pending[propertyID] = true
	s.mu.Unlock()

	err := s.client.DeleteProperty(ctx, propertyID, s.user.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, propertyID)

	if err != nil {
		if idx > len(s.records) {
			idx = len(s.records)
		}
		s.records = append(s.records[:idx], append([]Record{removed}, s.records[idx:]...)...)
		return err
	}
	return nil
}

// indexLocked returns the position of a property in the record slice, or -1.
// Callers must hold the mutex.
func (s *Store) indexLocked(propertyID int64) int {
	for i, r := range s.records {
		if r.ID == propertyID {
			return i
		}
	}
	return -1
}
