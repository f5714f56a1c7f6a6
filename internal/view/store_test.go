package view

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rentease/gateway/internal/rentease"
)

// fakeSnapshots is an in-memory SnapshotStore for tests.
type fakeSnapshots struct {
	records   []Record
	fetchedAt time.Time
	saves     int
}

func (f *fakeSnapshots) SaveSnapshot(ctx context.Context, userID int64, records []Record, fetchedAt time.Time) error {
	f.records = records
	f.fetchedAt = fetchedAt
	f.saves++
	return nil
}

func (f *fakeSnapshots) LoadSnapshot(ctx context.Context, userID int64) ([]Record, time.Time, error) {
	return f.records, f.fetchedAt, nil
}

// newTestStore builds a store whose client talks to the given handler and
// whose fetch returns the given collections. The store is refreshed once so
// mutations have records to operate on.
func newTestStore(t *testing.T, handler http.Handler, cols Collections) (*Store, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := rentease.NewClient(rentease.Config{
		BaseURL: server.URL,
		Timeout: 2 * time.Second,
	}, nil)

	fetch := func(ctx context.Context) (Collections, error) {
		return cols, nil
	}
	user := rentease.User{ID: 7, Role: rentease.RoleTenant}
	store := NewStore(client, fetch, user, nil)

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("initial refresh failed: %v", err)
	}
	return store, server
}

func testCollections() Collections {
	return Collections{
		Properties: []rentease.Property{
			property(1, "Studio downtown"),
			property(2, "Two-bedroom flat"),
		},
	}
}

func TestToggleFavoriteCommit(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users/7/favorites" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})
	store, _ := newTestStore(t, handler, testCollections())

	record, err := store.ToggleFavorite(context.Background(), 1)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !record.IsFavorited {
		t.Error("record should be favorited after toggle")
	}

	got, ok := store.Record(1)
	if !ok || !got.IsFavorited {
		t.Error("store should hold the committed favorite flag")
	}
}

func TestToggleFavoriteRollback(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "favorites unavailable", http.StatusInternalServerError)
	})
	store, _ := newTestStore(t, handler, testCollections())

	record, err := store.ToggleFavorite(context.Background(), 1)
	if err == nil {
		t.Fatal("expected an error from the rejected toggle")
	}
	var httpErr *rentease.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != http.StatusInternalServerError {
		t.Errorf("expected HTTPError with status 500, got %v", err)
	}
	if record.IsFavorited {
		t.Error("favorite flag should be rolled back after failure")
	}

	got, _ := store.Record(1)
	if got.IsFavorited {
		t.Error("store should hold the restored favorite flag")
	}
}

func TestToggleFavoriteKeepsBookingStatus(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	cols := testCollections()
	cols.Bookings = []rentease.Booking{booking(10, 1, rentease.BookingApproved)}
	store, _ := newTestStore(t, handler, cols)

	if _, err := store.ToggleFavorite(context.Background(), 1); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	record, _ := store.Record(1)
	if record.BookingStatus == nil || *record.BookingStatus != rentease.BookingApproved {
		t.Errorf("toggling a favorite must not touch the booking status, got %v", record.BookingStatus)
	}
}

func TestRequestBookingCommit(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/bookings" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":10,"status":"PENDING","startDate":"2026-09-01","property":{"id":1}}`))
	})
	store, _ := newTestStore(t, handler, testCollections())

	booking, err := store.RequestBooking(context.Background(), 1)
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if booking.ID != 10 || booking.Status != rentease.BookingPending {
		t.Errorf("unexpected booking: id=%d status=%s", booking.ID, booking.Status)
	}

	record, _ := store.Record(1)
	if record.BookingStatus == nil || *record.BookingStatus != rentease.BookingPending {
		t.Errorf("record should carry PENDING status, got %v", record.BookingStatus)
	}
	if len(store.Bookings()) != 1 {
		t.Errorf("expected 1 tracked booking, got %d", len(store.Bookings()))
	}
}

func TestRequestBookingRollback(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "booking rejected", http.StatusBadRequest)
	})
	store, _ := newTestStore(t, handler, testCollections())

	if _, err := store.RequestBooking(context.Background(), 1); err == nil {
		t.Fatal("expected an error from the rejected booking")
	}

	record, _ := store.Record(1)
	if record.BookingStatus != nil {
		t.Errorf("booking status should be rolled back to nil, got %v", *record.BookingStatus)
	}
	if len(store.Bookings()) != 0 {
		t.Errorf("rejected booking must not be tracked, got %d", len(store.Bookings()))
	}
}

func TestRequestBookingConflictSkipsNetwork(t *testing.T) {
	var requests int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		w.WriteHeader(http.StatusOK)
	})

	cols := testCollections()
	cols.Bookings = []rentease.Booking{booking(10, 1, rentease.BookingApproved)}
	store, _ := newTestStore(t, handler, cols)

	_, err := store.RequestBooking(context.Background(), 1)

	var conflict *StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
	if conflict.PropertyID != 1 || conflict.Status != rentease.BookingApproved {
		t.Errorf("unexpected conflict details: %+v", conflict)
	}
	if n := atomic.LoadInt64(&requests); n != 0 {
		t.Errorf("conflict must be detected before any network call, saw %d requests", n)
	}
}

func TestRequestBookingAllowedAfterCancelledBooking(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":11,"status":"PENDING","property":{"id":1}}`))
	})

	cols := testCollections()
	cols.Bookings = []rentease.Booking{booking(10, 1, rentease.BookingCancelled)}
	store, _ := newTestStore(t, handler, cols)

	if _, err := store.RequestBooking(context.Background(), 1); err != nil {
		t.Fatalf("a cancelled booking must not block a new request: %v", err)
	}
}

func TestMutationPendingGuard(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	cols := testCollections()
	cols.Bookings = []rentease.Booking{booking(10, 1, rentease.BookingApproved)}
	store, _ := newTestStore(t, handler, cols)

	store.mu.Lock()
	store.pending[1] = true
	store.mu.Unlock()

	if _, err := store.ToggleFavorite(context.Background(), 1); !errors.Is(err, ErrMutationPending) {
		t.Errorf("ToggleFavorite: expected ErrMutationPending, got %v", err)
	}
	if _, err := store.RequestBooking(context.Background(), 1); !errors.Is(err, ErrMutationPending) {
		t.Errorf("RequestBooking: expected ErrMutationPending, got %v", err)
	}
	if err := store.CancelBooking(context.Background(), 10); !errors.Is(err, ErrMutationPending) {
		t.Errorf("CancelBooking: expected ErrMutationPending, got %v", err)
	}

	// Other properties stay mutable while one is in flight.
	if _, err := store.ToggleFavorite(context.Background(), 2); err != nil {
		t.Errorf("mutation on an unrelated property should succeed, got %v", err)
	}
}

func TestCancelBookingCommit(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/bookings/10" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	cols := testCollections()
	cols.Bookings = []rentease.Booking{booking(10, 1, rentease.BookingApproved)}
	store, _ := newTestStore(t, handler, cols)

	if err := store.CancelBooking(context.Background(), 10); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if len(store.Bookings()) != 0 {
		t.Errorf("booking should be removed, got %d", len(store.Bookings()))
	}

	record, _ := store.Record(1)
	if record.BookingStatus != nil {
		t.Errorf("booking badge should be cleared, got %v", *record.BookingStatus)
	}
}

func TestCancelBookingRollback(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "cannot cancel", http.StatusConflict)
	})

	cols := testCollections()
	cols.Bookings = []rentease.Booking{booking(10, 1, rentease.BookingApproved)}
	store, _ := newTestStore(t, handler, cols)

	if err := store.CancelBooking(context.Background(), 10); err == nil {
		t.Fatal("expected an error from the rejected cancellation")
	}
	if len(store.Bookings()) != 1 {
		t.Errorf("booking should be restored, got %d", len(store.Bookings()))
	}

	record, _ := store.Record(1)
	if record.BookingStatus == nil || *record.BookingStatus != rentease.BookingApproved {
		t.Errorf("booking badge should be restored to APPROVED, got %v", record.BookingStatus)
	}
}

func TestDeleteListingRollbackKeepsPosition(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not yours", http.StatusForbidden)
	})
	store, _ := newTestStore(t, handler, testCollections())

	if err := store.DeleteListing(context.Background(), 1); err == nil {
		t.Fatal("expected an error from the rejected deletion")
	}

	records, _, _ := store.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records after rollback, got %d", len(records))
	}
	if records[0].ID != 1 || records[1].ID != 2 {
		t.Errorf("record order not preserved after rollback: %d, %d", records[0].ID, records[1].ID)
	}
}

func TestUnknownMutationTargets(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	store, _ := newTestStore(t, handler, testCollections())

	if _, err := store.ToggleFavorite(context.Background(), 99); !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("expected ErrUnknownProperty, got %v", err)
	}
	if err := store.CancelBooking(context.Background(), 99); !errors.Is(err, ErrUnknownBooking) {
		t.Errorf("expected ErrUnknownBooking, got %v", err)
	}
}

func TestRefreshDiscardsCancelledContext(t *testing.T) {
	client := rentease.NewClient(rentease.Config{BaseURL: "http://localhost:0"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	fetch := func(ctx context.Context) (Collections, error) {
		cancel()
		return testCollections(), nil
	}
	store := NewStore(client, fetch, rentease.User{ID: 7}, nil)

	if err := store.Refresh(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	records, _, _ := store.Records()
	if len(records) != 0 {
		t.Errorf("a cancelled refresh must not populate the store, got %d records", len(records))
	}
}

func TestRefreshServesSnapshotWhenBackendDown(t *testing.T) {
	client := rentease.NewClient(rentease.Config{BaseURL: "http://localhost:0"}, nil)

	snapshots := &fakeSnapshots{
		records:   []Record{{Property: property(1, "Studio")}},
		fetchedAt: time.Now().Add(-time.Hour).UTC(),
	}
	fetchErr := errors.New("backend unreachable")
	fetch := func(ctx context.Context) (Collections, error) {
		return Collections{}, fetchErr
	}
	store := NewStore(client, fetch, rentease.User{ID: 7}, snapshots)

	if err := store.Refresh(context.Background()); !errors.Is(err, fetchErr) {
		t.Fatalf("expected the fetch error, got %v", err)
	}

	records, fetchedAt, stale := store.Records()
	if len(records) != 1 {
		t.Fatalf("expected the snapshot record, got %d records", len(records))
	}
	if !stale {
		t.Error("snapshot-backed records must be marked stale")
	}
	if !fetchedAt.Equal(snapshots.fetchedAt) {
		t.Errorf("fetchedAt should come from the snapshot, got %v", fetchedAt)
	}
}

func TestRefreshFailureKeepsCurrentRecords(t *testing.T) {
	snapshots := &fakeSnapshots{}
	cols := testCollections()
	failing := false
	fetch := func(ctx context.Context) (Collections, error) {
		if failing {
			return Collections{}, errors.New("backend unreachable")
		}
		return cols, nil
	}
	client := rentease.NewClient(rentease.Config{BaseURL: "http://localhost:0"}, nil)
	store := NewStore(client, fetch, rentease.User{ID: 7}, snapshots)

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("initial refresh failed: %v", err)
	}
	if snapshots.saves != 1 {
		t.Errorf("successful refresh should save a snapshot, saves=%d", snapshots.saves)
	}

	failing = true
	if err := store.Refresh(context.Background()); err == nil {
		t.Fatal("expected the refresh to fail")
	}

	records, _, stale := store.Records()
	if len(records) != 2 {
		t.Errorf("populated store should keep its records, got %d", len(records))
	}
	if stale {
		t.Error("live records must not be marked stale after a failed refresh")
	}
}
