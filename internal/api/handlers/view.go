package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/rentease/gateway/internal/api/middleware"
	"github.com/rentease/gateway/internal/rentease"
	"github.com/rentease/gateway/internal/view"
	"github.com/rentease/gateway/internal/websocket"
)

// ViewResponse is the merged view returned to the UI.
type ViewResponse struct {
	Records   []view.Record `json:"records"`
	FetchedAt time.Time     `json:"fetchedAt"`
	Stale     bool          `json:"stale"`
}

// GetView returns the merged property view for the current user (or the
// anonymous view when no session is attached). The first request for a user
// triggers a fetch cycle; later requests serve the store's current records.
func GetView(registry *view.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := storeFor(registry, r)

		records, fetchedAt, stale := store.Records()
		if fetchedAt.IsZero() {
			if err := store.Refresh(r.Context()); err != nil {
				records, fetchedAt, stale = store.Records()
				if fetchedAt.IsZero() {
					middleware.WriteDomainError(w, err)
					return
				}
				// Snapshot restored; fall through and serve it stale.
			} else {
				records, fetchedAt, stale = store.Records()
			}
		}

		writeJSON(w, ViewResponse{Records: records, FetchedAt: fetchedAt, Stale: stale})
	}
}

// RefreshView forces a fetch-and-merge cycle for the current user.
func RefreshView(registry *view.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := storeFor(registry, r)

		if err := store.Refresh(r.Context()); err != nil {
			middleware.WriteDomainError(w, err)
			return
		}

		records, fetchedAt, stale := store.Records()
		writeJSON(w, ViewResponse{Records: records, FetchedAt: fetchedAt, Stale: stale})
	}
}

// ToggleFavorite optimistically flips a property's favorite flag for the
// signed-in tenant.
func ToggleFavorite(registry *view.Registry, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := middleware.SessionFrom(r)
		if !ok {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "Sign in to favorite properties")
			return
		}

		propertyID, err := pathID(r, "id")
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid property ID")
			return
		}

		store := registry.ForUser(s.User)
		record, err := store.ToggleFavorite(r.Context(), propertyID)
		if err != nil {
			if rolledBack(err) && broadcaster != nil {
				broadcaster.MutationRolledBack(s.User.ID, propertyID, "toggle_favorite", err)
			}
			middleware.WriteDomainError(w, err)
			return
		}

		writeJSON(w, record)
	}
}

// RequestBooking creates a booking for the signed-in tenant. Requests for a
// property the tenant already holds a live booking on are rejected before
// any backend call.
func RequestBooking(registry *view.Registry, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := middleware.SessionFrom(r)
		if !ok {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "Sign in to book properties")
			return
		}

		var req struct {
			PropertyID int64 `json:"propertyId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PropertyID == 0 {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "propertyId is required")
			return
		}

		store := registry.ForUser(s.User)
		booking, err := store.RequestBooking(r.Context(), req.PropertyID)
		if err != nil {
			if rolledBack(err) && broadcaster != nil {
				broadcaster.MutationRolledBack(s.User.ID, req.PropertyID, "request_booking", err)
			}
			middleware.WriteDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(booking)
	}
}

// ListBookings returns the signed-in tenant's bookings as of the last fetch.
func ListBookings(registry *view.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := middleware.SessionFrom(r)
		if !ok {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "Sign in to view bookings")
			return
		}

		store := registry.ForUser(s.User)
		if _, fetchedAt, _ := store.Records(); fetchedAt.IsZero() {
			if err := store.Refresh(r.Context()); err != nil {
				middleware.WriteDomainError(w, err)
				return
			}
		}

		bookings := store.Bookings()
		if bookings == nil {
			bookings = []rentease.Booking{}
		}
		writeJSON(w, bookings)
	}
}

// CancelBooking optimistically cancels one of the tenant's bookings.
func CancelBooking(registry *view.Registry, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := middleware.SessionFrom(r)
		if !ok {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "Sign in to cancel bookings")
			return
		}

		bookingID, err := pathID(r, "id")
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid booking ID")
			return
		}

		store := registry.ForUser(s.User)
		if err := store.CancelBooking(r.Context(), bookingID); err != nil {
			if rolledBack(err) && broadcaster != nil {
				broadcaster.MutationRolledBack(s.User.ID, bookingID, "cancel_booking", err)
			}
			middleware.WriteDomainError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// storeFor resolves the view store for a request: the session user's store,
// or the shared anonymous store.
func storeFor(registry *view.Registry, r *http.Request) *view.Store {
	if s, ok := middleware.SessionFrom(r); ok {
		return registry.ForUser(s.User)
	}
	return registry.Anonymous()
}

// rolledBack reports whether a mutation error means an optimistic change was
// applied and reverted, as opposed to being rejected before dispatch.
func rolledBack(err error) bool {
	var conflict *view.StateConflictError
	if errors.As(err, &conflict) {
		return false
	}
	return !errors.Is(err, view.ErrMutationPending) &&
		!errors.Is(err, view.ErrUnknownProperty) &&
		!errors.Is(err, view.ErrUnknownBooking)
}

// pathID parses a numeric path variable.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

// writeJSON writes a 200 JSON response.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
