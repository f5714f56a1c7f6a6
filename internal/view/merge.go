// Package view builds and maintains merged view records: properties joined
// with the current tenant's favorites and bookings. It owns the parallel
// collection fetch, the pure merge step, and the optimistic mutation store
// that the gateway's handlers operate on.
package view

import (
	"github.com/rentease/gateway/internal/rentease"
)

// Record is a property annotated with the derived per-tenant fields used for
// rendering. Records are regenerated on every fetch cycle and never sent
// back to the backend.
type Record struct {
	rentease.Property

	// IsFavorited is true when the property appears in the tenant's
	// favorites collection.
	IsFavorited bool `json:"isFavorited"`

	// BookingStatus is the status of the tenant's booking for this
	// property, or nil when no booking exists.
	BookingStatus *rentease.BookingStatus `json:"bookingStatus"`
}

// Merge joins the three independently fetched collections into one record
// per property. It is pure: inputs are never mutated and identical inputs
// always produce identical output.
//
// Favorite membership is an O(1) set lookup. Booking status comes from a
// property-to-status map built in slice order, so when a tenant holds
// several bookings for the same property the one listed last wins. The
// backend returns bookings oldest-first, which makes this the newest
// booking; history for a rebooked property is not represented.
func Merge(properties []rentease.Property, favorites []rentease.Favorite, bookings []rentease.Booking) []Record {
	favoriteIDs := make(map[int64]struct{}, len(favorites))
	for _, f := range favorites {
		favoriteIDs[f.Property.ID] = struct{}{}
	}

	bookingStatus := make(map[int64]rentease.BookingStatus, len(bookings))
	for _, b := range bookings {
		bookingStatus[b.Property.ID] = b.Status
	}

	records := make([]Record, 0, len(properties))
	for _, p := range properties {
		record := Record{Property: p}
		if _, ok := favoriteIDs[p.ID]; ok {
			record.IsFavorited = true
		}
		if status, ok := bookingStatus[p.ID]; ok {
			s := status
			record.BookingStatus = &s
		}
		records = append(records, record)
	}

	return records
}

// statusForProperty recomputes the booking status for one property from a
// booking list, with the same last-write-wins rule as Merge. Used when a
// mutation removes a booking and the record must fall back to whatever
// booking remains.
func statusForProperty(bookings []rentease.Booking, propertyID int64) *rentease.BookingStatus {
	var status *rentease.BookingStatus
	for _, b := range bookings {
		if b.Property.ID == propertyID {
			s := b.Status
			status = &s
		}
	}
	return status
}
