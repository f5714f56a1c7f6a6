package rentease

import (
	"context"
	"fmt"
)

// BookingRequest is the body for creating a booking.
type BookingRequest struct {
	PropertyID int64 `json:"propertyId"`
	TenantID   int64 `json:"tenantId"`
	StartDate  Date  `json:"startDate"`
}

// ListTenantBookings returns all bookings made by a tenant.
func (c *Client) ListTenantBookings(ctx context.Context, tenantID int64) ([]Booking, error) {
	var bookings []Booking
	path := fmt.Sprintf("/bookings/tenant/%d", tenantID)
	if err := c.get(ctx, path, nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// CreateBooking submits a booking request. Approval is the landlord's call;
// the returned booking is normally PENDING.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*Booking, error) {
	var booking Booking
	if err := c.postJSON(ctx, "/bookings", req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// CancelBooking deletes a booking.
func (c *Client) CancelBooking(ctx context.Context, bookingID int64) error {
	path := fmt.Sprintf("/bookings/%d", bookingID)
	return c.deleteJSON(ctx, path, nil, nil, nil)
}
