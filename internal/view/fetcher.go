package view

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/rentease/gateway/internal/rentease"
)

// Collections holds the three independently fetched inputs to Merge.
type Collections struct {
	Properties []rentease.Property
	Favorites  []rentease.Favorite
	Bookings   []rentease.Booking
}

// Fetcher retrieves the collections needed to render a view.
type Fetcher struct {
	client *rentease.Client
}

// NewFetcher creates a fetcher backed by the given client.
func NewFetcher(client *rentease.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch retrieves all visible properties plus, for a known tenant, that
// tenant's favorites and bookings. The three requests run concurrently and
// complete in no particular order; Fetch returns only once all have
// resolved.
//
// A failed properties fetch fails the whole view. Failed favorites or
// bookings fetches degrade to empty collections so the listing still
// renders, at the cost of derived fields defaulting to unfavorited and
// unbooked until the next cycle.
func (f *Fetcher) Fetch(ctx context.Context, tenantID int64) (Collections, error) {
	var cols Collections

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		properties, err := f.client.ListProperties(gctx)
		if err != nil {
			return fmt.Errorf("fetching properties: %w", err)
		}
		cols.Properties = properties
		return nil
	})

	// Anonymous views have no favorites or bookings to join.
	if tenantID != 0 {
		g.Go(func() error {
			favorites, err := f.client.ListFavorites(gctx, tenantID)
			if err != nil {
				log.Printf("Favorites fetch failed for tenant %d, using empty set: %v", tenantID, err)
				return nil
			}
			cols.Favorites = favorites
			return nil
		})

		g.Go(func() error {
			bookings, err := f.client.ListTenantBookings(gctx, tenantID)
			if err != nil {
				log.Printf("Bookings fetch failed for tenant %d, using empty set: %v", tenantID, err)
				return nil
			}
			cols.Bookings = bookings
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Collections{}, err
	}

	return cols, nil
}
