package view

import (
	"context"
	"sync"

	"github.com/rentease/gateway/internal/rentease"
)

// Registry hands out one store per signed-in user, plus a shared anonymous
// store for public listing views. Stores are created lazily on first access
// and dropped when the session ends.
type Registry struct {
	client    *rentease.Client
	fetcher   *Fetcher
	snapshots SnapshotStore

	mu        sync.Mutex
	stores    map[int64]*Store
	anonymous *Store
}

// NewRegistry creates a store registry. snapshots may be nil.
func NewRegistry(client *rentease.Client, fetcher *Fetcher, snapshots SnapshotStore) *Registry {
	return &Registry{
		client:    client,
		fetcher:   fetcher,
		snapshots: snapshots,
		stores:    make(map[int64]*Store),
	}
}

// ForUser returns the store for a signed-in user, creating it on first use.
// Tenant stores join favorites and bookings into the view; landlord stores
// fetch the landlord's own listings with no per-tenant derived fields.
func (r *Registry) ForUser(user rentease.User) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if store, ok := r.stores[user.ID]; ok {
		return store
	}

	store := NewStore(r.client, r.fetchFor(user), user, r.snapshots)
	r.stores[user.ID] = store
	return store
}

// Anonymous returns the shared store for unauthenticated listing views.
func (r *Registry) Anonymous() *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.anonymous == nil {
		r.anonymous = NewStore(r.client, r.fetchFor(rentease.User{}), rentease.User{}, nil)
	}
	return r.anonymous
}

// Drop removes a user's store, typically when the session ends.
func (r *Registry) Drop(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, userID)
}

// Active returns the stores for all currently signed-in users.
func (r *Registry) Active() []*Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	stores := make([]*Store, 0, len(r.stores))
	for _, store := range r.stores {
		stores = append(stores, store)
	}
	return stores
}

// fetchFor picks the fetch strategy for a user's role.
func (r *Registry) fetchFor(user rentease.User) FetchFunc {
	if user.Role == rentease.RoleLandlord {
		landlordID := user.ID
		return func(ctx context.Context) (Collections, error) {
			properties, err := r.client.ListLandlordProperties(ctx, landlordID)
			if err != nil {
				return Collections{}, err
			}
			return Collections{Properties: properties}, nil
		}
	}

	tenantID := user.ID
	return func(ctx context.Context) (Collections, error) {
		return r.fetcher.Fetch(ctx, tenantID)
	}
}
