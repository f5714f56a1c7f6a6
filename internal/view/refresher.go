package view

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// RefreshListener is notified after each background refresh cycle. The
// gateway wires this to the websocket broadcaster.
type RefreshListener interface {
	ViewRefreshed(userID int64, records int, fetchedAt time.Time)
	ViewRefreshFailed(userID int64, err error)
}

// Refresher periodically re-fetches and re-merges the views of all active
// users so that connected clients see landlord and admin changes without an
// explicit reload.
type Refresher struct {
	cron     *cron.Cron
	registry *Registry
	listener RefreshListener
	interval time.Duration
}

// NewRefresher creates a background refresher. listener may be nil.
func NewRefresher(registry *Registry, listener RefreshListener, intervalMin int) *Refresher {
	if intervalMin <= 0 {
		intervalMin = 5
	}
	return &Refresher{
		cron:     cron.New(),
		registry: registry,
		listener: listener,
		interval: time.Duration(intervalMin) * time.Minute,
	}
}

// Start begins the periodic refresh job.
func (r *Refresher) Start() error {
	spec := "@every " + r.interval.String()
	if _, err := r.cron.AddFunc(spec, r.refreshAll); err != nil {
		return err
	}

	r.cron.Start()
	log.Printf("View refresher started (every %s)", r.interval)
	return nil
}

// Stop shuts down the refresher, waiting for a running cycle to finish.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	log.Println("View refresher stopped")
}

// refreshAll runs one refresh cycle over every active store.
func (r *Refresher) refreshAll() {
	stores := r.registry.Active()
	if len(stores) == 0 {
		return
	}

	for _, store := range stores {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := store.Refresh(ctx)
		cancel()

		userID := store.User().ID
		if err != nil {
			log.Printf("Background refresh failed for user %d: %v", userID, err)
			if r.listener != nil {
				r.listener.ViewRefreshFailed(userID, err)
			}
			continue
		}

		records, fetchedAt, _ := store.Records()
		if r.listener != nil {
			r.listener.ViewRefreshed(userID, len(records), fetchedAt)
		}
	}
}
