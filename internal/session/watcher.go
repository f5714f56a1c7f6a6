package session

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Watcher periodically sweeps the session table for expired tokens. The
// sweep is a backstop: normal sign-out flows go through Manager.Clear, but
// nothing tells the gateway when a token silently passes its exp claim.
type Watcher struct {
	cron     *cron.Cron
	manager  *Manager
	interval time.Duration
}

// NewWatcher creates a session expiry watcher.
func NewWatcher(manager *Manager, intervalMin int) *Watcher {
	if intervalMin <= 0 {
		intervalMin = 1
	}
	return &Watcher{
		cron:     cron.New(),
		manager:  manager,
		interval: time.Duration(intervalMin) * time.Minute,
	}
}

// Start begins the periodic sweep.
func (w *Watcher) Start() error {
	spec := "@every " + w.interval.String()
	if _, err := w.cron.AddFunc(spec, w.sweep); err != nil {
		return err
	}

	w.cron.Start()
	log.Printf("Session watcher started (every %s)", w.interval)
	return nil
}

// Stop shuts down the watcher.
func (w *Watcher) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	log.Println("Session watcher stopped")
}

func (w *Watcher) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if removed := w.manager.SweepExpired(ctx, time.Now().UTC()); removed > 0 {
		log.Printf("Expired %d sessions", removed)
	}
}
