package session

import (
	"context"
	"log"
	"time"
)

// Sweeper periodically evicts idle sessions. It runs independently of
// request handling and talks to the store only through its public API.
type Sweeper struct {
	store    *Store
	interval time.Duration
	idleTTL  time.Duration
}

// NewSweeper creates a sweeper that clears sessions idle for longer than
// idleTTL, checking every interval.
func NewSweeper(store *Store, interval, idleTTL time.Duration) *Sweeper {
	return &Sweeper{store: store, interval: interval, idleTTL: idleTTL}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (w *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := w.store.ExpireIdle(w.idleTTL); n > 0 {
				log.Printf("session sweep evicted %d idle sessions", n)
			}
		}
	}
}
