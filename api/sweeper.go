/*
sweeper.go - Live announcement expiry

PURPOSE:
  An announcement with an expiry must vanish from the display without
  anyone touching the dashboard. The sweeper re-evaluates the active
  set on a timer and pushes a replacement list the moment the set
  changes, so a banner that expires mid-event disappears on its own.

DESIGN:
  - Background goroutine with a configurable check interval
  - Compares the active id set against the last push; silent when
    nothing changed
  - Stop() waits for the goroutine to finish

USAGE:
  sweeper := NewExpirySweeper(store, hub)
  sweeper.Start()
  // ... later
  sweeper.Stop()
*/
package api

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pledgewall/pledge-engine/pledge"
	"github.com/pledgewall/pledge-engine/store/jsonfile"
)

// ExpirySweeper pushes a fresh active-announcement list whenever an
// announcement crosses its expiry.
type ExpirySweeper struct {
	Store         *jsonfile.Store
	Hub           *Hub
	CheckInterval time.Duration

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastIDs []int
}

// NewExpirySweeper creates a sweeper with the default check interval.
func NewExpirySweeper(store *jsonfile.Store, hub *Hub) *ExpirySweeper {
	return &ExpirySweeper{
		Store:         store,
		Hub:           hub,
		CheckInterval: 30 * time.Second,
		stop:          make(chan struct{}),
	}
}

// Start begins sweeping.
func (es *ExpirySweeper) Start() {
	es.mu.Lock()
	defer es.mu.Unlock()

	es.lastIDs = idsOf(es.Store.ActiveAnnouncements())
	es.ticker = time.NewTicker(es.CheckInterval)
	es.wg.Add(1)
	go es.run()

	slog.Info("expiry sweeper started", "interval", es.CheckInterval)
}

// Stop halts sweeping and waits for the goroutine to exit.
func (es *ExpirySweeper) Stop() {
	es.mu.Lock()
	defer es.mu.Unlock()

	if es.ticker != nil {
		es.ticker.Stop()
		close(es.stop)
		es.wg.Wait()
		slog.Info("expiry sweeper stopped")
	}
}

func (es *ExpirySweeper) run() {
	defer es.wg.Done()
	for {
		select {
		case <-es.ticker.C:
			es.Sweep()
		case <-es.stop:
			return
		}
	}
}

// Sweep checks once and pushes if the active set changed since the last
// push. Exposed for tests; the background loop calls it on each tick.
func (es *ExpirySweeper) Sweep() {
	active := es.Store.ActiveAnnouncements()
	ids := idsOf(active)

	es.mu.Lock()
	changed := !equalIDs(es.lastIDs, ids)
	if changed {
		es.lastIDs = ids
	}
	es.mu.Unlock()

	if changed {
		slog.Debug("active announcements changed", "count", len(active))
		es.Hub.Publish(EventActiveAnnouncements, active)
	}
}

func idsOf(anns []pledge.Announcement) []int {
	ids := make([]int, len(anns))
	for i, a := range anns {
		ids[i] = a.ID
	}
	return ids
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
