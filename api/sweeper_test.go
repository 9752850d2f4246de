/*
sweeper_test.go - Expiry sweeper tests

Drives Sweep() directly with a movable clock instead of waiting on the
background ticker.
*/
package api

import (
	"testing"
	"time"

	"github.com/pledgewall/pledge-engine/pledge"
	"github.com/pledgewall/pledge-engine/store/jsonfile"
)

func TestSweep_PushesWhenAnnouncementExpires(t *testing.T) {
	// GIVEN: An active announcement expiring in one minute
	// WHEN: The clock passes the expiry and the sweeper checks
	// THEN: One replacement push carries the now-empty active list

	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	store, err := jsonfile.New(t.TempDir(), jsonfile.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	expiry := now.Add(time.Minute)
	if _, err := store.CreateAnnouncement(jsonfile.CreateAnnouncementParams{
		Type: pledge.AnnouncementBanner, Text: "soon gone", ExpiresAt: &expiry,
	}); err != nil {
		t.Fatalf("Failed to create announcement: %v", err)
	}

	hub := NewHub(nil)
	defer hub.Close()
	ch, cancel := hub.subscribe()
	defer cancel()

	sweeper := NewExpirySweeper(store, hub)
	sweeper.lastIDs = idsOf(store.ActiveAnnouncements())

	// Still active: no push.
	sweeper.Sweep()
	select {
	case ev := <-ch:
		t.Fatalf("Expected silence while nothing changed, got %v", ev)
	default:
	}

	// Cross the expiry.
	now = now.Add(2 * time.Minute)
	sweeper.Sweep()

	select {
	case ev := <-ch:
		if ev.Type != EventActiveAnnouncements {
			t.Errorf("Expected %s, got %s", EventActiveAnnouncements, ev.Type)
		}
		active, ok := ev.Data.([]pledge.Announcement)
		if !ok {
			t.Fatalf("Expected announcement list payload, got %T", ev.Data)
		}
		if len(active) != 0 {
			t.Errorf("Expected empty active list after expiry, got %d", len(active))
		}
	case <-time.After(time.Second):
		t.Fatal("Expected a push after the expiry")
	}

	// The change was pushed once; a further sweep stays silent.
	sweeper.Sweep()
	select {
	case ev := <-ch:
		t.Fatalf("Expected no repeat push, got %v", ev)
	default:
	}
}

func TestSweeper_StartStop(t *testing.T) {
	store, err := jsonfile.New(t.TempDir(), jsonfile.WithClock(time.Now))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	hub := NewHub(nil)
	defer hub.Close()

	sweeper := NewExpirySweeper(store, hub)
	sweeper.CheckInterval = 10 * time.Millisecond
	sweeper.Start()
	time.Sleep(30 * time.Millisecond)
	sweeper.Stop() // must wait for the goroutine and not hang
}
