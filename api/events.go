/*
events.go - Push relay between the dashboard and the display surface

PURPOSE:
  The display window never polls; it subscribes to a Server-Sent Events
  stream and receives two event types:

    commitment.created    one pledge, fire-and-forget
    announcements.active  full replacement list of visible announcements

  Each new subscriber gets the current active-announcement list
  immediately, so a display window that opens late still shows the
  right banners.

DELIVERY SEMANTICS:
  Fire-and-forget. Events carry no sequence numbers, are not persisted,
  and are never replayed. A subscriber that cannot keep up has the
  event dropped rather than blocking the publisher.
*/
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// Event types pushed to the display surface.
const (
	EventCommitmentCreated   = "commitment.created"
	EventActiveAnnouncements = "announcements.active"
)

// Event is one push message.
type Event struct {
	ID   string
	Type string
	Data any
}

// Hub fans events out to SSE subscribers.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	closed bool

	// onSubscribe builds the events pushed to a fresh subscriber.
	onSubscribe func() []Event
}

// NewHub creates a hub. onSubscribe, if non-nil, supplies the events
// sent to every new subscriber before anything else.
func NewHub(onSubscribe func() []Event) *Hub {
	return &Hub{
		subs:        make(map[chan Event]struct{}),
		onSubscribe: onSubscribe,
	}
}

// Publish sends an event to every subscriber. Slow subscribers have the
// event dropped.
func (h *Hub) Publish(eventType string, data any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	ev := Event{ID: uuid.NewString(), Type: eventType, Data: data}
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			pushesDropped.Inc()
		}
	}
	pushesPublished.WithLabelValues(eventType).Inc()
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		close(ch)
	}
	h.subs = nil
}

func (h *Hub) subscribe() (chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// ServeHTTP streams events to one subscriber until the client hangs up.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch, cancel := h.subscribe()
	defer cancel()

	if h.onSubscribe != nil {
		for _, ev := range h.onSubscribe() {
			if ev.ID == "" {
				ev.ID = uuid.NewString()
			}
			if err := writeSSE(w, ev); err != nil {
				return
			}
		}
		flusher.Flush()
	}

	for {
		select {
		case ev, open := <-ch:
			if !open {
				return
			}
			if err := writeSSE(w, ev); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		slog.Error("encode push event", "type", ev.Type, "error", err)
		return nil // skip the event, keep the stream
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Type, data)
	return err
}
