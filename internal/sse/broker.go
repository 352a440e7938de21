// Package sse implements a per-user Server-Sent Events broker for
// real-time updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/scholarsync/internal/auth"
)

// Event types pushed to clients.
const (
	TypeAlertCreated    = "alert.created"
	TypeEventsImported  = "events.imported"
	TypeEventCreated    = "event.created"
	TypeEventUpdated    = "event.updated"
	TypeEventDeleted    = "event.deleted"
	TypeCalendarUpdated = "calendar.updated"
)

// Event represents an SSE event addressed to one user.
type Event struct {
	UserID int64  `json:"-"`
	Type   string `json:"type"`
	Data   any    `json:"data"`
}

type calendarReq struct {
	userID  int64
	kind    string
	eventID int64
}

type subscription struct {
	userID int64
	ch     chan []byte
}

// Broker manages SSE client connections and delivers events to the clients
// of the addressed user.
//
// Concurrency model: a single internal event loop (goroutine) owns mutable
// state (clients + per-user calendar throttle timestamps). Public methods
// communicate with this loop through channels, so no mutexes are required.
type Broker struct {
	calendarMin time.Duration

	subscribeCh   chan subscription
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	calendarCh    chan calendarReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker with the given calendar.updated throttle
// interval.
func NewBroker(calendarThrottle time.Duration) *Broker {
	if calendarThrottle <= 0 {
		calendarThrottle = 2 * time.Second
	}

	b := &Broker{
		calendarMin:   calendarThrottle,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		calendarCh:    make(chan calendarReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]int64)
	lastCalendar := make(map[int64]time.Time)

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))

		for ch, uid := range clients {
			if uid != event.UserID {
				continue
			}
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			clients[sub.ch] = sub.userID

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.calendarCh:
			data := map[string]int64{"id": req.eventID}
			switch req.kind {
			case "created":
				broadcast(Event{UserID: req.userID, Type: TypeEventCreated, Data: data})
			case "updated":
				broadcast(Event{UserID: req.userID, Type: TypeEventUpdated, Data: data})
			case "deleted":
				broadcast(Event{UserID: req.userID, Type: TypeEventDeleted, Data: data})
			}

			now := time.Now()
			if now.Sub(lastCalendar[req.userID]) >= b.calendarMin {
				lastCalendar[req.userID] = now
				broadcast(Event{UserID: req.userID, Type: TypeCalendarUpdated, Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client of userID and returns its channel.
func (b *Broker) Subscribe(userID int64) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscription{userID: userID, ch: ch}:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to the connected clients of event.UserID.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishCalendarChange publishes an event.<kind> notification and a
// throttled calendar.updated for the user.
func (b *Broker) PublishCalendarChange(userID int64, kind string, eventID int64) {
	if b.closed.Load() {
		return
	}
	select {
	case b.calendarCh <- calendarReq{userID: userID, kind: kind, eventID: eventID}:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/stream). It must run
// behind the authentication middleware.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
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

	ch := b.Subscribe(userID)
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
