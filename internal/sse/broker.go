// Package sse implements a Server-Sent Events broker that pushes collection
// changes to connected clients.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Kind names a collection change.
type Kind string

// Change kinds published by the note service.
const (
	KindCreated  Kind = "created"
	KindUpdated  Kind = "updated"
	KindDeleted  Kind = "deleted"
	KindReloaded Kind = "reloaded"
)

// Event types as they appear on the wire.
const (
	TypeNoteCreated  = "note.created"
	TypeNoteUpdated  = "note.updated"
	TypeNoteDeleted  = "note.deleted"
	TypeReloaded     = "collection.reloaded"
	TypeBookletStale = "booklet.stale"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NoteData is the payload of note.* events.
type NoteData struct {
	ID string `json:"id,omitempty"`
}

type changeReq struct {
	kind Kind
	id   string
}

// Broker manages SSE client connections and broadcasts events.
//
// A single event loop goroutine owns the client set and the booklet.stale
// throttle timestamp. Public methods talk to it over channels.
type Broker struct {
	staleMin  time.Duration
	keepalive time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	changeCh      chan changeReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that emits at most one booklet.stale event per
// staleThrottle.
func NewBroker(staleThrottle time.Duration) *Broker {
	if staleThrottle <= 0 {
		staleThrottle = 2 * time.Second
	}

	b := &Broker{
		staleMin:      staleThrottle,
		keepalive:     30 * time.Second,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		changeCh:      make(chan changeReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func eventType(k Kind) (string, bool) {
	switch k {
	case KindCreated:
		return TypeNoteCreated, true
	case KindUpdated:
		return TypeNoteUpdated, true
	case KindDeleted:
		return TypeNoteDeleted, true
	case KindReloaded:
		return TypeReloaded, true
	}
	return "", false
}

func encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)), nil
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastStale time.Time

	broadcast := func(event Event) {
		raw, err := encode(event)
		if err != nil {
			return
		}
		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than stall the loop.
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

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.changeCh:
			typ, ok := eventType(req.kind)
			if !ok {
				continue
			}
			broadcast(Event{Type: typ, Data: NoteData{ID: req.id}})

			now := time.Now()
			if now.Sub(lastStale) >= b.staleMin {
				lastStale = now
				broadcast(Event{Type: TypeBookletStale, Data: struct{}{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
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

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishChange publishes a note change followed by a throttled
// booklet.stale hint. Its signature matches the note service's change hook.
func (b *Broker) PublishChange(kind Kind, id string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- changeReq{kind: kind, id: id}:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(b.keepalive)
	defer ping.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
