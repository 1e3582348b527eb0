// Package sse implements a Server-Sent Events broker that tells open pages
// when the site's content changed.
package sse

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// Event types sent to clients.
const (
	EventArticleCreated = "article.created"
	EventArticleUpdated = "article.updated"
	EventArticleDeleted = "article.deleted"
	EventContentChanged = "content.changed"
)

// keepAlive is how often an idle stream gets a comment line so proxies do
// not close it.
const keepAlive = 25 * time.Second

// changeEvents maps watcher change kinds to event types.
var changeEvents = map[string]string{
	"created": EventArticleCreated,
	"updated": EventArticleUpdated,
	"deleted": EventArticleDeleted,
}

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ArticleRef is the payload of the article.* events.
type ArticleRef struct {
	File string `json:"file"`
}

// frame renders e in text/event-stream framing.
func (e Event) frame() ([]byte, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString("event: ")
	buf.WriteString(e.Type)
	buf.WriteString("\ndata: ")
	buf.Write(data)
	buf.WriteString("\n\n")
	return buf.Bytes(), nil
}

func (e Event) articleChange() bool {
	return strings.HasPrefix(e.Type, "article.")
}

// Broker fans events out to connected pages. Every article.* event is
// followed by a content.changed event, at most once per throttle interval.
// The client set is owned by a single loop goroutine.
type Broker struct {
	throttle time.Duration

	join   chan chan []byte
	leave  chan chan []byte
	events chan Event
	counts chan chan int

	quit   chan struct{}
	done   chan struct{}
	closed atomic.Bool
}

// NewBroker creates a broker that emits content.changed at most once per
// throttle interval.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = time.Second
	}
	b := &Broker{
		throttle: throttle,
		join:     make(chan chan []byte),
		leave:    make(chan chan []byte),
		events:   make(chan Event, 256),
		counts:   make(chan chan int),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.done)

	pages := make(map[chan []byte]struct{})
	var announced time.Time

	send := func(e Event) {
		msg, err := e.frame()
		if err != nil {
			return
		}
		for ch := range pages {
			select {
			case ch <- msg:
			default:
				// Page is not keeping up; it reloads on the next event anyway.
			}
		}
	}

	for {
		select {
		case <-b.quit:
			for ch := range pages {
				close(ch)
			}
			return
		case ch := <-b.join:
			pages[ch] = struct{}{}
		case ch := <-b.leave:
			if _, ok := pages[ch]; ok {
				delete(pages, ch)
				close(ch)
			}
		case reply := <-b.counts:
			reply <- len(pages)
		case e := <-b.events:
			send(e)
			if e.articleChange() {
				if now := time.Now(); now.Sub(announced) >= b.throttle {
					announced = now
					send(Event{Type: EventContentChanged, Data: struct{}{}})
				}
			}
		}
	}
}

// Close stops the loop and closes every client channel. It is safe to call
// more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.quit)
	}
	<-b.done
}

// Subscribe registers a client. The channel is closed on Unsubscribe or
// Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.join <- ch:
	case <-b.done:
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
	case b.leave <- ch:
	case <-b.done:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	reply := make(chan int, 1)
	select {
	case b.counts <- reply:
	case <-b.done:
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-b.done:
		return 0
	}
}

// Publish queues e for every connected client.
func (b *Broker) Publish(e Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.events <- e:
	case <-b.done:
	}
}

// PublishChange announces that the file at path was created, updated or
// deleted. Unknown kinds are ignored.
func (b *Broker) PublishChange(kind, path string) {
	typ, ok := changeEvents[kind]
	if !ok {
		return
	}
	b.Publish(Event{Type: typ, Data: ArticleRef{File: path}})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	write := func(msg []byte) {
		_, _ = w.Write(msg)
		flusher.Flush()
	}
	write([]byte(": connected\n\n"))

	ping := time.NewTicker(keepAlive)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			write([]byte(": ping\n\n"))
		case msg, ok := <-ch:
			if !ok {
				return
			}
			write(msg)
		}
	}
}
