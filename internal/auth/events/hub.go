// Package events fans auth lifecycle notifications out to in-process
// listeners, e.g. the profile warm-up listener.
package events

import (
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Type string

const (
	SignedIn    Type = "signed_in"
	SignedOut   Type = "signed_out"
	UserUpdated Type = "user_updated"
)

type Event struct {
	Type        Type
	UserID      snowflake.ID
	Email       string
	DisplayName string
	At          time.Time
}

const subscriberBuffer = 16

type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]chan Event
	nextID uint64
}

type Subscription struct {
	hub  *Hub
	id   uint64
	ch   chan Event
	done chan struct{}
	once sync.Once
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]chan Event)}
}

// Publish never blocks; a subscriber that cannot keep up drops events.
func (h *Hub) Publish(event Event) {
	if h == nil {
		return
	}
	h.mu.RLock()
	subs := make([]chan Event, 0, len(h.subs))
	for _, ch := range h.subs {
		subs = append(subs, ch)
	}
	h.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, subscriberBuffer)
	h.subs[id] = ch
	h.mu.Unlock()

	return &Subscription{
		hub:  h,
		id:   id,
		ch:   ch,
		done: make(chan struct{}),
	}
}

func (s *Subscription) Events() <-chan Event {
	if s == nil {
		return nil
	}
	return s.ch
}

// Done closes when the subscription is closed so listener goroutines can
// exit.
func (s *Subscription) Done() <-chan struct{} {
	if s == nil {
		return nil
	}
	return s.done
}

func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s.id)
		s.hub.mu.Unlock()
		close(s.done)
	})
}
