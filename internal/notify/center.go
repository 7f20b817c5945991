// Package notify implements the toast notification channel shown next to the quiz widget.
package notify

import (
	"sync"
	"time"

	"chat-trivia-service/internal/domain"
	"github.com/google/uuid"
)

// EventType tells subscribers what happened to a toast.
type EventType string

const (
	EventPushed    EventType = "toast"
	EventDismissed EventType = "toastDismissed"
)

// Event is delivered to subscribers for every push and dismissal.
type Event struct {
	Type  EventType
	Toast domain.Toast
}

// Center keeps the visible toasts and fans events out to subscribers.
// Toasts are dismissed automatically after ttl unless ttl is zero.
type Center struct {
	ttl time.Duration

	mu          sync.Mutex
	toasts      []domain.Toast
	timers      map[string]*time.Timer
	subscribers map[chan Event]struct{}
	closed      bool
}

func NewCenter(ttl time.Duration) *Center {
	return &Center{
		ttl:         ttl,
		timers:      make(map[string]*time.Timer),
		subscribers: make(map[chan Event]struct{}),
	}
}

// Notify satisfies quiz.Notifier.
func (c *Center) Notify(title, description string) {
	c.Push(title, description)
}

// Push shows a new toast and returns it.
func (c *Center) Push(title, description string) domain.Toast {
	toast := domain.Toast{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return toast
	}
	c.toasts = append(c.toasts, toast)
	if c.ttl > 0 {
		id := toast.ID
		c.timers[id] = time.AfterFunc(c.ttl, func() { c.Dismiss(id) })
	}
	c.broadcastLocked(Event{Type: EventPushed, Toast: toast})
	return toast
}

// Dismiss removes a toast. It reports false when the toast is already gone.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, toast := range c.toasts {
		if toast.ID != id {
			continue
		}
		c.toasts = append(c.toasts[:i], c.toasts[i+1:]...)
		if timer, ok := c.timers[id]; ok {
			timer.Stop()
			delete(c.timers, id)
		}
		c.broadcastLocked(Event{Type: EventDismissed, Toast: toast})
		return true
	}
	return false
}

// Active returns the visible toasts, oldest first.
func (c *Center) Active() []domain.Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Toast(nil), c.toasts...)
}

// Subscribe returns a channel of toast events. The caller must invoke the
// returned cancel function to avoid leaks.
func (c *Center) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	c.mu.Lock()
	if c.closed {
		close(ch)
		c.mu.Unlock()
		return ch, func() {}
	}
	c.subscribers[ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

// Close stops pending auto-dismiss timers and closes every subscription.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, timer := range c.timers {
		timer.Stop()
		delete(c.timers, id)
	}
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
}

func (c *Center) broadcastLocked(ev Event) {
	for ch := range c.subscribers {
		select {
		case ch <- ev:
		default:
			// full subscriber: drop its oldest event
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}
