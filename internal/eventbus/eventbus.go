// Package eventbus carries job outcome events from the job loops to
// observers (audit store, logs) without coupling either side.
package eventbus

import (
	"sync"
	"time"
)

type Type string

const (
	// NotificationSent: a text or photo message reached the chat.
	NotificationSent Type = "notification.sent"
	PollOpened       Type = "poll.opened"
	PollStopped      Type = "poll.stopped"
	// ReminderFired: one date-store line matched today.
	ReminderFired Type = "reminder.fired"
	// StoreCompacted: a date store was rewritten with only future lines.
	StoreCompacted Type = "datestore.compacted"
	CycleFailed    Type = "cycle.failed"
)

// Event is a small in-memory record of one job outcome.
type Event struct {
	Type  Type
	Time  time.Time
	Job   string
	Cycle string
	// MessageID is the chat message the outcome refers to, 0 if none.
	MessageID int
	Detail    string
	Err       string
}

// Bus fans events out to subscribers. Publish never blocks: a subscriber
// whose buffer is full misses the event.
type Bus interface {
	Publish(e Event)
	Subscribe(buffer int) (ch <-chan Event, unsubscribe func())
}

func New() Bus { return &memBus{subs: map[int]chan Event{}} }

type memBus struct {
	mu   sync.RWMutex
	next int
	subs map[int]chan Event
}

func (b *memBus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	// The read lock keeps unsubscribe from closing a channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (b *memBus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
		})
	}
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(Event) {}

func (Nop) Subscribe(int) (<-chan Event, func()) {
	ch := make(chan Event)
	close(ch)
	return ch, func() {}
}
