// Package events is the in-process change notification bus. Stores publish
// after every successful mutation; views subscribe and reload.
package events

import (
	"sync"
	"time"
)

// Topic names the part of the data layer that changed.
type Topic string

const (
	TopicEntries     Topic = "entries"
	TopicProfiles    Topic = "profiles"
	TopicTimers      Topic = "timers"
	TopicPreferences Topic = "preferences"
	TopicWeights     Topic = "weights"
	TopicSync        Topic = "sync"
	TopicBackup      Topic = "backup"
)

// Event describes one change. Listeners that only need "something changed"
// may ignore it.
type Event struct {
	Topic Topic     `json:"topic"`
	At    time.Time `json:"at"`
}

type Listener func(Event)

// Publisher is the side of the bus the stores depend on.
type Publisher interface {
	Publish(Event)
}

type subscription struct {
	id int
	fn Listener
}

// Bus delivers events synchronously to listeners in subscription order.
// A panicking listener propagates to the publisher.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns a function that removes it. The
// returned function is safe to call more than once.
func (b *Bus) Subscribe(fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish calls every listener subscribed at the time of the call. The
// lock is not held while listeners run, so they may subscribe or
// unsubscribe.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	snapshot := make([]subscription, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	for _, s := range snapshot {
		s.fn(ev)
	}
}

// Len returns the number of current listeners.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(Event) {}
