// Package broker fans accepted pushes out to the Watch streams of the same
// baby. Delivery is best effort: a subscriber that falls behind is dropped
// and must resubscribe from its last seen version.
package broker

import (
	"sync"

	"github.com/dmitrijs2005/babylog/internal/server/models"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 16

// Event is one accepted push.
type Event struct {
	BabyID  string
	Version int64
	Entries []*models.Entry
}

// Subscription receives events for one baby. C is closed when the
// subscription is cancelled or dropped; Dropped tells the two apart.
type Subscription struct {
	C <-chan Event

	ch      chan Event
	babyID  string
	broker  *Broker
	once    sync.Once
	dropped bool
}

// Dropped reports whether the broker closed C because the subscriber was too
// slow. Only meaningful after C is closed.
func (s *Subscription) Dropped() bool {
	s.broker.mu.Lock()
	defer s.broker.mu.Unlock()
	return s.dropped
}

// Cancel unsubscribes and closes C. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.broker.remove(s, false)
}

type Broker struct {
	mu     sync.Mutex
	buffer int
	subs   map[string]map[*Subscription]struct{}
}

// New returns a broker with per-subscriber queues of length buffer
// (DefaultBuffer when buffer <= 0).
func New(buffer int) *Broker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broker{buffer: buffer, subs: make(map[string]map[*Subscription]struct{})}
}

func (b *Broker) Subscribe(babyID string) *Subscription {
	ch := make(chan Event, b.buffer)
	s := &Subscription{C: ch, ch: ch, babyID: babyID, broker: b}

	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.subs[babyID]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.subs[babyID] = set
	}
	set[s] = struct{}{}
	return s
}

// Publish queues ev for every subscriber of ev.BabyID without blocking.
func (b *Broker) Publish(ev Event) {
	b.mu.Lock()
	var slow []*Subscription
	for s := range b.subs[ev.BabyID] {
		select {
		case s.ch <- ev:
		default:
			slow = append(slow, s)
		}
	}
	b.mu.Unlock()

	for _, s := range slow {
		b.remove(s, true)
	}
}

// Subscribers returns the number of live subscriptions for babyID.
func (b *Broker) Subscribers(babyID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[babyID])
}

func (b *Broker) remove(s *Subscription, dropped bool) {
	s.once.Do(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		s.dropped = dropped
		if set, ok := b.subs[s.babyID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(b.subs, s.babyID)
			}
		}
		close(s.ch)
	})
}
