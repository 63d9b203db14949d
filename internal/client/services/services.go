// Package services implements the local data layer: profiles, entries,
// timers, preferences, weights and the summaries derived from them. Every
// service returns precise wrapped errors; DataLayer flattens them for
// callers that must never fail.
package services

import (
	"context"

	"github.com/dmitrijs2005/babylog/internal/client/events"
	"github.com/dmitrijs2005/babylog/internal/timex"
)

// ActiveProfileSource resolves the profile that scopes reads and stamps
// writes. ProfileService implements it.
type ActiveProfileSource interface {
	GetActiveBabyID(ctx context.Context) (string, error)
}

// notifier publishes change events stamped with the injected clock.
type notifier struct {
	bus   events.Publisher
	clock timex.Clock
}

func (n notifier) publish(topics ...events.Topic) {
	if n.bus == nil {
		return
	}
	at := n.clock.Now()
	for _, t := range topics {
		n.bus.Publish(events.Event{Topic: t, At: at})
	}
}

func (n notifier) nowMs() int64 {
	return n.clock.Now().UnixMilli()
}
