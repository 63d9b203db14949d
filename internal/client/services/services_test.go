package services

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/babylog/internal/client/events"
	"github.com/dmitrijs2005/babylog/internal/client/models"
	"github.com/dmitrijs2005/babylog/internal/client/repositories/kv"
	"github.com/dmitrijs2005/babylog/internal/logging"
	"github.com/dmitrijs2005/babylog/internal/timex"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type harness struct {
	store *kv.MemoryStore
	js    *kv.JSONStore
	bus   *events.Bus
	clock *timex.FixedClock
	logs  *bytes.Buffer
	dl    *DataLayer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store: kv.NewMemoryStore(),
		bus:   events.NewBus(),
		clock: timex.NewFixedClock(t0),
		logs:  &bytes.Buffer{},
	}
	h.js = kv.NewJSONStore(h.store)

	dl, err := NewDataLayer(Deps{
		Store:    h.store,
		Bus:      h.bus,
		Clock:    h.clock,
		Location: time.UTC,
		Logger:   logging.New(h.logs, "text", "debug"),
	})
	require.NoError(t, err)
	h.dl = dl
	return h
}

func (h *harness) addProfile(t *testing.T, id, name string) models.BabyProfile {
	t.Helper()
	p, ok := h.dl.SaveBabyProfile(context.Background(), models.BabyProfile{
		ID:          id,
		Name:        name,
		DateOfBirth: t0.AddDate(0, -2, 0).UnixMilli(),
	})
	require.True(t, ok)
	return p
}

func (h *harness) use(t *testing.T, id string) {
	t.Helper()
	require.True(t, h.dl.SetActiveBabyID(context.Background(), id))
}

// seed writes entries straight to the store, bypassing stamping.
func (h *harness) seed(t *testing.T, list ...models.Entry) {
	t.Helper()
	require.NoError(t, h.js.Save(context.Background(), kv.KeyEntries, list))
}

func (h *harness) rawEntries(t *testing.T) []models.Entry {
	t.Helper()
	list, err := kv.LoadList[models.Entry](context.Background(), h.js, kv.KeyEntries)
	require.NoError(t, err)
	return list
}

// recorder captures published topics.
type recorder struct {
	mu     sync.Mutex
	topics []events.Topic
}

func (h *harness) record() *recorder {
	r := &recorder{}
	h.bus.Subscribe(func(ev events.Event) {
		r.mu.Lock()
		r.topics = append(r.topics, ev.Topic)
		r.mu.Unlock()
	})
	return r
}

func (r *recorder) count(topic events.Topic) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.topics {
		if t == topic {
			n++
		}
	}
	return n
}

func formula(oz float64) models.Entry {
	return models.Entry{
		Type:        models.EntryTypeFeeding,
		FeedingType: models.Ptr(models.FeedingTypeFormula),
		Amount:      models.Ptr(oz),
	}
}

func diaper(kind models.DiaperType) models.Entry {
	return models.Entry{Type: models.EntryTypeDiaper, DiaperType: models.Ptr(kind)}
}

func sleepEntry(id, babyID string, start time.Time, minutes int) models.Entry {
	return models.Entry{
		ID:        id,
		Type:      models.EntryTypeSleep,
		Timestamp: start.UnixMilli(),
		Duration:  models.Ptr(minutes),
		EndTime:   models.Ptr(start.Add(time.Duration(minutes) * time.Minute).UnixMilli()),
		BabyID:    babyID,
	}
}

func ids(list []models.Entry) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}
