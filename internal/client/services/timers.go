package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/babylog/internal/client/events"
	"github.com/dmitrijs2005/babylog/internal/client/models"
	"github.com/dmitrijs2005/babylog/internal/client/repositories/kv"
	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/timex"
)

// EntrySaver is the part of EntryService a timer needs on stop.
type EntrySaver interface {
	Save(ctx context.Context, e models.Entry) (models.Entry, error)
	GetAllEntries(ctx context.Context) ([]models.Entry, error)
}

// TimerService is one single-instance timer (sleep or breast feeding).
// The presence of its key is the running flag; a session is only visible
// while its owner is the active profile.
type TimerService interface {
	Kind() models.TimerKind
	Start(ctx context.Context, side *models.BreastSide) (models.ActiveSession, error)
	State(ctx context.Context) (models.TimerState, error)
	GetActive(ctx context.Context) (*models.ActiveSession, error)
	Stop(ctx context.Context) (*models.Entry, error)
	Elapsed(ctx context.Context) (minutes int, running bool, err error)
}

type timerService struct {
	kind     models.TimerKind
	key      string
	store    *kv.JSONStore
	entries  EntrySaver
	profiles ActiveProfileSource
	notifier
}

func NewTimerService(kind models.TimerKind, store *kv.JSONStore, entries EntrySaver, profiles ActiveProfileSource, bus events.Publisher, clock timex.Clock) (TimerService, error) {
	var key string
	switch kind {
	case models.TimerKindSleep:
		key = kv.KeyActiveSleep
	case models.TimerKindBreast:
		key = kv.KeyActiveBreast
	default:
		return nil, fmt.Errorf("%w: unknown timer kind %q", common.ErrInvalidTimer, kind)
	}
	return &timerService{
		kind:     kind,
		key:      key,
		store:    store,
		entries:  entries,
		profiles: profiles,
		notifier: notifier{bus: bus, clock: clock},
	}, nil
}

func (s *timerService) Kind() models.TimerKind {
	return s.kind
}

// Start writes a fresh session, replacing any session already stored.
func (s *timerService) Start(ctx context.Context, side *models.BreastSide) (models.ActiveSession, error) {
	if s.kind == models.TimerKindBreast {
		if side == nil || !side.Valid() {
			return models.ActiveSession{}, fmt.Errorf("%w: breast timer needs a side", common.ErrInvalidTimer)
		}
		side = models.Ptr(*side)
	} else {
		side = nil
	}

	active, err := s.profiles.GetActiveBabyID(ctx)
	if err != nil {
		return models.ActiveSession{}, fmt.Errorf("resolve active profile: %w", err)
	}

	session := models.ActiveSession{
		ID:         models.NewID(),
		Kind:       s.kind,
		StartTime:  s.nowMs(),
		BreastSide: side,
		IsActive:   true,
		BabyID:     active,
	}

	unlock := s.store.Lock(s.key)
	defer unlock()

	if err := s.store.Save(ctx, s.key, session); err != nil {
		return models.ActiveSession{}, fmt.Errorf("start %s timer: %w", s.kind, err)
	}

	s.publish(events.TopicTimers)
	return session, nil
}

func (s *timerService) State(ctx context.Context) (models.TimerState, error) {
	session, err := s.GetActive(ctx)
	if err != nil {
		return models.Idle{}, err
	}
	if session == nil {
		return models.Idle{}, nil
	}
	return models.Running{Session: *session}, nil
}

func (s *timerService) GetActive(ctx context.Context) (*models.ActiveSession, error) {
	var session models.ActiveSession
	found, err := s.store.Load(ctx, s.key, &session)
	if err != nil {
		return nil, fmt.Errorf("load %s timer: %w", s.kind, err)
	}
	if !found {
		return nil, nil
	}

	active, err := s.profiles.GetActiveBabyID(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve active profile: %w", err)
	}
	if session.BabyID != active {
		return nil, nil
	}
	return &session, nil
}

// Stop completes the visible session into an Entry. With nothing running
// it returns (nil, nil) and writes nothing. If saving the entry fails the
// session is kept. If the entry was saved but the session could not be
// cleared, the entry is returned along with the error and a later Stop
// clears the session without saving it again.
func (s *timerService) Stop(ctx context.Context) (*models.Entry, error) {
	unlock := s.store.Lock(s.key)
	defer unlock()

	session, err := s.GetActive(ctx)
	if err != nil || session == nil {
		return nil, err
	}

	saved, err := s.completed(ctx, session)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		now := s.clock.Now()
		entry := session.Complete(models.NewEntryID(string(s.entryType()), now), now.UnixMilli())

		e, err := s.entries.Save(ctx, entry)
		if err != nil {
			return nil, fmt.Errorf("stop %s timer: %w", s.kind, err)
		}
		saved = &e
	}
	if err := s.store.Remove(ctx, s.key); err != nil {
		return saved, fmt.Errorf("clear %s timer: %w", s.kind, err)
	}

	s.publish(events.TopicTimers)
	return saved, nil
}

func (s *timerService) entryType() models.EntryType {
	if s.kind == models.TimerKindBreast {
		return models.EntryTypeFeeding
	}
	return models.EntryTypeSleep
}

// completed finds an entry already recorded for session by an earlier Stop.
func (s *timerService) completed(ctx context.Context, session *models.ActiveSession) (*models.Entry, error) {
	all, err := s.entries.GetAllEntries(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		e := all[i]
		if e.BabyID == session.BabyID && e.Timestamp == session.StartTime && e.EndTime != nil && e.Type == s.entryType() {
			return &e, nil
		}
	}
	return nil, nil
}

func (s *timerService) Elapsed(ctx context.Context) (int, bool, error) {
	session, err := s.GetActive(ctx)
	if err != nil || session == nil {
		return 0, false, err
	}
	return session.ElapsedMinutes(s.nowMs()), true, nil
}
