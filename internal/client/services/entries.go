package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/babylog/internal/client/events"
	"github.com/dmitrijs2005/babylog/internal/client/models"
	"github.com/dmitrijs2005/babylog/internal/client/repositories/kv"
	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/timex"
)

// EntryService owns the care-event log stored under the entries key.
//
// Reads are scoped to the active profile; entries without an owner are
// visible to every profile, and with no active profile every entry is
// returned. Update and Delete address the unfiltered log.
type EntryService interface {
	GetEntries(ctx context.Context) ([]models.Entry, error)
	GetAllEntries(ctx context.Context) ([]models.Entry, error)
	Save(ctx context.Context, e models.Entry) (models.Entry, error)
	Update(ctx context.Context, id string, patch models.EntryPatch) (models.Entry, error)
	Delete(ctx context.Context, id string) error
	GetByDate(ctx context.Context, date string) ([]models.Entry, error)
	GetInRange(ctx context.Context, from, to time.Time) ([]models.Entry, error)
	MergeRemote(ctx context.Context, babyID string, incoming []models.Entry) (int, error)
	Location() *time.Location
}

type entryService struct {
	store    *kv.JSONStore
	profiles ActiveProfileSource
	loc      *time.Location
	notifier
}

func NewEntryService(store *kv.JSONStore, profiles ActiveProfileSource, bus events.Publisher, clock timex.Clock, loc *time.Location) EntryService {
	if loc == nil {
		loc = time.Local
	}
	return &entryService{store: store, profiles: profiles, loc: loc, notifier: notifier{bus: bus, clock: clock}}
}

func (s *entryService) Location() *time.Location {
	return s.loc
}

func (s *entryService) GetAllEntries(ctx context.Context) ([]models.Entry, error) {
	return kv.LoadList[models.Entry](ctx, s.store, kv.KeyEntries)
}

func (s *entryService) GetEntries(ctx context.Context) ([]models.Entry, error) {
	active, err := s.profiles.GetActiveBabyID(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve active profile: %w", err)
	}
	all, err := s.GetAllEntries(ctx)
	if err != nil {
		return nil, err
	}
	if active == "" {
		return all, nil
	}

	out := make([]models.Entry, 0, len(all))
	for _, e := range all {
		if e.VisibleTo(active) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *entryService) Save(ctx context.Context, e models.Entry) (models.Entry, error) {
	if e.BabyID == "" {
		active, err := s.profiles.GetActiveBabyID(ctx)
		if err != nil {
			return models.Entry{}, fmt.Errorf("resolve active profile: %w", err)
		}
		e.BabyID = active
	}
	now := s.clock.Now()
	if e.Timestamp == 0 {
		e.Timestamp = now.UnixMilli()
	}
	if e.ID == "" {
		e.ID = models.NewEntryID(string(e.Type), now)
	}
	if err := e.Validate(); err != nil {
		return models.Entry{}, err
	}

	err := kv.MutateList(ctx, s.store, kv.KeyEntries, func(list []models.Entry) ([]models.Entry, error) {
		for _, x := range list {
			if x.ID == e.ID {
				return nil, fmt.Errorf("%w: duplicate id %q", common.ErrInvalidEntry, e.ID)
			}
		}
		return append(list, e), nil
	})
	if err != nil {
		return models.Entry{}, fmt.Errorf("save entry: %w", err)
	}

	s.publish(events.TopicEntries)
	return e, nil
}

func (s *entryService) Update(ctx context.Context, id string, patch models.EntryPatch) (models.Entry, error) {
	var updated models.Entry
	err := kv.MutateList(ctx, s.store, kv.KeyEntries, func(list []models.Entry) ([]models.Entry, error) {
		for i := range list {
			if list[i].ID != id {
				continue
			}
			next := patch.Apply(list[i])
			if err := next.Validate(); err != nil {
				return nil, err
			}
			list[i] = next
			updated = next
			return list, nil
		}
		return nil, fmt.Errorf("entry %q: %w", id, common.ErrNotFound)
	})
	if err != nil {
		return models.Entry{}, fmt.Errorf("update entry: %w", err)
	}

	s.publish(events.TopicEntries)
	return updated, nil
}

func (s *entryService) Delete(ctx context.Context, id string) error {
	err := kv.MutateList(ctx, s.store, kv.KeyEntries, func(list []models.Entry) ([]models.Entry, error) {
		for i := range list {
			if list[i].ID == id {
				return append(list[:i], list[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("entry %q: %w", id, common.ErrNotFound)
	})
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	s.publish(events.TopicEntries)
	return nil
}

// GetByDate returns the visible entries whose local calendar date is date
// (YYYY-MM-DD).
func (s *entryService) GetByDate(ctx context.Context, date string) ([]models.Entry, error) {
	if _, err := time.ParseInLocation(models.DateLayout, date, s.loc); err != nil {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidDate, date)
	}
	all, err := s.GetEntries(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Entry, 0)
	for _, e := range all {
		if e.LocalDate(s.loc) == date {
			out = append(out, e)
		}
	}
	return out, nil
}

// GetInRange returns the visible entries with from <= timestamp < to.
func (s *entryService) GetInRange(ctx context.Context, from, to time.Time) ([]models.Entry, error) {
	all, err := s.GetEntries(ctx)
	if err != nil {
		return nil, err
	}
	lo, hi := from.UnixMilli(), to.UnixMilli()

	out := make([]models.Entry, 0)
	for _, e := range all {
		if e.Timestamp >= lo && e.Timestamp < hi {
			out = append(out, e)
		}
	}
	return out, nil
}

// MergeRemote appends the incoming entries whose ids are not yet known,
// assigning them to babyID. Invalid rows are skipped. It returns the
// number of entries added.
func (s *entryService) MergeRemote(ctx context.Context, babyID string, incoming []models.Entry) (int, error) {
	added := 0
	err := kv.MutateList(ctx, s.store, kv.KeyEntries, func(list []models.Entry) ([]models.Entry, error) {
		known := make(map[string]struct{}, len(list))
		for _, e := range list {
			known[e.ID] = struct{}{}
		}
		for _, e := range incoming {
			if e.ID == "" {
				continue
			}
			if _, ok := known[e.ID]; ok {
				continue
			}
			if babyID != "" {
				e.BabyID = babyID
			}
			e.IsActive = false
			if e.Validate() != nil {
				continue
			}
			known[e.ID] = struct{}{}
			list = append(list, e)
			added++
		}
		if added == 0 {
			return nil, kv.ErrUnchanged
		}
		return list, nil
	})
	if err != nil {
		return 0, fmt.Errorf("merge remote entries: %w", err)
	}

	if added > 0 {
		s.publish(events.TopicEntries)
	}
	return added, nil
}
