package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/babylog/internal/client/events"
	"github.com/dmitrijs2005/babylog/internal/client/models"
	"github.com/dmitrijs2005/babylog/internal/client/repositories/kv"
	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/logging"
	"github.com/dmitrijs2005/babylog/internal/timex"
)

// WeightService keeps weight measurements, scoped like entries.
type WeightService interface {
	Add(ctx context.Context, lb float64, timestamp int64, notes string) (models.WeightEntry, error)
	List(ctx context.Context) ([]models.WeightEntry, error)
	Delete(ctx context.Context, id string) error
}

type weightService struct {
	store    *kv.JSONStore
	profiles ProfileService
	log      logging.Logger
	notifier
}

func NewWeightService(store *kv.JSONStore, profiles ProfileService, bus events.Publisher, clock timex.Clock, logger logging.Logger) WeightService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &weightService{
		store:    store,
		profiles: profiles,
		log:      logger.With("module", "weights"),
		notifier: notifier{bus: bus, clock: clock},
	}
}

// Add records a measurement for the active profile. When it is the most
// recent one, the profile's current weight follows it. A failure to refresh
// the profile is logged; the measurement itself is already stored.
func (s *weightService) Add(ctx context.Context, lb float64, timestamp int64, notes string) (models.WeightEntry, error) {
	if timestamp == 0 {
		timestamp = s.nowMs()
	}
	active, err := s.profiles.GetActiveBabyID(ctx)
	if err != nil {
		return models.WeightEntry{}, fmt.Errorf("resolve active profile: %w", err)
	}
	w := models.WeightEntry{ID: models.NewID(), BabyID: active, Weight: lb, Timestamp: timestamp, Notes: notes}
	if err := w.Validate(); err != nil {
		return models.WeightEntry{}, err
	}

	latest := true
	err = kv.MutateList(ctx, s.store, kv.KeyWeights, func(list []models.WeightEntry) ([]models.WeightEntry, error) {
		for _, x := range list {
			if x.BabyID == active && x.Timestamp > w.Timestamp {
				latest = false
			}
		}
		return append(list, w), nil
	})
	if err != nil {
		return models.WeightEntry{}, fmt.Errorf("add weight: %w", err)
	}

	if latest && active != "" {
		if err := s.profiles.SetCurrentWeight(ctx, active, lb); err != nil {
			s.log.Error(ctx, "update current weight failed", "baby_id", active, "error", err)
		}
	}

	s.publish(events.TopicWeights)
	return w, nil
}

// List returns the visible measurements oldest first.
func (s *weightService) List(ctx context.Context) ([]models.WeightEntry, error) {
	active, err := s.profiles.GetActiveBabyID(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve active profile: %w", err)
	}
	all, err := kv.LoadList[models.WeightEntry](ctx, s.store, kv.KeyWeights)
	if err != nil {
		return nil, err
	}

	out := make([]models.WeightEntry, 0, len(all))
	for _, w := range all {
		if active == "" || w.BabyID == "" || w.BabyID == active {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func (s *weightService) Delete(ctx context.Context, id string) error {
	err := kv.MutateList(ctx, s.store, kv.KeyWeights, func(list []models.WeightEntry) ([]models.WeightEntry, error) {
		for i := range list {
			if list[i].ID == id {
				return append(list[:i], list[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("weight %q: %w", id, common.ErrNotFound)
	})
	if err != nil {
		return fmt.Errorf("delete weight: %w", err)
	}
	s.publish(events.TopicWeights)
	return nil
}
