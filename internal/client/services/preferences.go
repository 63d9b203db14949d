package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/babylog/internal/client/events"
	"github.com/dmitrijs2005/babylog/internal/client/models"
	"github.com/dmitrijs2005/babylog/internal/client/repositories/kv"
	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/timex"
)

// PreferenceService stores the single settings record. Loads always
// start from the defaults so older records gain new fields.
type PreferenceService interface {
	Load(ctx context.Context) (models.Preferences, error)
	Save(ctx context.Context, p models.Preferences) error
	Update(ctx context.Context, patch models.PreferencesPatch) (models.Preferences, error)
}

type preferenceService struct {
	store *kv.JSONStore
	notifier
}

func NewPreferenceService(store *kv.JSONStore, bus events.Publisher, clock timex.Clock) PreferenceService {
	return &preferenceService{store: store, notifier: notifier{bus: bus, clock: clock}}
}

// Load returns the stored preferences merged over the defaults. On error
// the defaults are returned together with the error.
func (s *preferenceService) Load(ctx context.Context) (models.Preferences, error) {
	p := models.DefaultPreferences()
	if _, err := s.store.Load(ctx, kv.KeyPreferences, &p); err != nil {
		return models.DefaultPreferences(), fmt.Errorf("load preferences: %w", err)
	}
	return p.Normalize(), nil
}

func (s *preferenceService) Save(ctx context.Context, p models.Preferences) error {
	unlock := s.store.Lock(kv.KeyPreferences)
	defer unlock()

	if err := s.store.Save(ctx, kv.KeyPreferences, p.Normalize()); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	s.publish(events.TopicPreferences)
	return nil
}

// Update applies patch to the current record. A corrupt stored record is
// replaced rather than blocking the update.
func (s *preferenceService) Update(ctx context.Context, patch models.PreferencesPatch) (models.Preferences, error) {
	unlock := s.store.Lock(kv.KeyPreferences)
	defer unlock()

	current, err := s.Load(ctx)
	if err != nil && !errors.Is(err, common.ErrCorruptData) {
		return models.DefaultPreferences(), err
	}

	next := patch.Apply(current)
	if err := s.store.Save(ctx, kv.KeyPreferences, next); err != nil {
		return current, fmt.Errorf("save preferences: %w", err)
	}
	s.publish(events.TopicPreferences)
	return next, nil
}
