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

// ProfileService is the registry of baby profiles and of the active one.
//
// Contract:
//   - GetAll replays the legacy single-profile key on first use.
//   - Save upserts by id, stamping id and timestamps as needed.
//   - GetActiveBabyID adopts (and persists) the first profile when unset.
//   - Delete cascades to the profile's entries, weights and running timers
//     but leaves the active id alone.
//   - MigrateOrphans stamps the first profile's id onto unowned rows.
type ProfileService interface {
	GetAll(ctx context.Context) ([]models.BabyProfile, error)
	Get(ctx context.Context, id string) (models.BabyProfile, error)
	Save(ctx context.Context, p models.BabyProfile) (models.BabyProfile, error)
	GetActiveBabyID(ctx context.Context) (string, error)
	SetActiveBabyID(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	SetCurrentWeight(ctx context.Context, id string, lb float64) error
	SetPhoto(ctx context.Context, id, uri string) error
	MigrateLegacyProfile(ctx context.Context) (bool, error)
	MigrateOrphans(ctx context.Context) (int, error)
	Bootstrap(ctx context.Context) error
}

type profileService struct {
	store *kv.JSONStore
	notifier
}

func NewProfileService(store *kv.JSONStore, bus events.Publisher, clock timex.Clock) ProfileService {
	return &profileService{store: store, notifier: notifier{bus: bus, clock: clock}}
}

func (s *profileService) GetAll(ctx context.Context) ([]models.BabyProfile, error) {
	if _, err := s.MigrateLegacyProfile(ctx); err != nil {
		return nil, err
	}
	return kv.LoadList[models.BabyProfile](ctx, s.store, kv.KeyProfiles)
}

func (s *profileService) Get(ctx context.Context, id string) (models.BabyProfile, error) {
	list, err := s.GetAll(ctx)
	if err != nil {
		return models.BabyProfile{}, err
	}
	for _, p := range list {
		if p.ID == id {
			return p, nil
		}
	}
	return models.BabyProfile{}, fmt.Errorf("profile %q: %w", id, common.ErrNotFound)
}

func (s *profileService) Save(ctx context.Context, p models.BabyProfile) (models.BabyProfile, error) {
	if err := p.Validate(); err != nil {
		return models.BabyProfile{}, err
	}
	if _, err := s.MigrateLegacyProfile(ctx); err != nil {
		return models.BabyProfile{}, err
	}

	now := s.nowMs()
	if p.ID == "" {
		p.ID = models.NewID()
	}

	err := kv.MutateList(ctx, s.store, kv.KeyProfiles, func(list []models.BabyProfile) ([]models.BabyProfile, error) {
		for i := range list {
			if list[i].ID == p.ID {
				if p.CreatedAt == 0 {
					p.CreatedAt = list[i].CreatedAt
				}
				p.UpdatedAt = now
				list[i] = p
				return list, nil
			}
		}
		if p.CreatedAt == 0 {
			p.CreatedAt = now
		}
		p.UpdatedAt = now
		return append(list, p), nil
	})
	if err != nil {
		return models.BabyProfile{}, fmt.Errorf("save profile %q: %w", p.ID, err)
	}

	s.publish(events.TopicProfiles)
	return p, nil
}

func (s *profileService) GetActiveBabyID(ctx context.Context) (string, error) {
	id, err := s.store.GetString(ctx, kv.KeyActiveBabyID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	list, err := s.GetAll(ctx)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", nil
	}

	unlock := s.store.Lock(kv.KeyActiveBabyID)
	defer unlock()

	// another caller may have adopted a profile meanwhile
	if id, err := s.store.GetString(ctx, kv.KeyActiveBabyID); err != nil || id != "" {
		return id, err
	}
	if err := s.store.SetString(ctx, kv.KeyActiveBabyID, list[0].ID); err != nil {
		return "", err
	}
	return list[0].ID, nil
}

func (s *profileService) SetActiveBabyID(ctx context.Context, id string) error {
	unlock := s.store.Lock(kv.KeyActiveBabyID)
	defer unlock()

	var err error
	if id == "" {
		err = s.store.Remove(ctx, kv.KeyActiveBabyID)
	} else {
		err = s.store.SetString(ctx, kv.KeyActiveBabyID, id)
	}
	if err != nil {
		return fmt.Errorf("set active profile: %w", err)
	}

	s.publish(events.TopicProfiles)
	return nil
}

func (s *profileService) Delete(ctx context.Context, id string) error {
	if _, err := s.MigrateLegacyProfile(ctx); err != nil {
		return err
	}

	err := kv.MutateList(ctx, s.store, kv.KeyProfiles, func(list []models.BabyProfile) ([]models.BabyProfile, error) {
		out := list[:0]
		for _, p := range list {
			if p.ID != id {
				out = append(out, p)
			}
		}
		return out, nil
	})
	if err != nil {
		return fmt.Errorf("delete profile %q: %w", id, err)
	}

	err = kv.MutateList(ctx, s.store, kv.KeyEntries, func(list []models.Entry) ([]models.Entry, error) {
		out := make([]models.Entry, 0, len(list))
		for _, e := range list {
			if e.BabyID != id {
				out = append(out, e)
			}
		}
		if len(out) == len(list) {
			return nil, kv.ErrUnchanged
		}
		return out, nil
	})
	if err != nil {
		return fmt.Errorf("delete entries of %q: %w", id, err)
	}

	err = kv.MutateList(ctx, s.store, kv.KeyWeights, func(list []models.WeightEntry) ([]models.WeightEntry, error) {
		out := make([]models.WeightEntry, 0, len(list))
		for _, w := range list {
			if w.BabyID != id {
				out = append(out, w)
			}
		}
		if len(out) == len(list) {
			return nil, kv.ErrUnchanged
		}
		return out, nil
	})
	if err != nil {
		return fmt.Errorf("delete weights of %q: %w", id, err)
	}

	for _, key := range []string{kv.KeyActiveSleep, kv.KeyActiveBreast} {
		if err := s.clearSessionOf(ctx, key, id); err != nil {
			return fmt.Errorf("clear %s of %q: %w", key, id, err)
		}
	}

	s.publish(events.TopicProfiles, events.TopicEntries, events.TopicWeights, events.TopicTimers)
	return nil
}

func (s *profileService) clearSessionOf(ctx context.Context, key, id string) error {
	unlock := s.store.Lock(key)
	defer unlock()

	var session models.ActiveSession
	found, err := s.store.Load(ctx, key, &session)
	if err != nil || !found || session.BabyID != id {
		return err
	}
	return s.store.Remove(ctx, key)
}

func (s *profileService) SetCurrentWeight(ctx context.Context, id string, lb float64) error {
	return s.update(ctx, id, func(p *models.BabyProfile) {
		p.CurrentWeight = models.Ptr(lb)
	})
}

func (s *profileService) SetPhoto(ctx context.Context, id, uri string) error {
	return s.update(ctx, id, func(p *models.BabyProfile) {
		p.PhotoURI = uri
	})
}

func (s *profileService) update(ctx context.Context, id string, fn func(*models.BabyProfile)) error {
	now := s.nowMs()
	err := kv.MutateList(ctx, s.store, kv.KeyProfiles, func(list []models.BabyProfile) ([]models.BabyProfile, error) {
		for i := range list {
			if list[i].ID == id {
				fn(&list[i])
				list[i].UpdatedAt = now
				return list, nil
			}
		}
		return nil, fmt.Errorf("profile %q: %w", id, common.ErrNotFound)
	})
	if err != nil {
		return err
	}
	s.publish(events.TopicProfiles)
	return nil
}

// MigrateLegacyProfile moves the pre-multi-profile record into the profile
// list and makes it active. The legacy key is deleted afterwards, so the
// replay happens once. It reports whether a replay took place.
func (s *profileService) MigrateLegacyProfile(ctx context.Context) (bool, error) {
	unlock := s.store.Lock(kv.KeyProfiles)
	defer unlock()

	var list []models.BabyProfile
	found, err := s.store.Load(ctx, kv.KeyProfiles, &list)
	if err != nil {
		return false, fmt.Errorf("load profiles: %w", err)
	}
	if found {
		return false, nil
	}

	var legacy models.BabyProfile
	found, err = s.store.Load(ctx, kv.KeyLegacyBaby, &legacy)
	if err != nil {
		return false, fmt.Errorf("load legacy profile: %w", err)
	}
	if !found {
		return false, nil
	}

	if legacy.ID == "" {
		legacy.ID = models.NewID()
	}
	now := s.nowMs()
	if legacy.CreatedAt == 0 {
		legacy.CreatedAt = now
	}
	if legacy.UpdatedAt == 0 {
		legacy.UpdatedAt = now
	}

	if err := s.store.Save(ctx, kv.KeyProfiles, []models.BabyProfile{legacy}); err != nil {
		return false, fmt.Errorf("save migrated profile: %w", err)
	}
	if err := s.store.SetString(ctx, kv.KeyActiveBabyID, legacy.ID); err != nil {
		return false, fmt.Errorf("activate migrated profile: %w", err)
	}
	if err := s.store.Remove(ctx, kv.KeyLegacyBaby); err != nil {
		return false, fmt.Errorf("remove legacy profile: %w", err)
	}

	s.publish(events.TopicProfiles)
	return true, nil
}

// MigrateOrphans stamps the first profile's id onto entries and weights
// that have none. It returns the number of rows changed.
func (s *profileService) MigrateOrphans(ctx context.Context) (int, error) {
	list, err := s.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(list) == 0 {
		return 0, nil
	}
	owner := list[0].ID

	var changed int
	err = kv.MutateList(ctx, s.store, kv.KeyEntries, func(entries []models.Entry) ([]models.Entry, error) {
		n := 0
		for i := range entries {
			if entries[i].BabyID == "" {
				entries[i].BabyID = owner
				n++
			}
		}
		if n == 0 {
			return nil, kv.ErrUnchanged
		}
		changed += n
		return entries, nil
	})
	if err != nil {
		return 0, fmt.Errorf("migrate entries: %w", err)
	}

	err = kv.MutateList(ctx, s.store, kv.KeyWeights, func(weights []models.WeightEntry) ([]models.WeightEntry, error) {
		n := 0
		for i := range weights {
			if weights[i].BabyID == "" {
				weights[i].BabyID = owner
				n++
			}
		}
		if n == 0 {
			return nil, kv.ErrUnchanged
		}
		changed += n
		return weights, nil
	})
	if err != nil {
		return changed, fmt.Errorf("migrate weights: %w", err)
	}

	if changed > 0 {
		s.publish(events.TopicEntries, events.TopicWeights)
	}
	return changed, nil
}

// Bootstrap runs the startup migrations.
func (s *profileService) Bootstrap(ctx context.Context) error {
	if _, err := s.MigrateLegacyProfile(ctx); err != nil {
		return err
	}
	_, err := s.MigrateOrphans(ctx)
	return err
}

// RemoveProfile deletes id unless it is the only profile, and moves the
// active selection to a remaining profile when id was active. It returns the
// active id afterwards.
func RemoveProfile(ctx context.Context, profiles ProfileService, id string) (string, error) {
	all, err := profiles.GetAll(ctx)
	if err != nil {
		return "", err
	}

	var next string
	found := false
	for _, p := range all {
		if p.ID == id {
			found = true
		} else if next == "" {
			next = p.ID
		}
	}
	if !found {
		return "", fmt.Errorf("profile %q: %w", id, common.ErrNotFound)
	}
	if next == "" {
		return "", common.ErrLastProfile
	}

	active, err := profiles.GetActiveBabyID(ctx)
	if err != nil {
		return "", err
	}
	if err := profiles.Delete(ctx, id); err != nil {
		return "", err
	}
	if active == id {
		if err := profiles.SetActiveBabyID(ctx, next); err != nil {
			return "", err
		}
		active = next
	}
	return active, nil
}
