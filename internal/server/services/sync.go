// Package services holds the sync server's business logic on top of the
// repositories, the broker and the photo store.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/logging"
	"github.com/dmitrijs2005/babylog/internal/server/auth"
	"github.com/dmitrijs2005/babylog/internal/server/broker"
	"github.com/dmitrijs2005/babylog/internal/server/models"
	"github.com/dmitrijs2005/babylog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/babylog/internal/server/storage"
	"github.com/dmitrijs2005/babylog/internal/timex"
	"github.com/google/uuid"
)

var (
	ErrPhotosDisabled = errors.New("photo storage is not configured")
	ErrSlowSubscriber = errors.New("watch subscriber fell behind")
	ErrInvalidBabyID  = errors.New("invalid baby id")
	ErrTooManyEntries = errors.New("too many entries in one push")
)

const (
	maxEntriesPerPush  = 5000
	maxEntryPayloadLen = 64 << 10
)

// SyncService implements the remote side of profile sync.
type SyncService interface {
	// CreateProfile registers a baby and returns its id and an access token.
	CreateProfile(ctx context.Context, name string, dateOfBirth int64) (babyID, token string, err error)
	// Push stores entries under one new version and notifies watchers.
	Push(ctx context.Context, babyID string, entries []*models.Entry) (accepted int, version int64, err error)
	// Pull returns the entries written after sinceVersion and the current version.
	Pull(ctx context.Context, babyID string, sinceVersion int64) ([]*models.Entry, int64, error)
	// Watch sends a catch-up batch, then every later push, until ctx ends.
	Watch(ctx context.Context, babyID string, sinceVersion int64, send func(broker.Event) error) error
	// PhotoUploadURL presigns an upload slot and records it as the baby's photo.
	PhotoUploadURL(ctx context.Context, babyID string) (key, url string, err error)
	// Authenticate returns the baby id a token was issued for.
	Authenticate(token string) (string, error)
}

type Options struct {
	SecretKey     []byte
	TokenValidity time.Duration
	Clock         timex.Clock
	Logger        logging.Logger
	// Photos may be nil when no bucket is configured.
	Photos storage.PhotoStore
}

type syncService struct {
	repos  repomanager.RepositoryManager
	broker *broker.Broker
	opts   Options
	log    logging.Logger
}

// NewSyncService wires the service.
//
// Contract:
//   - every push that stores at least one entry bumps the baby version by one
//     and all its entries carry that version;
//   - a push is all or nothing;
//   - watchers of the baby see each accepted push exactly once, in version
//     order, unless they are dropped for being slow.
func NewSyncService(repos repomanager.RepositoryManager, b *broker.Broker, opts Options) SyncService {
	if opts.Clock == nil {
		opts.Clock = timex.SystemClock()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &syncService{repos: repos, broker: b, opts: opts, log: opts.Logger.With("module", "sync_service")}
}

func (s *syncService) Authenticate(token string) (string, error) {
	return auth.BabyIDFromToken(token, s.opts.SecretKey, s.opts.Clock.Now)
}

func (s *syncService) CreateProfile(ctx context.Context, name string, dateOfBirth int64) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", fmt.Errorf("%w: name is required", common.ErrInvalidProfile)
	}

	baby := &models.Baby{ID: uuid.NewString(), Name: name, DateOfBirth: dateOfBirth}
	err := s.repos.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		return r.Babies.Create(ctx, baby)
	})
	if err != nil {
		return "", "", fmt.Errorf("create profile: %w", err)
	}

	token, err := auth.GenerateToken(baby.ID, s.opts.SecretKey, s.opts.TokenValidity, s.opts.Clock.Now())
	if err != nil {
		return "", "", err
	}

	s.log.Info(ctx, "profile created", "baby_id", baby.ID)
	return baby.ID, token, nil
}

func validateBabyID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidBabyID, id)
	}
	return nil
}

func validateEntry(e *models.Entry) error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("%w: missing id", common.ErrInvalidEntry)
	}
	if len(e.Payload) > maxEntryPayloadLen {
		return fmt.Errorf("%w: payload of %s too large", common.ErrInvalidEntry, e.ID)
	}
	var obj map[string]any
	if err := json.Unmarshal(e.Payload, &obj); err != nil || obj == nil {
		return fmt.Errorf("%w: payload of %s is not a JSON object", common.ErrInvalidEntry, e.ID)
	}
	return nil
}

func (s *syncService) Push(ctx context.Context, babyID string, entries []*models.Entry) (int, int64, error) {
	if err := validateBabyID(babyID); err != nil {
		return 0, 0, err
	}
	if len(entries) > maxEntriesPerPush {
		return 0, 0, fmt.Errorf("%w: %d > %d", ErrTooManyEntries, len(entries), maxEntriesPerPush)
	}
	for _, e := range entries {
		if err := validateEntry(e); err != nil {
			return 0, 0, err
		}
	}

	if len(entries) == 0 {
		baby, err := s.repos.Repositories().Babies.Get(ctx, babyID)
		if err != nil {
			return 0, 0, fmt.Errorf("push: %w", err)
		}
		return 0, baby.Version, nil
	}

	var version int64
	stored := make([]*models.Entry, 0, len(entries))
	err := s.repos.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		v, err := r.Babies.IncrementVersion(ctx, babyID)
		if err != nil {
			return err
		}
		version = v
		for _, e := range entries {
			item := &models.Entry{ID: e.ID, BabyID: babyID, Payload: e.Payload, Version: v}
			if err := r.Entries.Upsert(ctx, item); err != nil {
				return err
			}
			stored = append(stored, item)
		}
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("push: %w", err)
	}

	s.broker.Publish(broker.Event{BabyID: babyID, Version: version, Entries: stored})
	s.log.Debug(ctx, "push accepted", "baby_id", babyID, "entries", len(stored), "version", version)
	return len(stored), version, nil
}

func (s *syncService) Pull(ctx context.Context, babyID string, sinceVersion int64) ([]*models.Entry, int64, error) {
	if err := validateBabyID(babyID); err != nil {
		return nil, 0, err
	}
	r := s.repos.Repositories()

	baby, err := r.Babies.Get(ctx, babyID)
	if err != nil {
		return nil, 0, fmt.Errorf("pull: %w", err)
	}
	entries, err := r.Entries.SelectUpdated(ctx, babyID, sinceVersion)
	if err != nil {
		return nil, 0, fmt.Errorf("pull: %w", err)
	}

	version := baby.Version
	for _, e := range entries {
		version = max(version, e.Version)
	}
	return entries, version, nil
}

func (s *syncService) Watch(ctx context.Context, babyID string, sinceVersion int64, send func(broker.Event) error) error {
	if err := validateBabyID(babyID); err != nil {
		return err
	}

	// Subscribe before the catch-up read so no push falls in between.
	sub := s.broker.Subscribe(babyID)
	defer sub.Cancel()

	entries, version, err := s.Pull(ctx, babyID, sinceVersion)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		if err := send(broker.Event{BabyID: babyID, Version: version, Entries: entries}); err != nil {
			return err
		}
	}
	seen := max(version, sinceVersion)

	s.log.Debug(ctx, "watch started", "baby_id", babyID, "since", sinceVersion)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-sub.C:
			if !ok {
				if sub.Dropped() {
					return ErrSlowSubscriber
				}
				return nil
			}
			if ev.Version <= seen {
				continue
			}
			if err := send(ev); err != nil {
				return err
			}
			seen = ev.Version
		}
	}
}

func photoKey(babyID string, now time.Time) string {
	return fmt.Sprintf("babies/%s/photos/%d/%02d/%02d/%s.jpg", babyID, now.Year(), now.Month(), now.Day(), uuid.New())
}

func (s *syncService) PhotoUploadURL(ctx context.Context, babyID string) (string, string, error) {
	if s.opts.Photos == nil {
		return "", "", ErrPhotosDisabled
	}
	if err := validateBabyID(babyID); err != nil {
		return "", "", err
	}

	key := photoKey(babyID, s.opts.Clock.Now().UTC())
	url, err := s.opts.Photos.PresignPut(ctx, key)
	if err != nil {
		return "", "", err
	}

	err = s.repos.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		return r.Babies.SetPhotoKey(ctx, babyID, key)
	})
	if err != nil {
		return "", "", fmt.Errorf("photo upload url: %w", err)
	}
	return key, url, nil
}
