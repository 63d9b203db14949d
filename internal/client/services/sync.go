package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/babylog/internal/client/client"
	"github.com/dmitrijs2005/babylog/internal/client/events"
	"github.com/dmitrijs2005/babylog/internal/client/models"
	"github.com/dmitrijs2005/babylog/internal/client/repositories/kv"
	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/syncpb"
	"github.com/dmitrijs2005/babylog/internal/timex"
)

const syncEnabledValue = "true"

type SyncStatus struct {
	Enabled   bool   `json:"enabled"`
	RemoteID  string `json:"remoteId,omitempty"`
	ProfileID string `json:"profileId,omitempty"`
	Version   int64  `json:"version"`
}

// SyncService links one local profile to a remote copy and moves entries
// between the two. Remote entries are merged by id; nothing is overwritten.
//
// Contract:
//   - Enable creates the remote profile once and stores the linkage to the
//     profile that was active at the time.
//   - Push, Pull and Watch only touch the linked profile's entries, whatever
//     profile is active later.
//   - Push/Pull/Watch/UploadPhoto fail with common.ErrSyncDisabled until
//     Enable succeeds.
//   - Pull and Watch advance the stored version only after a merge.
type SyncService interface {
	Enable(ctx context.Context) (SyncStatus, error)
	Disable(ctx context.Context) error
	Status(ctx context.Context) (SyncStatus, error)
	Push(ctx context.Context) (int, error)
	Pull(ctx context.Context) (int, error)
	Watch(ctx context.Context) error
	UploadPhoto(ctx context.Context, path string) (string, error)
}

type syncService struct {
	store    *kv.JSONStore
	remote   client.Client
	profiles ProfileService
	entries  EntryService
	notifier
}

func NewSyncService(store *kv.JSONStore, remote client.Client, profiles ProfileService, entries EntryService, bus events.Publisher, clock timex.Clock) SyncService {
	return &syncService{
		store:    store,
		remote:   remote,
		profiles: profiles,
		entries:  entries,
		notifier: notifier{bus: bus, clock: clock},
	}
}

func (s *syncService) Status(ctx context.Context) (SyncStatus, error) {
	enabled, err := s.store.GetString(ctx, kv.KeySyncEnabled)
	if err != nil {
		return SyncStatus{}, err
	}
	if enabled != syncEnabledValue {
		return SyncStatus{}, nil
	}
	remoteID, err := s.store.GetString(ctx, kv.KeySyncBabyID)
	if err != nil {
		return SyncStatus{}, err
	}
	profileID, err := s.store.GetString(ctx, kv.KeySyncProfileID)
	if err != nil {
		return SyncStatus{}, err
	}
	version, err := s.version(ctx)
	if err != nil {
		return SyncStatus{}, err
	}
	return SyncStatus{
		Enabled:   remoteID != "" && profileID != "",
		RemoteID:  remoteID,
		ProfileID: profileID,
		Version:   version,
	}, nil
}

func (s *syncService) Enable(ctx context.Context) (SyncStatus, error) {
	st, err := s.Status(ctx)
	if err != nil {
		return SyncStatus{}, err
	}
	if st.Enabled {
		return st, nil
	}

	active, err := s.profiles.GetActiveBabyID(ctx)
	if err != nil {
		return SyncStatus{}, err
	}
	if active == "" {
		return SyncStatus{}, common.ErrNoProfile
	}
	p, err := s.profiles.Get(ctx, active)
	if err != nil {
		return SyncStatus{}, err
	}

	remoteID, token, err := s.remote.CreateProfile(ctx, p.Name, p.DateOfBirth)
	if err != nil {
		return SyncStatus{}, fmt.Errorf("create remote profile: %w", err)
	}

	for _, kvp := range [][2]string{
		{kv.KeySyncBabyID, remoteID},
		{kv.KeySyncProfileID, active},
		{kv.KeySyncToken, token},
		{kv.KeySyncVersion, "0"},
		{kv.KeySyncEnabled, syncEnabledValue},
	} {
		if err := s.store.SetString(ctx, kvp[0], kvp[1]); err != nil {
			return SyncStatus{}, err
		}
	}

	s.publish(events.TopicSync)
	return SyncStatus{Enabled: true, RemoteID: remoteID, ProfileID: active}, nil
}

func (s *syncService) Disable(ctx context.Context) error {
	for _, key := range []string{kv.KeySyncEnabled, kv.KeySyncBabyID, kv.KeySyncProfileID, kv.KeySyncToken, kv.KeySyncVersion} {
		if err := s.store.Remove(ctx, key); err != nil {
			return err
		}
	}
	s.remote.SetAccessToken("")
	s.publish(events.TopicSync)
	return nil
}

// link returns the stored linkage and primes the client with the stored
// token.
func (s *syncService) link(ctx context.Context) (SyncStatus, error) {
	st, err := s.Status(ctx)
	if err != nil {
		return SyncStatus{}, err
	}
	if !st.Enabled {
		return SyncStatus{}, common.ErrSyncDisabled
	}
	token, err := s.store.GetString(ctx, kv.KeySyncToken)
	if err != nil {
		return SyncStatus{}, err
	}
	s.remote.SetAccessToken(token)
	return st, nil
}

func (s *syncService) version(ctx context.Context) (int64, error) {
	raw, err := s.store.GetString(ctx, kv.KeySyncVersion)
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: sync version %q", common.ErrCorruptData, raw)
	}
	return v, nil
}

func (s *syncService) setVersion(ctx context.Context, v int64) error {
	return s.store.SetString(ctx, kv.KeySyncVersion, strconv.FormatInt(v, 10))
}

func (s *syncService) Push(ctx context.Context) (int, error) {
	st, err := s.link(ctx)
	if err != nil {
		return 0, err
	}
	all, err := s.entries.GetAllEntries(ctx)
	if err != nil {
		return 0, err
	}
	local := make([]models.Entry, 0, len(all))
	for _, e := range all {
		if e.BabyID == st.ProfileID {
			local = append(local, e)
		}
	}
	if len(local) == 0 {
		return 0, nil
	}

	wire, err := ToWire(local)
	if err != nil {
		return 0, err
	}
	accepted, _, err := s.remote.PushEntries(ctx, st.RemoteID, wire)
	if err != nil {
		return 0, fmt.Errorf("push entries: %w", err)
	}
	s.publish(events.TopicSync)
	return accepted, nil
}

func (s *syncService) Pull(ctx context.Context) (int, error) {
	st, err := s.link(ctx)
	if err != nil {
		return 0, err
	}
	wire, version, err := s.remote.PullEntries(ctx, st.RemoteID, st.Version)
	if err != nil {
		return 0, fmt.Errorf("pull entries: %w", err)
	}
	n, err := s.merge(ctx, st.ProfileID, wire, version)
	if err != nil {
		return 0, err
	}
	s.publish(events.TopicSync)
	return n, nil
}

// Watch merges live updates until ctx is cancelled or the stream ends.
func (s *syncService) Watch(ctx context.Context) error {
	st, err := s.link(ctx)
	if err != nil {
		return err
	}

	err = s.remote.Watch(ctx, st.RemoteID, st.Version, func(ev syncpb.WatchEvent) error {
		if _, err := s.merge(ctx, st.ProfileID, ev.Entries, ev.Version); err != nil {
			return err
		}
		s.publish(events.TopicSync)
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// merge stores remote rows under the linked profile id.
func (s *syncService) merge(ctx context.Context, profileID string, wire []syncpb.Entry, version int64) (int, error) {
	n, err := s.entries.MergeRemote(ctx, profileID, FromWire(wire))
	if err != nil {
		return 0, err
	}
	current, err := s.version(ctx)
	if err != nil {
		return n, err
	}
	if version > current {
		if err := s.setVersion(ctx, version); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (s *syncService) UploadPhoto(ctx context.Context, path string) (string, error) {
	st, err := s.link(ctx)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	key, url, err := s.remote.PhotoUploadURL(ctx, st.RemoteID)
	if err != nil {
		return "", fmt.Errorf("request upload url: %w", err)
	}
	if err := s.remote.UploadPhoto(ctx, url, contentType, data); err != nil {
		return "", err
	}
	if err := s.profiles.SetPhoto(ctx, st.ProfileID, key); err != nil {
		return "", err
	}
	return key, nil
}

// ToWire wraps each entry as an opaque JSON payload keyed by its id.
func ToWire(list []models.Entry) ([]syncpb.Entry, error) {
	out := make([]syncpb.Entry, 0, len(list))
	for _, e := range list {
		payload, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("encode entry %s: %w", e.ID, err)
		}
		out = append(out, syncpb.Entry{ID: e.ID, Payload: payload})
	}
	return out, nil
}

// FromWire decodes payloads, dropping rows that are not valid entries.
func FromWire(list []syncpb.Entry) []models.Entry {
	out := make([]models.Entry, 0, len(list))
	for _, w := range list {
		var e models.Entry
		if err := json.Unmarshal(w.Payload, &e); err != nil {
			continue
		}
		if e.ID == "" {
			e.ID = w.ID
		}
		out = append(out, e)
	}
	return out
}
