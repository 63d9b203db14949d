package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/server/broker"
	"github.com/dmitrijs2005/babylog/internal/server/models"
	"github.com/dmitrijs2005/babylog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/babylog/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePhotos struct {
	keys []string
	err  error
}

func (f *fakePhotos) PresignPut(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "https://s3.test/" + key + "?sig=1", nil
}

type fixture struct {
	svc    SyncService
	repos  *repomanager.MemoryRepositoryManager
	broker *broker.Broker
	photos *fakePhotos
	clock  *timex.FixedClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repos:  repomanager.NewMemoryRepositoryManager(),
		broker: broker.New(4),
		photos: &fakePhotos{},
		clock:  timex.NewFixedClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)),
	}
	f.svc = NewSyncService(f.repos, f.broker, Options{
		SecretKey:     []byte("test-secret"),
		TokenValidity: time.Hour,
		Clock:         f.clock,
		Photos:        f.photos,
	})
	return f
}

func (f *fixture) baby(t *testing.T) string {
	t.Helper()
	id, _, err := f.svc.CreateProfile(context.Background(), "Emma", 1700000000000)
	require.NoError(t, err)
	return id
}

func entry(id string) *models.Entry {
	return &models.Entry{ID: id, Payload: []byte(fmt.Sprintf(`{"id":%q,"type":"diaper"}`, id))}
}

/*************
 * Profiles and auth
 *************/

func TestCreateProfile_IssuesTokenForBaby(t *testing.T) {
	f := newFixture(t)

	id, token, err := f.svc.CreateProfile(context.Background(), "  Emma ", 1700000000000)
	require.NoError(t, err)

	got, err := f.svc.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	b, err := f.repos.Repositories().Babies.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Emma", b.Name)
	assert.Zero(t, b.Version)

	_, _, err = f.svc.CreateProfile(context.Background(), " ", 0)
	assert.ErrorIs(t, err, common.ErrInvalidProfile)

	_, err = f.svc.Authenticate("garbage")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestAuthenticate_ExpiresOnServiceClock(t *testing.T) {
	f := newFixture(t)

	_, token, err := f.svc.CreateProfile(context.Background(), "Emma", 1700000000000)
	require.NoError(t, err)

	f.clock.Advance(59 * time.Minute)
	_, err = f.svc.Authenticate(token)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Minute)
	_, err = f.svc.Authenticate(token)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

/*************
 * Push / Pull
 *************/

func TestPushPull_VersionsPerPush(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.baby(t)

	n, v1, err := f.svc.Push(ctx, id, []*models.Entry{entry("a"), entry("b")})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(1), v1)

	_, v2, err := f.svc.Push(ctx, id, []*models.Entry{entry("c")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), v2)

	all, version, err := f.svc.Pull(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})

	newer, _, err := f.svc.Pull(ctx, id, v1)
	require.NoError(t, err)
	require.Len(t, newer, 1)
	assert.Equal(t, "c", newer[0].ID)

	n, v, err := f.svc.Push(ctx, id, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, int64(2), v, "empty push does not bump the version")
}

func TestPush_ReplacesByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.baby(t)

	_, _, err := f.svc.Push(ctx, id, []*models.Entry{entry("a")})
	require.NoError(t, err)
	_, _, err = f.svc.Push(ctx, id, []*models.Entry{{ID: "a", Payload: []byte(`{"id":"a","notes":"edited"}`)}})
	require.NoError(t, err)

	all, _, err := f.svc.Pull(ctx, id, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Contains(t, string(all[0].Payload), "edited")
	assert.Equal(t, int64(2), all[0].Version)
}

func TestPush_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.baby(t)
	other := f.baby(t)
	_, _, err := f.svc.Push(ctx, other, []*models.Entry{entry("taken")})
	require.NoError(t, err)

	tests := []struct {
		name    string
		babyID  string
		entries []*models.Entry
		want    error
	}{
		{"malformed baby id", "not-a-uuid", []*models.Entry{entry("a")}, ErrInvalidBabyID},
		{"unknown baby", "00000000-0000-0000-0000-000000000000", []*models.Entry{entry("a")}, common.ErrNotFound},
		{"missing entry id", id, []*models.Entry{{Payload: []byte(`{}`)}}, common.ErrInvalidEntry},
		{"payload not an object", id, []*models.Entry{{ID: "x", Payload: []byte(`[1]`)}}, common.ErrInvalidEntry},
		{"payload too large", id, []*models.Entry{{ID: "x", Payload: []byte(`{"n":"` + strings.Repeat("a", maxEntryPayloadLen) + `"}`)}}, common.ErrInvalidEntry},
		{"id owned by another baby", id, []*models.Entry{entry("fresh"), entry("taken")}, common.ErrEntryConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.svc.Push(ctx, tt.babyID, tt.entries)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	all, version, err := f.svc.Pull(ctx, id, 0)
	require.NoError(t, err)
	assert.Empty(t, all, "rejected pushes are all or nothing")
	assert.Zero(t, version)
}

func TestPull_Errors(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.Pull(context.Background(), "bad", 0)
	assert.ErrorIs(t, err, ErrInvalidBabyID)
	_, _, err = f.svc.Pull(context.Background(), "00000000-0000-0000-0000-000000000000", 0)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

/*************
 * Watch
 *************/

func TestWatch_CatchUpThenLive(t *testing.T) {
	f := newFixture(t)
	id := f.baby(t)
	_, _, err := f.svc.Push(context.Background(), id, []*models.Entry{entry("a")})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan broker.Event, 4)
	done := make(chan error, 1)
	go func() {
		done <- f.svc.Watch(ctx, id, 0, func(ev broker.Event) error {
			events <- ev
			return nil
		})
	}()

	first := <-events
	assert.Equal(t, int64(1), first.Version)
	require.Len(t, first.Entries, 1)

	require.Eventually(t, func() bool { return f.broker.Subscribers(id) == 1 }, time.Second, 5*time.Millisecond)
	_, _, err = f.svc.Push(context.Background(), id, []*models.Entry{entry("b")})
	require.NoError(t, err)

	live := <-events
	assert.Equal(t, int64(2), live.Version)
	assert.Equal(t, "b", live.Entries[0].ID)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Zero(t, f.broker.Subscribers(id))
}

func TestWatch_SendErrorEndsStream(t *testing.T) {
	f := newFixture(t)
	id := f.baby(t)
	_, _, err := f.svc.Push(context.Background(), id, []*models.Entry{entry("a")})
	require.NoError(t, err)

	boom := errors.New("client gone")
	err = f.svc.Watch(context.Background(), id, 0, func(broker.Event) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestWatch_SlowSubscriberIsDropped(t *testing.T) {
	f := newFixture(t)
	id := f.baby(t)

	block := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- f.svc.Watch(context.Background(), id, 0, func(broker.Event) error {
			<-block
			return nil
		})
	}()
	require.Eventually(t, func() bool { return f.broker.Subscribers(id) == 1 }, time.Second, 5*time.Millisecond)

	// One event is taken by the blocked send, four fill the queue, the next overflows.
	for i := 0; i < 8; i++ {
		_, _, err := f.svc.Push(context.Background(), id, []*models.Entry{entry(fmt.Sprintf("e%d", i))})
		require.NoError(t, err)
	}
	close(block)
	assert.ErrorIs(t, <-done, ErrSlowSubscriber)
}

/*************
 * Photos
 *************/

func TestPhotoUploadURL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.baby(t)

	key, url, err := f.svc.PhotoUploadURL(ctx, id)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "babies/"+id+"/photos/2026/03/14/"), key)
	assert.Contains(t, url, key)

	b, err := f.repos.Repositories().Babies.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, key, b.PhotoKey)

	_, _, err = f.svc.PhotoUploadURL(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, common.ErrNotFound)

	f.photos.err = errors.New("s3 down")
	_, _, err = f.svc.PhotoUploadURL(ctx, id)
	assert.EqualError(t, err, "s3 down")

	noPhotos := NewSyncService(f.repos, f.broker, Options{SecretKey: []byte("k"), TokenValidity: time.Hour})
	_, _, err = noPhotos.PhotoUploadURL(ctx, id)
	assert.ErrorIs(t, err, ErrPhotosDisabled)
}
