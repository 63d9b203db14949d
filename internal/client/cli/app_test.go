package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/babylog/internal/client/client"
	"github.com/dmitrijs2005/babylog/internal/client/config"
	"github.com/dmitrijs2005/babylog/internal/client/models"
	"github.com/dmitrijs2005/babylog/internal/client/repositories/kv"
	"github.com/dmitrijs2005/babylog/internal/client/services"
	"github.com/dmitrijs2005/babylog/internal/logging"
	"github.com/dmitrijs2005/babylog/internal/syncpb"
	"github.com/dmitrijs2005/babylog/internal/timex"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type testApp struct {
	*App
	store *kv.MemoryStore
	clock *timex.FixedClock
}

func newTestApp(t *testing.T, remote client.Client) *testApp {
	t.Helper()

	orig := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = orig })

	store := kv.NewMemoryStore()
	clock := timex.NewFixedClock(t0)
	dl, err := services.NewDataLayer(services.Deps{
		Store:    store,
		Clock:    clock,
		Location: time.UTC,
		Logger:   logging.NewNop(),
		Remote:   remote,
	})
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()

	a := &App{cfg: cfg, dl: dl, log: logging.NewNop(), remote: remote}
	a.input("")
	return &testApp{App: a, store: store, clock: clock}
}

// input replaces what prompts will read.
func (a *App) input(lines ...string) {
	a.reader = bufio.NewReader(strings.NewReader(strings.Join(lines, "\n")))
}

func (a *testApp) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (a *testApp) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := a.run(t, args...)
	require.NoError(t, err, out)
	return out
}

func (a *testApp) withProfile(t *testing.T) models.BabyProfile {
	t.Helper()
	p, err := a.dl.Profiles().Save(context.Background(), models.BabyProfile{
		ID:          "b1",
		Name:        "Emma",
		DateOfBirth: t0.AddDate(0, -2, 0).UnixMilli(),
	})
	require.NoError(t, err)
	return p
}

type fakeRemote struct {
	pushed int
}

func (f *fakeRemote) CreateProfile(context.Context, string, int64) (string, string, error) {
	return "remote-1", "tok-1", nil
}

func (f *fakeRemote) PushEntries(_ context.Context, _ string, entries []syncpb.Entry) (int, int64, error) {
	f.pushed += len(entries)
	return len(entries), int64(f.pushed), nil
}

func (f *fakeRemote) PullEntries(context.Context, string, int64) ([]syncpb.Entry, int64, error) {
	return nil, 0, nil
}

func (f *fakeRemote) Watch(ctx context.Context, _ string, _ int64, _ func(syncpb.WatchEvent) error) error {
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeRemote) PhotoUploadURL(context.Context, string) (string, string, error) {
	return "photos/remote-1/p.jpg", "http://upload", nil
}

func (f *fakeRemote) UploadPhoto(context.Context, string, string, []byte) error { return nil }
func (f *fakeRemote) SetAccessToken(string)                                     {}
func (f *fakeRemote) Ping(context.Context) error                                { return nil }
func (f *fakeRemote) Close() error                                              { return nil }
