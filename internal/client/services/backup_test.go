package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/dmitrijs2005/babylog/internal/client/events"
	"github.com/dmitrijs2005/babylog/internal/client/models"
	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackup_RoundTrip(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addProfile(t, "b1", "Emma")
	require.True(t, h.dl.SaveEntry(ctx, formula(4)))
	require.True(t, h.dl.SavePreferences(ctx, models.Preferences{DarkMode: true}))

	want, err := h.store.List(ctx)
	require.NoError(t, err)

	blob, err := h.dl.Backup().Create(ctx, []byte("correct horse"))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(blob, BackupMagic))

	// diverge from the snapshot
	require.True(t, h.dl.SaveEntry(ctx, diaper(models.DiaperTypeWet)))
	require.NoError(t, h.store.Set(ctx, "stray", []byte("x")))
	rec := h.record()

	n, err := h.dl.Backup().Restore(ctx, blob, []byte("correct horse"))
	require.NoError(t, err)
	assert.Equal(t, len(want), n)

	got, err := h.store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, rec.count(events.TopicBackup))
	assert.Len(t, h.dl.GetEntries(ctx), 1)
}

func TestBackup_WrongPassphraseLeavesStoreAlone(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addProfile(t, "b1", "Emma")

	blob, err := h.dl.Backup().Create(ctx, []byte("secret"))
	require.NoError(t, err)
	require.True(t, h.dl.SaveEntry(ctx, formula(1)))

	_, err = h.dl.Backup().Restore(ctx, blob, []byte("guess"))
	require.ErrorIs(t, err, common.ErrInvalidPassphrase)
	assert.Len(t, h.dl.GetEntries(ctx), 1)
}

func TestBackup_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.dl.Backup().Create(ctx, nil)
	require.ErrorIs(t, err, common.ErrInvalidPassphrase)

	_, err = h.dl.Backup().Restore(ctx, []byte("not a backup"), []byte("p"))
	require.ErrorIs(t, err, common.ErrInvalidBackup)
}
