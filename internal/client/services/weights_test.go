package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/babylog/internal/client/events"
	"github.com/dmitrijs2005/babylog/internal/client/repositories/kv"
	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddWeight_TracksLatestOnProfile(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addProfile(t, "b1", "Emma")
	rec := h.record()

	w, ok := h.dl.AddWeight(ctx, 9.5, 0, "clinic")
	require.True(t, ok)
	assert.Equal(t, "b1", w.BabyID)
	assert.Equal(t, t0.UnixMilli(), w.Timestamp)
	assert.NotEmpty(t, w.ID)

	p, ok := h.dl.ActiveBabyProfile(ctx)
	require.True(t, ok)
	require.NotNil(t, p.CurrentWeight)
	assert.Equal(t, 9.5, *p.CurrentWeight)

	// an older measurement does not move the current weight
	_, ok = h.dl.AddWeight(ctx, 8.0, t0.Add(-48*time.Hour).UnixMilli(), "")
	require.True(t, ok)
	p, _ = h.dl.ActiveBabyProfile(ctx)
	assert.Equal(t, 9.5, *p.CurrentWeight)

	assert.Equal(t, 2, rec.count(events.TopicWeights))
}

func TestGetWeights_ScopedAndSorted(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addProfile(t, "b1", "Emma")
	h.addProfile(t, "b2", "Liam")

	h.use(t, "b1")
	_, ok := h.dl.AddWeight(ctx, 10, t0.UnixMilli(), "")
	require.True(t, ok)
	_, ok = h.dl.AddWeight(ctx, 9, t0.Add(-time.Hour).UnixMilli(), "")
	require.True(t, ok)
	h.use(t, "b2")
	_, ok = h.dl.AddWeight(ctx, 7, t0.UnixMilli(), "")
	require.True(t, ok)

	h.use(t, "b1")
	list := h.dl.GetWeights(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, 9.0, list[0].Weight)
	assert.Equal(t, 10.0, list[1].Weight)
}

func TestAddWeight_ProfileRefreshFailureKeepsWeight(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addProfile(t, "b1", "Emma")
	require.NoError(t, h.store.Set(ctx, kv.KeyProfiles, []byte("{broken")))

	w, ok := h.dl.AddWeight(ctx, 9.5, 0, "")
	require.True(t, ok)
	assert.Equal(t, "b1", w.BabyID)
	assert.Contains(t, h.logs.String(), "update current weight failed")

	list := h.dl.GetWeights(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, w.ID, list[0].ID)
}

func TestAddWeight_Invalid(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, ok := h.dl.AddWeight(ctx, 0, 0, "")
	require.False(t, ok)
	_, err := h.dl.Weights().Add(ctx, -1, 0, "")
	require.ErrorIs(t, err, common.ErrInvalidWeight)
	assert.Empty(t, h.dl.GetWeights(ctx))
}

func TestDeleteWeight(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addProfile(t, "b1", "Emma")
	w, ok := h.dl.AddWeight(ctx, 9, 0, "")
	require.True(t, ok)

	require.True(t, h.dl.DeleteWeight(ctx, w.ID))
	require.False(t, h.dl.DeleteWeight(ctx, w.ID))
	assert.Empty(t, h.dl.GetWeights(ctx))
}
