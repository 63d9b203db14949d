package models

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr bool
	}{
		{
			name:  "formula with amount",
			entry: Entry{Type: EntryTypeFeeding, FeedingType: Ptr(FeedingTypeFormula), Amount: Ptr(4.0)},
		},
		{
			name:  "breast with side and zero amount",
			entry: Entry{Type: EntryTypeFeeding, FeedingType: Ptr(FeedingTypeBreast), BreastSide: Ptr(BreastSideLeft), Amount: Ptr(0.0), Duration: Ptr(10), EndTime: Ptr(int64(1))},
		},
		{
			name:    "feeding without type",
			entry:   Entry{Type: EntryTypeFeeding, Amount: Ptr(4.0)},
			wantErr: true,
		},
		{
			name:    "bottle without amount",
			entry:   Entry{Type: EntryTypeFeeding, FeedingType: Ptr(FeedingTypePumped)},
			wantErr: true,
		},
		{
			name:    "negative amount",
			entry:   Entry{Type: EntryTypeFeeding, FeedingType: Ptr(FeedingTypeFormula), Amount: Ptr(-1.0)},
			wantErr: true,
		},
		{
			name:    "breast without side",
			entry:   Entry{Type: EntryTypeFeeding, FeedingType: Ptr(FeedingTypeBreast)},
			wantErr: true,
		},
		{
			name:    "feeding with diaper type",
			entry:   Entry{Type: EntryTypeFeeding, FeedingType: Ptr(FeedingTypeFormula), Amount: Ptr(2.0), DiaperType: Ptr(DiaperTypeWet)},
			wantErr: true,
		},
		{
			name:  "diaper",
			entry: Entry{Type: EntryTypeDiaper, DiaperType: Ptr(DiaperTypeBoth)},
		},
		{
			name:    "diaper with amount",
			entry:   Entry{Type: EntryTypeDiaper, DiaperType: Ptr(DiaperTypeWet), Amount: Ptr(1.0)},
			wantErr: true,
		},
		{
			name:    "diaper with bad kind",
			entry:   Entry{Type: EntryTypeDiaper, DiaperType: Ptr(DiaperType("soggy"))},
			wantErr: true,
		},
		{
			name:  "completed sleep",
			entry: Entry{Type: EntryTypeSleep, Duration: Ptr(30), EndTime: Ptr(int64(1800000))},
		},
		{
			name:    "completed sleep without duration",
			entry:   Entry{Type: EntryTypeSleep, EndTime: Ptr(int64(1))},
			wantErr: true,
		},
		{
			name:    "unknown type",
			entry:   Entry{Type: "bath"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidEntry)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestEntry_JSONLayout(t *testing.T) {
	e := Entry{
		ID:          "feeding_1",
		Type:        EntryTypeFeeding,
		Timestamp:   1700000000000,
		FeedingType: Ptr(FeedingTypeBreast),
		Amount:      Ptr(0.0),
		BreastSide:  Ptr(BreastSideRight),
		BabyID:      "b1",
	}
	b, err := json.Marshal(e)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "breast", m["feedingType"])
	assert.Equal(t, "right", m["breastSide"])
	assert.Equal(t, 0.0, m["amount"])
	assert.Equal(t, false, m["isActive"])
	assert.Equal(t, "b1", m["babyId"])
	assert.NotContains(t, m, "diaperType")
	assert.NotContains(t, m, "notes")
}

func TestEntry_LegacyRowWithoutBabyID(t *testing.T) {
	var e Entry
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1690000000000","type":"diaper","timestamp":1690000000000,"diaperType":"wet","isActive":false}`), &e))
	assert.Equal(t, "1690000000000", e.ID)
	assert.Empty(t, e.BabyID)
	assert.True(t, e.VisibleTo("anyone"))
}

func TestEntry_LocalDate(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	ts := time.Date(2024, 3, 2, 3, 0, 0, 0, time.UTC).UnixMilli()
	e := Entry{Timestamp: ts}

	assert.Equal(t, "2024-03-02", e.LocalDate(time.UTC))
	assert.Equal(t, "2024-03-01", e.LocalDate(loc))
}

func TestEntryPatch_Apply(t *testing.T) {
	orig := Entry{
		ID:          "feeding_1",
		Type:        EntryTypeFeeding,
		Timestamp:   100,
		FeedingType: Ptr(FeedingTypeFormula),
		Amount:      Ptr(3.0),
		BabyID:      "b1",
	}
	patch := EntryPatch{Amount: Ptr(4.5), Notes: Ptr("spit up a bit")}

	got := patch.Apply(orig)

	want := orig
	want.Amount = Ptr(4.5)
	want.Notes = "spit up a bit"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Apply mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3.0, *orig.Amount, "original must not be mutated")
	assert.False(t, patch.IsEmpty())
	assert.True(t, EntryPatch{}.IsEmpty())
}

func TestNewEntryID_Format(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	id := NewEntryID("diaper", now)
	assert.Regexp(t, regexp.MustCompile(`^diaper_1700000000123_[0-9a-f]{8}$`), id)
	assert.NotEqual(t, id, NewEntryID("diaper", now))
}
