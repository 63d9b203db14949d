package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/babylog/internal/client/models"
	"github.com/dmitrijs2005/babylog/internal/client/repositories/kv"
	"github.com/dmitrijs2005/babylog/internal/client/services"
	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func sampleReport() Report {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) int64 {
		return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute).UnixMilli()
	}

	entries := []models.Entry{
		{
			ID: "f1", Type: models.EntryTypeFeeding, Timestamp: at(7, 5),
			FeedingType: models.Ptr(models.FeedingTypeFormula), Amount: models.Ptr(4.0),
			Notes: `spit up, "a little"`,
		},
		{
			ID: "f2", Type: models.EntryTypeFeeding, Timestamp: at(9, 30),
			FeedingType: models.Ptr(models.FeedingTypeBreast), BreastSide: models.Ptr(models.BreastSideLeft),
			Amount: models.Ptr(0.0), Duration: models.Ptr(12),
		},
		{ID: "d1", Type: models.EntryTypeDiaper, Timestamp: at(10, 0), DiaperType: models.Ptr(models.DiaperTypeBoth)},
		{
			ID: "s1", Type: models.EntryTypeSleep, Timestamp: at(13, 0),
			Duration: models.Ptr(95), EndTime: models.Ptr(at(14, 35)), Notes: "<nap>",
		},
	}
	daily := []models.DailySummary{services.Summarize("2026-03-14", entries)}

	return Report{
		Profile: models.BabyProfile{
			ID: "b1", Name: "Emma & Co", DateOfBirth: day.AddDate(0, 0, -30).UnixMilli(),
			CurrentWeight: models.Ptr(9.25),
		},
		Entries:     entries,
		Weights:     []models.WeightEntry{{ID: "w1", Weight: 9.25, Timestamp: at(8, 0), Notes: "clinic"}},
		Daily:       daily,
		Period:      services.Period(daily),
		Preferences: models.DefaultPreferences(),
		GeneratedAt: now,
		Location:    time.UTC,
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"csv": FormatCSV, " HTML ": FormatHTML, "text": FormatText, "txt": FormatText} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("pdf")
	require.Error(t, err)

	assert.Equal(t, ".txt", FormatText.Extension())
	assert.Equal(t, ".csv", FormatCSV.Extension())
	assert.Equal(t, "text/html; charset=utf-8", FormatHTML.ContentType())
}

func TestDescribe(t *testing.T) {
	r := sampleReport()
	got := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		got = append(got, Describe(e))
	}
	assert.Equal(t, []string{"Formula", "Breast (left)", "Wet + dirty diaper", "Sleep"}, got)
	assert.Equal(t, "Sleep (in progress)", Describe(models.Entry{Type: models.EntryTypeSleep, IsActive: true}))
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0m", FormatMinutes(0))
	assert.Equal(t, "59m", FormatMinutes(59))
	assert.Equal(t, "1h 35m", FormatMinutes(95))
	assert.Equal(t, "2h 05m", FormatMinutes(125))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReport()))

	cr := csv.NewReader(strings.NewReader(buf.String()))
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Babylog Report"}, records[0])
	assert.Equal(t, []string{"Baby", "Emma & Co"}, records[1])
	assert.Equal(t, []string{"Date of birth", "2026-02-12"}, records[2])
	assert.Equal(t, []string{"Units", "oz / lb"}, records[4])

	find := func(first string) int {
		for i, rec := range records {
			if len(rec) > 0 && rec[0] == first {
				return i
			}
		}
		t.Fatalf("no record starting with %q", first)
		return -1
	}

	i := find("Daily Summary")
	assert.Equal(t, []string{"2026-03-14", "2", "1", "1", "4.0", "12", "1", "0", "0", "1", "1", "95"}, records[i+2])

	i = find("Detailed Log")
	assert.Equal(t, []string{"2026-03-14", "07:05", "feeding", "Formula", "", "4.0", `spit up, "a little"`}, records[i+2])
	assert.Equal(t, []string{"2026-03-14", "09:30", "feeding", "Breast (left)", "12", "", ""}, records[i+3])

	i = find("Weights")
	assert.Equal(t, []string{"Date", "Weight (lb)", "Notes"}, records[i+1])
	assert.Equal(t, []string{"2026-03-14", "9.25", "clinic"}, records[i+2])
}

func TestWriteCSV_MetricUnits(t *testing.T) {
	r := sampleReport()
	r.Preferences.Units = models.Units{Volume: models.UnitSystemMetric, Weight: models.UnitSystemMetric}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, r))
	out := buf.String()

	assert.Contains(t, out, "Volume (mL)")
	assert.Contains(t, out, "118.3")
	assert.Contains(t, out, "Weight (kg)")
	assert.Contains(t, out, "4.20")
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleReport()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "BABYLOG REPORT\n"))
	assert.Contains(t, out, "Emma & Co")
	assert.Contains(t, out, "(30 days old)")
	assert.Contains(t, out, "9.25 lb")
	assert.Contains(t, out, "DAILY SUMMARY")
	assert.Contains(t, out, "4.0 oz")
	assert.Contains(t, out, "1h 35m")
	assert.Contains(t, out, "Breast (left)")
	assert.Contains(t, out, "WEIGHTS")
	assert.Contains(t, out, "Totals: 2 feedings")
}

func TestHTML_EscapesUserText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(context.Background(), &buf, FormatHTML, sampleReport()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<h1>Emma &amp; Co</h1>")
	assert.Contains(t, out, "&lt;nap&gt;")
	assert.NotContains(t, out, "<nap>")
	assert.Contains(t, out, "spit up, &#34;a little&#34;")
	assert.Contains(t, out, "<td>2026-03-14 07:05</td>")
}

func TestCollect(t *testing.T) {
	ctx := context.Background()
	dl, err := services.NewDataLayer(services.Deps{
		Store:    kv.NewMemoryStore(),
		Clock:    timex.NewFixedClock(now),
		Location: time.UTC,
	})
	require.NoError(t, err)

	_, err = Collect(ctx, dl, "2026-03-14", 1)
	require.ErrorIs(t, err, common.ErrNoProfile)

	_, ok := dl.SaveBabyProfile(ctx, models.BabyProfile{ID: "b1", Name: "Emma", DateOfBirth: 1})
	require.True(t, ok)
	require.True(t, dl.SaveEntry(ctx, models.Entry{
		Type: models.EntryTypeDiaper, DiaperType: models.Ptr(models.DiaperTypeWet),
		Timestamp: now.Add(-time.Hour).UnixMilli(),
	}))
	require.True(t, dl.SaveEntry(ctx, models.Entry{
		Type: models.EntryTypeDiaper, DiaperType: models.Ptr(models.DiaperTypeDirty),
		Timestamp: now.Add(-2 * time.Hour).UnixMilli(),
	}))

	r, err := Collect(ctx, dl, "2026-03-14", 1)
	require.NoError(t, err)
	assert.Equal(t, "Emma", r.Profile.Name)
	require.Len(t, r.Entries, 2)
	assert.Less(t, r.Entries[0].Timestamp, r.Entries[1].Timestamp)
	require.Len(t, r.Daily, 1)
	assert.Equal(t, 2, r.Daily[0].Diapers.Total)
	assert.Equal(t, now, r.GeneratedAt)

	_, err = Collect(ctx, dl, "not-a-date", 1)
	require.ErrorIs(t, err, common.ErrInvalidDate)
}
