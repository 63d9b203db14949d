// Package export renders a profile's log as CSV, a plain text report or an
// HTML document. Exports are read-only views of the data layer.
package export

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/babylog/internal/client/models"
	"github.com/dmitrijs2005/babylog/internal/client/services"
	"github.com/dmitrijs2005/babylog/internal/client/units"
	"github.com/dmitrijs2005/babylog/internal/common"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatText Format = "text"
	FormatHTML Format = "html"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatText, FormatHTML:
		return f, nil
	case "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

func (f Format) Extension() string {
	if f == FormatText {
		return ".txt"
	}
	return "." + string(f)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Report is everything an export needs, already scoped to one profile.
type Report struct {
	Profile     models.BabyProfile
	Entries     []models.Entry
	Weights     []models.WeightEntry
	Daily       []models.DailySummary
	Period      models.PeriodSummary
	Preferences models.Preferences
	GeneratedAt time.Time
	Location    *time.Location
}

// Collect gathers a report for the active profile covering days dates from
// from (YYYY-MM-DD).
func Collect(ctx context.Context, dl *services.DataLayer, from string, days int) (Report, error) {
	profile, ok := dl.ActiveBabyProfile(ctx)
	if !ok {
		return Report{}, common.ErrNoProfile
	}
	loc := dl.Location()
	start, err := time.ParseInLocation(models.DateLayout, from, loc)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %q", common.ErrInvalidDate, from)
	}

	daily, period := dl.GetRangeSummary(ctx, from, days)
	entries := dl.GetEntriesInRange(ctx, start, start.AddDate(0, 0, days))
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp < entries[j].Timestamp })

	return Report{
		Profile:     profile,
		Entries:     entries,
		Weights:     dl.GetWeights(ctx),
		Daily:       daily,
		Period:      period,
		Preferences: dl.LoadPreferences(ctx),
		GeneratedAt: dl.Clock().Now(),
		Location:    loc,
	}, nil
}

// Write renders r in format f.
func Write(ctx context.Context, w io.Writer, f Format, r Report) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatText:
		return WriteText(w, r)
	case FormatHTML:
		return HTML(r).Render(ctx, w)
	}
	return fmt.Errorf("unknown export format %q", f)
}

func (r Report) loc() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

func (r Report) date(ms int64) string {
	return time.UnixMilli(ms).In(r.loc()).Format(models.DateLayout)
}

func (r Report) clock(ms int64) string {
	return time.UnixMilli(ms).In(r.loc()).Format("15:04")
}

func (r Report) volume(oz float64) string {
	return units.FormatVolume(oz, r.Preferences.Units.Volume)
}

func (r Report) weight(lb float64) string {
	return units.FormatWeight(lb, r.Preferences.Units.Weight)
}

// Describe summarizes an entry in a few words: "Breast (left)", "Formula",
// "Wet diaper", "Sleep".
func Describe(e models.Entry) string {
	switch e.Type {
	case models.EntryTypeFeeding:
		if e.FeedingType == nil {
			return "Feeding"
		}
		label := titleCase(string(*e.FeedingType))
		if *e.FeedingType == models.FeedingTypeBreast && e.BreastSide != nil {
			label += " (" + string(*e.BreastSide) + ")"
		}
		return label
	case models.EntryTypeDiaper:
		if e.DiaperType == nil {
			return "Diaper"
		}
		if *e.DiaperType == models.DiaperTypeBoth {
			return "Wet + dirty diaper"
		}
		return titleCase(string(*e.DiaperType)) + " diaper"
	case models.EntryTypeSleep:
		if e.IsActive {
			return "Sleep (in progress)"
		}
		return "Sleep"
	}
	return string(e.Type)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FormatMinutes renders a duration as "45m" or "1h 05m".
func FormatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", m/60, m%60)
}
