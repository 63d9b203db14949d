package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/babylog/internal/client/models"
	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/timex"
)

const maxRangeDays = 366

// SummaryService derives daily and period aggregates from the entry log.
type SummaryService interface {
	Daily(ctx context.Context, date string) (models.DailySummary, error)
	Range(ctx context.Context, from string, days int) ([]models.DailySummary, models.PeriodSummary, error)
	Today() string
}

type summaryService struct {
	entries EntryService
	clock   timex.Clock
}

func NewSummaryService(entries EntryService, clock timex.Clock) SummaryService {
	return &summaryService{entries: entries, clock: clock}
}

func (s *summaryService) Today() string {
	return s.clock.Now().In(s.entries.Location()).Format(models.DateLayout)
}

func (s *summaryService) Daily(ctx context.Context, date string) (models.DailySummary, error) {
	entries, err := s.entries.GetByDate(ctx, date)
	if err != nil {
		return models.DailySummary{Date: date}, err
	}
	return Summarize(date, entries), nil
}

// Range summarizes days consecutive dates starting at from.
func (s *summaryService) Range(ctx context.Context, from string, days int) ([]models.DailySummary, models.PeriodSummary, error) {
	loc := s.entries.Location()
	start, err := time.ParseInLocation(models.DateLayout, from, loc)
	if err != nil {
		return nil, models.PeriodSummary{}, fmt.Errorf("%w: %q", common.ErrInvalidDate, from)
	}
	if days < 1 || days > maxRangeDays {
		return nil, models.PeriodSummary{}, fmt.Errorf("%w: days must be between 1 and %d", common.ErrInvalidDate, maxRangeDays)
	}
	end := start.AddDate(0, 0, days)

	entries, err := s.entries.GetInRange(ctx, start, end)
	if err != nil {
		return nil, models.PeriodSummary{}, err
	}

	byDate := make(map[string][]models.Entry)
	for _, e := range entries {
		d := e.LocalDate(loc)
		byDate[d] = append(byDate[d], e)
	}

	daily := make([]models.DailySummary, 0, days)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i).Format(models.DateLayout)
		daily = append(daily, Summarize(d, byDate[d]))
	}
	return daily, Period(daily), nil
}

// Summarize aggregates entries assumed to fall on date. Running sessions
// are ignored.
func Summarize(date string, entries []models.Entry) models.DailySummary {
	sum := models.DailySummary{Date: date}
	latest := func(cur *int64, ts int64) *int64 {
		if cur == nil || ts > *cur {
			return models.Ptr(ts)
		}
		return cur
	}
	minutes := func(e models.Entry) int {
		if e.Duration == nil {
			return 0
		}
		return *e.Duration
	}

	for _, e := range entries {
		if e.IsActive {
			continue
		}
		switch e.Type {
		case models.EntryTypeFeeding:
			sum.TotalFeedings++
			sum.LastFeeding = latest(sum.LastFeeding, e.Timestamp)
			if e.FeedingType != nil && *e.FeedingType == models.FeedingTypeBreast {
				sum.BreastFeedings++
				m := minutes(e)
				sum.BreastMinutes += m
				if e.BreastSide != nil {
					switch *e.BreastSide {
					case models.BreastSideLeft:
						sum.LeftBreastMinutes += m
					case models.BreastSideRight:
						sum.RightBreastMinutes += m
					}
				}
			} else {
				sum.BottleFeedings++
				if e.Amount != nil {
					sum.TotalVolumeOz += *e.Amount
				}
			}
		case models.EntryTypeDiaper:
			sum.Diapers.Total++
			sum.LastDiaper = latest(sum.LastDiaper, e.Timestamp)
			if e.DiaperType != nil {
				switch *e.DiaperType {
				case models.DiaperTypeWet:
					sum.Diapers.Wet++
				case models.DiaperTypeDirty:
					sum.Diapers.Dirty++
				case models.DiaperTypeBoth:
					sum.Diapers.Both++
				}
			}
		case models.EntryTypeSleep:
			sum.SleepSessions++
			sum.SleepMinutes += minutes(e)
			sum.LastSleep = latest(sum.LastSleep, e.Timestamp)
		}
	}
	return sum
}

// Period totals daily summaries and averages them per day.
func Period(daily []models.DailySummary) models.PeriodSummary {
	p := models.PeriodSummary{Days: len(daily)}
	if len(daily) == 0 {
		return p
	}
	p.From = daily[0].Date
	p.To = daily[len(daily)-1].Date
	for _, d := range daily {
		p.TotalFeedings += d.TotalFeedings
		p.TotalVolumeOz += d.TotalVolumeOz
		p.TotalDiapers += d.Diapers.Total
		p.TotalSleepMinutes += d.SleepMinutes
	}
	n := float64(len(daily))
	p.AvgFeedingsPerDay = float64(p.TotalFeedings) / n
	p.AvgVolumeOzPerDay = p.TotalVolumeOz / n
	p.AvgDiapersPerDay = float64(p.TotalDiapers) / n
	p.AvgSleepMinutesPerDay = float64(p.TotalSleepMinutes) / n
	return p
}
