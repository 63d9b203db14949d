package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dmitrijs2005/babylog/internal/client/models"
	"github.com/dmitrijs2005/babylog/internal/client/units"
)

// WriteCSV writes the header block, the daily summary table, the detailed
// log and the weights, separated by blank lines.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	vol := r.Preferences.Units.Volume
	wt := r.Preferences.Units.Weight
	num := func(v float64, prec int) string { return strconv.FormatFloat(v, 'f', prec, 64) }

	rows := [][]string{
		{"Babylog Report"},
		{"Baby", r.Profile.Name},
		{"Date of birth", r.date(r.Profile.DateOfBirth)},
		{"Generated", r.GeneratedAt.In(r.loc()).Format("2006-01-02 15:04")},
		{"Units", fmt.Sprintf("%s / %s", units.VolumeLabel(vol), units.WeightLabel(wt))},
		{},
		{"Daily Summary"},
		{"Date", "Feedings", "Breast", "Bottle", "Volume (" + units.VolumeLabel(vol) + ")", "Breast minutes",
			"Diapers", "Wet", "Dirty", "Both", "Sleep sessions", "Sleep minutes"},
	}
	for _, d := range r.Daily {
		rows = append(rows, []string{
			d.Date,
			strconv.Itoa(d.TotalFeedings),
			strconv.Itoa(d.BreastFeedings),
			strconv.Itoa(d.BottleFeedings),
			num(units.ConvertVolume(d.TotalVolumeOz, models.UnitSystemImperial, vol), 1),
			strconv.Itoa(d.BreastMinutes),
			strconv.Itoa(d.Diapers.Total),
			strconv.Itoa(d.Diapers.Wet),
			strconv.Itoa(d.Diapers.Dirty),
			strconv.Itoa(d.Diapers.Both),
			strconv.Itoa(d.SleepSessions),
			strconv.Itoa(d.SleepMinutes),
		})
	}

	rows = append(rows,
		[]string{},
		[]string{"Detailed Log"},
		[]string{"Date", "Time", "Type", "Details", "Duration (min)", "Amount (" + units.VolumeLabel(vol) + ")", "Notes"},
	)
	for _, e := range r.Entries {
		duration, amount := "", ""
		if e.Duration != nil {
			duration = strconv.Itoa(*e.Duration)
		}
		if e.Amount != nil && e.FeedingType != nil && e.FeedingType.IsBottle() {
			amount = num(units.ConvertVolume(*e.Amount, models.UnitSystemImperial, vol), 1)
		}
		rows = append(rows, []string{
			r.date(e.Timestamp), r.clock(e.Timestamp), string(e.Type), Describe(e), duration, amount, e.Notes,
		})
	}

	rows = append(rows,
		[]string{},
		[]string{"Weights"},
		[]string{"Date", "Weight (" + units.WeightLabel(wt) + ")", "Notes"},
	)
	for _, x := range r.Weights {
		rows = append(rows, []string{
			r.date(x.Timestamp), num(units.ConvertWeight(x.Weight, models.UnitSystemImperial, wt), 2), x.Notes,
		})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
