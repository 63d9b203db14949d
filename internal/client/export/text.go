package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// WriteText writes a human readable report with aligned columns.
func WriteText(w io.Writer, r Report) error {
	p := message.NewPrinter(language.English)
	bw := bufio.NewWriter(w)

	title := "BABYLOG REPORT"
	fmt.Fprintln(bw, title)
	fmt.Fprintln(bw, strings.Repeat("=", len(title)))
	p.Fprintf(bw, "Baby:          %s\n", r.Profile.Name)
	p.Fprintf(bw, "Born:          %s (%d days old)\n", r.date(r.Profile.DateOfBirth), r.Profile.AgeDays(r.GeneratedAt))
	if r.Profile.CurrentWeight != nil {
		p.Fprintf(bw, "Weight:        %s\n", r.weight(*r.Profile.CurrentWeight))
	}
	p.Fprintf(bw, "Generated:     %s\n", r.GeneratedAt.In(r.loc()).Format("2006-01-02 15:04"))
	if r.Period.Days > 0 {
		p.Fprintf(bw, "Period:        %s to %s (%d days)\n", r.Period.From, r.Period.To, r.Period.Days)
	}

	section(bw, "DAILY SUMMARY")
	tw := tabwriter.NewWriter(bw, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tFeedings\tVolume\tBreast\tDiapers\tSleep\t")
	for _, d := range r.Daily {
		p.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\t%s\t\n",
			d.Date, d.TotalFeedings, r.volume(d.TotalVolumeOz), FormatMinutes(d.BreastMinutes),
			d.Diapers.Total, FormatMinutes(d.SleepMinutes))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if r.Period.Days > 0 {
		p.Fprintf(bw, "\nTotals: %d feedings, %s, %d diapers, %s sleep\n",
			r.Period.TotalFeedings, r.volume(r.Period.TotalVolumeOz), r.Period.TotalDiapers,
			FormatMinutes(r.Period.TotalSleepMinutes))
		p.Fprintf(bw, "Per day: %.1f feedings, %s, %.1f diapers, %s sleep\n",
			r.Period.AvgFeedingsPerDay, r.volume(r.Period.AvgVolumeOzPerDay), r.Period.AvgDiapersPerDay,
			FormatMinutes(int(r.Period.AvgSleepMinutesPerDay)))
	}

	section(bw, "DETAILED LOG")
	tw = tabwriter.NewWriter(bw, 0, 0, 2, ' ', 0)
	for _, e := range r.Entries {
		extra := ""
		if e.Duration != nil {
			extra = FormatMinutes(*e.Duration)
		}
		if e.Amount != nil && e.FeedingType != nil && e.FeedingType.IsBottle() {
			extra = r.volume(*e.Amount)
		}
		fmt.Fprintf(tw, "%s %s\t%s\t%s\t%s\n", r.date(e.Timestamp), r.clock(e.Timestamp), Describe(e), extra, e.Notes)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(r.Entries) == 0 {
		fmt.Fprintln(bw, "(no entries)")
	}

	if len(r.Weights) > 0 {
		section(bw, "WEIGHTS")
		tw = tabwriter.NewWriter(bw, 0, 0, 2, ' ', 0)
		for _, x := range r.Weights {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.date(x.Timestamp), r.weight(x.Weight), x.Notes)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func section(w io.Writer, name string) {
	fmt.Fprintf(w, "\n%s\n%s\n", name, strings.Repeat("-", len(name)))
}
