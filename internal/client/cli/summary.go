package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/babylog/internal/client/export"
	"github.com/dmitrijs2005/babylog/internal/client/models"
	"github.com/dmitrijs2005/babylog/internal/client/units"
	"github.com/spf13/cobra"
)

func (a *App) summaryCommand() *cobra.Command {
	var (
		date string
		days int
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Totals for a day or for the last few days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			end, err := parseDate(date, a.dl.Today())
			if err != nil {
				return err
			}
			if days < 1 || days > 366 {
				return fmt.Errorf("--days must be between 1 and 366")
			}
			system := a.preferences(ctx).Units.Volume
			out := cmd.OutOrStdout()

			if days == 1 {
				s, err := a.dl.Summary().Daily(ctx, end)
				if err != nil {
					return err
				}
				printDaily(out, s, system, a.dl.Location())
				return nil
			}

			daily, period, err := a.dl.Summary().Range(ctx, daysBefore(end, days, a.dl.Location()), days)
			if err != nil {
				return err
			}
			tw := newTable(out)
			fmt.Fprintln(tw, "DATE\tFEEDS\tBOTTLE\tBREAST\tDIAPERS\tSLEEP")
			for _, s := range daily {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\t%s\n", s.Date, s.TotalFeedings,
					units.FormatVolume(s.TotalVolumeOz, system), export.FormatMinutes(s.BreastMinutes),
					s.Diapers.Total, export.FormatMinutes(s.SleepMinutes))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%s to %s: %d feedings (%.1f/day), %s, %d diapers (%.1f/day), %s sleep (%s/day)\n",
				period.From, period.To,
				period.TotalFeedings, period.AvgFeedingsPerDay,
				units.FormatVolume(period.TotalVolumeOz, system),
				period.TotalDiapers, period.AvgDiapersPerDay,
				export.FormatMinutes(period.TotalSleepMinutes), export.FormatMinutes(int(period.AvgSleepMinutesPerDay)))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "last day to include, YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&days, "days", 1, "number of days ending at --date")
	return cmd
}

func printDaily(w io.Writer, s models.DailySummary, system models.UnitSystem, loc *time.Location) {
	last := func(ms *int64) string {
		if ms == nil {
			return "-"
		}
		return clockTime(*ms, loc)
	}
	fmt.Fprintf(w, "Summary for %s\n", s.Date)
	fmt.Fprintf(w, "  Feedings: %d (%d breast, %d bottle), last %s\n", s.TotalFeedings, s.BreastFeedings, s.BottleFeedings, last(s.LastFeeding))
	fmt.Fprintf(w, "  Bottle:   %s\n", units.FormatVolume(s.TotalVolumeOz, system))
	fmt.Fprintf(w, "  Breast:   %s (left %s, right %s)\n", export.FormatMinutes(s.BreastMinutes),
		export.FormatMinutes(s.LeftBreastMinutes), export.FormatMinutes(s.RightBreastMinutes))
	fmt.Fprintf(w, "  Diapers:  %d (%d wet, %d dirty, %d both), last %s\n", s.Diapers.Total, s.Diapers.Wet, s.Diapers.Dirty, s.Diapers.Both, last(s.LastDiaper))
	fmt.Fprintf(w, "  Sleep:    %s in %d sessions, last %s\n", export.FormatMinutes(s.SleepMinutes), s.SleepSessions, last(s.LastSleep))
}

func (a *App) weightCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weight",
		Short: "Track weight measurements",
	}

	var (
		notes string
		date  string
	)
	add := &cobra.Command{
		Use:   "add VALUE",
		Short: "Record a weight in your weight unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.activeProfile(ctx); err != nil {
				return err
			}
			var value float64
			if _, err := fmt.Sscanf(args[0], "%g", &value); err != nil {
				return fmt.Errorf("weight %q is not a number", args[0])
			}
			var ts int64
			if date != "" {
				day, err := time.ParseInLocation(models.DateLayout, date, a.dl.Location())
				if err != nil {
					return fmt.Errorf("--date %q: expected YYYY-MM-DD", date)
				}
				ts = day.Add(12 * time.Hour).UnixMilli()
			}

			system := a.preferences(ctx).Units.Weight
			lb := units.ConvertWeight(value, system, models.UnitSystemImperial)
			w, err := a.dl.Weights().Add(ctx, lb, ts, notes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s on %s\n", units.FormatWeight(w.Weight, system), dateOf(w.Timestamp, a.dl.Location()))
			return nil
		},
	}
	add.Flags().StringVar(&notes, "notes", "", "free-form notes")
	add.Flags().StringVar(&date, "date", "", "measurement day, YYYY-MM-DD (default now)")

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List weights of the active profile",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			weights := a.dl.GetWeights(ctx)
			if len(weights) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No weights recorded.")
				return nil
			}
			system := a.preferences(ctx).Units.Weight
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "DATE\tWEIGHT\tNOTES\tID")
			for _, w := range weights {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", dateOf(w.Timestamp, a.dl.Location()), units.FormatWeight(w.Weight, system), w.Notes, w.ID)
			}
			return tw.Flush()
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a weight measurement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.dl.Weights().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(add, list, del)
	return cmd
}
