package cli

import (
	"fmt"
	"sort"

	"github.com/dmitrijs2005/babylog/internal/client/export"
	"github.com/dmitrijs2005/babylog/internal/client/models"
	"github.com/dmitrijs2005/babylog/internal/client/units"
	"github.com/spf13/cobra"
)

func (a *App) logCommand() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the entries of one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			day, err := parseDate(date, a.dl.Today())
			if err != nil {
				return err
			}
			entries := a.dl.GetEntriesByDate(ctx, day)
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing logged on %s.\n", day)
				return nil
			}
			sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp < entries[j].Timestamp })

			system := a.preferences(ctx).Units.Volume
			loc := a.dl.Location()
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "TIME\tENTRY\tDURATION\tAMOUNT\tNOTES\tID")
			for _, e := range entries {
				duration, amount := "", ""
				if e.Duration != nil {
					duration = export.FormatMinutes(*e.Duration)
				}
				if e.Amount != nil && e.FeedingType != nil && *e.FeedingType != models.FeedingTypeBreast {
					amount = units.FormatVolume(*e.Amount, system)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					clockTime(e.Timestamp, loc), export.Describe(e), duration, amount, e.Notes, e.ID)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to show, YYYY-MM-DD (default today)")
	return cmd
}

func (a *App) editCommand() *cobra.Command {
	var (
		amount   float64
		duration int
		notes    string
		at       string
	)
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()

			var patch models.EntryPatch
			if flags.Changed("amount") {
				oz := units.ConvertVolume(amount, a.preferences(ctx).Units.Volume, models.UnitSystemImperial)
				patch.Amount = &oz
			}
			if flags.Changed("duration") {
				patch.Duration = &duration
			}
			if flags.Changed("notes") {
				patch.Notes = &notes
			}
			if flags.Changed("at") {
				ts, err := parseWhen(at, a.dl.Clock().Now(), a.dl.Location())
				if err != nil {
					return err
				}
				patch.Timestamp = &ts
			}
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to change: use --amount, --duration, --notes or --at")
			}

			updated, err := a.dl.Entries().Update(ctx, args[0], patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s at %s\n",
				export.Describe(updated), clockTime(updated.Timestamp, a.dl.Location()))
			return nil
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "bottle amount in your volume unit")
	cmd.Flags().IntVar(&duration, "duration", 0, "duration in minutes")
	cmd.Flags().StringVar(&notes, "notes", "", "replace the notes")
	cmd.Flags().StringVar(&at, "at", "", "move the entry (HH:MM or \"YYYY-MM-DD HH:MM\")")
	return cmd
}

func (a *App) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete an entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.dl.Entries().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
