package cli

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/babylog/internal/client/export"
	"github.com/dmitrijs2005/babylog/internal/client/models"
	"github.com/dmitrijs2005/babylog/internal/client/units"
	"github.com/spf13/cobra"
)

func (a *App) feedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Record feedings",
	}

	breast := &cobra.Command{
		Use:   "breast",
		Short: "Breastfeeding timer",
	}
	breast.AddCommand(
		a.timerStartCommand(models.TimerKindBreast),
		a.timerStopCommand(models.TimerKindBreast),
		a.timerStatusCommand(models.TimerKindBreast),
	)

	cmd.AddCommand(breast, a.bottleCommand())
	return cmd
}

func (a *App) bottleCommand() *cobra.Command {
	var (
		kind   string
		amount float64
		notes  string
		at     string
	)
	cmd := &cobra.Command{
		Use:   "bottle",
		Short: "Record a bottle feeding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := a.activeProfile(ctx); err != nil {
				return err
			}
			ft := models.FeedingType(strings.ToLower(kind))
			if ft != models.FeedingTypeFormula && ft != models.FeedingTypePumped {
				return fmt.Errorf("--type must be formula or pumped")
			}
			ts, err := parseWhen(at, a.dl.Clock().Now(), a.dl.Location())
			if err != nil {
				return err
			}

			system := a.preferences(ctx).Units.Volume
			oz := units.ConvertVolume(amount, system, models.UnitSystemImperial)
			saved, err := a.dl.Entries().Save(ctx, models.Entry{
				Type:        models.EntryTypeFeeding,
				Timestamp:   ts,
				FeedingType: models.Ptr(ft),
				Amount:      models.Ptr(oz),
				Notes:       notes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s %s at %s\n",
				units.FormatVolume(oz, system), ft, clockTime(saved.Timestamp, a.dl.Location()))
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "type", string(models.FeedingTypeFormula), "formula or pumped")
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount in your volume unit")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&at, "at", "", "when it happened (HH:MM, default now)")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (a *App) diaperCommand() *cobra.Command {
	var (
		notes string
		at    string
	)
	cmd := &cobra.Command{
		Use:       "diaper wet|dirty|both",
		Short:     "Record a diaper change",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(models.DiaperTypeWet), string(models.DiaperTypeDirty), string(models.DiaperTypeBoth)},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.activeProfile(ctx); err != nil {
				return err
			}
			ts, err := parseWhen(at, a.dl.Clock().Now(), a.dl.Location())
			if err != nil {
				return err
			}
			saved, err := a.dl.Entries().Save(ctx, models.Entry{
				Type:       models.EntryTypeDiaper,
				Timestamp:  ts,
				DiaperType: models.Ptr(models.DiaperType(args[0])),
				Notes:      notes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s at %s\n",
				strings.ToLower(export.Describe(saved)), clockTime(saved.Timestamp, a.dl.Location()))
			return nil
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&at, "at", "", "when it happened (HH:MM, default now)")
	return cmd
}

func (a *App) sleepCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sleep",
		Short: "Sleep timer",
	}
	cmd.AddCommand(
		a.timerStartCommand(models.TimerKindSleep),
		a.timerStopCommand(models.TimerKindSleep),
		a.timerStatusCommand(models.TimerKindSleep),
	)
	return cmd
}

func timerLabel(kind models.TimerKind) string {
	if kind == models.TimerKindBreast {
		return "Breastfeeding"
	}
	return "Sleep"
}

func (a *App) timerStartCommand(kind models.TimerKind) *cobra.Command {
	var side string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the timer, replacing any running one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := a.activeProfile(ctx); err != nil {
				return err
			}
			var bs *models.BreastSide
			if kind == models.TimerKindBreast {
				bs = models.Ptr(models.BreastSide(strings.ToLower(side)))
			}
			s, err := a.dl.Timer(kind).Start(ctx, bs)
			if err != nil {
				return err
			}
			label := timerLabel(kind)
			if s.BreastSide != nil {
				label += " (" + string(*s.BreastSide) + ")"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s started at %s\n", label, clockTime(s.StartTime, a.dl.Location()))
			return nil
		},
	}
	if kind == models.TimerKindBreast {
		cmd.Flags().StringVar(&side, "side", "", "left or right")
		_ = cmd.MarkFlagRequired("side")
	}
	return cmd
}

func (a *App) timerStopCommand(kind models.TimerKind) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the timer and record the entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.dl.Timer(kind).Stop(cmd.Context())
			if err != nil {
				return err
			}
			if e == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "No %s timer running.\n", strings.ToLower(timerLabel(kind)))
				return nil
			}
			minutes := 0
			if e.Duration != nil {
				minutes = *e.Duration
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s stopped after %s\n", export.Describe(*e), export.FormatMinutes(minutes))
			return nil
		},
	}
}

func (a *App) timerStatusCommand(kind models.TimerKind) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := a.dl.Timer(kind).GetActive(ctx)
			if err != nil {
				return err
			}
			if s == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "No %s timer running.\n", strings.ToLower(timerLabel(kind)))
				return nil
			}
			elapsed := s.ElapsedMinutes(a.dl.Clock().Now().UnixMilli())
			fmt.Fprintf(cmd.OutOrStdout(), "%s running for %s (since %s)\n",
				timerLabel(kind), export.FormatMinutes(elapsed), clockTime(s.StartTime, a.dl.Location()))
			return nil
		},
	}
}
