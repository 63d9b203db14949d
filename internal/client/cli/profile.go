package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/babylog/internal/client/models"
	"github.com/dmitrijs2005/babylog/internal/client/services"
	"github.com/dmitrijs2005/babylog/internal/client/units"
	"github.com/spf13/cobra"
)

func (a *App) profileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage baby profiles",
	}
	cmd.AddCommand(
		a.profileAddCommand(),
		a.profileListCommand(),
		a.profileUseCommand(),
		a.profileDeleteCommand(),
	)
	return cmd
}

func (a *App) profileAddCommand() *cobra.Command {
	var (
		dob         string
		birthWeight float64
		use         bool
	)
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a baby profile",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			born, err := time.ParseInLocation(models.DateLayout, dob, a.dl.Location())
			if err != nil {
				return fmt.Errorf("--dob %q: expected YYYY-MM-DD", dob)
			}

			p := models.BabyProfile{
				Name:        strings.Join(args, " "),
				DateOfBirth: born.UnixMilli(),
			}
			if cmd.Flags().Changed("birth-weight") {
				system := a.preferences(ctx).Units.Weight
				lb := units.ConvertWeight(birthWeight, system, models.UnitSystemImperial)
				p.BirthWeight = &lb
				p.CurrentWeight = models.Ptr(lb)
			}

			saved, err := a.dl.Profiles().Save(ctx, p)
			if err != nil {
				return err
			}
			if use {
				if err := a.dl.Profiles().SetActiveBabyID(ctx, saved.ID); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", saved.Name, saved.ID)
			if a.dl.GetActiveBabyID(ctx) == saved.ID {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is the active profile\n", saved.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dob, "dob", "", "date of birth, YYYY-MM-DD")
	cmd.Flags().Float64Var(&birthWeight, "birth-weight", 0, "birth weight in your weight unit")
	cmd.Flags().BoolVar(&use, "use", false, "make the new profile active")
	_ = cmd.MarkFlagRequired("dob")
	return cmd
}

func (a *App) profileListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List baby profiles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			profiles := a.dl.GetAllBabyProfiles(ctx)
			if len(profiles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No profiles yet.")
				return nil
			}

			active := a.dl.GetActiveBabyID(ctx)
			system := a.preferences(ctx).Units.Weight
			now := a.dl.Clock().Now()

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "\tID\tNAME\tBORN\tAGE\tWEIGHT")
			for _, p := range profiles {
				mark := ""
				if p.ID == active {
					mark = "*"
				}
				weight := "-"
				if p.CurrentWeight != nil {
					weight = units.FormatWeight(*p.CurrentWeight, system)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%dd\t%s\n",
					mark, p.ID, p.Name, dateOf(p.DateOfBirth, a.dl.Location()), p.AgeDays(now), weight)
			}
			return tw.Flush()
		},
	}
}

func (a *App) profileUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use ID",
		Short: "Switch the active profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.dl.Profiles().Get(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.dl.Profiles().SetActiveBabyID(ctx, p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Now logging for %s\n", p.Name)
			return nil
		},
	}
}

func (a *App) profileDeleteCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a profile together with its entries, weights and timers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.dl.Profiles().Get(ctx, args[0])
			if err != nil {
				return err
			}
			if !yes && !Confirm(a.reader, fmt.Sprintf("Delete %s and all of their data?", p.Name), cmd.OutOrStdout()) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}

			active, err := services.RemoveProfile(ctx, a.dl.Profiles(), p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", p.Name)
			if next, ok := a.dl.GetBabyProfile(ctx, active); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Active profile: %s\n", next.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
