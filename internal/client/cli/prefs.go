package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/babylog/internal/client/models"
	"github.com/spf13/cobra"
)

func (a *App) prefsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change preferences",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := a.preferences(cmd.Context())
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "volume\t%s\n", p.Units.Volume)
			fmt.Fprintf(tw, "weight\t%s\n", p.Units.Weight)
			fmt.Fprintf(tw, "hand\t%s\n", p.HandPreference)
			fmt.Fprintf(tw, "labels\t%t\n", p.ShowActionLabels)
			fmt.Fprintf(tw, "dark\t%t\n", p.DarkMode)
			fmt.Fprintf(tw, "haptic\t%t\n", p.HapticFeedback)
			return tw.Flush()
		},
	}

	set := &cobra.Command{
		Use:   "set KEY=VALUE...",
		Short: "Change preferences (keys: units, volume, weight, hand, labels, dark, haptic)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parsePrefs(args)
			if err != nil {
				return err
			}
			p, err := a.dl.Preferences().Update(cmd.Context(), patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved: volume %s, weight %s, hand %s\n", p.Units.Volume, p.Units.Weight, p.HandPreference)
			return nil
		},
	}

	cmd.AddCommand(show, set)
	return cmd
}

func parsePrefs(args []string) (models.PreferencesPatch, error) {
	var patch models.PreferencesPatch
	units := func() *models.UnitsPatch {
		if patch.Units == nil {
			patch.Units = &models.UnitsPatch{}
		}
		return patch.Units
	}

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return patch, fmt.Errorf("%q: expected KEY=VALUE", arg)
		}
		key, value = strings.ToLower(strings.TrimSpace(key)), strings.ToLower(strings.TrimSpace(value))

		switch key {
		case "units", "volume", "weight":
			system := models.UnitSystem(value)
			if system != models.UnitSystemMetric && system != models.UnitSystemImperial {
				return patch, fmt.Errorf("%s must be metric or imperial", key)
			}
			if key != "weight" {
				units().Volume = &system
			}
			if key != "volume" {
				units().Weight = &system
			}
		case "hand":
			hand := models.HandPreference(value)
			if hand != models.HandLeft && hand != models.HandRight {
				return patch, fmt.Errorf("hand must be left or right")
			}
			patch.HandPreference = &hand
		case "labels", "dark", "haptic":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return patch, fmt.Errorf("%s must be true or false", key)
			}
			switch key {
			case "labels":
				patch.ShowActionLabels = &b
			case "dark":
				patch.DarkMode = &b
			default:
				patch.HapticFeedback = &b
			}
		default:
			return patch, fmt.Errorf("unknown preference %q", key)
		}
	}
	return patch, nil
}
