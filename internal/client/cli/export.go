package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/dmitrijs2005/babylog/internal/client/export"
	"github.com/dmitrijs2005/babylog/internal/filex"
	"github.com/spf13/cobra"
)

func (a *App) exportCommand() *cobra.Command {
	var (
		output string
		from   string
		days   int
	)
	cmd := &cobra.Command{
		Use:       "export csv|text|html",
		Short:     "Write a report for the active profile",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"csv", "text", "html"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			format, err := export.ParseFormat(args[0])
			if err != nil {
				return err
			}
			if days < 1 || days > 366 {
				return fmt.Errorf("--days must be between 1 and 366")
			}
			if from == "" {
				from = daysBefore(a.dl.Today(), days, a.dl.Location())
			}
			if from, err = parseDate(from, a.dl.Today()); err != nil {
				return err
			}

			report, err := export.Collect(ctx, a.dl, from, days)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return export.Write(ctx, cmd.OutOrStdout(), format, report)
			}

			if filepath.Ext(output) == "" {
				output += format.Extension()
			}
			err = filex.WriteAtomic(output, 0o644, func(w io.Writer) error {
				return export.Write(ctx, w, format, report)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d entries)\n", output, len(report.Entries))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (default: --days ago)")
	cmd.Flags().IntVar(&days, "days", 7, "number of days")
	return cmd
}
