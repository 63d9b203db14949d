package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/filex"
	"github.com/spf13/cobra"
)

func (a *App) backupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Encrypted backups of all local data",
	}

	var output string
	create := &cobra.Command{
		Use:   "create",
		Short: "Write an encrypted snapshot of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if output == "" {
				output = fmt.Sprintf("babylog-%s.bak", a.dl.Clock().Now().In(a.dl.Location()).Format("20060102-150405"))
			}
			pass, err := NewPassphrase(a.reader, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pass)

			blob, err := a.dl.Backup().Create(ctx, pass)
			if err != nil {
				return err
			}
			err = filex.WriteAtomic(output, 0o600, func(w io.Writer) error {
				_, err := w.Write(blob)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created backup %s\n", output)
			return nil
		},
	}
	create.Flags().StringVarP(&output, "output", "o", "", "backup file (default babylog-<timestamp>.bak)")

	var yes bool
	restore := &cobra.Command{
		Use:   "restore FILE",
		Short: "Replace all local data with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			blob, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			if !yes && !Confirm(a.reader, "Restoring replaces all local data. Continue?", cmd.OutOrStdout()) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			pass, err := GetPassphrase(a.reader, "Backup passphrase:", cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pass)

			n, err := a.dl.Backup().Restore(ctx, blob, pass)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d keys from %s\n", n, args[0])
			return nil
		},
	}
	restore.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(create, restore)
	return cmd
}
