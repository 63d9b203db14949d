package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/babylog/internal/client/events"
	"github.com/dmitrijs2005/babylog/internal/client/services"
	"github.com/spf13/cobra"
)

func (a *App) syncService() (services.SyncService, error) {
	s := a.dl.Sync()
	if s == nil {
		return nil, errors.New("sync is not configured")
	}
	return s, nil
}

func (a *App) syncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Cloud sync for the active profile",
	}

	run := func(use, short string, fn func(cmd *cobra.Command, s services.SyncService, args []string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.syncService()
				if err != nil {
					return err
				}
				return fn(cmd, s, args)
			},
		}
	}

	status := run("status", "Show the sync link and server reachability", func(cmd *cobra.Command, s services.SyncService, _ []string) error {
		ctx := cmd.Context()
		st, err := s.Status(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !st.Enabled {
			fmt.Fprintln(out, "Sync: disabled")
		} else {
			fmt.Fprintf(out, "Sync: enabled (remote %s, version %d)\n", st.RemoteID, st.Version)
		}
		if a.remote != nil {
			if err := a.remote.Ping(ctx); err != nil {
				fmt.Fprintf(out, "Server: unreachable (%v)\n", err)
			} else {
				fmt.Fprintln(out, "Server: reachable")
			}
		}
		return nil
	})

	enable := run("enable", "Link the active profile to the sync server", func(cmd *cobra.Command, s services.SyncService, _ []string) error {
		st, err := s.Enable(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sync enabled (remote %s)\n", st.RemoteID)
		return nil
	})

	disable := run("disable", "Forget the sync link", func(cmd *cobra.Command, s services.SyncService, _ []string) error {
		if err := s.Disable(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Sync disabled")
		return nil
	})

	push := run("push", "Upload the active profile's entries", func(cmd *cobra.Command, s services.SyncService, _ []string) error {
		n, err := s.Push(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pushed %d entries\n", n)
		return nil
	})

	pull := run("pull", "Download entries recorded elsewhere", func(cmd *cobra.Command, s services.SyncService, _ []string) error {
		n, err := s.Pull(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Merged %d new entries\n", n)
		return nil
	})

	watch := run("watch", "Merge live updates until interrupted", func(cmd *cobra.Command, s services.SyncService, _ []string) error {
		out := cmd.OutOrStdout()
		unsubscribe := a.dl.Subscribe(func(ev events.Event) {
			if ev.Topic == events.TopicSync {
				fmt.Fprintf(out, "%s update received\n", clockTime(ev.At.UnixMilli(), a.dl.Location()))
			}
		})
		defer unsubscribe()

		fmt.Fprintln(out, "Watching for updates (Ctrl+C to stop)")
		return s.Watch(cmd.Context())
	})

	photo := &cobra.Command{
		Use:   "photo FILE",
		Short: "Upload a profile photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.syncService()
			if err != nil {
				return err
			}
			key, err := s.UploadPhoto(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded photo as %s\n", key)
			return nil
		},
	}

	cmd.AddCommand(status, enable, disable, push, pull, watch, photo)
	return cmd
}
