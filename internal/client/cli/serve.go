package cli

import (
	"fmt"

	"github.com/dmitrijs2005/babylog/internal/client/httpapi"
	"github.com/spf13/cobra"
)

func (a *App) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the local HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr := "127.0.0.1:8686"
			if a.cfg != nil {
				addr = a.cfg.HTTPAddr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", addr)
			return httpapi.Serve(cmd.Context(), addr, httpapi.NewRouter(a.dl, a.log), a.log)
		},
	}
}
