package cli

import (
	"github.com/spf13/cobra"
)

const annotationNoData = "babylog/no-data"

// rootCommand builds a fresh command tree bound to a. The shell builds one
// per line because cobra keeps parsed flag values on the commands.
func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "babylog",
		Short:         "babylog records feedings, diapers and sleep from your terminal",
		Long:          "babylog is a local-first baby care log with timers, summaries, exports, encrypted backups and optional cloud sync.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationNoData] != "" || cmd.Name() == "help" {
				return nil
			}
			return a.open(cmd.Context())
		},
	}

	// Parsed by the config package from the raw arguments; declared here
	// so cobra accepts them and lists them in help.
	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "JSON configuration file")
	pf.String("env-file", "", "dotenv file (default .env when present)")
	pf.StringP("db", "d", "", "SQLite database file")
	pf.StringP("server", "a", "", "sync server address:port")
	pf.String("http", "", "local HTTP API listen address")
	pf.String("tz", "", "time zone for calendar days (default Local)")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.String("log-format", "", "text or json")
	pf.Duration("timeout", 0, "sync request timeout")

	root.AddCommand(
		a.profileCommand(),
		a.feedCommand(),
		a.diaperCommand(),
		a.sleepCommand(),
		a.logCommand(),
		a.editCommand(),
		a.deleteCommand(),
		a.summaryCommand(),
		a.weightCommand(),
		a.prefsCommand(),
		a.exportCommand(),
		a.backupCommand(),
		a.syncCommand(),
		a.serveCommand(),
		a.shellCommand(),
		versionCommand(),
	)
	return root
}
