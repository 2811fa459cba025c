// Package cmd implements the eagle-server command line.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Mod5ied/eagle-server/internal/bootstrap"
)

// Set via -ldflags "-X github.com/Mod5ied/eagle-server/cmd.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "eagle-server",
	Short: "Product catalogue API with cookie sessions",
	Long: `eagle-server serves the product catalogue API: cookie based
authentication, product management over a document store and a
composite health report.

Running without a subcommand is the same as "eagle-server serve".`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is $CONFIG_PATH or ./config.yml)",
	)

	rootCmd.AddCommand(serveCmd, healthcheckCmd, versionCmd)
}

func buildInfo() bootstrap.BuildInfo {
	return bootstrap.BuildInfo{Version: version, Commit: commit, Date: date}
}
