package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Mod5ied/eagle-server/internal/bootstrap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	return bootstrap.Start(cmd.Context(), cfgFile, buildInfo())
}
