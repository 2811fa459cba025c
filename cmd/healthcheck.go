package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	infrahealth "github.com/Mod5ied/eagle-server/infrastructure/health"
	"github.com/Mod5ied/eagle-server/internal/bootstrap"
)

var errUnhealthy = errors.New("service is unhealthy")

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Run the health probes once and print the report",
	Long: `Builds the same probes the server exposes on /api/health, runs them
once and prints the JSON report. Exits non-zero when the overall status
is Unhealthy, which makes it usable as a container health check.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		report, err := bootstrap.RunHealthcheck(cmd.Context(), cfgFile, version, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if report.Status == infrahealth.StatusUnhealthy {
			return errUnhealthy
		}
		return nil
	},
}
