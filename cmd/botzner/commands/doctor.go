package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/botzner/cmd/botzner/handlers"
)

// Doctor returns the command for diagnosing the deployed host.
func Doctor() *cobra.Command {
	var configPath string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the host against the configuration",
		Long: `Diagnose the target host against the deployment configuration.

Checks connectivity, the tools provisioning depends on, the service
user, directories, content drift in the managed files, the installed
package and the service state. Exits non-zero when required state is
missing, so the command is usable in scripts and monitoring.

Examples:
  # Human-readable report
  botzner doctor

  # Machine-readable report
  botzner doctor --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), configPath, jsonOut)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: botzner.yaml)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the report as JSON")

	return cmd
}
