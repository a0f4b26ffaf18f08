package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/botzner/cmd/botzner/handlers"
)

// Destroy returns the command for removing the deployment from the host.
func Destroy() *cobra.Command {
	var configPath string
	var force bool

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Remove the deployment from the host",
		Long: `Remove everything apply placed on the host.

Stops and disables the service, removes the unit file, uninstalls the
package, deletes the data and config directories and removes the
service user. The data directory holds the bot's state, so this is
destructive and requires --force.

Examples:
  botzner destroy --force
  botzner destroy -c production.yaml --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), configPath, force)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: botzner.yaml)")
	cmd.Flags().BoolVar(&force, "force", false, "Confirm removal of the service, its data and user")

	return cmd
}
