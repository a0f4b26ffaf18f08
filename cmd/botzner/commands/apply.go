package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/botzner/cmd/botzner/handlers"
)

// Apply returns the command for converging the target host.
//
// This command runs the full provisioning pipeline: creating the
// service user and directories, placing the environment and unit
// files, installing the application package and restarting the
// service.
//
// Optional flags:
//
//	--config, -c: Path to deployment configuration YAML file (default: auto-detect botzner.yaml)
//	--dry-run: Probe the host and report drift without changing anything
func Apply() *cobra.Command {
	var configPath string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Provision or update the bot deployment",
		Long: `Provision or update the github_trending_bot deployment.

This command converges the target host onto the configured state:
service user, directories, environment file, systemd unit, the pip
package and a running service. Steps that are already satisfied are
skipped, so re-applying an unchanged configuration is safe.

If no config file is specified, it looks for botzner.yaml in the
current directory. Use 'botzner init' to create a configuration file.

Examples:
  # Provision using botzner.yaml in current directory
  botzner apply

  # Provision using specific config file
  botzner apply -c production.yaml

  # Preview what would change
  botzner apply --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), configPath, dryRun)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: botzner.yaml)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report drift without changing the host")

	return cmd
}
