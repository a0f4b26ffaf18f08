package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/botzner/cmd/botzner/handlers"
)

// Init returns the command for creating a deployment configuration.
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a deployment configuration interactively",
		Long: `Create a deployment configuration through an interactive wizard.

The wizard asks for the target host, the bot's git source and the
tokens written to the environment file, then writes a complete
botzner.yaml with sensible defaults.

Examples:
  # Create botzner.yaml in the current directory
  botzner init

  # Write the configuration somewhere else
  botzner init -o deploy/production.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "botzner.yaml", "Output path for the configuration file")

	return cmd
}
