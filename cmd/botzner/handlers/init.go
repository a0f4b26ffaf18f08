package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/imamik/botzner/internal/config"
)

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// runWizard runs the interactive configuration wizard.
	runWizard = config.RunWizard

	// writeConfig writes the config to a file.
	writeConfig = config.Save
)

// Init runs the configuration wizard and writes the result to a file.
func Init(ctx context.Context, outputPath string) error {
	if fileExists(outputPath) {
		fmt.Printf("Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	printWelcome()

	result, err := runWizard(ctx)
	if err != nil {
		return err
	}

	cfg := result.ToConfig()

	if err := writeConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)

	return nil
}

// printWelcome prints the welcome message.
func printWelcome() {
	fmt.Println()
	fmt.Println("botzner - github_trending_bot host provisioner")
	fmt.Println("==============================================")
	fmt.Println()
	fmt.Println("This wizard creates a deployment configuration with sensible defaults.")
	fmt.Println("Answer a few questions about the target host and the bot's source.")
	fmt.Println()
}

// printInitSuccess prints the success message with summary and next steps.
func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()

	// Summary
	fmt.Println("Deployment Summary")
	fmt.Println("------------------")
	fmt.Printf("  Host:         %s\n", targetName(cfg))
	fmt.Printf("  Service:      %s (runs as %s)\n", cfg.Service.Name, cfg.Service.User)
	fmt.Printf("  Data dir:     %s\n", cfg.Service.DataDir)
	fmt.Printf("  Config dir:   %s\n", cfg.Service.ConfigDir)
	fmt.Printf("  Source:       %s@%s\n", cfg.Package.Source, cfg.Package.Branch)
	if cfg.Package.Pinned() {
		fmt.Println("  Installs:     pinned to the resolved branch head")
	}
	fmt.Println()

	// Next steps
	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Printf("  1. Review %s if needed\n", outputPath)
	fmt.Println()
	fmt.Println("  2. Preview what apply would change:")
	fmt.Println("     botzner apply --dry-run")
	fmt.Println()
	fmt.Println("  3. Provision the host:")
	fmt.Println("     botzner apply")
	fmt.Println()
}
