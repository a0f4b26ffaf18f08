// Package main is the entry point for the botzner CLI.
//
// botzner is a command-line tool for provisioning a Linux host to run
// the github_trending_bot Telegram service. It creates the service
// account and filesystem layout, places the environment and systemd
// unit files, installs the bot from its git source via pip and keeps
// the service running, all over a single SSH connection.
//
// Commands: init, apply, doctor, destroy.
//
// For detailed usage information, run:
//
//	botzner --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/botzner/cmd/botzner/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
