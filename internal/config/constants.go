package config

// Defaults for the github_trending_bot deployment. Everything except
// the host address and the tokens can be left at its default.
const (
	// DefaultConfigFile is the config file name looked up in the
	// working directory when no --config flag is given.
	DefaultConfigFile = "botzner.yaml"

	// EnvironmentFileName is the file rendered into the config dir.
	EnvironmentFileName = "environment"

	DefaultSSHUser = "root"
	DefaultSSHPort = 22

	DefaultServiceName = "github_trending_bot"
	DefaultServiceUser = "github_trending_bot"
	DefaultDataDir     = "/var/lib/github_trending_bot"
	DefaultConfigDir   = "/etc/github_trending_bot.d"
	DefaultUnitDir     = "/lib/systemd/system"

	DefaultWatermarkFile = "last_update"
	DefaultWatermarkSeed = "0"

	DefaultPackageName   = "github_trending_bot"
	DefaultPackageBranch = "master"
	DefaultPip           = "pip3"
)
