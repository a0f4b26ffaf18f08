// Package config defines the botzner deployment configuration: one
// target host and the desired state of the github_trending_bot
// service on it.
package config

import "path"

// Config is the root configuration, loaded from botzner.yaml.
type Config struct {
	Host        HostConfig        `mapstructure:"host"`
	Service     ServiceConfig     `mapstructure:"service"`
	Watermark   WatermarkConfig   `mapstructure:"watermark"`
	Package     PackageConfig     `mapstructure:"package"`
	Environment map[string]string `mapstructure:"environment"`
}

// HostConfig describes how to reach the target host.
type HostConfig struct {
	// Address is the hostname or IP to SSH to. Ignored when Local is set.
	Address string `mapstructure:"address"`
	// User is the SSH login user. Provisioning needs root or full sudo.
	User string `mapstructure:"user"`
	// Port is the SSH port.
	Port int `mapstructure:"port"`
	// PrivateKey is the path to the SSH private key file.
	PrivateKey string `mapstructure:"private_key"`
	// Local provisions the machine botzner runs on instead of dialing out.
	Local bool `mapstructure:"local"`
}

// ServiceConfig describes the deployed service and its filesystem layout.
type ServiceConfig struct {
	// Name is the systemd service name (without the .service suffix).
	Name string `mapstructure:"name"`
	// User is the system account the service runs as.
	User string `mapstructure:"user"`
	// DataDir holds the service's mutable state, including the watermark.
	DataDir string `mapstructure:"data_dir"`
	// ConfigDir holds the environment file.
	ConfigDir string `mapstructure:"config_dir"`
	// UnitDir is where the unit file is installed.
	UnitDir string `mapstructure:"unit_dir"`
}

// WatermarkConfig describes the write-once last-update marker.
type WatermarkConfig struct {
	// File is the watermark file name, relative to the data dir.
	File string `mapstructure:"file"`
	// Seed is the initial numeric value, written only if the file is absent.
	Seed string `mapstructure:"seed"`
}

// PackageConfig describes where the application code comes from.
type PackageConfig struct {
	// Name is the pip distribution name, used for presence checks.
	Name string `mapstructure:"name"`
	// Source is the git URL pip installs from.
	Source string `mapstructure:"source"`
	// Branch is the branch to install.
	Branch string `mapstructure:"branch"`
	// Pin resolves the branch head before installing so every apply of
	// the same config installs the same commit. Defaults to true.
	Pin *bool `mapstructure:"pin"`
	// Pip is the pip executable on the host.
	Pip string `mapstructure:"pip"`
}

// Pinned reports whether package installs should be pinned to the
// resolved remote head.
func (p PackageConfig) Pinned() bool {
	return p.Pin == nil || *p.Pin
}

// EnvironmentFilePath returns the absolute path of the environment file.
func (c *Config) EnvironmentFilePath() string {
	return path.Join(c.Service.ConfigDir, EnvironmentFileName)
}

// UnitFilePath returns the absolute path of the installed unit file.
func (c *Config) UnitFilePath() string {
	return path.Join(c.Service.UnitDir, c.Service.Name+".service")
}

// WatermarkPath returns the absolute path of the watermark file.
func (c *Config) WatermarkPath() string {
	return path.Join(c.Service.DataDir, c.Watermark.File)
}
