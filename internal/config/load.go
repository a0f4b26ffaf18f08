package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// LoadFile reads and parses the configuration from a YAML file.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var rawConfig map[string]interface{}
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	var cfg Config
	if err := mapstructure.Decode(rawConfig, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// ApplyDefaults fills every unset field that has a usable default.
func (c *Config) ApplyDefaults() {
	if c.Host.User == "" {
		c.Host.User = DefaultSSHUser
	}
	if c.Host.Port == 0 {
		c.Host.Port = DefaultSSHPort
	}
	if c.Service.Name == "" {
		c.Service.Name = DefaultServiceName
	}
	if c.Service.User == "" {
		c.Service.User = DefaultServiceUser
	}
	if c.Service.DataDir == "" {
		c.Service.DataDir = DefaultDataDir
	}
	if c.Service.ConfigDir == "" {
		c.Service.ConfigDir = DefaultConfigDir
	}
	if c.Service.UnitDir == "" {
		c.Service.UnitDir = DefaultUnitDir
	}
	if c.Watermark.File == "" {
		c.Watermark.File = DefaultWatermarkFile
	}
	if c.Watermark.Seed == "" {
		c.Watermark.Seed = DefaultWatermarkSeed
	}
	if c.Package.Name == "" {
		c.Package.Name = DefaultPackageName
	}
	if c.Package.Branch == "" {
		c.Package.Branch = DefaultPackageBranch
	}
	if c.Package.Pip == "" {
		c.Package.Pip = DefaultPip
	}
	if c.Environment == nil {
		c.Environment = map[string]string{}
	}
}

// FindConfigFile returns the default config file path if it exists in
// the working directory.
func FindConfigFile() (string, error) {
	if _, err := os.Stat(DefaultConfigFile); err != nil {
		return "", fmt.Errorf("config file %s not found", DefaultConfigFile)
	}
	return DefaultConfigFile, nil
}

// Save writes the configuration to a YAML file.
func Save(cfg *Config, path string) error {
	out := map[string]interface{}{
		"host": map[string]interface{}{
			"address":     cfg.Host.Address,
			"user":        cfg.Host.User,
			"port":        cfg.Host.Port,
			"private_key": cfg.Host.PrivateKey,
			"local":       cfg.Host.Local,
		},
		"service": map[string]interface{}{
			"name":       cfg.Service.Name,
			"user":       cfg.Service.User,
			"data_dir":   cfg.Service.DataDir,
			"config_dir": cfg.Service.ConfigDir,
			"unit_dir":   cfg.Service.UnitDir,
		},
		"watermark": map[string]interface{}{
			"file": cfg.Watermark.File,
			"seed": cfg.Watermark.Seed,
		},
		"package": map[string]interface{}{
			"name":   cfg.Package.Name,
			"source": cfg.Package.Source,
			"branch": cfg.Package.Branch,
			"pin":    cfg.Package.Pinned(),
			"pip":    cfg.Package.Pip,
		},
		"environment": cfg.Environment,
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
