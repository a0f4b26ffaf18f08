package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Validate checks the configuration for errors that would otherwise
// surface halfway through an apply.
func (c *Config) Validate() error {
	if !c.Host.Local && c.Host.Address == "" {
		return fmt.Errorf("host.address is required (or set host.local: true)")
	}
	if c.Host.Port < 1 || c.Host.Port > 65535 {
		return fmt.Errorf("host.port must be between 1 and 65535, got %d", c.Host.Port)
	}
	if !c.Host.Local && c.Host.PrivateKey == "" {
		return fmt.Errorf("host.private_key is required for remote hosts")
	}

	if err := validateName("service.name", c.Service.Name); err != nil {
		return err
	}
	if err := validateName("service.user", c.Service.User); err != nil {
		return err
	}
	for _, dir := range []struct{ field, value string }{
		{"service.data_dir", c.Service.DataDir},
		{"service.config_dir", c.Service.ConfigDir},
		{"service.unit_dir", c.Service.UnitDir},
	} {
		if !strings.HasPrefix(dir.value, "/") {
			return fmt.Errorf("%s must be an absolute path, got %q", dir.field, dir.value)
		}
	}

	if strings.Contains(c.Watermark.File, "/") {
		return fmt.Errorf("watermark.file must be a bare file name, got %q", c.Watermark.File)
	}
	if n, err := strconv.ParseInt(c.Watermark.Seed, 10, 64); err != nil || n < 0 {
		return fmt.Errorf("watermark.seed must be a non-negative integer, got %q", c.Watermark.Seed)
	}

	if c.Package.Source == "" {
		return fmt.Errorf("package.source is required")
	}
	if !validSource(c.Package.Source) {
		return fmt.Errorf("package.source must be an http(s), ssh or git URL, got %q", c.Package.Source)
	}

	for key := range c.Environment {
		if !validEnvKey(key) {
			return fmt.Errorf("environment key %q is not a valid shell identifier", key)
		}
	}

	return nil
}

// validateName enforces portable user/service names: lowercase
// alphanumerics, underscore and hyphen, not starting with a hyphen.
func validateName(field, name string) error {
	if name == "" {
		return fmt.Errorf("%s is required", field)
	}
	if len(name) > 32 {
		return fmt.Errorf("%s must be 32 characters or less", field)
	}
	if name[0] == '-' {
		return fmt.Errorf("%s cannot start with a hyphen", field)
	}
	for _, r := range name {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return fmt.Errorf("%s can only contain lowercase letters, digits, underscore and hyphen", field)
		}
	}
	return nil
}

func validSource(source string) bool {
	for _, prefix := range []string{"https://", "http://", "ssh://", "git://", "git@"} {
		if strings.HasPrefix(source, prefix) {
			return true
		}
	}
	return false
}

func validEnvKey(key string) bool {
	if key == "" {
		return false
	}
	for i, r := range key {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
