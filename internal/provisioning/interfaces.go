// Package provisioning provides shared types and interfaces for host provisioning.
//
// The provisioning domain is organized into focused subpackages:
//   - account/ — the service's system user
//   - layout/ — data and config directories
//   - files/ — environment file, systemd unit, watermark seed
//   - release/ — package installation from the git source
//   - service/ — systemd lifecycle (reload, enable, start, restart)
//
// This root package contains the shared context, state and observer
// types used across subpackages.
package provisioning

// Phase defines the interface for a provisioning phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision converges the host onto this phase's desired state.
	Provision(ctx *Context) error
}
