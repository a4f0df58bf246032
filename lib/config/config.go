// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the warren-manager configuration.
type Config struct {
	// ListenAddress is the HTTP API listen address.
	ListenAddress string `yaml:"listen_address"`

	// StatePath is the SQLite state database file. Empty selects the
	// in-memory state store (single-process development mode; all
	// sessions are lost on restart).
	StatePath string `yaml:"state_path"`

	// MaxSandboxes is the global capacity cap: the number of
	// sandboxes that may hold a slot at once.
	MaxSandboxes int `yaml:"max_sandboxes"`

	// MemoryLimit caps each sandbox's memory.
	MemoryLimit ByteSize `yaml:"memory_limit"`

	// CPUQuotaPercent caps each sandbox's CPU time; 100 is one core.
	CPUQuotaPercent int `yaml:"cpu_quota_percent"`

	// PidsLimit caps the number of tasks inside each sandbox.
	PidsLimit int `yaml:"pids_limit"`

	// WorkspaceSize caps each sandbox's workspace filesystem.
	WorkspaceSize ByteSize `yaml:"workspace_size"`

	// WorkspacePath is where the workspace is mounted inside the
	// sandbox, and what clients are told to address.
	WorkspacePath string `yaml:"workspace_path"`

	// WorkspaceRoot is the host directory backing quota-enforced
	// workspaces when the host filesystem supports project quotas.
	WorkspaceRoot string `yaml:"workspace_root"`

	// IdleThreshold is how long a session may sit without activity
	// before the eviction sweep reclaims it.
	IdleThreshold time.Duration `yaml:"idle_threshold"`

	// SweepInterval is the eviction sweep period.
	SweepInterval time.Duration `yaml:"sweep_interval"`

	// StopGrace is how long a sandbox is given to exit after SIGTERM
	// before it is killed.
	StopGrace time.Duration `yaml:"stop_grace"`

	// NetworkMode selects sandbox network isolation: "none" for a
	// fully private network namespace, "host" to share the manager's.
	NetworkMode string `yaml:"network_mode"`

	// SandboxCommand is the command template launched inside every
	// sandbox.
	SandboxCommand []string `yaml:"sandbox_command"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddress:   ":8080",
		MaxSandboxes:    10,
		MemoryLimit:     512 << 20,
		CPUQuotaPercent: 100,
		PidsLimit:       100,
		WorkspaceSize:   1 << 30,
		WorkspacePath:   "/workspace",
		WorkspaceRoot:   "/var/lib/warren/workspaces",
		IdleThreshold:   10 * time.Minute,
		SweepInterval:   time.Minute,
		StopGrace:       10 * time.Second,
		NetworkMode:     "none",
		SandboxCommand:  []string{"/bin/sh", "-c", "sleep infinity"},
	}
}

// Load resolves the configuration: defaults, then the YAML file at
// path (if non-empty), then WARREN_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvironment(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot run.
func (c *Config) Validate() error {
	if c.MaxSandboxes < 1 {
		return fmt.Errorf("max_sandboxes must be at least 1, got %d", c.MaxSandboxes)
	}
	if c.IdleThreshold <= 0 {
		return fmt.Errorf("idle_threshold must be positive, got %v", c.IdleThreshold)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive, got %v", c.SweepInterval)
	}
	if c.StopGrace <= 0 {
		return fmt.Errorf("stop_grace must be positive, got %v", c.StopGrace)
	}
	if len(c.SandboxCommand) == 0 {
		return fmt.Errorf("sandbox_command must not be empty")
	}
	switch c.NetworkMode {
	case "none", "host":
	default:
		return fmt.Errorf("network_mode must be %q or %q, got %q", "none", "host", c.NetworkMode)
	}
	return nil
}

// applyEnvironment overlays WARREN_* variables onto the config.
func (c *Config) applyEnvironment() error {
	var err error

	setString("WARREN_LISTEN_ADDRESS", &c.ListenAddress)
	setString("WARREN_STATE_PATH", &c.StatePath)
	setString("WARREN_WORKSPACE_PATH", &c.WorkspacePath)
	setString("WARREN_WORKSPACE_ROOT", &c.WorkspaceRoot)
	setString("WARREN_NETWORK_MODE", &c.NetworkMode)

	if err = setInt("WARREN_MAX_SANDBOXES", &c.MaxSandboxes); err != nil {
		return err
	}
	if err = setInt("WARREN_CPU_QUOTA", &c.CPUQuotaPercent); err != nil {
		return err
	}
	if err = setInt("WARREN_PIDS_LIMIT", &c.PidsLimit); err != nil {
		return err
	}
	if err = setSize("WARREN_MEMORY_LIMIT", &c.MemoryLimit); err != nil {
		return err
	}
	if err = setSize("WARREN_WORKSPACE_SIZE", &c.WorkspaceSize); err != nil {
		return err
	}
	if err = setDuration("WARREN_IDLE_THRESHOLD", &c.IdleThreshold); err != nil {
		return err
	}
	if err = setDuration("WARREN_SWEEP_INTERVAL", &c.SweepInterval); err != nil {
		return err
	}
	if err = setDuration("WARREN_STOP_GRACE", &c.StopGrace); err != nil {
		return err
	}

	if value := os.Getenv("WARREN_SANDBOX_COMMAND"); value != "" {
		c.SandboxCommand = strings.Fields(value)
	}
	return nil
}

func setString(key string, target *string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func setInt(key string, target *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*target = parsed
	return nil
}

func setDuration(key string, target *time.Duration) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*target = parsed
	return nil
}

func setSize(key string, target *ByteSize) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := ParseSize(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*target = parsed
	return nil
}
