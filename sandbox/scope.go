// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"fmt"
	"os/exec"
)

// systemdScope wraps a command in a systemd transient scope so the
// kernel enforces the launch spec's cgroup limits.
type systemdScope struct {
	// Name becomes the scope unit name (e.g. "warren-3fa29c1b").
	Name string

	// User creates the scope in the user session rather than the
	// system manager.
	User bool
}

// systemdAvailable reports whether systemd-run exists on the host.
func systemdAvailable() bool {
	_, err := exec.LookPath("systemd-run")
	return err == nil
}

// hasLimits reports whether the spec sets any cgroup-enforced limit.
func hasLimits(spec LaunchSpec) bool {
	return spec.MemoryBytes > 0 || spec.CPUQuotaPercent > 0 || spec.PidsLimit > 0
}

// Wrap prefixes cmd with a systemd-run invocation carrying the spec's
// resource limits as scope properties. The command is returned
// unchanged if the spec has no limits. Callers check systemdAvailable
// before wrapping.
func (s *systemdScope) Wrap(spec LaunchSpec, cmd []string) []string {
	if !hasLimits(spec) {
		return cmd
	}

	args := []string{"systemd-run"}
	if s.User {
		args = append(args, "--user")
	}
	args = append(args, "--scope", "--collect")
	if s.Name != "" {
		args = append(args, "--unit="+s.Name)
	}

	if spec.PidsLimit > 0 {
		args = append(args, fmt.Sprintf("--property=TasksMax=%d", spec.PidsLimit))
	}
	if spec.MemoryBytes > 0 {
		args = append(args, fmt.Sprintf("--property=MemoryMax=%d", spec.MemoryBytes))
	}
	if spec.CPUQuotaPercent > 0 {
		args = append(args, fmt.Sprintf("--property=CPUQuota=%d%%", spec.CPUQuotaPercent))
	}

	args = append(args, "--")
	args = append(args, cmd...)
	return args
}
