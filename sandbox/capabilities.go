// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"os"
	"os/exec"
	"strings"
)

// Capabilities describes what sandbox features this host offers.
type Capabilities struct {
	// BwrapAvailable is true if bubblewrap is installed.
	BwrapAvailable bool

	// BwrapPath is the path to bwrap if available.
	BwrapPath string

	// BwrapVersion is the bwrap version string.
	BwrapVersion string

	// UserNamespacesEnabled is true if unprivileged user namespaces work.
	UserNamespacesEnabled bool

	// SystemdRunAvailable is true if systemd-run is available.
	SystemdRunAvailable bool

	// SystemdUserScopesWork is true if user scopes can be created.
	SystemdUserScopesWork bool

	// ProjectQuota is true if the workspace root supports XFS project
	// quotas, enabling persistent size-limited workspaces.
	ProjectQuota bool
}

// DetectCapabilities probes the host. workspaceRoot is the directory
// that would hold persistent workspaces; pass "" to skip the quota
// probe.
func DetectCapabilities(workspaceRoot string) *Capabilities {
	caps := &Capabilities{}

	if path, err := BwrapPath(); err == nil {
		caps.BwrapAvailable = true
		caps.BwrapPath = path
		if out, err := exec.Command(path, "--version").Output(); err == nil {
			caps.BwrapVersion = strings.TrimSpace(string(out))
		}
	}

	caps.UserNamespacesEnabled = checkUserNamespaces()

	if _, err := exec.LookPath("systemd-run"); err == nil {
		caps.SystemdRunAvailable = true
		cmd := exec.Command("systemd-run", "--user", "--scope", "--", "true")
		if err := cmd.Run(); err == nil {
			caps.SystemdUserScopesWork = true
		}
	}

	if workspaceRoot != "" {
		caps.ProjectQuota = ProjectQuotaSupported(workspaceRoot)
	}

	return caps
}

// CanLaunch reports whether basic sandbox execution is possible.
func (c *Capabilities) CanLaunch() bool {
	return c.BwrapAvailable && c.UserNamespacesEnabled
}

// SkipReason returns a human-readable reason why sandboxing is
// unavailable, or "" if it is available.
func (c *Capabilities) SkipReason() string {
	if !c.BwrapAvailable {
		return "bubblewrap not installed"
	}
	if !c.UserNamespacesEnabled {
		return "unprivileged user namespaces not enabled (set kernel.unprivileged_userns_clone=1)"
	}
	return ""
}

// checkUserNamespaces tests whether unprivileged user namespaces work.
func checkUserNamespaces() bool {
	// The sysctl says no; believe it. Absence of the file usually
	// means namespaces are allowed.
	data, err := os.ReadFile("/proc/sys/kernel/unprivileged_userns_clone")
	if err == nil && strings.TrimSpace(string(data)) == "0" {
		return false
	}

	bwrapPath, err := BwrapPath()
	if err != nil {
		return false
	}

	cmd := exec.Command(bwrapPath,
		"--unshare-user",
		"--ro-bind", "/", "/",
		"--",
		"true",
	)
	return cmd.Run() == nil
}
