// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"fmt"
	"os"
	"sort"
	"strconv"
)

// bwrapSearchPath lists where we look for the bubblewrap binary.
var bwrapSearchPath = []string{
	"/usr/bin/bwrap",
	"/usr/local/bin/bwrap",
	"/bin/bwrap",
}

// BwrapPath returns the path to the bwrap executable, or an error if
// none of the standard locations has it.
func BwrapPath() (string, error) {
	for _, path := range bwrapSearchPath {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("bwrap not found in standard locations")
}

// bwrapBuilder assembles bubblewrap command-line arguments for a
// LaunchSpec.
type bwrapBuilder struct {
	args []string
	env  map[string]string
}

func newBwrapBuilder() *bwrapBuilder {
	return &bwrapBuilder{env: make(map[string]string)}
}

// Build constructs the bwrap argument list. The workspace mount is
// either a size-capped tmpfs, or a bind of the host directory when
// the spec asks for a persistent workspace (quota enforcement happens
// on the host side, see quota.go).
func (b *bwrapBuilder) Build(spec LaunchSpec) ([]string, error) {
	if len(spec.Command) == 0 {
		return nil, fmt.Errorf("command is required")
	}
	if spec.WorkspacePath == "" {
		return nil, fmt.Errorf("workspace path is required")
	}
	if spec.PersistentWorkspace && spec.HostWorkspaceDir == "" {
		return nil, fmt.Errorf("persistent workspace requires a host directory")
	}

	b.args = b.args[:0]

	b.addNamespaces(spec.Network)
	b.addSecurity()
	b.addBaseMounts()
	b.addWorkspace(spec)

	b.args = append(b.args, "--clearenv")
	b.env["PATH"] = "/usr/local/bin:/usr/bin:/bin"
	b.env["HOME"] = spec.WorkspacePath

	keys := make([]string, 0, len(b.env))
	for key := range b.env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.args = append(b.args, "--setenv", key, b.env[key])
	}

	b.args = append(b.args, "--chdir", spec.WorkspacePath)
	b.args = append(b.args, "--")
	b.args = append(b.args, spec.Command...)

	return b.args, nil
}

func (b *bwrapBuilder) addNamespaces(network NetworkMode) {
	b.args = append(b.args,
		"--unshare-pid",
		"--unshare-ipc",
		"--unshare-uts",
		"--unshare-cgroup",
		"--unshare-user",
	)
	if network != NetworkHost {
		b.args = append(b.args, "--unshare-net")
	}
}

func (b *bwrapBuilder) addSecurity() {
	b.args = append(b.args, "--new-session", "--die-with-parent")
}

// addBaseMounts provides a minimal read-only root: the host's
// toolchain directories, /proc, and a safe /dev. Directories absent
// on the host (usr-merge variation across distros) are skipped.
func (b *bwrapBuilder) addBaseMounts() {
	b.args = append(b.args, "--proc", "/proc")
	b.args = append(b.args, "--dev", "/dev")
	b.args = append(b.args, "--tmpfs", "/tmp")

	for _, dir := range []string{"/usr", "/bin", "/sbin", "/lib", "/lib64", "/etc"} {
		if _, err := os.Stat(dir); err == nil {
			b.args = append(b.args, "--ro-bind", dir, dir)
		}
	}
}

func (b *bwrapBuilder) addWorkspace(spec LaunchSpec) {
	if spec.PersistentWorkspace {
		b.args = append(b.args, "--bind", spec.HostWorkspaceDir, spec.WorkspacePath)
		return
	}
	args := []string{}
	if spec.WorkspaceSize > 0 {
		args = append(args, "--size", strconv.FormatInt(spec.WorkspaceSize, 10))
	}
	args = append(args, "--tmpfs", spec.WorkspacePath)
	b.args = append(b.args, args...)
}
