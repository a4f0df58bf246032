// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"context"
	"errors"
	"time"
)

// ErrUnsupported reports that the host cannot provide a requested
// isolation mechanism (typically an XFS project-quota workspace).
// Callers are expected to retry with a weaker configuration.
var ErrUnsupported = errors.New("sandbox: mechanism unsupported on this host")

// ErrGone reports that no live sandbox exists under the given name.
// A sandbox whose process has exited, was stopped, or never launched
// all look the same from outside: gone.
var ErrGone = errors.New("sandbox: not found")

// NetworkMode selects the network namespace configuration for a
// sandbox.
type NetworkMode string

const (
	// NetworkNone gives the sandbox a fresh, empty network namespace
	// with only a loopback interface.
	NetworkNone NetworkMode = "none"

	// NetworkHost shares the host network namespace.
	NetworkHost NetworkMode = "host"
)

// LaunchSpec describes one sandbox to create.
type LaunchSpec struct {
	// Name uniquely identifies the sandbox on the host. It becomes
	// the systemd scope unit name, so it must be a valid unit name
	// fragment (warren derives it from the session ID).
	Name string

	// Command is the argv to run inside the sandbox. Must be
	// non-empty.
	Command []string

	// MemoryBytes caps the sandbox's total memory. Zero means no cap.
	MemoryBytes int64

	// CPUQuotaPercent caps CPU time as a percentage of one core
	// (200 = two cores). Zero means no cap.
	CPUQuotaPercent int

	// PidsLimit caps the number of tasks in the sandbox. Zero means
	// no cap.
	PidsLimit int

	// WorkspacePath is where the writable workspace appears inside
	// the sandbox.
	WorkspacePath string

	// WorkspaceSize caps the workspace in bytes.
	WorkspaceSize int64

	// PersistentWorkspace requests an on-disk workspace under a
	// filesystem project quota instead of a size-capped tmpfs.
	// Launch returns ErrUnsupported when the host cannot enforce it.
	PersistentWorkspace bool

	// HostWorkspaceDir is the host-side directory backing a
	// persistent workspace. Ignored for tmpfs workspaces.
	HostWorkspaceDir string

	// Network selects the sandbox's network namespace mode.
	Network NetworkMode
}

// Status is a point-in-time view of a live sandbox.
type Status struct {
	Name    string
	PID     int
	Running bool
}

// Instance is a handle on a launched sandbox.
type Instance interface {
	// Name returns the sandbox name from the LaunchSpec.
	Name() string

	// Exited is closed when the sandbox's root process exits, for
	// any reason. It never closes twice and never reopens.
	Exited() <-chan struct{}
}

// Runtime creates and manages sandboxes.
//
// Implementations must make Stop idempotent: stopping a sandbox that
// already exited, or that never existed, succeeds. The lifecycle
// manager relies on this to tolerate races between eviction, explicit
// teardown, and self-exit.
type Runtime interface {
	// Launch creates a sandbox and starts its command. The returned
	// Instance's Exited channel closes when the process ends.
	Launch(ctx context.Context, spec LaunchSpec) (Instance, error)

	// Inspect reports the current state of a named sandbox, or
	// ErrGone if no such sandbox is live.
	Inspect(ctx context.Context, name string) (Status, error)

	// Stop terminates a sandbox: SIGTERM, then SIGKILL after grace.
	// Stopping an absent sandbox is not an error.
	Stop(ctx context.Context, name string, grace time.Duration) error
}
