// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// LocalConfig configures a Local runtime.
type LocalConfig struct {
	// WorkspaceRoot holds host-side directories for persistent
	// workspaces.
	WorkspaceRoot string

	// UserScope creates systemd scopes in the user session rather
	// than the system manager.
	UserScope bool

	// Logger receives runtime events. Required.
	Logger *slog.Logger
}

// Local runs sandboxes as bwrap namespaces on the host, each wrapped
// in a systemd transient scope for resource limits.
type Local struct {
	config LocalConfig
	caps   *Capabilities

	mu        sync.Mutex
	instances map[string]*localInstance
}

type localInstance struct {
	name         string
	cmd          *exec.Cmd
	exited       chan struct{}
	workspaceDir string // host dir; empty for tmpfs workspaces
}

func (i *localInstance) Name() string            { return i.name }
func (i *localInstance) Exited() <-chan struct{} { return i.exited }

// NewLocal creates a Local runtime, probing host capabilities once up
// front. The runtime itself is returned even when the host cannot
// launch sandboxes; Launch reports the problem per call.
func NewLocal(config LocalConfig) *Local {
	return &Local{
		config:    config,
		caps:      DetectCapabilities(config.WorkspaceRoot),
		instances: make(map[string]*localInstance),
	}
}

// Capabilities returns the probe result from construction.
func (l *Local) Capabilities() *Capabilities {
	return l.caps
}

// Launch creates the sandbox described by spec and starts its
// command. A persistent workspace on a host without project quota
// support fails with ErrUnsupported before any process starts.
func (l *Local) Launch(ctx context.Context, spec LaunchSpec) (Instance, error) {
	if reason := l.caps.SkipReason(); reason != "" {
		return nil, fmt.Errorf("launching %s: %s", spec.Name, reason)
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("launch spec has no name")
	}
	if spec.PersistentWorkspace && !l.caps.ProjectQuota {
		return nil, fmt.Errorf("persistent workspace for %s: %w", spec.Name, ErrUnsupported)
	}

	l.mu.Lock()
	if _, exists := l.instances[spec.Name]; exists {
		l.mu.Unlock()
		return nil, fmt.Errorf("sandbox %s already running", spec.Name)
	}
	l.mu.Unlock()

	workspaceDir := ""
	if spec.PersistentWorkspace {
		workspaceDir = filepath.Join(l.config.WorkspaceRoot, spec.Name)
		if err := os.MkdirAll(workspaceDir, 0o700); err != nil {
			return nil, fmt.Errorf("creating workspace for %s: %w", spec.Name, err)
		}
		if err := applyProjectQuota(ctx, workspaceDir, spec.WorkspaceSize, spec.Name); err != nil {
			os.RemoveAll(workspaceDir)
			return nil, fmt.Errorf("workspace quota for %s: %w", spec.Name, err)
		}
		spec.HostWorkspaceDir = workspaceDir
	}

	bwrapArgs, err := newBwrapBuilder().Build(spec)
	if err != nil {
		l.cleanupWorkspace(workspaceDir, spec.Name)
		return nil, fmt.Errorf("building sandbox command for %s: %w", spec.Name, err)
	}
	argv := append([]string{l.caps.BwrapPath}, bwrapArgs...)

	if systemdAvailable() {
		scope := &systemdScope{Name: spec.Name, User: l.config.UserScope}
		argv = scope.Wrap(spec, argv)
	} else if hasLimits(spec) {
		l.config.Logger.Warn("systemd-run not available, resource limits will not be enforced",
			"name", spec.Name)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		l.cleanupWorkspace(workspaceDir, spec.Name)
		return nil, fmt.Errorf("starting sandbox %s: %w", spec.Name, err)
	}

	instance := &localInstance{
		name:         spec.Name,
		cmd:          cmd,
		exited:       make(chan struct{}),
		workspaceDir: workspaceDir,
	}
	l.mu.Lock()
	l.instances[spec.Name] = instance
	l.mu.Unlock()

	l.config.Logger.Info("sandbox started",
		"name", spec.Name,
		"pid", cmd.Process.Pid,
		"persistent_workspace", spec.PersistentWorkspace)

	go l.reap(instance)

	return instance, nil
}

// reap waits for the sandbox process, then releases everything tied
// to it. Exited closes after the instance is deregistered so a
// watcher that reacts to the close observes the runtime's final
// state.
func (l *Local) reap(instance *localInstance) {
	err := instance.cmd.Wait()

	l.mu.Lock()
	delete(l.instances, instance.name)
	l.mu.Unlock()

	l.cleanupWorkspace(instance.workspaceDir, instance.name)

	if err != nil {
		l.config.Logger.Info("sandbox exited", "name", instance.name, "error", err)
	} else {
		l.config.Logger.Info("sandbox exited", "name", instance.name)
	}
	close(instance.exited)
}

func (l *Local) cleanupWorkspace(dir, name string) {
	if dir == "" {
		return
	}
	if err := clearProjectQuota(context.Background(), dir, name); err != nil {
		l.config.Logger.Warn("clearing workspace quota", "name", name, "error", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		l.config.Logger.Warn("removing workspace", "name", name, "path", dir, "error", err)
	}
}

// Inspect reports the state of a named sandbox.
func (l *Local) Inspect(ctx context.Context, name string) (Status, error) {
	l.mu.Lock()
	instance, ok := l.instances[name]
	l.mu.Unlock()
	if !ok {
		return Status{}, fmt.Errorf("inspecting %s: %w", name, ErrGone)
	}

	running := true
	select {
	case <-instance.exited:
		running = false
	default:
	}

	return Status{
		Name:    name,
		PID:     instance.cmd.Process.Pid,
		Running: running,
	}, nil
}

// Stop terminates a sandbox: SIGTERM to the process group, then
// SIGKILL once grace elapses. Stopping an absent sandbox succeeds.
func (l *Local) Stop(ctx context.Context, name string, grace time.Duration) error {
	l.mu.Lock()
	instance, ok := l.instances[name]
	l.mu.Unlock()
	if !ok {
		return nil
	}

	pgid := instance.cmd.Process.Pid
	if err := unix.Kill(-pgid, unix.SIGTERM); err != nil && err != unix.ESRCH {
		return fmt.Errorf("signalling sandbox %s: %w", name, err)
	}

	select {
	case <-instance.exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(grace):
	}

	if err := unix.Kill(-pgid, unix.SIGKILL); err != nil && err != unix.ESRCH {
		return fmt.Errorf("killing sandbox %s: %w", name, err)
	}

	select {
	case <-instance.exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
