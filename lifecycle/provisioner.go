// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/warren-foundation/warren/lib/clock"
	"github.com/warren-foundation/warren/sandbox"
)

// ProvisionerConfig carries the launch parameters applied to every
// sandbox.
type ProvisionerConfig struct {
	// Command is the argv run inside each sandbox.
	Command []string

	// MemoryBytes, CPUQuotaPercent, and PidsLimit are per-sandbox
	// resource caps.
	MemoryBytes     int64
	CPUQuotaPercent int
	PidsLimit       int

	// WorkspacePath is the workspace mount point inside the sandbox;
	// WorkspaceSize caps it in bytes.
	WorkspacePath string
	WorkspaceSize int64

	// Network selects the sandbox network isolation mode.
	Network sandbox.NetworkMode

	// PreferPersistentWorkspace tries the disk-quota-backed on-disk
	// workspace first, falling back to a size-capped tmpfs when the
	// runtime reports it unsupported.
	PreferPersistentWorkspace bool

	// StopGrace bounds how long a stopped sandbox gets between
	// SIGTERM and SIGKILL.
	StopGrace time.Duration
}

// Provisioner turns capacity slots into running sandboxes and tears
// them down again. It is the only component that calls Registry.Put.
type Provisioner struct {
	config    ProvisionerConfig
	admission *Admission
	registry  *Registry
	runtime   sandbox.Runtime
	clock     clock.Clock
	logger    *slog.Logger
}

// NewProvisioner wires a provisioner to its collaborators.
func NewProvisioner(config ProvisionerConfig, admission *Admission, registry *Registry, runtime sandbox.Runtime, clk clock.Clock, logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{
		config:    config,
		admission: admission,
		registry:  registry,
		runtime:   runtime,
		clock:     clk,
		logger:    logger,
	}
}

// Provision reserves a slot, launches a sandbox, and persists the
// session. ErrCapacityExceeded means no slot was available and
// nothing was created. Any failure after the grant releases the slot
// before returning ErrProvisionFailed; the reservation never leaks.
func (p *Provisioner) Provision(ctx context.Context) (*Session, error) {
	granted, err := p.admission.Reserve(ctx)
	if err != nil {
		return nil, err
	}
	if !granted {
		return nil, ErrCapacityExceeded
	}

	id, err := NewSessionID()
	if err != nil {
		p.compensate(ctx, "")
		return nil, fmt.Errorf("%w: %v", ErrProvisionFailed, err)
	}
	name := SandboxNameFor(id)

	spec := sandbox.LaunchSpec{
		Name:                name,
		Command:             p.config.Command,
		MemoryBytes:         p.config.MemoryBytes,
		CPUQuotaPercent:     p.config.CPUQuotaPercent,
		PidsLimit:           p.config.PidsLimit,
		WorkspacePath:       p.config.WorkspacePath,
		WorkspaceSize:       p.config.WorkspaceSize,
		Network:             p.config.Network,
		PersistentWorkspace: p.config.PreferPersistentWorkspace,
	}

	instance, err := p.runtime.Launch(ctx, spec)
	if err != nil && spec.PersistentWorkspace && errors.Is(err, sandbox.ErrUnsupported) {
		// Expected on hosts without the stronger disk-quota
		// mechanism; the size-capped tmpfs workspace always works.
		p.logger.Info("persistent workspace unsupported, falling back to tmpfs",
			"session_id", id, "sandbox", name)
		spec.PersistentWorkspace = false
		instance, err = p.runtime.Launch(ctx, spec)
	}
	if err != nil {
		p.compensate(ctx, id)
		return nil, fmt.Errorf("%w: launching %s: %v", ErrProvisionFailed, name, err)
	}

	now := p.clock.Now().UnixMilli()
	session := &Session{
		ID:            id,
		SandboxName:   name,
		WorkspacePath: p.config.WorkspacePath,
		CreatedAt:     now,
		LastActive:    now,
	}
	if err := p.registry.Put(ctx, session); err != nil {
		if stopErr := p.runtime.Stop(context.WithoutCancel(ctx), name, p.config.StopGrace); stopErr != nil {
			p.logger.Error("stopping sandbox after persist failure",
				"session_id", id, "sandbox", name, "error", stopErr)
		}
		p.compensate(ctx, id)
		return nil, fmt.Errorf("%w: persisting session %s: %v", ErrProvisionFailed, id, err)
	}

	go p.watchExit(instance, id)

	p.logger.Info("session provisioned", "session_id", id, "sandbox", name)
	return session, nil
}

// compensate releases the slot held by a failed provisioning attempt.
// The release clamps at zero, so even a spurious call cannot push the
// counter negative. It runs detached from the request's cancellation:
// a client that disconnected mid-launch must not turn the mandatory
// release into a leaked slot.
func (p *Provisioner) compensate(ctx context.Context, id string) {
	ctx = context.WithoutCancel(ctx)
	if err := p.admission.Release(ctx); err != nil {
		p.logger.Error("releasing slot after failed provisioning",
			"session_id", id, "error", err)
	}
}

// watchExit deletes the session when its sandbox exits on its own
// (crash, self-termination, OOM kill). Registry.Delete absorbs the
// race with an explicit delete or an eviction of the same session.
func (p *Provisioner) watchExit(instance sandbox.Instance, id string) {
	<-instance.Exited()
	p.logger.Info("sandbox exited on its own", "session_id", id, "sandbox", instance.Name())
	if err := p.registry.Delete(context.Background(), id); err != nil {
		p.logger.Error("deleting session after sandbox exit", "session_id", id, "error", err)
	}
}

// Describe returns a session's record plus live runtime status,
// advancing LastActive as a side effect of the query. A record whose
// sandbox the runtime no longer knows yields ErrSandboxGone, distinct
// from ErrSessionNotFound.
func (p *Provisioner) Describe(ctx context.Context, id string) (*Session, sandbox.Status, error) {
	session, err := p.registry.Get(ctx, id)
	if err != nil {
		return nil, sandbox.Status{}, err
	}

	status, err := p.runtime.Inspect(ctx, session.SandboxName)
	if errors.Is(err, sandbox.ErrGone) {
		return nil, sandbox.Status{}, fmt.Errorf("session %s: %w", id, ErrSandboxGone)
	}
	if err != nil {
		return nil, sandbox.Status{}, fmt.Errorf("inspecting sandbox for session %s: %w", id, err)
	}

	touched, err := p.registry.Touch(ctx, id)
	switch {
	case errors.Is(err, ErrSessionNotFound):
		// Lost a race with a delete after the inspect; report the
		// record as it was.
	case err != nil:
		return nil, sandbox.Status{}, err
	default:
		session.LastActive = touched
	}
	return session, status, nil
}

// Deprovision stops a session's sandbox and deletes its record.
// Unknown sessions return ErrSessionNotFound; a sandbox that is
// already gone is fine, the runtime's idempotent stop absorbs it.
func (p *Provisioner) Deprovision(ctx context.Context, id string) error {
	session, err := p.registry.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := p.runtime.Stop(ctx, session.SandboxName, p.config.StopGrace); err != nil {
		return fmt.Errorf("stopping sandbox for session %s: %w", id, err)
	}
	if err := p.registry.Delete(ctx, id); err != nil {
		return err
	}
	p.logger.Info("session deprovisioned", "session_id", id, "sandbox", session.SandboxName)
	return nil
}
