// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"slices"
	"testing"
)

func TestScopeWrapWithLimits(t *testing.T) {
	scope := &systemdScope{Name: "warren-abc123", User: true}
	spec := LaunchSpec{
		MemoryBytes:     512 << 20,
		CPUQuotaPercent: 150,
		PidsLimit:       100,
	}

	got := scope.Wrap(spec, []string{"bwrap", "--", "true"})
	want := []string{
		"systemd-run",
		"--user",
		"--scope", "--collect",
		"--unit=warren-abc123",
		"--property=TasksMax=100",
		"--property=MemoryMax=536870912",
		"--property=CPUQuota=150%",
		"--",
		"bwrap", "--", "true",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Wrap = %v, want %v", got, want)
	}
}

func TestScopeWrapNoLimits(t *testing.T) {
	scope := &systemdScope{Name: "warren-abc123"}
	cmd := []string{"bwrap", "--", "true"}
	got := scope.Wrap(LaunchSpec{}, cmd)
	if !slices.Equal(got, cmd) {
		t.Errorf("Wrap without limits = %v, want command unchanged", got)
	}
}

func TestScopeWrapPartialLimits(t *testing.T) {
	scope := &systemdScope{}
	got := scope.Wrap(LaunchSpec{PidsLimit: 50}, []string{"true"})
	if !slices.Contains(got, "--property=TasksMax=50") {
		t.Errorf("missing TasksMax property in %v", got)
	}
	for _, arg := range got {
		if arg == "--user" {
			t.Errorf("system scope must not pass --user: %v", got)
		}
	}
}
