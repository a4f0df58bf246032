// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

// Package sandbox is warren's execution runtime capability: it
// creates, observes, and stops the isolated processes that back
// sessions.
//
// [Runtime] is the interface the lifecycle manager consumes. The
// production implementation is [Local], which launches each sandbox
// as a bubblewrap (bwrap) namespace wrapped in a systemd transient
// scope for cgroup resource limits: TasksMax for the process-count
// cap, MemoryMax for the memory cap, CPUQuota for the CPU share. The
// workspace is a size-capped tmpfs mount — always available — or,
// when the host's workspace filesystem is XFS with project quotas
// enabled, an on-disk directory under a hard block quota
// ([ProjectQuota]). Hosts without that support reject the quota
// configuration with [ErrUnsupported], which callers treat as a
// fallback signal, not a failure.
//
// [Capabilities] probes what the host offers, in the spirit of
// checking before launch rather than parsing failure output after.
//
// [Fake] is an in-memory Runtime for tests, following the package
// convention that deterministic test doubles ship next to the real
// implementation (see lib/clock).
package sandbox
