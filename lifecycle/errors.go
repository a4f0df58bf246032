// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import "errors"

var (
	// ErrCapacityExceeded reports that no capacity slot was
	// available. The caller may retry later; nothing was created.
	ErrCapacityExceeded = errors.New("lifecycle: capacity exceeded")

	// ErrProvisionFailed reports a sandbox launch or persist failure
	// after a slot was granted. The slot has already been released
	// when this error is returned.
	ErrProvisionFailed = errors.New("lifecycle: provisioning failed")

	// ErrSessionNotFound reports that no session exists under the
	// given identifier.
	ErrSessionNotFound = errors.New("lifecycle: session not found")

	// ErrSandboxGone reports that a session record exists but its
	// sandbox no longer does. Distinct from ErrSessionNotFound: the
	// reference was valid once and the caller should discard it.
	ErrSandboxGone = errors.New("lifecycle: sandbox gone")
)
