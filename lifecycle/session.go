// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Session is the unit of lifecycle tracking. A session exists exactly
// while a capacity slot is held for it. Only LastActive mutates after
// creation.
type Session struct {
	// ID is the opaque, unguessable session identifier.
	ID string `cbor:"sessionId" json:"sessionId"`

	// SandboxName addresses the runtime instance. Derived
	// deterministically from ID.
	SandboxName string `cbor:"sandboxName" json:"sandboxName"`

	// WorkspacePath is the workspace location inside the sandbox.
	WorkspacePath string `cbor:"workspacePath" json:"workspacePath"`

	// CreatedAt and LastActive are epoch milliseconds.
	CreatedAt  int64 `cbor:"createdAt" json:"createdAt"`
	LastActive int64 `cbor:"lastActive" json:"lastActive"`
}

// NewSessionID returns a fresh 128-bit session identifier as 32 hex
// characters.
func NewSessionID() (string, error) {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("generating session ID: %w", err)
	}
	return hex.EncodeToString(raw[:]), nil
}

// SandboxNameFor derives the runtime instance name for a session ID.
// The short hash keeps the name within systemd's unit-name length
// limit while staying collision-resistant for any plausible session
// count.
func SandboxNameFor(sessionID string) string {
	sum := blake3.Sum256([]byte(sessionID))
	return "warren-" + hex.EncodeToString(sum[:8])
}
