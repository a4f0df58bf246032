// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is warren's single CBOR configuration. Session records
// persisted to the state store go through Marshal/Unmarshal here so
// every component serializes identically: Core Deterministic Encoding
// on the way out, unknown fields ignored on the way in for forward
// compatibility.
package codec
