// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds small process-lifecycle helpers shared by
// warren binaries.
package process
