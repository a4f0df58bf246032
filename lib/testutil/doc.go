// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for warren packages.
package testutil
