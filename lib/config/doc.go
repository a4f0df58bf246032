// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads warren-manager configuration.
//
// Resolution order is deterministic: built-in defaults, then an
// optional YAML file passed via --config, then WARREN_* environment
// variables. There is no automatic file discovery — a knob is either
// a default, in the named file, or in the environment, and later
// sources win.
package config
