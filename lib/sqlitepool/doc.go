// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides warren's standard SQLite connection
// pool. It wraps zombiezen.com/go/sqlite with production defaults:
// WAL journal mode for concurrent readers, NORMAL synchronous for
// process-crash durability without per-commit fsync overhead, and a
// busy timeout so write contention waits instead of failing with
// SQLITE_BUSY.
//
// The pool is intentionally thin. Callers Take a connection, run SQL
// with sqlitex, and Put the connection back; there is no query
// builder or abstraction over SQLite's connection model. Connections
// are not safe for concurrent use — each goroutine holds its own for
// the duration of its work.
package sqlitepool
