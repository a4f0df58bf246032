// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

// Package api exposes the lifecycle core over HTTP. The wire layer is
// deliberately thin: it translates requests into lifecycle operations
// and lifecycle sentinels into status codes, advancing session
// activity as a side effect of queries. Capacity exhaustion maps to
// 503 so clients can back off, a known-but-gone sandbox maps to 410
// so clients discard the reference, and everything unexpected is a
// plain 500.
package api
