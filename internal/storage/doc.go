// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the client-side key-value cache.
//
// It is a capability, not a persistence engine: small values (emoji
// recents, session scratch) keyed by string, backed by a single-table
// SQLite database under the user's data directory.
package storage
