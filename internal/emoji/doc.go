// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package emoji provides the static emoji category table and a small
// persisted recency list for the picker and reaction flows.
package emoji
