// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks client-side session state.
//
// The manager watches user activity to drive the viewer's presence
// (active vs away), periodically autosaves dirty draft state, and
// integrates with Bubble Tea through a once-a-second tick.
package session
