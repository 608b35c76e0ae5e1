// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the palaver TUI.
//
// The package is organized by concern:
//   - keys.go: keyboard bindings and help text
//   - messages.go: Bubble Tea message types
//   - model.go: the top-level model and its construction
//   - update.go: event handling and commands
//   - view.go: rendering
//
// The model owns a ConversationStore, a Composer, and a Recorder; the
// transport feeds it through typed messages pumped in by the program loop.
package chat
