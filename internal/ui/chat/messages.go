// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the palaver TUI.
//
// This file defines all Bubble Tea message types used by the chat interface.
// Messages are organized into the following categories:
//   - Transport: inbound service events pumped in by the program loop
//   - Store: change notifications from the conversation store
//   - Sending: results of send, edit, reaction and delete round-trips
//   - Recording: tick, cap and clip persistence results
//   - Config: live configuration reloads
//   - Errors: error display and dismissal
//
// All message types follow Bubble Tea conventions and are immutable.
package chat

import (
	"time"

	"github.com/jeranaias/palaver-tui/internal/capture"
	"github.com/jeranaias/palaver-tui/internal/config"
	"github.com/jeranaias/palaver-tui/internal/model"
	"github.com/jeranaias/palaver-tui/internal/store"
	"github.com/jeranaias/palaver-tui/internal/transport"
)

// =============================================================================
// TRANSPORT MESSAGES
// =============================================================================

// TransportEventMsg wraps one inbound service event. The program loop
// subscribes to the transport and forwards every event as one of these.
type TransportEventMsg struct {
	Event transport.Event
}

// =============================================================================
// STORE MESSAGES
// =============================================================================

// StoreChangedMsg reports a conversation store mutation. The view refreshes
// from store snapshots when one arrives.
type StoreChangedMsg struct {
	Event store.Event
}

// =============================================================================
// SENDING MESSAGES
// =============================================================================

// SendResultMsg resolves an optimistic send: the temporary id to reconcile
// and the authoritative outcome from the transport.
type SendResultMsg struct {
	TempID  string
	Outcome store.SendOutcome
}

// EditResultMsg reports the round-trip result of an edit intent.
type EditResultMsg struct {
	Intent model.EditIntent
	Err    error
}

// ReactionResultMsg reports the round-trip result of a reaction upsert.
type ReactionResultMsg struct {
	MessageID string
	Emoji     string
	Err       error
}

// DeleteResultMsg reports the round-trip result of a message delete.
type DeleteResultMsg struct {
	ConversationID string
	MessageID      string
	Err            error
}

// =============================================================================
// RECORDING MESSAGES
// =============================================================================

// RecordTickMsg reports elapsed recording time, once per second.
type RecordTickMsg struct {
	Elapsed time.Duration
}

// RecordCappedMsg signals the recording hit its duration cap and was
// auto-stopped. The flushed clip is still usable.
type RecordCappedMsg struct {
	Clip *capture.Clip
}

// ClipSavedMsg reports the result of persisting a finished clip to a
// temporary file so it can be staged as an attachment.
type ClipSavedMsg struct {
	Attachment model.Attachment
	Err        error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg delivers a live-reloaded configuration.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// =============================================================================
// UI STATE MESSAGES
// =============================================================================

// ViewerAwayMsg reports the viewer's own presence edge from the session
// manager's idle tracking. The status bar reflects it.
type ViewerAwayMsg struct {
	Away bool
}

// typingExpiredMsg clears a stale peer typing flag.
type typingExpiredMsg struct {
	ConversationID string
	SetAt          time.Time
}

// ErrorMsg surfaces a transient error in the status bar.
type ErrorMsg struct {
	Err error
}

// clearErrorMsg dismisses the status bar error.
type clearErrorMsg struct{}
