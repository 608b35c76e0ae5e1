// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the single source of truth for conversation state.
package store

// =============================================================================
// CHANGE EVENTS
// =============================================================================

// EventKind classifies a store change notification.
type EventKind int

const (
	EventConversationAdded EventKind = iota
	EventConversationRemoved
	EventMessageAdded
	EventMessageUpdated
	EventMessageRemoved
	EventTypingChanged
	EventUnreadChanged
	EventPresenceChanged
)

// String returns a short name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventConversationAdded:
		return "conversation-added"
	case EventConversationRemoved:
		return "conversation-removed"
	case EventMessageAdded:
		return "message-added"
	case EventMessageUpdated:
		return "message-updated"
	case EventMessageRemoved:
		return "message-removed"
	case EventTypingChanged:
		return "typing-changed"
	case EventUnreadChanged:
		return "unread-changed"
	case EventPresenceChanged:
		return "presence-changed"
	default:
		return "unknown"
	}
}

// Event describes one applied mutation. MessageID is empty for
// conversation-level events.
type Event struct {
	Kind           EventKind
	ConversationID string
	MessageID      string
}
