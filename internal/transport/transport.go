// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport defines the collaborator contract with the remote service.
package transport

import (
	"context"
	"errors"
	"time"

	"github.com/jeranaias/palaver-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrSendRejected is returned when the service refuses a send intent.
	ErrSendRejected = errors.New("send rejected by service")

	// ErrNotConnected is returned when no event stream is established.
	ErrNotConnected = errors.New("transport not connected")
)

// =============================================================================
// CONFIRMATION
// =============================================================================

// Confirmation is the authoritative record returned for an accepted send:
// the permanent message id and the server-assigned timestamp.
type Confirmation struct {
	MessageID      string
	ConversationID string
	Timestamp      time.Time
	MediaRef       string // set when the intent carried an upload
}

// =============================================================================
// INBOUND EVENTS
// =============================================================================

// Event is an inbound notification from the service. Concrete types below
// mirror the event kinds a chat stream carries: messages, typing, reactions,
// edits, deletes, presence and read receipts.
type Event interface {
	isEvent()
}

// MessageEvent delivers a new message from a peer.
type MessageEvent struct {
	Message *model.Message
}

// TypingEvent signals a peer starting or stopping typing.
type TypingEvent struct {
	ConversationID string
	PeerID         string
	Typing         bool
}

// ReactionEvent delivers a peer's reaction to a message.
type ReactionEvent struct {
	ConversationID string
	MessageID      string
	UserID         string
	Emoji          string
}

// EditEvent delivers a peer's edit of an existing message.
type EditEvent struct {
	ConversationID string
	MessageID      string
	NewBody        string
}

// DeleteEvent signals a message was deleted remotely.
type DeleteEvent struct {
	ConversationID string
	MessageID      string
}

// PresenceEvent updates a peer's online state.
type PresenceEvent struct {
	PeerID     string
	Online     bool
	LastActive time.Time
}

// ReceiptEvent advances delivery state for a message the viewer sent.
type ReceiptEvent struct {
	ConversationID string
	MessageID      string
	State          model.DeliveryState
}

// ConversationRemovedEvent acknowledges a conversation delete.
type ConversationRemovedEvent struct {
	ConversationID string
}

func (MessageEvent) isEvent()             {}
func (TypingEvent) isEvent()              {}
func (ReactionEvent) isEvent()            {}
func (EditEvent) isEvent()                {}
func (DeleteEvent) isEvent()              {}
func (PresenceEvent) isEvent()            {}
func (ReceiptEvent) isEvent()             {}
func (ConversationRemovedEvent) isEvent() {}

// =============================================================================
// TRANSPORT INTERFACE
// =============================================================================

// Transport is the outbound half of the collaborator contract. Every method
// that contacts the service takes a context and returns an explicit error;
// there is no mid-flight cancel for sends — once submitted, only the
// returned result resolves the optimistic record.
type Transport interface {
	// SendMessage transmits a send intent and returns the confirmed record.
	SendMessage(ctx context.Context, intent model.SendIntent) (Confirmation, error)

	// SendEdit transmits an edit intent.
	SendEdit(ctx context.Context, intent model.EditIntent) error

	// SendReaction transmits the viewer's reaction upsert.
	SendReaction(ctx context.Context, conversationID, messageID, emoji string) error

	// SendTyping transmits a typing start/stop edge.
	SendTyping(ctx context.Context, conversationID string, typing bool) error

	// SendRead reports the conversation as read up to now.
	SendRead(ctx context.Context, conversationID string) error

	// DeleteMessage asks the service to delete one of the viewer's messages.
	DeleteMessage(ctx context.Context, conversationID, messageID string) error

	// UploadMedia uploads a local file and returns an opaque media ref.
	UploadMedia(ctx context.Context, path string) (string, error)

	// Subscribe starts delivering inbound events to onEvent until the
	// context is cancelled. Events for all conversations arrive on one
	// stream; ordering across kinds is not guaranteed (a typing-stop may
	// arrive after the message it preceded).
	Subscribe(ctx context.Context, onEvent func(Event)) error

	// Close tears down the connection.
	Close() error
}
