// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// MESSAGE KIND
// =============================================================================

// Kind classifies a message's payload.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindVoice Kind = "voice"
	KindVideo Kind = "video"
	KindFile  Kind = "file"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// IsMedia reports whether the kind carries an uploaded media reference.
func (k Kind) IsMedia() bool {
	return k == KindImage || k == KindVoice || k == KindVideo || k == KindFile
}

// =============================================================================
// DELIVERY STATE
// =============================================================================

// DeliveryState tracks a message's progress toward the receiver.
// Transitions are monotonic (Sending -> Sent -> Delivered -> Read) except
// Failed, which is terminal and only reachable from Sending.
type DeliveryState int

const (
	DeliverySending DeliveryState = iota
	DeliverySent
	DeliveryDelivered
	DeliveryRead
	DeliveryFailed
)

// String returns a human-readable name for the delivery state.
func (d DeliveryState) String() string {
	switch d {
	case DeliverySending:
		return "sending"
	case DeliverySent:
		return "sent"
	case DeliveryDelivered:
		return "delivered"
	case DeliveryRead:
		return "read"
	case DeliveryFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// =============================================================================
// REACTION
// =============================================================================

// Reaction is a (user, emoji) pair attached to a message. A user holds at
// most one reaction per message; re-reacting replaces it.
type Reaction struct {
	UserID string `json:"user_id"`
	Emoji  string `json:"emoji"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single communication unit in a conversation.
type Message struct {
	// Identity. ID is client-generated (and Pending is true) until the
	// server acknowledges the send, after which the store swaps in the
	// permanent id. Reconciliation matches by the temporary id, never by
	// list position.
	ID      string `json:"id"`
	Pending bool   `json:"-"`

	ConversationID string `json:"conversation_id"`
	Sender         string `json:"sender"`
	Receiver       string `json:"receiver"`

	// Content
	Kind     Kind          `json:"kind"`
	Body     string        `json:"body"`                // caption for media kinds
	MediaRef string        `json:"media_ref,omitempty"` // empty until upload completes
	Duration time.Duration `json:"duration,omitempty"`  // voice/video only

	// ReplyTo is a weak reference by id. The target may be deleted later,
	// leaving this dangling; rendering degrades to a placeholder.
	ReplyTo string `json:"reply_to,omitempty"`

	Reactions []Reaction `json:"reactions,omitempty"`
	IsEdited  bool       `json:"is_edited,omitempty"`

	Delivery DeliveryState `json:"delivery"`

	// CreatedAt is provisional (client clock) while Pending, replaced by
	// the server timestamp on confirmation.
	CreatedAt time.Time `json:"created_at"`

	// Seq is the store-assigned insertion sequence, used only as the
	// stable tie-break when two messages share a timestamp.
	Seq uint64 `json:"-"`
}

// NewPendingMessage creates a locally-originated message with a temporary id,
// a provisional timestamp and Delivery = sending.
func NewPendingMessage(conversationID, sender, receiver string, kind Kind, body string) *Message {
	return &Message{
		ID:             newTempID(),
		Pending:        true,
		ConversationID: conversationID,
		Sender:         sender,
		Receiver:       receiver,
		Kind:           kind,
		Body:           body,
		Delivery:       DeliverySending,
		CreatedAt:      time.Now(),
	}
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// AdvanceDelivery moves the delivery state forward. Regressions are ignored
// and Failed is terminal; it reports whether the state actually changed.
func (m *Message) AdvanceDelivery(next DeliveryState) bool {
	if m.Delivery == DeliveryFailed {
		return false
	}
	if next == DeliveryFailed {
		// Only an unacknowledged send can fail.
		if m.Delivery != DeliverySending {
			return false
		}
		m.Delivery = DeliveryFailed
		return true
	}
	if next <= m.Delivery {
		return false
	}
	m.Delivery = next
	return true
}

// SetReaction upserts the caller's reaction. Reacting with a different emoji
// replaces the previous one; repeating the same emoji removes it (toggle).
func (m *Message) SetReaction(userID, emoji string) {
	for i, r := range m.Reactions {
		if r.UserID != userID {
			continue
		}
		if r.Emoji == emoji {
			m.Reactions = append(m.Reactions[:i], m.Reactions[i+1:]...)
		} else {
			m.Reactions[i].Emoji = emoji
		}
		return
	}
	m.Reactions = append(m.Reactions, Reaction{UserID: userID, Emoji: emoji})
}

// ReactionFor returns the caller's reaction emoji, or "" if none.
func (m *Message) ReactionFor(userID string) string {
	for _, r := range m.Reactions {
		if r.UserID == userID {
			return r.Emoji
		}
	}
	return ""
}

// Preview returns a truncated single-line preview of the message body.
func (m *Message) Preview(maxRunes int) string {
	body := strings.TrimSpace(m.Body)
	if body == "" && m.Kind.IsMedia() {
		return "[" + m.Kind.String() + "]"
	}
	body = strings.ReplaceAll(body, "\n", " ")
	runes := []rune(body)
	if len(runes) <= maxRunes {
		return body
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// IsEmpty reports whether the message has neither body nor media.
func (m *Message) IsEmpty() bool {
	return strings.TrimSpace(m.Body) == "" && m.MediaRef == ""
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// newTempID creates a client-local temporary message id. The "tmp_" prefix
// makes stray unreconciled ids easy to spot in logs and bug reports.
func newTempID() string {
	return "tmp_" + uuid.NewString()
}

// IsTempID reports whether an id was generated locally by newTempID.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, "tmp_")
}
