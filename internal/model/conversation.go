// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// =============================================================================
// PEER TYPE
// =============================================================================

// Peer is the other participant of a conversation as the viewer sees them.
type Peer struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	Online     bool      `json:"online"`
	LastActive time.Time `json:"last_active"`

	// Language-exchange profile: what they speak and what they practice.
	Native   language.Tag `json:"-"`
	Learning language.Tag `json:"-"`
}

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation maps one peer to an ordered message sequence plus the
// transient view state the conversation list needs.
type Conversation struct {
	// Identity
	ID        string    `json:"id"`
	Peer      Peer      `json:"peer"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages, ordered by (effective timestamp, insertion sequence).
	Messages []*Message `json:"messages"`

	// View state
	UnreadCount int  `json:"unread_count"`
	IsTyping    bool `json:"-"` // transient, renewed by inbound typing signals
	IsMuted     bool `json:"is_muted"`
}

// NewConversation creates a local conversation for a peer. Remote
// conversations arrive with their own server-assigned id instead.
func NewConversation(peer Peer) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        "conv_" + uuid.NewString(),
		Peer:      peer,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage inserts a message preserving the conversation's total order.
// The caller (the store) assigns Seq before insertion.
func (c *Conversation) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.resort()
	c.UpdatedAt = time.Now()
}

// Resort restores ordering after a message's timestamp changed, e.g. when a
// provisional timestamp is replaced by the server's.
func (c *Conversation) Resort() {
	c.resort()
}

func (c *Conversation) resort() {
	sort.SliceStable(c.Messages, func(i, j int) bool {
		a, b := c.Messages[i], c.Messages[j]
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.Seq < b.Seq
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

// MessageByID returns a message by id, or nil.
func (c *Conversation) MessageByID(id string) *Message {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// RemoveMessage removes a message by id. Messages replying to it are left
// untouched; their ReplyTo simply dangles and renders as unavailable.
func (c *Conversation) RemoveMessage(id string) bool {
	for i, msg := range c.Messages {
		if msg.ID == id {
			c.Messages = append(c.Messages[:i], c.Messages[i+1:]...)
			c.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// LastMessage returns the most recent message, or nil if empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Preview returns a short single-line preview for the conversation list.
func (c *Conversation) Preview() string {
	last := c.LastMessage()
	if last == nil {
		return "No messages yet"
	}
	return last.Preview(60)
}
