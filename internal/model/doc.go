// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the client
// for representing two-party chats, messages, reactions and send intents.
//
// # Key Types
//
//   - Conversation: one peer plus an ordered message sequence and view state
//   - Message: a single communication unit (text, media or voice)
//   - Peer: the other participant's profile and presence
//   - SendIntent / EditIntent: user-initiated requests handed to the transport
//
// # Usage
//
// Compose an optimistic message:
//
//	msg := model.NewPendingMessage(conv.ID, me, peer.ID, model.KindText, "hola!")
//	conv.AddMessage(msg)
//
// Messages created locally carry a temporary id and Pending=true until the
// transport confirms them; the store swaps in the server identity without
// ever duplicating the record.
package model
