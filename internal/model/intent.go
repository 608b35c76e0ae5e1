// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import "time"

// =============================================================================
// SEND / EDIT INTENTS
// =============================================================================

// Attachment is a staged media file waiting to be sent. Exactly one
// attachment may be staged per send; staging another replaces it.
type Attachment struct {
	Kind     Kind
	Path     string        // local file handle, uploaded by the transport
	Duration time.Duration // voice/video only
}

// SendIntent is a user-initiated request to transmit a new message, built by
// the composer before any server confirmation exists.
type SendIntent struct {
	ConversationID string // empty when messaging a peer for the first time
	Receiver       string
	Kind           Kind
	Body           string
	Attachment     *Attachment
	ReplyTo        string

	// MediaRef is the service handle for the attachment, filled in by the
	// send pipeline after the upload round-trip. Empty until then.
	MediaRef string
}

// EditIntent is a user-initiated request to change an existing message body.
type EditIntent struct {
	ConversationID string
	MessageID      string
	NewBody        string
}
