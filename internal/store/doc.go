// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the single source of truth for conversation state.
//
// The Store mediates between local user intents (optimistic sends, edits,
// reactions) and inbound events from the transport, applying each mutation
// atomically and notifying observers afterwards. It is constructed per
// login session and torn down on logout; nothing in here is global.
//
// # Reconciliation
//
// An optimistic send appends a record with a temporary id and
// Delivery=sending. When the transport resolves, ReconcileSend matches by
// that temporary id — never by list position, because inbound messages may
// have shifted positions in the meantime. Success swaps in the server
// identity in place; failure marks the record failed in place so the user
// can retry or discard. A result for an unknown temporary id is a no-op.
package store
