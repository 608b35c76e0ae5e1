// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package compose owns the message input buffer and the typing signal.
//
// The Composer collects text, one staged attachment and an optional reply
// or edit context, and turns a submit into exactly one send or edit intent.
// The TypingSignal converts raw keystrokes into an edge-triggered boolean
// with a trailing debounce, so the transport sees one start and one stop
// per typing burst instead of one event per key.
package compose
