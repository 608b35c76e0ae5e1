// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package capture implements the voice-recording state machine.
//
// The Recorder wraps a platform Microphone capability behind an explicit
// Idle -> Recording -> (Stopped | Cancelled) lifecycle. The microphone is
// the only exclusive hardware resource in the client: at most one session
// exists at a time, and the handle is released on every exit path —
// stop, cancel, cap expiry or error.
package capture
