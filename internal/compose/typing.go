// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package compose owns the message input buffer and the typing signal.
package compose

import (
	"sync"
	"time"
)

// DefaultTypingWindow is the trailing quiet period after which a typing
// burst is considered over.
const DefaultTypingWindow = 1000 * time.Millisecond

// =============================================================================
// TYPING SIGNAL
// =============================================================================

// TypingSignal is a two-state machine (Idle <-> Typing) with a trailing
// debounce timer. Guarantees:
//
//   - onChange(true) fires exactly once per Idle->Typing transition, not
//     per keystroke
//   - each keystroke while Typing re-arms the timer without re-emitting
//   - timer expiry, Stop() or blur emits onChange(false) exactly once
//   - no two consecutive emissions carry the same value
//
// The timer callback runs on its own goroutine, so state is mutex-guarded
// even though callers live on the UI event loop.
type TypingSignal struct {
	mu       sync.Mutex
	typing   bool
	window   time.Duration
	timer    *time.Timer
	onChange func(bool)
}

// NewTypingSignal creates a signal with the given trailing window. A
// window <= 0 falls back to DefaultTypingWindow. onChange must not be nil.
func NewTypingSignal(window time.Duration, onChange func(bool)) *TypingSignal {
	if window <= 0 {
		window = DefaultTypingWindow
	}
	return &TypingSignal{window: window, onChange: onChange}
}

// SetWindow replaces the trailing window. A timer already in flight keeps
// its original deadline; the next keystroke arms the new window.
func (t *TypingSignal) SetWindow(window time.Duration) {
	if window <= 0 {
		window = DefaultTypingWindow
	}
	t.mu.Lock()
	t.window = window
	t.mu.Unlock()
}

// Keystroke records a qualifying input event: transitions Idle->Typing
// (emitting true) or re-arms the trailing timer.
func (t *TypingSignal) Keystroke() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.window, t.expire)

	if t.typing {
		t.mu.Unlock()
		return
	}
	t.typing = true
	emit := t.onChange
	t.mu.Unlock()

	emit(true)
}

// Stop forces the Typing->Idle transition, e.g. on blur or submit.
// Idempotent: calling it while already Idle emits nothing.
func (t *TypingSignal) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if !t.typing {
		t.mu.Unlock()
		return
	}
	t.typing = false
	emit := t.onChange
	t.mu.Unlock()

	emit(false)
}

// IsTyping reports the current state.
func (t *TypingSignal) IsTyping() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.typing
}

// expire is the trailing-timer callback.
func (t *TypingSignal) expire() {
	t.mu.Lock()
	t.timer = nil
	if !t.typing {
		t.mu.Unlock()
		return
	}
	t.typing = false
	emit := t.onChange
	t.mu.Unlock()

	emit(false)
}
