// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package compose owns the message input buffer and the typing signal.
package compose

import (
	"sync"
	"testing"
	"time"
)

// emissionLog captures onChange values thread-safely; the trailing timer
// fires on its own goroutine.
type emissionLog struct {
	mu     sync.Mutex
	values []bool
}

func (l *emissionLog) record(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values = append(l.values, v)
}

func (l *emissionLog) snapshot() []bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]bool, len(l.values))
	copy(out, l.values)
	return out
}

func (l *emissionLog) waitFor(t *testing.T, n int) []bool {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := l.snapshot(); len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d emissions, have %v", n, l.snapshot())
	return nil
}

// =============================================================================
// TYPING SIGNAL TESTS
// =============================================================================

func TestTypingSignal_EmitsOncePerBurst(t *testing.T) {
	log := &emissionLog{}
	sig := NewTypingSignal(40*time.Millisecond, log.record)

	// Many keystrokes inside one window: exactly one start emission.
	for i := 0; i < 10; i++ {
		sig.Keystroke()
	}
	if !sig.IsTyping() {
		t.Fatal("should be typing mid-burst")
	}
	if got := log.snapshot(); len(got) != 1 || !got[0] {
		t.Fatalf("mid-burst emissions = %v, want [true]", got)
	}

	// Window expires with no further input: exactly one stop emission.
	got := log.waitFor(t, 2)
	if len(got) != 2 || got[1] {
		t.Fatalf("emissions = %v, want [true false]", got)
	}
	if sig.IsTyping() {
		t.Error("should be idle after expiry")
	}
}

func TestTypingSignal_KeystrokeRearmsTimer(t *testing.T) {
	log := &emissionLog{}
	sig := NewTypingSignal(60*time.Millisecond, log.record)

	sig.Keystroke()
	// Keep typing across several sub-window intervals; the stop edge must
	// not fire while input continues.
	for i := 0; i < 4; i++ {
		time.Sleep(30 * time.Millisecond)
		sig.Keystroke()
	}
	if got := log.snapshot(); len(got) != 1 {
		t.Fatalf("emissions during sustained typing = %v, want [true]", got)
	}

	got := log.waitFor(t, 2)
	if got[len(got)-1] {
		t.Fatalf("final emission should be false, got %v", got)
	}
}

func TestTypingSignal_StopEmitsImmediately(t *testing.T) {
	log := &emissionLog{}
	sig := NewTypingSignal(time.Hour, log.record)

	sig.Keystroke()
	sig.Stop()

	got := log.snapshot()
	if len(got) != 2 || !got[0] || got[1] {
		t.Fatalf("emissions = %v, want [true false]", got)
	}

	// Stop while idle is silent.
	sig.Stop()
	if got := log.snapshot(); len(got) != 2 {
		t.Fatalf("idempotent stop re-emitted: %v", got)
	}
}

func TestTypingSignal_NoConsecutiveDuplicates(t *testing.T) {
	log := &emissionLog{}
	sig := NewTypingSignal(30*time.Millisecond, log.record)

	// Three separate bursts.
	for burst := 0; burst < 3; burst++ {
		sig.Keystroke()
		sig.Keystroke()
		log.waitFor(t, (burst+1)*2)
	}

	got := log.snapshot()
	for i := 1; i < len(got); i++ {
		if got[i] == got[i-1] {
			t.Fatalf("consecutive duplicate at %d: %v", i, got)
		}
	}
}

func TestTypingSignal_SetWindowAppliesToNextKeystroke(t *testing.T) {
	log := &emissionLog{}
	sig := NewTypingSignal(10*time.Second, log.record)

	sig.SetWindow(30 * time.Millisecond)
	sig.Keystroke()

	// Without the shorter window this would wait out 10s.
	got := log.waitFor(t, 2)
	if len(got) != 2 || !got[0] || got[1] {
		t.Fatalf("emissions = %v, want [true false]", got)
	}
}

func TestTypingSignal_SetWindowNonPositiveFallsBack(t *testing.T) {
	sig := NewTypingSignal(50*time.Millisecond, func(bool) {})
	sig.SetWindow(0)

	sig.mu.Lock()
	window := sig.window
	sig.mu.Unlock()
	if window != DefaultTypingWindow {
		t.Errorf("window = %v, want default", window)
	}
}

func TestTypingSignal_DefaultWindow(t *testing.T) {
	sig := NewTypingSignal(0, func(bool) {})
	if sig.window != DefaultTypingWindow {
		t.Errorf("window = %v, want %v", sig.window, DefaultTypingWindow)
	}
}
