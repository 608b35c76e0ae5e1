// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package capture implements the voice-recording state machine.
package capture

import (
	"errors"
	"sync"
	"time"
)

// DefaultMaxDuration caps a single voice clip.
const DefaultMaxDuration = 60 * time.Second

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrPermissionDenied means the platform refused microphone access.
	// Callers must abort the recording UI, not retry automatically.
	ErrPermissionDenied = errors.New("microphone permission denied")

	// ErrDeviceUnavailable means no capture device exists or it is busy.
	ErrDeviceUnavailable = errors.New("microphone unavailable")

	// ErrAlreadyRecording is a programming error: Start while Recording.
	ErrAlreadyRecording = errors.New("recording already in progress")
)

// =============================================================================
// PLATFORM CAPABILITY
// =============================================================================

// Microphone is the injected platform capability. Open acquires the device
// and returns a stream of raw audio chunks.
type Microphone interface {
	Open() (AudioStream, error)
}

// AudioStream is an acquired capture handle.
type AudioStream interface {
	// ReadChunk blocks for the next chunk of raw audio.
	ReadChunk() ([]byte, error)

	// Close releases the device. Must be safe to call more than once.
	Close() error
}

// =============================================================================
// CLIP
// =============================================================================

// Clip is the finalized artifact of a recording session.
type Clip struct {
	Data     []byte
	Duration time.Duration
}

// =============================================================================
// RECORDER
// =============================================================================

type recorderState int

const (
	stateIdle recorderState = iota
	stateRecording
)

// Recorder drives one RecordingSession at a time. All methods are safe to
// call from the UI loop while the chunk pump and cap timer run on their own
// goroutines.
type Recorder struct {
	mu sync.Mutex

	mic         Microphone
	maxDuration time.Duration

	// onTick reports elapsed whole seconds while recording; onCap fires
	// when the cap auto-stops the session with the flushed clip.
	onTick func(elapsed time.Duration)
	onCap  func(*Clip)

	state     recorderState
	stream    AudioStream
	buf       []byte
	startedAt time.Time
	stopTick  chan struct{}
	capTimer  *time.Timer
}

// NewRecorder creates a recorder over the given microphone capability.
// maxDuration <= 0 falls back to DefaultMaxDuration.
func NewRecorder(mic Microphone, maxDuration time.Duration) *Recorder {
	if maxDuration <= 0 {
		maxDuration = DefaultMaxDuration
	}
	return &Recorder{mic: mic, maxDuration: maxDuration}
}

// SetCallbacks wires the per-second tick and cap-expiry notifications.
// Must be called before Start.
func (r *Recorder) SetCallbacks(onTick func(time.Duration), onCap func(*Clip)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onTick = onTick
	r.onCap = onCap
}

// IsRecording reports whether a session is active.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == stateRecording
}

// Elapsed returns the current session length, or 0 when idle.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != stateRecording {
		return 0
	}
	return time.Since(r.startedAt)
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start acquires the microphone and begins buffering. Start while already
// Recording is a programming error and returns ErrAlreadyRecording without
// touching the active session.
func (r *Recorder) Start() error {
	r.mu.Lock()
	if r.state == stateRecording {
		r.mu.Unlock()
		return ErrAlreadyRecording
	}

	stream, err := r.mic.Open()
	if err != nil {
		r.mu.Unlock()
		// No partial session exists on acquisition failure.
		return err
	}

	r.state = stateRecording
	r.stream = stream
	r.buf = r.buf[:0]
	r.startedAt = time.Now()
	r.stopTick = make(chan struct{})
	r.capTimer = time.AfterFunc(r.maxDuration, r.capExpired)
	stop := r.stopTick
	r.mu.Unlock()

	go r.pump(stream)
	go r.tick(stop)
	return nil
}

// Stop finalizes the session into a clip and releases the microphone.
// Returns nil when nothing was recorded (zero duration); the caller must
// then behave as if the session was cancelled.
func (r *Recorder) Stop() *Clip {
	r.mu.Lock()
	clip := r.finishLocked()
	r.mu.Unlock()
	return clip
}

// Cancel discards all buffered audio and releases the microphone. Safe to
// call from any state; cancelling an idle recorder is a no-op.
func (r *Recorder) Cancel() {
	r.mu.Lock()
	if r.state != stateRecording {
		r.mu.Unlock()
		return
	}
	r.teardownLocked()
	r.buf = nil
	r.mu.Unlock()
}

// =============================================================================
// INTERNALS
// =============================================================================

// finishLocked flushes the buffer into a clip and tears the session down.
// Caller holds the lock.
func (r *Recorder) finishLocked() *Clip {
	if r.state != stateRecording {
		return nil
	}
	duration := time.Since(r.startedAt)
	if duration > r.maxDuration {
		duration = r.maxDuration
	}
	data := make([]byte, len(r.buf))
	copy(data, r.buf)
	r.teardownLocked()

	if duration < time.Second && len(data) == 0 {
		return nil
	}
	return &Clip{Data: data, Duration: duration}
}

// teardownLocked releases every session resource. Caller holds the lock.
// This is the single exit path, so the microphone can never leak.
func (r *Recorder) teardownLocked() {
	r.state = stateIdle
	if r.capTimer != nil {
		r.capTimer.Stop()
		r.capTimer = nil
	}
	if r.stopTick != nil {
		close(r.stopTick)
		r.stopTick = nil
	}
	if r.stream != nil {
		r.stream.Close()
		r.stream = nil
	}
}

// capExpired auto-stops at maxDuration. Deliberate policy: hitting the cap
// still produces a usable clip, it is a Stop, not a Cancel.
func (r *Recorder) capExpired() {
	r.mu.Lock()
	if r.state != stateRecording {
		r.mu.Unlock()
		return
	}
	// Clamp to exactly the cap so the clip duration equals maxDuration.
	r.startedAt = time.Now().Add(-r.maxDuration)
	clip := r.finishLocked()
	onCap := r.onCap
	r.mu.Unlock()

	if onCap != nil {
		onCap(clip)
	}
}

// pump drains the audio stream into the session buffer until the stream is
// closed by teardown.
func (r *Recorder) pump(stream AudioStream) {
	for {
		chunk, err := stream.ReadChunk()
		if err != nil {
			return
		}
		r.mu.Lock()
		if r.state != stateRecording || r.stream != stream {
			r.mu.Unlock()
			return
		}
		r.buf = append(r.buf, chunk...)
		r.mu.Unlock()
	}
}

// tick reports elapsed whole seconds once per second while recording.
func (r *Recorder) tick(stop chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.state != stateRecording {
				r.mu.Unlock()
				return
			}
			elapsed := time.Since(r.startedAt)
			onTick := r.onTick
			r.mu.Unlock()
			if onTick != nil {
				onTick(elapsed)
			}
		}
	}
}
