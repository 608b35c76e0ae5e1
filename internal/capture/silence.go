// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package capture implements the voice-recording state machine.
package capture

import (
	"errors"
	"sync"
	"time"
)

// =============================================================================
// SILENCE MICROPHONE
// =============================================================================

// SilenceMicrophone is the stand-in capability used by offline mode: it
// produces zeroed PCM chunks at a steady rate so the recording UI and the
// clip pipeline can be exercised without platform audio. Real capture is
// supplied by whichever Microphone the embedding shell injects.
type SilenceMicrophone struct {
	// ChunkEvery is the simulated capture interval (default 250ms).
	ChunkEvery time.Duration

	mu   sync.Mutex
	open bool
}

// Open acquires the simulated device. Like real hardware it is exclusive:
// a second Open while a stream is live fails with ErrDeviceUnavailable.
func (m *SilenceMicrophone) Open() (AudioStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open {
		return nil, ErrDeviceUnavailable
	}
	m.open = true

	every := m.ChunkEvery
	if every <= 0 {
		every = 250 * time.Millisecond
	}
	return &silenceStream{mic: m, every: every, done: make(chan struct{})}, nil
}

type silenceStream struct {
	mic   *SilenceMicrophone
	every time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

// ReadChunk produces one zeroed chunk per interval until closed.
func (s *silenceStream) ReadChunk() ([]byte, error) {
	t := time.NewTimer(s.every)
	defer t.Stop()
	select {
	case <-s.done:
		return nil, errors.New("stream closed")
	case <-t.C:
		return make([]byte, 512), nil
	}
}

// Close releases the simulated device. Safe to call repeatedly.
func (s *silenceStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mic.mu.Lock()
		s.mic.open = false
		s.mic.mu.Unlock()
	})
	return nil
}
