// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks client-side session state.
package session

import (
	"strconv"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager tracks activity for presence and autosave. The viewer counts as
// away once no input has arrived for the idle threshold; any keystroke or
// navigation flips them back to active.
type Manager struct {
	mu sync.Mutex

	// Session tracking
	sessionID    string
	startTime    time.Time
	lastActivity time.Time

	// Presence
	idleAfter time.Duration
	away      bool

	// Auto-save
	autoSaveEnabled  bool
	autoSaveInterval time.Duration
	lastAutoSave     time.Time
	isDirty          bool

	// Callbacks
	onPresence func(away bool)
	onAutoSave func() error
}

// Config holds configuration for the session manager.
type Config struct {
	// IdleAfter is how long without input before the viewer reads as away.
	IdleAfter time.Duration

	// AutoSaveEnabled enables periodic draft saving.
	AutoSaveEnabled bool

	// AutoSaveInterval is how often to auto-save dirty state.
	AutoSaveInterval time.Duration
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		IdleAfter:        5 * time.Minute,
		AutoSaveEnabled:  true,
		AutoSaveInterval: 30 * time.Second,
	}
}

// NewManager creates a new session manager.
func NewManager(cfg Config) *Manager {
	now := time.Now()
	return &Manager{
		sessionID:        generateSessionID(),
		startTime:        now,
		lastActivity:     now,
		idleAfter:        cfg.IdleAfter,
		autoSaveEnabled:  cfg.AutoSaveEnabled,
		autoSaveInterval: cfg.AutoSaveInterval,
		lastAutoSave:     now,
	}
}

// =============================================================================
// SESSION STATE
// =============================================================================

// SessionID returns the current session ID.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Duration returns how long the session has been active.
func (m *Manager) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.startTime)
}

// IdleTime returns how long since last activity.
func (m *Manager) IdleTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.lastActivity)
}

// IsAway reports whether the viewer currently reads as away.
func (m *Manager) IsAway() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.away
}

// =============================================================================
// ACTIVITY TRACKING
// =============================================================================

// RecordActivity updates the last activity timestamp. Call on every user
// input. Returning from away fires the presence callback.
func (m *Manager) RecordActivity() {
	m.mu.Lock()
	m.lastActivity = time.Now()
	wasAway := m.away
	m.away = false
	onPresence := m.onPresence
	m.mu.Unlock()

	if wasAway && onPresence != nil {
		onPresence(false)
	}
}

// MarkDirty indicates there is unsaved draft state.
func (m *Manager) MarkDirty() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isDirty = true
}

// MarkClean indicates draft state has been saved.
func (m *Manager) MarkClean() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isDirty = false
	m.lastAutoSave = time.Now()
}

// IsDirty returns whether there is unsaved draft state.
func (m *Manager) IsDirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isDirty
}

// =============================================================================
// CALLBACKS
// =============================================================================

// SetPresenceCallback sets the function called when the viewer's away
// state changes.
func (m *Manager) SetPresenceCallback(fn func(away bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPresence = fn
}

// SetAutoSaveCallback sets the function called for auto-save.
func (m *Manager) SetAutoSaveCallback(fn func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onAutoSave = fn
}

// =============================================================================
// PERIODIC CHECK
// =============================================================================

// Check evaluates session state and triggers appropriate callbacks.
func (m *Manager) Check() {
	m.mu.Lock()
	goneAway := !m.away && time.Since(m.lastActivity) >= m.idleAfter
	if goneAway {
		m.away = true
	}

	shouldSave := m.autoSaveEnabled && m.isDirty &&
		time.Since(m.lastAutoSave) >= m.autoSaveInterval

	onPresence := m.onPresence
	onAutoSave := m.onAutoSave
	m.mu.Unlock()

	// Callbacks run outside the lock
	if goneAway && onPresence != nil {
		onPresence(true)
	}

	if shouldSave && onAutoSave != nil {
		if err := onAutoSave(); err == nil {
			m.MarkClean()
		}
	}
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg is sent periodically to check session state.
type TickMsg struct {
	Time time.Time
}

// TickCmd returns a command that ticks once a second.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// HandleTick runs the periodic check and schedules the next tick.
func (m *Manager) HandleTick() tea.Cmd {
	m.Check()
	return TickCmd()
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateSessionID creates a unique session ID.
func generateSessionID() string {
	return "sess_" + time.Now().Format("20060102_150405")
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return strconv.Itoa(int(d.Seconds())) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return strconv.Itoa(mins) + "m"
	}
	return strconv.Itoa(mins) + "m " + strconv.Itoa(secs) + "s"
}
