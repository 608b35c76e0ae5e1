// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the palaver TUI.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/palaver-tui/internal/capture"
	"github.com/jeranaias/palaver-tui/internal/compose"
	"github.com/jeranaias/palaver-tui/internal/emoji"
	"github.com/jeranaias/palaver-tui/internal/model"
	"github.com/jeranaias/palaver-tui/internal/session"
	"github.com/jeranaias/palaver-tui/internal/store"
	"github.com/jeranaias/palaver-tui/internal/transport"
	"github.com/jeranaias/palaver-tui/internal/ui/styles"
)

// Layout constants.
const (
	convListWidth = 28
	headerHeight  = 1
	statusHeight  = 1
	inputHeight   = 3
)

// typingStaleAfter clears a peer typing flag that never got its stop edge.
const typingStaleAfter = 5 * time.Second

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Deps carries the collaborators the chat model is built over. All fields
// are required except Recorder, Emoji and Session, which may be nil when
// the feature is unavailable.
type Deps struct {
	Store     *store.Store
	Composer  *compose.Composer
	Recorder  *capture.Recorder
	Emoji     *emoji.Index
	Transport transport.Transport
	Session   *session.Manager
	Theme     *styles.Theme
	ViewerID  string
}

// =============================================================================
// PICKER STATE
// =============================================================================

// pickerState is the emoji picker overlay. target is the message id being
// reacted to, or "" when picking inserts into the input buffer.
type pickerState struct {
	open    bool
	catIdx  int
	itemIdx int
	target  string
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the top-level Bubble Tea model for the chat interface.
type Model struct {
	theme *styles.Theme
	keys  KeyMap
	help  help.Model

	st       *store.Store
	composer *compose.Composer
	recorder *capture.Recorder
	emoji    *emoji.Index
	tr       transport.Transport
	session  *session.Manager
	viewerID string

	// Layout
	width  int
	height int

	// Widgets
	input textarea.Model
	vp    viewport.Model

	// View state
	selected   int // messages back from newest; -1 = none selected
	showHelp   bool
	away       bool
	errText    string
	picker     pickerState
	recording  bool
	recElapsed time.Duration

	// Last typing-start time per conversation, for stale-flag expiry.
	lastTyping map[string]time.Time
}

// New creates the chat model over its collaborators.
func New(deps Deps) Model {
	ta := textarea.New()
	ta.Placeholder = "Message..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(1)
	ta.Focus()
	if deps.Composer != nil && deps.Composer.Text() != "" {
		// A draft restored from the cache survives into the input widget.
		ta.SetValue(deps.Composer.Text())
		ta.CursorEnd()
	}

	vp := viewport.New(0, 0)

	return Model{
		theme:      deps.Theme,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		st:         deps.Store,
		composer:   deps.Composer,
		recorder:   deps.Recorder,
		emoji:      deps.Emoji,
		tr:         deps.Transport,
		session:    deps.Session,
		viewerID:   deps.ViewerID,
		input:      ta,
		vp:         vp,
		selected:   -1,
		lastTyping: make(map[string]time.Time),
	}
}

// Init starts the cursor blink and the session tick.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.session != nil {
		cmds = append(cmds, session.TickCmd())
	}
	return tea.Batch(cmds...)
}

// resize recomputes widget dimensions after a terminal resize.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	chatWidth := width - convListWidth - 1
	if chatWidth < 20 {
		chatWidth = 20
	}
	vpHeight := height - headerHeight - statusHeight - inputHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	m.vp.Width = chatWidth
	m.vp.Height = vpHeight
	m.input.SetWidth(chatWidth - 4)
	m.help.Width = width

	m.refreshViewport()
}

// focusedConversation returns the focused conversation, or nil.
func (m *Model) focusedConversation() *model.Conversation {
	id := m.st.FocusedID()
	if id == "" {
		return nil
	}
	return m.st.Conversation(id)
}

// selectedMessage resolves the current selection to a message, or nil.
func (m *Model) selectedMessage() *model.Message {
	conv := m.focusedConversation()
	if conv == nil || m.selected < 0 || m.selected >= len(conv.Messages) {
		return nil
	}
	return conv.Messages[len(conv.Messages)-1-m.selected]
}
