// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the palaver TUI.
package chat

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/palaver-tui/internal/capture"
	"github.com/jeranaias/palaver-tui/internal/emoji"
	"github.com/jeranaias/palaver-tui/internal/model"
	"github.com/jeranaias/palaver-tui/internal/session"
	"github.com/jeranaias/palaver-tui/internal/store"
	"github.com/jeranaias/palaver-tui/internal/transport"
	"github.com/jeranaias/palaver-tui/internal/ui/styles"
)

// sendTimeout bounds one transport round-trip.
const sendTimeout = 10 * time.Second

// =============================================================================
// UPDATE
// =============================================================================

// Update is the Bubble Tea update function.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TransportEventMsg:
		cmd := m.handleTransportEvent(msg.Event)
		return m, cmd

	case StoreChangedMsg:
		return m.handleStoreChanged(msg.Event)

	case SendResultMsg:
		m.st.ReconcileSend(msg.TempID, msg.Outcome)
		return m, nil

	case EditResultMsg:
		if msg.Err != nil {
			return m, m.reportError(msg.Err)
		}
		m.st.ApplyEdit(msg.Intent.MessageID, msg.Intent.NewBody)
		return m, nil

	case ReactionResultMsg:
		if msg.Err != nil {
			return m, m.reportError(msg.Err)
		}
		m.st.ApplyReaction(msg.MessageID, m.viewerID, msg.Emoji)
		return m, nil

	case DeleteResultMsg:
		if msg.Err != nil {
			return m, m.reportError(msg.Err)
		}
		m.st.ApplyDelete(msg.MessageID)
		return m, nil

	case RecordTickMsg:
		m.recElapsed = msg.Elapsed
		return m, nil

	case RecordCappedMsg:
		m.recording = false
		m.recElapsed = 0
		if msg.Clip != nil {
			return m, saveClipCmd(msg.Clip)
		}
		return m, nil

	case ClipSavedMsg:
		if msg.Err != nil {
			return m, m.reportError(msg.Err)
		}
		m.composer.AttachVoice(msg.Attachment)
		return m, nil

	case ConfigReloadedMsg:
		// Only view-layer knobs change mid-session; nothing to restart.
		if msg.Config != nil {
			m.theme = styles.NewTheme(msg.Config.UI.Theme)
			m.composer.SetTypingWindow(msg.Config.TypingWindow())
			m.refreshViewport()
		}
		return m, nil

	case ViewerAwayMsg:
		m.away = msg.Away
		return m, nil

	case typingExpiredMsg:
		if m.lastTyping[msg.ConversationID].Equal(msg.SetAt) {
			m.st.SetTyping(msg.ConversationID, false)
		}
		return m, nil

	case session.TickMsg:
		if m.session != nil {
			return m, m.session.HandleTick()
		}
		return m, nil

	case ErrorMsg:
		return m, m.reportError(msg.Err)

	case clearErrorMsg:
		m.errText = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

// handleKey routes one keystroke.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.session != nil {
		m.session.RecordActivity()
	}

	if key.Matches(msg, m.keys.Quit) {
		if m.recorder != nil {
			m.recorder.Cancel()
		}
		return m, tea.Quit
	}

	if m.picker.open {
		return m.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		return m.handleCancel()

	case key.Matches(msg, m.keys.Record):
		return m.toggleRecording()

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.EmojiPick):
		m.picker = pickerState{open: true}
		return m, nil

	case key.Matches(msg, m.keys.React):
		if sel := m.selectedMessage(); sel != nil {
			m.picker = pickerState{open: true, target: sel.ID}
		}
		return m, nil

	case key.Matches(msg, m.keys.Reply):
		if sel := m.selectedMessage(); sel != nil {
			m.composer.BeginReply(sel)
		}
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		if sel := m.selectedMessage(); sel != nil && sel.Sender == m.viewerID {
			m.composer.BeginEdit(sel)
			m.input.SetValue(sel.Body)
			m.input.CursorEnd()
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		sel := m.selectedMessage()
		if sel == nil || sel.Sender != m.viewerID {
			return m, nil
		}
		if sel.Delivery == model.DeliveryFailed {
			m.st.DiscardFailed(sel.ID)
			m.selected = -1
			return m, nil
		}
		return m, m.deleteCmd(sel.ConversationID, sel.ID)

	case key.Matches(msg, m.keys.Retry):
		return m.retrySelected()

	case key.Matches(msg, m.keys.NextConv):
		return m.cycleConversation(1)

	case key.Matches(msg, m.keys.PrevConv):
		return m.cycleConversation(-1)

	case key.Matches(msg, m.keys.Up):
		if conv := m.focusedConversation(); conv != nil && m.selected < len(conv.Messages)-1 {
			m.selected++
			m.refreshViewport()
		}
		m.vp.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.selected >= 0 {
			m.selected--
			m.refreshViewport()
		}
		m.vp.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.vp.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.vp.HalfViewDown()
		return m, nil
	}

	// Everything else edits the input buffer.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.composer.SetText(m.input.Value())
	if m.session != nil && !m.composer.IsEmpty() {
		m.session.MarkDirty()
	}
	return m, cmd
}

// handleCancel unwinds the innermost transient state first.
func (m Model) handleCancel() (tea.Model, tea.Cmd) {
	switch {
	case m.recording:
		m.recorder.Cancel()
		m.recording = false
		m.recElapsed = 0
	case m.composer.EditTarget() != nil:
		m.composer.CancelEdit()
		m.input.Reset()
	case m.composer.ReplyTarget() != nil:
		m.composer.CancelReply()
	case m.composer.Attachment() != nil:
		m.composer.ClearAttachment()
	case m.selected >= 0:
		m.selected = -1
		m.refreshViewport()
	case m.showHelp:
		m.showHelp = false
	}
	return m, nil
}

// =============================================================================
// EMOJI PICKER
// =============================================================================

// pickerCategories returns the picker table with a synthetic Recent
// category in front when the viewer has any recents.
func (m *Model) pickerCategories() []emoji.Category {
	cats := emoji.Categories
	if m.emoji == nil {
		return cats
	}
	recents := m.emoji.Recents()
	if len(recents) == 0 {
		return cats
	}
	out := make([]emoji.Category, 0, len(cats)+1)
	out = append(out, emoji.Category{Name: "Recent", Emojis: recents})
	out = append(out, cats...)
	return out
}

// handlePickerKey navigates the emoji picker overlay.
func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cats := m.pickerCategories()
	if len(cats) == 0 {
		m.picker = pickerState{}
		return m, nil
	}
	cat := cats[m.picker.catIdx%len(cats)]

	switch msg.String() {
	case "esc":
		m.picker = pickerState{}

	case "tab", "right":
		m.picker.catIdx = (m.picker.catIdx + 1) % len(cats)
		m.picker.itemIdx = 0

	case "shift+tab", "left":
		m.picker.catIdx = (m.picker.catIdx - 1 + len(cats)) % len(cats)
		m.picker.itemIdx = 0

	case "down", "l":
		if m.picker.itemIdx < len(cat.Emojis)-1 {
			m.picker.itemIdx++
		}

	case "up", "h":
		if m.picker.itemIdx > 0 {
			m.picker.itemIdx--
		}

	case "enter":
		if m.picker.itemIdx < len(cat.Emojis) {
			picked := cat.Emojis[m.picker.itemIdx]
			target := m.picker.target
			m.picker = pickerState{}
			if m.emoji != nil {
				m.emoji.Touch(picked)
			}
			if target != "" {
				if conv := m.focusedConversation(); conv != nil {
					return m, m.reactCmd(conv.ID, target, picked)
				}
				return m, nil
			}
			m.input.SetValue(m.input.Value() + picked)
			m.composer.SetText(m.input.Value())
		}
	}
	return m, nil
}

// =============================================================================
// SENDING
// =============================================================================

// submit turns the buffer into an intent and dispatches it.
func (m Model) submit() (tea.Model, tea.Cmd) {
	m.composer.SetText(m.input.Value())
	intent := m.composer.Submit()
	if intent == nil {
		return m, nil
	}
	m.input.Reset()

	if intent.Edit != nil {
		return m, m.editCmd(*intent.Edit)
	}

	pending := m.st.ApplyOptimisticSend(*intent.Send)
	m.selected = -1
	return m, m.sendCmd(*intent.Send, pending.ID)
}

// retrySelected re-submits a failed send as a fresh intent.
func (m Model) retrySelected() (tea.Model, tea.Cmd) {
	sel := m.selectedMessage()
	if sel == nil {
		return m, nil
	}
	intent, ok := m.st.RetryFailed(sel.ID)
	if !ok {
		return m, nil
	}
	m.selected = -1
	pending := m.st.ApplyOptimisticSend(intent)
	return m, m.sendCmd(intent, pending.ID)
}

// cycleConversation focuses the next or previous conversation.
func (m Model) cycleConversation(dir int) (tea.Model, tea.Cmd) {
	convs := m.st.Conversations()
	if len(convs) == 0 {
		return m, nil
	}
	cur := m.st.FocusedID()
	idx := 0
	for i, c := range convs {
		if c.ID == cur {
			idx = (i + dir + len(convs)) % len(convs)
			break
		}
	}
	next := convs[idx]

	m.composer.Blur()
	m.st.Focus(next.ID)
	m.composer.Retarget(next.ID, next.Peer.ID)
	m.input.Reset()
	m.selected = -1
	m.refreshViewport()
	m.vp.GotoBottom()
	return m, m.readCmd(next.ID)
}

// =============================================================================
// TRANSPORT EVENT DISPATCH
// =============================================================================

// handleTransportEvent applies one inbound service event to the store.
func (m *Model) handleTransportEvent(ev transport.Event) tea.Cmd {
	switch e := ev.(type) {
	case transport.MessageEvent:
		m.st.ApplyInbound(e.Message)
		if e.Message != nil && e.Message.Sender != m.viewerID {
			// A delivered message supersedes any typing flag for the peer,
			// even when the stop signal was lost.
			m.st.SetTyping(e.Message.ConversationID, false)
			if m.st.FocusedID() == e.Message.ConversationID {
				return m.readCmd(e.Message.ConversationID)
			}
		}

	case transport.TypingEvent:
		m.st.SetTyping(e.ConversationID, e.Typing)
		if e.Typing {
			setAt := time.Now()
			m.lastTyping[e.ConversationID] = setAt
			convID := e.ConversationID
			return tea.Tick(typingStaleAfter, func(time.Time) tea.Msg {
				return typingExpiredMsg{ConversationID: convID, SetAt: setAt}
			})
		}

	case transport.ReactionEvent:
		m.st.ApplyReaction(e.MessageID, e.UserID, e.Emoji)

	case transport.EditEvent:
		m.st.ApplyEdit(e.MessageID, e.NewBody)

	case transport.DeleteEvent:
		m.st.ApplyDelete(e.MessageID)

	case transport.PresenceEvent:
		m.st.SetPresence(e.PeerID, e.Online, e.LastActive)

	case transport.ReceiptEvent:
		m.st.ApplyReceipt(e.MessageID, e.State)

	case transport.ConversationRemovedEvent:
		m.st.RemoveConversation(e.ConversationID)
	}
	return nil
}

// handleStoreChanged refreshes the view after a store mutation.
func (m Model) handleStoreChanged(ev store.Event) (tea.Model, tea.Cmd) {
	// Focus the first conversation that ever appears.
	if ev.Kind == store.EventConversationAdded && m.st.FocusedID() == "" {
		m.st.Focus(ev.ConversationID)
		if conv := m.st.Conversation(ev.ConversationID); conv != nil {
			m.composer.Retarget(conv.ID, conv.Peer.ID)
		}
	}

	atBottom := m.vp.AtBottom()
	m.refreshViewport()
	if ev.Kind == store.EventMessageAdded && ev.ConversationID == m.st.FocusedID() && atBottom {
		m.vp.GotoBottom()
	}
	return m, nil
}

// =============================================================================
// RECORDING
// =============================================================================

// toggleRecording starts or finishes a voice recording session.
func (m Model) toggleRecording() (tea.Model, tea.Cmd) {
	if m.recorder == nil {
		return m, m.reportError(capture.ErrDeviceUnavailable)
	}

	if m.recording {
		m.recording = false
		m.recElapsed = 0
		clip := m.recorder.Stop()
		if clip == nil {
			// Too short to keep; treated as a cancel.
			return m, nil
		}
		return m, saveClipCmd(clip)
	}

	if err := m.recorder.Start(); err != nil {
		return m, m.reportError(err)
	}
	m.recording = true
	m.recElapsed = 0
	return m, nil
}

// saveClipCmd writes the clip to a temp file so it can travel as an
// attachment path through the normal send pipeline.
func saveClipCmd(clip *capture.Clip) tea.Cmd {
	return func() tea.Msg {
		f, err := os.CreateTemp("", "palaver-clip-*.pcm")
		if err != nil {
			return ClipSavedMsg{Err: err}
		}
		if _, err := f.Write(clip.Data); err != nil {
			f.Close()
			os.Remove(f.Name())
			return ClipSavedMsg{Err: err}
		}
		if err := f.Close(); err != nil {
			os.Remove(f.Name())
			return ClipSavedMsg{Err: err}
		}
		return ClipSavedMsg{Attachment: model.Attachment{
			Kind:     model.KindVoice,
			Path:     f.Name(),
			Duration: clip.Duration,
		}}
	}
}

// =============================================================================
// TRANSPORT COMMANDS
// =============================================================================

// sendCmd transmits a send intent and resolves the optimistic record.
func (m *Model) sendCmd(intent model.SendIntent, tempID string) tea.Cmd {
	tr := m.tr
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		// Media goes up first; the send then carries the returned handle.
		// An upload failure fails the whole send so the optimistic record
		// lands in the retryable failed state.
		if intent.Attachment != nil {
			ref, err := tr.UploadMedia(ctx, intent.Attachment.Path)
			if err != nil {
				return SendResultMsg{TempID: tempID, Outcome: store.SendOutcome{Err: err}}
			}
			intent.MediaRef = ref
		}

		conf, err := tr.SendMessage(ctx, intent)
		return SendResultMsg{TempID: tempID, Outcome: store.SendOutcome{
			ServerID:  conf.MessageID,
			Timestamp: conf.Timestamp,
			MediaRef:  conf.MediaRef,
			Err:       err,
		}}
	}
}

// editCmd transmits an edit intent.
func (m *Model) editCmd(intent model.EditIntent) tea.Cmd {
	tr := m.tr
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		return EditResultMsg{Intent: intent, Err: tr.SendEdit(ctx, intent)}
	}
}

// reactCmd transmits a reaction upsert.
func (m *Model) reactCmd(conversationID, messageID, emojiStr string) tea.Cmd {
	tr := m.tr
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		err := tr.SendReaction(ctx, conversationID, messageID, emojiStr)
		return ReactionResultMsg{MessageID: messageID, Emoji: emojiStr, Err: err}
	}
}

// deleteCmd asks the service to delete one of the viewer's messages.
func (m *Model) deleteCmd(conversationID, messageID string) tea.Cmd {
	tr := m.tr
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		err := tr.DeleteMessage(ctx, conversationID, messageID)
		return DeleteResultMsg{ConversationID: conversationID, MessageID: messageID, Err: err}
	}
}

// readCmd reports a conversation as read.
func (m *Model) readCmd(conversationID string) tea.Cmd {
	tr := m.tr
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := tr.SendRead(ctx, conversationID); err != nil {
			return ErrorMsg{Err: err}
		}
		return nil
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// reportError shows an error in the status bar and schedules its dismissal.
func (m *Model) reportError(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	m.errText = err.Error()
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return clearErrorMsg{}
	})
}
