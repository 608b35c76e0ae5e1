// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the palaver TUI.
package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/palaver-tui/internal/model"
	"github.com/jeranaias/palaver-tui/internal/render"
	"github.com/jeranaias/palaver-tui/internal/session"
	"github.com/jeranaias/palaver-tui/internal/util"
)

// =============================================================================
// TOP-LEVEL VIEW
// =============================================================================

// View renders the full interface.
func (m Model) View() string {
	if m.width == 0 {
		return "starting palaver..."
	}

	header := m.renderHeader()
	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderConvList(),
		m.vp.View(),
	)
	input := m.renderInput()
	status := m.renderStatusBar()

	sections := []string{header, body}
	if m.picker.open {
		sections = append(sections, m.renderPicker())
	}
	sections = append(sections, input, status)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// =============================================================================
// HEADER
// =============================================================================

// renderHeader paints the peer line for the focused conversation.
func (m Model) renderHeader() string {
	conv := m.focusedConversation()
	if conv == nil {
		return m.theme.Header.Width(m.width).Render(
			m.theme.HeaderPeer.Render("palaver") + "  " +
				m.theme.HeaderPresence.Render("no conversation"))
	}

	parts := []string{m.theme.HeaderPeer.Render(conv.Peer.Name)}
	parts = append(parts, m.theme.HeaderPresence.Render(render.LastSeen(conv.Peer, time.Now())))
	if pair := render.LanguagePair(conv.Peer); pair != "" {
		parts = append(parts, m.theme.HeaderLangPair.Render(pair))
	}
	return m.theme.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

// =============================================================================
// CONVERSATION LIST
// =============================================================================

// renderConvList paints the left pane.
func (m Model) renderConvList() string {
	height := m.vp.Height
	convs := m.st.Conversations()
	focused := m.st.FocusedID()

	var b strings.Builder
	lines := 0
	for _, conv := range convs {
		if lines+2 > height {
			break
		}

		name := util.TruncateRunes(conv.Peer.Name, convListWidth-8)
		when := render.RelativeTime(conv.UpdatedAt, time.Now())
		top := name
		if conv.Peer.Online {
			top = m.theme.StatusGlyph.Render("●") + " " + name
		}
		if conv.UnreadCount > 0 {
			top += " " + m.theme.UnreadBadge.Render(fmt.Sprintf("%d", conv.UnreadCount))
		}
		if conv.IsMuted {
			top += " " + m.theme.ConvTime.Render("muted")
		}
		top += " " + m.theme.ConvTime.Render(when)

		preview := conv.Preview()
		if conv.IsTyping {
			preview = "typing..."
		}
		bottom := m.theme.ConvPreview.Render(util.TruncateRunes(preview, convListWidth-4))

		item := top + "\n" + bottom
		if conv.ID == focused {
			b.WriteString(m.theme.ConvItemSelected.Width(convListWidth - 2).Render(item))
		} else {
			b.WriteString(m.theme.ConvItem.Width(convListWidth - 2).Render(item))
		}
		b.WriteString("\n")
		lines += 2
	}

	if len(convs) == 0 {
		b.WriteString(m.theme.ConvPreview.Render("no conversations"))
	}

	return m.theme.ConvList.Width(convListWidth).Height(height).Render(b.String())
}

// =============================================================================
// MESSAGE PANE
// =============================================================================

// refreshViewport rebuilds the message pane content from the focused
// conversation.
func (m *Model) refreshViewport() {
	conv := m.focusedConversation()
	if conv == nil {
		m.vp.SetContent(m.theme.ConvPreview.Render("select a conversation (C-n)"))
		return
	}

	lookup := func(id string) *model.Message { return conv.MessageByID(id) }
	selected := m.selectedMessage()

	var b strings.Builder
	for _, msg := range conv.Messages {
		dm := render.Message(msg, m.viewerID, lookup)
		b.WriteString(m.renderMessage(dm, msg, selected != nil && selected.ID == msg.ID))
		b.WriteString("\n")
	}

	if conv.IsTyping {
		b.WriteString(m.theme.TypingIndicator.Render(conv.Peer.Name + " is typing..."))
		b.WriteString("\n")
	}

	m.vp.SetContent(b.String())
}

// renderMessage paints one message block: optional reply quote, the bubble,
// and the meta line with reactions.
func (m *Model) renderMessage(dm render.DisplayModel, msg *model.Message, selected bool) string {
	width := m.vp.Width
	var parts []string

	if dm.Reply != nil {
		quote := "reply unavailable"
		if dm.Reply.Available {
			quote = dm.Reply.Sender + ": " + dm.Reply.Excerpt
		}
		parts = append(parts, m.theme.ReplyQuote.Render(quote))
	}

	body := dm.Body
	if dm.Kind == model.KindVoice || dm.Kind == model.KindVideo {
		label := m.theme.VoiceClip.Render("▶ " + string(dm.Kind) + " " + dm.Duration)
		if body != "" {
			body = label + "\n" + body
		} else {
			body = label
		}
	} else if dm.Kind.IsMedia() && body == "" {
		body = "[" + string(dm.Kind) + "]"
	}

	var bubble string
	switch {
	case dm.IsEmojiOnly:
		bubble = m.theme.EmojiOnly.Render(body)
	case dm.Failed:
		bubble = m.theme.FailedBubble.Render(body)
	case dm.IsOwn:
		bubble = m.theme.OwnBubble.Render(body)
	default:
		bubble = m.theme.PeerBubble.Render(body)
	}

	meta := m.metaLine(dm, msg)
	block := bubble + "\n" + meta

	for _, g := range dm.Reactions {
		pill := fmt.Sprintf("%s %d", g.Emoji, g.Count)
		if g.ByUser {
			pill = "[" + pill + "]"
		}
		block += " " + m.theme.ReactionRow.Render(pill)
	}

	if selected {
		block = m.theme.InputPrompt.Render("▌") + block
	}

	if dm.IsOwn && !dm.IsEmojiOnly {
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
	}
	return block
}

// metaLine builds the small line under a bubble: time, edited tag, status.
func (m *Model) metaLine(dm render.DisplayModel, msg *model.Message) string {
	parts := []string{m.theme.MessageTime.Render(render.MessageTime(msg.CreatedAt))}
	if dm.IsEdited {
		parts = append(parts, m.theme.EditedTag.Render("(edited)"))
	}
	if dm.Failed {
		parts = append(parts, m.theme.FailedGlyph.Render("! failed — C-t retry, C-x discard"))
	} else if dm.StatusGlyph != "" {
		parts = append(parts, m.theme.StatusGlyph.Render(dm.StatusGlyph))
	}
	return strings.Join(parts, " ")
}

// =============================================================================
// INPUT AREA
// =============================================================================

// renderInput paints the composer: context banners, attachment chip, buffer.
func (m Model) renderInput() string {
	var banners []string

	if m.recording {
		banners = append(banners, m.theme.RecordingBox.Render(
			m.theme.RecordingDot.Render("● REC ")+
				m.theme.RecordingTimer.Render(render.ClipDuration(m.recElapsed))+
				m.theme.ShortcutDesc.Render("  C-v stop · Esc cancel")))
	}

	if target := m.composer.EditTarget(); target != nil {
		banners = append(banners, m.theme.EditBanner.Render(
			"editing: "+util.TruncateRunes(util.CollapseNewlines(target.Body), 50)))
	} else if target := m.composer.ReplyTarget(); target != nil {
		banners = append(banners, m.theme.ReplyBanner.Render(
			"replying to "+target.Sender+": "+util.TruncateRunes(util.CollapseNewlines(target.Body), 40)))
	}

	if a := m.composer.Attachment(); a != nil {
		chip := string(a.Kind)
		if a.Kind == model.KindVoice {
			chip += " " + render.ClipDuration(a.Duration)
		}
		banners = append(banners, m.theme.AttachmentChip.Render("📎 "+chip))
	}

	line := m.theme.InputPrompt.Render("> ") + m.input.View()
	banners = append(banners, line)

	return m.theme.InputContainer.Width(m.width).Render(
		lipgloss.JoinVertical(lipgloss.Left, banners...))
}

// =============================================================================
// EMOJI PICKER OVERLAY
// =============================================================================

// renderPicker paints the emoji picker as an inline overlay row.
func (m Model) renderPicker() string {
	cats := m.pickerCategories()
	if len(cats) == 0 {
		return ""
	}
	catIdx := m.picker.catIdx % len(cats)
	cat := cats[catIdx]

	var tabs []string
	for i, c := range cats {
		if i == catIdx {
			tabs = append(tabs, m.theme.PickerSelected.Render(c.Name))
		} else {
			tabs = append(tabs, m.theme.PickerCategory.Render(c.Name))
		}
	}

	var items []string
	for i, e := range cat.Emojis {
		if i == m.picker.itemIdx {
			items = append(items, m.theme.PickerSelected.Render(e))
		} else {
			items = append(items, m.theme.PickerItem.Render(e))
		}
	}

	title := "pick emoji"
	if m.picker.target != "" {
		title = "react"
	}
	content := m.theme.PickerCategory.Render(title) + "\n" +
		strings.Join(tabs, " ") + "\n" +
		strings.Join(items, "")
	return m.theme.PickerBox.Render(content)
}

// =============================================================================
// STATUS BAR
// =============================================================================

// renderStatusBar paints the bottom line: errors win, then help, then the
// shortcut summary with total unread.
func (m Model) renderStatusBar() string {
	if m.errText != "" {
		return m.theme.StatusBar.Width(m.width).Render(m.theme.ErrorText.Render(m.errText))
	}
	if m.showHelp {
		return m.theme.StatusBar.Width(m.width).Render(m.help.FullHelpView(m.keys.FullHelp()))
	}

	left := m.help.ShortHelpView(m.keys.ShortHelp())

	var parts []string
	if m.away {
		parts = append(parts, m.theme.ShortcutDesc.Render("away"))
	}
	if v := m.input.Value(); v != "" {
		parts = append(parts, m.theme.ShortcutDesc.Render(
			fmt.Sprintf("%d/%d", util.RuneLen(v), m.input.CharLimit)))
	}
	if m.session != nil {
		parts = append(parts, m.theme.ShortcutDesc.Render(session.FormatDuration(m.session.Duration())))
	}
	if n := m.st.TotalUnread(); n > 0 {
		parts = append(parts, m.theme.UnreadBadge.Render(fmt.Sprintf("%d unread", n)))
	}
	right := strings.Join(parts, " ")

	gap := m.width - runewidth.StringWidth(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
