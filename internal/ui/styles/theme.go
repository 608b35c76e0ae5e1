// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the palaver TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderPeer     lipgloss.Style
	HeaderPresence lipgloss.Style
	HeaderLangPair lipgloss.Style

	// ==========================================================================
	// CONVERSATION LIST STYLES
	// ==========================================================================

	ConvList         lipgloss.Style
	ConvItem         lipgloss.Style
	ConvItemSelected lipgloss.Style
	ConvPeerName     lipgloss.Style
	ConvPreview      lipgloss.Style
	ConvTime         lipgloss.Style
	UnreadBadge      lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	OwnBubble    lipgloss.Style
	PeerBubble   lipgloss.Style
	FailedBubble lipgloss.Style
	EmojiOnly    lipgloss.Style
	ReplyQuote   lipgloss.Style
	ReactionRow  lipgloss.Style
	EditedTag    lipgloss.Style
	StatusGlyph  lipgloss.Style
	FailedGlyph  lipgloss.Style
	MessageTime  lipgloss.Style
	VoiceClip    lipgloss.Style

	// ==========================================================================
	// TYPING INDICATOR
	// ==========================================================================

	TypingIndicator lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputText        lipgloss.Style
	InputPlaceholder lipgloss.Style
	AttachmentChip   lipgloss.Style
	ReplyBanner      lipgloss.Style
	EditBanner       lipgloss.Style

	// ==========================================================================
	// RECORDING OVERLAY STYLES
	// ==========================================================================

	RecordingBox   lipgloss.Style
	RecordingDot   lipgloss.Style
	RecordingTimer lipgloss.Style

	// ==========================================================================
	// EMOJI PICKER STYLES
	// ==========================================================================

	PickerBox      lipgloss.Style
	PickerCategory lipgloss.Style
	PickerItem     lipgloss.Style
	PickerSelected lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	ErrorText    lipgloss.Style
}

// NewTheme creates a new theme with all styles configured. mode forces the
// "dark" or "light" variant of every adaptive color; any other value keeps
// the terminal's detected background.
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	isDark := termenv.HasDarkBackground()
	switch mode {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// App container
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderPeer = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.HeaderPresence = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.HeaderLangPair = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Conversation list
	t.ConvList = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		PaddingRight(1)

	t.ConvItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.ConvItemSelected = lipgloss.NewStyle().
		Background(SelectionBg).
		Foreground(TextPrimary).
		Bold(true).
		Padding(0, 1)

	t.ConvPeerName = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.ConvPreview = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.ConvTime = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.UnreadBadge = lipgloss.NewStyle().
		Background(Amber).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)

	// Message bubbles
	t.OwnBubble = lipgloss.NewStyle().
		Foreground(OwnBubbleFg).
		Background(OwnBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OwnBubbleBorder).
		Padding(0, 2).
		MarginLeft(4)

	t.PeerBubble = lipgloss.NewStyle().
		Foreground(PeerBubbleFg).
		Background(PeerBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(PeerBubbleBorder).
		Padding(0, 2).
		MarginRight(4)

	t.FailedBubble = lipgloss.NewStyle().
		Foreground(FailedBubbleFg).
		Background(FailedBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 2).
		MarginLeft(4)

	// Emoji-only messages render big and bare, no bubble
	t.EmojiOnly = lipgloss.NewStyle().
		Padding(0, 2)

	t.ReplyQuote = lipgloss.NewStyle().
		Foreground(TextMuted).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Overlay).
		PaddingLeft(1).
		Italic(true)

	t.ReactionRow = lipgloss.NewStyle().
		Foreground(TextSecondary).
		PaddingLeft(2)

	t.EditedTag = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.StatusGlyph = lipgloss.NewStyle().
		Foreground(Emerald)

	t.FailedGlyph = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.MessageTime = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.VoiceClip = lipgloss.NewStyle().
		Foreground(Violet).
		Bold(true)

	// Typing indicator
	t.TypingIndicator = lipgloss.NewStyle().
		Foreground(Violet).
		Italic(true)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.InputText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.AttachmentChip = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Violet).
		Padding(0, 1)

	t.ReplyBanner = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.EditBanner = lipgloss.NewStyle().
		Foreground(Amber).
		Background(SurfaceDim).
		Padding(0, 1)

	// Recording overlay
	t.RecordingBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 2)

	t.RecordingDot = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.RecordingTimer = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	// Emoji picker
	t.PickerBox = lipgloss.NewStyle().
		Background(Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Violet).
		Padding(1, 2)

	t.PickerCategory = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.PickerItem = lipgloss.NewStyle().
		Padding(0, 1)

	t.PickerSelected = lipgloss.NewStyle().
		Background(SelectionBg).
		Padding(0, 1)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)
}
