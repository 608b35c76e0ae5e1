// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the palaver TUI.
//
// This file defines keyboard bindings and shortcuts for the chat interface.
package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	NextConv   key.Binding
	PrevConv   key.Binding
	Submit     key.Binding
	Cancel     key.Binding
	Record     key.Binding
	EmojiPick  key.Binding
	Reply      key.Binding
	Edit       key.Binding
	Delete     key.Binding
	React      key.Binding
	Retry      key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "scroll up / select older"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "scroll down / select newer"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn/C-d", "page down"),
		),
		NextConv: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "next conversation"),
		),
		PrevConv: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("C-p", "previous conversation"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel reply/edit/overlay"),
		),
		Record: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("C-v", "start/stop voice recording"),
		),
		EmojiPick: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("C-e", "emoji picker"),
		),
		Reply: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "reply to selected"),
		),
		Edit: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "edit selected own message"),
		),
		Delete: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "delete selected own message"),
		),
		React: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "react to selected"),
		),
		Retry: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "retry failed send"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+h"),
			key.WithHelp("C-h", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// =============================================================================
// KEY BINDING HELPERS
// =============================================================================

// ShortHelp returns the key bindings shown in the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Record, k.EmojiPick, k.Help, k.Quit}
}

// FullHelp returns key bindings grouped for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Navigation
		{k.Up, k.Down, k.PageUp, k.PageDown},
		// Conversations
		{k.NextConv, k.PrevConv},
		// Message actions
		{k.Reply, k.Edit, k.Delete, k.React, k.Retry},
		// Composing
		{k.Submit, k.Record, k.EmojiPick, k.Cancel},
		// App
		{k.Help, k.Quit},
	}
}
