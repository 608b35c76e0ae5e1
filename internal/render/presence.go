// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render derives display models from domain records.
package render

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/jeranaias/palaver-tui/internal/model"
)

// =============================================================================
// TIME HUMANIZATION
// =============================================================================

// RelativeTime humanizes a timestamp for list contexts: "just now", "5m",
// "2h", "3d", then a calendar date.
func RelativeTime(t time.Time, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

// LastSeen describes a peer's presence for the chat header.
func LastSeen(p model.Peer, now time.Time) string {
	if p.Online {
		return "online"
	}
	if p.LastActive.IsZero() {
		return "offline"
	}
	return "last seen " + RelativeTime(p.LastActive, now) + " ago"
}

// ClipDuration formats a voice/video length as m:ss.
func ClipDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// MessageTime formats a timestamp for the message detail line.
func MessageTime(t time.Time) string {
	return t.Format("15:04")
}

// =============================================================================
// LANGUAGE PROFILE
// =============================================================================

// LanguagePair describes a peer's exchange profile for the header, e.g.
// "speaks Spanish · learning German". Unknown tags render as nothing
// rather than "und".
func LanguagePair(p model.Peer) string {
	namer := display.English.Languages()

	native := ""
	if p.Native != language.Und {
		native = "speaks " + namer.Name(p.Native)
	}
	learning := ""
	if p.Learning != language.Und {
		learning = "learning " + namer.Name(p.Learning)
	}

	switch {
	case native != "" && learning != "":
		return native + " · " + learning
	case native != "":
		return native
	default:
		return learning
	}
}
