// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render derives display models from domain records.
package render

import (
	"sort"
	"strings"

	"github.com/jeranaias/palaver-tui/internal/model"
	"github.com/jeranaias/palaver-tui/internal/util"
)

// PreviewLength bounds one-line previews in list contexts.
const PreviewLength = 48

// emojiOnlyMaxRunes bounds the "big emoji" rendering: longer bodies keep
// the normal bubble even if every rune is an emoji.
const emojiOnlyMaxRunes = 8

// =============================================================================
// DISPLAY MODEL
// =============================================================================

// ReactionGroup is one emoji with its aggregate count, for pill rendering.
type ReactionGroup struct {
	Emoji  string
	Count  int
	ByUser bool // the viewer is among the reactors
}

// ReplyPreview summarizes the message a record replies to. Available is
// false when the target id dangles (deleted or never seen); the view then
// shows the placeholder text instead of crashing on a nil target.
type ReplyPreview struct {
	Available bool
	Sender    string
	Excerpt   string
}

// DisplayModel is everything a view needs to paint one message.
type DisplayModel struct {
	ID          string
	IsOwn       bool
	Kind        model.Kind
	Body        string
	Preview     string
	IsEmojiOnly bool
	IsEdited    bool
	Failed      bool
	StatusGlyph string // own messages only; "" otherwise
	Duration    string // voice/video clip length, "" otherwise
	Reactions   []ReactionGroup
	Reply       *ReplyPreview
}

// =============================================================================
// RENDERER
// =============================================================================

// Lookup resolves a message id to its record, for reply previews. Returning
// nil means the reference dangles.
type Lookup func(id string) *model.Message

// Message derives the display model for one message as seen by viewerID.
// Pure: no state is read beyond the arguments and no side effects occur.
func Message(msg *model.Message, viewerID string, lookup Lookup) DisplayModel {
	isOwn := msg.Sender == viewerID

	dm := DisplayModel{
		ID:          msg.ID,
		IsOwn:       isOwn,
		Kind:        msg.Kind,
		Body:        msg.Body,
		Preview:     msg.Preview(PreviewLength),
		IsEmojiOnly: IsEmojiOnly(msg.Body),
		IsEdited:    msg.IsEdited,
		Failed:      msg.Delivery == model.DeliveryFailed,
		Reactions:   groupReactions(msg.Reactions, viewerID),
	}

	if isOwn {
		dm.StatusGlyph = statusGlyph(msg.Delivery)
	}
	if msg.Kind == model.KindVoice || msg.Kind == model.KindVideo {
		dm.Duration = ClipDuration(msg.Duration)
	}
	if msg.ReplyTo != "" {
		dm.Reply = replyPreview(msg.ReplyTo, lookup)
	}
	return dm
}

// statusGlyph maps delivery state to the indicator shown on own messages.
func statusGlyph(d model.DeliveryState) string {
	switch d {
	case model.DeliverySending:
		return "…"
	case model.DeliverySent:
		return "✓"
	case model.DeliveryDelivered:
		return "✓✓"
	case model.DeliveryRead:
		return "✓✓" // painted in the accent color by the view
	case model.DeliveryFailed:
		return "!"
	default:
		return ""
	}
}

// replyPreview resolves a weak reply reference, degrading to an
// unavailable placeholder for dangling ids.
func replyPreview(targetID string, lookup Lookup) *ReplyPreview {
	if lookup == nil {
		return &ReplyPreview{}
	}
	target := lookup(targetID)
	if target == nil {
		return &ReplyPreview{}
	}
	return &ReplyPreview{
		Available: true,
		Sender:    target.Sender,
		Excerpt:   util.TruncateRunes(util.CollapseNewlines(target.Body), 40),
	}
}

// groupReactions collapses (user, emoji) pairs into per-emoji pills,
// ordered by count then emoji for a stable layout.
func groupReactions(reactions []model.Reaction, viewerID string) []ReactionGroup {
	if len(reactions) == 0 {
		return nil
	}
	byEmoji := make(map[string]*ReactionGroup)
	for _, r := range reactions {
		g := byEmoji[r.Emoji]
		if g == nil {
			g = &ReactionGroup{Emoji: r.Emoji}
			byEmoji[r.Emoji] = g
		}
		g.Count++
		if r.UserID == viewerID {
			g.ByUser = true
		}
	}
	out := make([]ReactionGroup, 0, len(byEmoji))
	for _, g := range byEmoji {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Emoji < out[j].Emoji
	})
	return out
}

// =============================================================================
// EMOJI-ONLY DETECTION
// =============================================================================

// IsEmojiOnly reports whether a trimmed body consists solely of emoji code
// points and is short enough for enlarged bubble-less rendering.
func IsEmojiOnly(body string) bool {
	body = strings.TrimSpace(body)
	if body == "" {
		return false
	}
	runes := []rune(body)
	if len(runes) > emojiOnlyMaxRunes {
		return false
	}
	for _, r := range runes {
		if !isEmojiRune(r) {
			return false
		}
	}
	return true
}

// isEmojiRune checks the common emoji blocks plus the joiners and
// modifiers that composite emoji are built from.
func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F5FF: // symbols & pictographs
		return true
	case r >= 0x1F600 && r <= 0x1F64F: // emoticons
		return true
	case r >= 0x1F680 && r <= 0x1F6FF: // transport & map
		return true
	case r >= 0x1F900 && r <= 0x1F9FF: // supplemental symbols
		return true
	case r >= 0x1FA70 && r <= 0x1FAFF: // extended-A
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols & dingbats
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators (flags)
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tone modifiers
		return true
	case r == 0x200D: // zero-width joiner
		return true
	case r == 0xFE0F: // variation selector-16
		return true
	}
	return false
}
