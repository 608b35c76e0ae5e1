// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package compose owns the message input buffer and the typing signal.
package compose

import (
	"strings"
	"time"

	"github.com/jeranaias/palaver-tui/internal/model"
)

// =============================================================================
// INTENT WRAPPER
// =============================================================================

// Intent is the result of a successful submit: exactly one of Send or Edit
// is non-nil.
type Intent struct {
	Send *model.SendIntent
	Edit *model.EditIntent
}

// =============================================================================
// COMPOSER
// =============================================================================

// Composer owns the input buffer for one conversation pane: text, a single
// staged attachment and a reply or edit context. Reply and edit modes are
// mutually exclusive; entering one silently discards the other.
type Composer struct {
	conversationID string
	receiver       string

	text       string
	attachment *model.Attachment
	replyTo    *model.Message
	editTarget *model.Message

	typing *TypingSignal
}

// New creates a composer for a conversation pane. typing may be nil when no
// typing signal should be driven (e.g. in tests of pure buffer behavior).
func New(conversationID, receiver string, typing *TypingSignal) *Composer {
	return &Composer{
		conversationID: conversationID,
		receiver:       receiver,
		typing:         typing,
	}
}

// Retarget points the composer at a different conversation, clearing all
// buffer state. Used when the user switches panes.
func (c *Composer) Retarget(conversationID, receiver string) {
	c.conversationID = conversationID
	c.receiver = receiver
	c.reset()
}

// =============================================================================
// BUFFER
// =============================================================================

// SetText replaces the buffer and arms the typing signal while non-empty.
func (c *Composer) SetText(value string) {
	c.text = value
	if c.typing == nil {
		return
	}
	if strings.TrimSpace(value) != "" {
		c.typing.Keystroke()
	}
}

// Text returns the current buffer.
func (c *Composer) Text() string {
	return c.text
}

// RestoreDraft preloads the buffer without arming the typing signal. Used
// at startup to bring back an autosaved draft.
func (c *Composer) RestoreDraft(text string) {
	c.text = text
}

// SetTypingWindow adjusts the typing debounce window, if a signal is
// attached. Applied on config live reload.
func (c *Composer) SetTypingWindow(window time.Duration) {
	if c.typing != nil {
		c.typing.SetWindow(window)
	}
}

// AttachMedia stages exactly one attachment; staging while one is already
// present replaces it. One send intent carries at most one attachment.
func (c *Composer) AttachMedia(path string, kind model.Kind) {
	c.attachment = &model.Attachment{Kind: kind, Path: path}
}

// AttachVoice stages a voice clip with its measured duration.
func (c *Composer) AttachVoice(a model.Attachment) {
	a.Kind = model.KindVoice
	c.attachment = &a
}

// Attachment returns the staged attachment, or nil.
func (c *Composer) Attachment() *model.Attachment {
	return c.attachment
}

// ClearAttachment drops the staged attachment.
func (c *Composer) ClearAttachment() {
	c.attachment = nil
}

// =============================================================================
// REPLY / EDIT CONTEXT
// =============================================================================

// BeginReply sets the reply target, discarding any edit context. No
// stacking: switching modes replaces the other silently.
func (c *Composer) BeginReply(target *model.Message) {
	if target == nil {
		return
	}
	if c.editTarget != nil {
		c.editTarget = nil
		c.text = ""
	}
	c.replyTo = target
}

// CancelReply clears the reply context.
func (c *Composer) CancelReply() {
	c.replyTo = nil
}

// ReplyTarget returns the message being replied to, or nil.
func (c *Composer) ReplyTarget() *model.Message {
	return c.replyTo
}

// BeginEdit preloads the buffer with the target's current body and switches
// to edit mode, discarding any reply context.
func (c *Composer) BeginEdit(target *model.Message) {
	if target == nil {
		return
	}
	c.replyTo = nil
	c.editTarget = target
	c.text = target.Body
}

// CancelEdit clears the edit context and the preloaded buffer.
func (c *Composer) CancelEdit() {
	if c.editTarget == nil {
		return
	}
	c.editTarget = nil
	c.text = ""
}

// EditTarget returns the message being edited, or nil.
func (c *Composer) EditTarget() *model.Message {
	return c.editTarget
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit validates the buffer and produces one intent. An empty buffer
// (whitespace-only, no attachment) returns nil — a no-op, not an error. An
// edit whose body is unchanged is likewise rejected locally. On success the
// buffer and all transient context are cleared and the typing signal stops.
func (c *Composer) Submit() *Intent {
	body := strings.TrimSpace(c.text)

	if c.editTarget != nil {
		if body == "" || body == c.editTarget.Body {
			return nil
		}
		intent := &Intent{Edit: &model.EditIntent{
			ConversationID: c.conversationID,
			MessageID:      c.editTarget.ID,
			NewBody:        body,
		}}
		c.reset()
		return intent
	}

	if body == "" && c.attachment == nil {
		return nil
	}

	send := &model.SendIntent{
		ConversationID: c.conversationID,
		Receiver:       c.receiver,
		Kind:           model.KindText,
		Body:           body,
		Attachment:     c.attachment,
	}
	if c.attachment != nil {
		send.Kind = c.attachment.Kind
	}
	if c.replyTo != nil {
		send.ReplyTo = c.replyTo.ID
	}

	c.reset()
	return &Intent{Send: send}
}

// Blur reports focus loss: the typing signal stops immediately instead of
// waiting out the trailing window.
func (c *Composer) Blur() {
	if c.typing != nil {
		c.typing.Stop()
	}
}

// IsEmpty reports whether a submit would be rejected.
func (c *Composer) IsEmpty() bool {
	return strings.TrimSpace(c.text) == "" && c.attachment == nil && c.editTarget == nil
}

// reset clears buffer and transient state after a successful submit.
func (c *Composer) reset() {
	c.text = ""
	c.attachment = nil
	c.replyTo = nil
	c.editTarget = nil
	if c.typing != nil {
		c.typing.Stop()
	}
}
