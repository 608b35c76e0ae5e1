// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the palaver TUI.
package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/palaver-tui/internal/compose"
	"github.com/jeranaias/palaver-tui/internal/config"
	"github.com/jeranaias/palaver-tui/internal/model"
	"github.com/jeranaias/palaver-tui/internal/session"
	"github.com/jeranaias/palaver-tui/internal/store"
	"github.com/jeranaias/palaver-tui/internal/transport"
	"github.com/jeranaias/palaver-tui/internal/ui/styles"
)

// newTestModel builds a model over in-process collaborators.
func newTestModel() Model {
	typing := compose.NewTypingSignal(time.Second, func(bool) {})
	return New(Deps{
		Store:     store.New("me"),
		Composer:  compose.New("conv1", "maria", typing),
		Transport: transport.NewLoopback(0, false),
		Theme:     styles.NewTheme("dark"),
		ViewerID:  "me",
	})
}

// =============================================================================
// CONFIG LIVE RELOAD
// =============================================================================

func TestUpdate_ConfigReloadSwitchesTheme(t *testing.T) {
	m := newTestModel()
	if !m.theme.IsDark {
		t.Fatal("test model should start on the dark theme")
	}

	cfg := config.Default()
	cfg.UI.Theme = "light"
	next, _ := m.Update(ConfigReloadedMsg{Config: cfg})

	got := next.(Model)
	if got.theme.IsDark {
		t.Error("reloaded light theme should replace the dark one")
	}
}

func TestUpdate_ConfigReloadNilIsNoOp(t *testing.T) {
	m := newTestModel()
	before := m.theme

	next, _ := m.Update(ConfigReloadedMsg{})
	if next.(Model).theme != before {
		t.Error("a nil reload payload must leave the theme alone")
	}
}

// =============================================================================
// VIEWER PRESENCE
// =============================================================================

func TestUpdate_ViewerAwayShownInStatusBar(t *testing.T) {
	m := newTestModel()
	(&m).resize(100, 30)

	next, _ := m.Update(ViewerAwayMsg{Away: true})
	got := next.(Model)
	if !got.away {
		t.Fatal("away edge should be recorded")
	}
	if !strings.Contains(got.renderStatusBar(), "away") {
		t.Error("status bar should show the away marker")
	}

	next, _ = got.Update(ViewerAwayMsg{Away: false})
	back := next.(Model)
	if strings.Contains(back.renderStatusBar(), "away") {
		t.Error("returning to active should clear the marker")
	}
}

// =============================================================================
// DRAFT RESTORE
// =============================================================================

func TestNew_RestoredDraftSeedsInput(t *testing.T) {
	typing := compose.NewTypingSignal(time.Second, func(bool) {})
	comp := compose.New("conv1", "maria", typing)
	comp.RestoreDraft("unfinished sentence")

	m := New(Deps{
		Store:     store.New("me"),
		Composer:  comp,
		Transport: transport.NewLoopback(0, false),
		Theme:     styles.NewTheme(""),
		ViewerID:  "me",
	})
	if m.input.Value() != "unfinished sentence" {
		t.Errorf("input = %q, want the restored draft", m.input.Value())
	}
}

// =============================================================================
// STATUS BAR
// =============================================================================

func TestStatusBar_ShowsDraftLength(t *testing.T) {
	m := newTestModel()
	(&m).resize(100, 30)
	m.input.SetValue("hola")

	if !strings.Contains(m.renderStatusBar(), "4/4000") {
		t.Error("status bar should count draft runes against the limit")
	}
}

func TestStatusBar_ShowsSessionDuration(t *testing.T) {
	typing := compose.NewTypingSignal(time.Second, func(bool) {})
	m := New(Deps{
		Store:     store.New("me"),
		Composer:  compose.New("conv1", "maria", typing),
		Transport: transport.NewLoopback(0, false),
		Session:   session.NewManager(session.DefaultConfig()),
		Theme:     styles.NewTheme(""),
		ViewerID:  "me",
	})
	(&m).resize(100, 30)

	if !strings.Contains(m.renderStatusBar(), "0s") {
		t.Error("status bar should show the session duration")
	}
}

// =============================================================================
// MEDIA SEND PIPELINE
// =============================================================================

func TestSendCmd_UploadsAttachmentBeforeSend(t *testing.T) {
	m := newTestModel()

	intent := model.SendIntent{
		ConversationID: "conv1",
		Receiver:       "maria",
		Kind:           model.KindVoice,
		Attachment:     &model.Attachment{Kind: model.KindVoice, Path: "/tmp/clip.pcm"},
	}
	msg := m.sendCmd(intent, "tmp_1")()

	res, ok := msg.(SendResultMsg)
	if !ok {
		t.Fatalf("msg = %T, want SendResultMsg", msg)
	}
	if res.Outcome.Err != nil {
		t.Fatalf("send failed: %v", res.Outcome.Err)
	}
	if res.Outcome.MediaRef != "loopback:///tmp/clip.pcm" {
		t.Errorf("MediaRef = %q, want the uploaded handle", res.Outcome.MediaRef)
	}
}

func TestSendCmd_TextNeedsNoUpload(t *testing.T) {
	m := newTestModel()

	msg := m.sendCmd(model.SendIntent{
		ConversationID: "conv1",
		Receiver:       "maria",
		Kind:           model.KindText,
		Body:           "hola",
	}, "tmp_2")()

	res := msg.(SendResultMsg)
	if res.Outcome.Err != nil {
		t.Fatalf("send failed: %v", res.Outcome.Err)
	}
	if res.Outcome.MediaRef != "" {
		t.Errorf("MediaRef = %q, want empty for a text send", res.Outcome.MediaRef)
	}
}
