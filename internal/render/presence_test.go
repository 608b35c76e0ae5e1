// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render derives display models from domain records.
package render

import (
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/jeranaias/palaver-tui/internal/model"
)

// =============================================================================
// RELATIVE TIME TESTS
// =============================================================================

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero time", time.Time{}, ""},
		{"seconds ago", now.Add(-30 * time.Second), "just now"},
		{"minutes ago", now.Add(-5 * time.Minute), "5m"},
		{"hours ago", now.Add(-3 * time.Hour), "3h"},
		{"days ago", now.Add(-2 * 24 * time.Hour), "2d"},
		{"weeks ago", now.Add(-10 * 24 * time.Hour), "Jun 5"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := RelativeTime(tc.t, now); got != tc.want {
				t.Errorf("RelativeTime = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLastSeen(t *testing.T) {
	now := time.Now()

	online := model.Peer{Online: true, LastActive: now.Add(-time.Hour)}
	if got := LastSeen(online, now); got != "online" {
		t.Errorf("LastSeen(online) = %q", got)
	}

	offline := model.Peer{LastActive: now.Add(-10 * time.Minute)}
	if got := LastSeen(offline, now); got != "last seen 10m ago" {
		t.Errorf("LastSeen(offline) = %q", got)
	}

	unknown := model.Peer{}
	if got := LastSeen(unknown, now); got != "offline" {
		t.Errorf("LastSeen(unknown) = %q", got)
	}
}

// =============================================================================
// DURATION FORMAT TESTS
// =============================================================================

func TestClipDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{7 * time.Second, "0:07"},
		{59 * time.Second, "0:59"},
		{60 * time.Second, "1:00"},
		{83 * time.Second, "1:23"},
		{10 * time.Minute, "10:00"},
		{-time.Second, "0:00"},
	}

	for _, tc := range tests {
		if got := ClipDuration(tc.d); got != tc.want {
			t.Errorf("ClipDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

// =============================================================================
// LANGUAGE PAIR TESTS
// =============================================================================

func TestLanguagePair(t *testing.T) {
	tests := []struct {
		name string
		peer model.Peer
		want string
	}{
		{
			"both tags",
			model.Peer{Native: language.Spanish, Learning: language.German},
			"speaks Spanish · learning German",
		},
		{
			"native only",
			model.Peer{Native: language.French},
			"speaks French",
		},
		{
			"learning only",
			model.Peer{Learning: language.Japanese},
			"learning Japanese",
		},
		{
			"no profile",
			model.Peer{},
			"",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := LanguagePair(tc.peer); got != tc.want {
				t.Errorf("LanguagePair = %q, want %q", got, tc.want)
			}
		})
	}
}
