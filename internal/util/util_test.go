// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the palaver client.
package util

import (
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// STRING HELPER TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{"shorter than max", "hola", 10, "hola"},
		{"exactly max", "hola", 4, "hola"},
		{"truncated", "hello world", 8, "hello..."},
		{"tiny max skips ellipsis", "hello", 2, "he"},
		{"zero max", "hello", 0, ""},
		{"multibyte runes", "こんにちは世界です!", 8, "こんにちは..."},
		{"emoji", "🎉🎉🎉🎉🎉", 5, "🎉🎉🎉🎉🎉"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateRunes(tc.s, tc.max); got != tc.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.s, tc.max, got, tc.want)
			}
		})
	}
}

func TestTruncateRunesNoEllipsis(t *testing.T) {
	if got := TruncateRunesNoEllipsis("héllo", 3); got != "hél" {
		t.Errorf("got %q, want %q", got, "hél")
	}
	if got := TruncateRunesNoEllipsis("hi", 10); got != "hi" {
		t.Errorf("got %q", got)
	}
}

func TestRuneLen(t *testing.T) {
	tests := []struct {
		s    string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"こんにちは", 5},
		{"🎉🎉", 2},
	}

	for _, tc := range tests {
		if got := RuneLen(tc.s); got != tc.want {
			t.Errorf("RuneLen(%q) = %d, want %d", tc.s, got, tc.want)
		}
	}
}

func TestCollapseNewlines(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want string
	}{
		{"no newlines", "hello", "hello"},
		{"single newline", "a\nb", "a b"},
		{"run of newlines", "a\n\n\nb", "a b"},
		{"crlf", "a\r\nb", "a b"},
		{"newline after space", "a \nb", "a b"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CollapseNewlines(tc.s); got != tc.want {
				t.Errorf("CollapseNewlines(%q) = %q, want %q", tc.s, got, tc.want)
			}
		})
	}
}

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	if err := AtomicWriteFile(path, []byte("first"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "first" {
		t.Errorf("content = %q", got)
	}

	// Overwrite replaces completely.
	if err := AtomicWriteFile(path, []byte("second"), 0644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = os.ReadFile(path)
	if string(got) != "second" {
		t.Errorf("content = %q", got)
	}
}

func TestAtomicWriteFile_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.txt")
	if err := AtomicWriteFile(path, []byte("x"), 0600); err != nil {
		t.Fatalf("AtomicWriteFile: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("perm = %v, want 0600", info.Mode().Perm())
	}
}

func TestAtomicWriteFile_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	if err := AtomicWriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want just the target", len(entries))
	}
}
