// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the palaver client.
package util

// UNICODE: all truncation here is rune-aware. Message bodies are arbitrary
// UTF-8 (the whole point of a language-exchange app), so byte slicing would
// corrupt multi-byte characters.

// TruncateRunes truncates a string to a maximum number of runes,
// appending "..." when anything was cut.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// TruncateRunesNoEllipsis truncates a string to a maximum number of runes
// without appending an ellipsis.
func TruncateRunesNoEllipsis(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

// RuneLen returns the number of runes in a string. Safer than len() for
// anything user-typed.
func RuneLen(s string) int {
	return len([]rune(s))
}

// CollapseNewlines replaces runs of line breaks with single spaces so
// multi-line bodies fit on one preview line.
func CollapseNewlines(s string) string {
	out := make([]rune, 0, len(s))
	lastSpace := false
	for _, r := range s {
		if r == '\n' || r == '\r' {
			if !lastSpace {
				out = append(out, ' ')
				lastSpace = true
			}
			continue
		}
		out = append(out, r)
		lastSpace = r == ' '
	}
	return string(out)
}
