// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package emoji provides the emoji category table and recency cache.
package emoji

import (
	"encoding/json"
	"sync"
)

// MaxRecents bounds the recency list.
const MaxRecents = 20

// recentsKey is the key the index uses in the injected KV capability.
const recentsKey = "emoji.recents"

// =============================================================================
// CATEGORIES (STATIC)
// =============================================================================

// Category is a named group in the picker. The table is static data, not
// user-editable.
type Category struct {
	Name   string
	Emojis []string
}

// Categories is the fixed picker table.
var Categories = []Category{
	{Name: "Smileys", Emojis: []string{
		"😀", "😃", "😄", "😁", "😆", "😅", "😂", "🙂", "😉", "😊",
		"😍", "🥰", "😘", "😜", "🤔", "😐", "😴", "🥳", "😭", "😡",
	}},
	{Name: "Gestures", Emojis: []string{
		"👍", "👎", "👌", "✌️", "🤞", "👏", "🙌", "🙏", "💪", "🤝",
	}},
	{Name: "Hearts", Emojis: []string{
		"❤️", "🧡", "💛", "💚", "💙", "💜", "🖤", "🤍", "💔", "💕",
	}},
	{Name: "Objects", Emojis: []string{
		"🎉", "🎁", "🔥", "⭐", "☀️", "🌙", "☕", "🍕", "⚽", "🎵",
	}},
	{Name: "Travel", Emojis: []string{
		"✈️", "🚗", "🚂", "🗺️", "🏖️", "🗽", "🗼", "🏔️", "🌍", "🧳",
	}},
}

// =============================================================================
// KV CAPABILITY
// =============================================================================

// KV is the injected persistence capability. The index stores only one
// small JSON value under a fixed key; everything else lives in memory.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// =============================================================================
// INDEX
// =============================================================================

// Index couples the static table with a bounded most-recent-first list.
type Index struct {
	mu      sync.Mutex
	kv      KV
	recents []string
}

// NewIndex creates an index backed by kv. A nil kv keeps recents purely in
// memory. Load failures are treated as an empty list; a corrupt cache is
// not worth an error path.
func NewIndex(kv KV) *Index {
	idx := &Index{kv: kv}
	if kv != nil {
		if data, err := kv.Get(recentsKey); err == nil && len(data) > 0 {
			var recents []string
			if json.Unmarshal(data, &recents) == nil {
				if len(recents) > MaxRecents {
					recents = recents[:MaxRecents]
				}
				idx.recents = recents
			}
		}
	}
	return idx
}

// Recents returns the recency list, most recent first.
func (i *Index) Recents() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]string, len(i.recents))
	copy(out, i.recents)
	return out
}

// Touch records a use of the emoji: moved to front if already present
// (never duplicated), appended at front otherwise, trimmed to MaxRecents,
// then persisted through the capability.
func (i *Index) Touch(emoji string) {
	if emoji == "" {
		return
	}
	i.mu.Lock()

	next := make([]string, 0, len(i.recents)+1)
	next = append(next, emoji)
	for _, e := range i.recents {
		if e != emoji {
			next = append(next, e)
		}
	}
	if len(next) > MaxRecents {
		next = next[:MaxRecents]
	}
	i.recents = next

	var data []byte
	if i.kv != nil {
		data, _ = json.Marshal(i.recents)
	}
	kv := i.kv
	i.mu.Unlock()

	if kv != nil && data != nil {
		kv.Set(recentsKey, data)
	}
}
