// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package cache

import (
	"sort"
	"strings"
	"sync"
)

type trieNode[T any] struct {
	children map[rune]*trieNode[T]
	isEnd    bool
	value    string // original spelling of the first insert
	data     []T    // one element per insert
}

func newTrieNode[T any]() *trieNode[T] {
	return &trieNode[T]{children: make(map[rune]*trieNode[T])}
}

// TrieResult is one completion.
type TrieResult[T any] struct {
	// Value is the stored string as first inserted.
	Value string
	// Data holds the payload of every insert of Value, in insert order.
	Data []T
}

// Trie is a thread-safe, case-insensitive prefix tree. Insert and prefix
// lookup are O(m) in the key length. Inserting the same key again appends
// its payload rather than replacing it, so duplicate titles stay addressable.
type Trie[T any] struct {
	mu             sync.RWMutex
	root           *trieNode[T]
	size           int
	maxSuggestions int
}

// NewTrie creates a trie returning at most maxSuggestions completions by
// default (10 when maxSuggestions <= 0).
func NewTrie[T any](maxSuggestions int) *Trie[T] {
	if maxSuggestions <= 0 {
		maxSuggestions = 10
	}
	return &Trie[T]{root: newTrieNode[T](), maxSuggestions: maxSuggestions}
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Insert adds value with its payload. It reports whether value was new.
// Blank values are ignored.
func (t *Trie[T]) Insert(value string, data T) bool {
	key := normalizeKey(value)
	if key == "" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	node := t.root
	for _, ch := range key {
		child := node.children[ch]
		if child == nil {
			child = newTrieNode[T]()
			node.children[ch] = child
		}
		node = child
	}

	isNew := !node.isEnd
	if isNew {
		node.isEnd = true
		node.value = value
		t.size++
	}
	node.data = append(node.data, data)
	return isNew
}

// Search returns the payloads stored for an exact (case-insensitive) value.
func (t *Trie[T]) Search(value string) ([]T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	node := t.find(normalizeKey(value))
	if node == nil || !node.isEnd {
		return nil, false
	}
	return append([]T(nil), node.data...), true
}

// HasPrefix reports whether any stored value starts with prefix.
func (t *Trie[T]) HasPrefix(prefix string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if normalizeKey(prefix) == "" {
		return t.size > 0
	}
	return t.find(normalizeKey(prefix)) != nil
}

// Autocomplete returns values starting with prefix, alphabetically by
// lowercased key, using the default limit.
func (t *Trie[T]) Autocomplete(prefix string) []TrieResult[T] {
	return t.AutocompleteWithLimit(prefix, t.maxSuggestions)
}

// AutocompleteWithLimit returns at most limit values starting with prefix.
// limit <= 0 selects the default limit.
func (t *Trie[T]) AutocompleteWithLimit(prefix string, limit int) []TrieResult[T] {
	if limit <= 0 {
		limit = t.maxSuggestions
	}
	key := normalizeKey(prefix)

	t.mu.RLock()
	defer t.mu.RUnlock()

	node := t.find(key)
	if node == nil {
		return nil
	}

	// Depth-first in sorted rune order yields results already in key
	// order, so the walk can stop at limit.
	var results []TrieResult[T]
	t.collect(node, limit, &results)
	return results
}

func (t *Trie[T]) find(key string) *trieNode[T] {
	node := t.root
	for _, ch := range key {
		node = node.children[ch]
		if node == nil {
			return nil
		}
	}
	return node
}

func (t *Trie[T]) collect(node *trieNode[T], limit int, results *[]TrieResult[T]) {
	if len(*results) >= limit {
		return
	}
	if node.isEnd {
		*results = append(*results, TrieResult[T]{
			Value: node.value,
			Data:  append([]T(nil), node.data...),
		})
	}

	keys := make([]rune, 0, len(node.children))
	for r := range node.children {
		keys = append(keys, r)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, r := range keys {
		if len(*results) >= limit {
			return
		}
		t.collect(node.children[r], limit, results)
	}
}

// Size returns the number of distinct stored values.
func (t *Trie[T]) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}

// Clear removes every value.
func (t *Trie[T]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.root = newTrieNode[T]()
	t.size = 0
}
