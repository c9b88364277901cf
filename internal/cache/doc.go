// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package cache provides the in-memory data structures behind the API's
response and poster caches and its title completion.

# LRUCache

LRUCache is a generic, thread-safe LRU cache with TTL expiration. The API
layer caches rendered recommendation responses in one, keyed by the index
fingerprint plus the query, and the TMDB client caches poster lookups in
another.

	c := cache.NewLRUCache[[]byte](1000, 10*time.Minute)
	c.Add("fp:avatar:5", body)
	if body, ok := c.Get("fp:avatar:5"); ok {
	    // serve cached body
	}

	// Drop everything when the index is rebuilt.
	c.Purge()

# Trie

Trie is a case-insensitive prefix tree with a payload per insert. It backs
GET /api/v1/movies/suggest, where each catalog title maps to its row.
Duplicate titles keep every row in insert order.

	t := cache.NewTrie[int](10)
	for i, item := range idx.Items() {
	    t.Insert(item.Title, i)
	}
	for _, r := range t.Autocomplete("the dark") {
	    fmt.Println(r.Value, r.Data)
	}

# Thread Safety

Both types are safe for concurrent use.
*/
package cache
