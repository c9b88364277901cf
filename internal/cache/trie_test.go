// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package cache

import (
	"reflect"
	"sync"
	"testing"
)

func titleTrie(titles ...string) *Trie[int] {
	t := NewTrie[int](10)
	for i, title := range titles {
		t.Insert(title, i)
	}
	return t
}

func values(results []TrieResult[int]) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Value
	}
	return out
}

func TestTrie_BasicOperations(t *testing.T) {
	t.Parallel()

	trie := NewTrie[int](0)
	if !trie.Insert("Avatar", 0) {
		t.Error("Insert should return true for a new value")
	}
	if trie.Insert("AVATAR", 7) {
		t.Error("Insert should return false for an existing value")
	}
	if trie.Insert("   ", 1) {
		t.Error("blank values should be ignored")
	}
	if trie.Size() != 1 {
		t.Errorf("Size() = %d, want 1", trie.Size())
	}

	data, ok := trie.Search("avatar")
	if !ok || !reflect.DeepEqual(data, []int{0, 7}) {
		t.Errorf("Search(avatar) = %v, %v; want [0 7], true", data, ok)
	}
	if _, ok := trie.Search("avat"); ok {
		t.Error("Search should not match a partial key")
	}
}

func TestTrie_AutocompleteOrder(t *testing.T) {
	t.Parallel()

	trie := titleTrie("The Dark Knight", "The Dark Knight Rises", "Avatar", "The Dark", "the Day After Tomorrow")

	got := values(trie.Autocomplete("the da"))
	want := []string{"The Dark", "The Dark Knight", "The Dark Knight Rises", "the Day After Tomorrow"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Autocomplete(the da) = %v, want %v", got, want)
	}

	got = values(trie.AutocompleteWithLimit("THE DARK", 2))
	want = []string{"The Dark", "The Dark Knight"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AutocompleteWithLimit(THE DARK, 2) = %v, want %v", got, want)
	}

	if res := trie.Autocomplete("zzz"); res != nil {
		t.Errorf("Autocomplete(zzz) = %v, want nil", res)
	}
}

func TestTrie_EmptyPrefixListsEverything(t *testing.T) {
	t.Parallel()

	trie := titleTrie("b", "a", "c")
	got := values(trie.Autocomplete(""))
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Autocomplete(\"\") = %v", got)
	}
	if !trie.HasPrefix("") || !trie.HasPrefix("B") || trie.HasPrefix("d") {
		t.Error("HasPrefix results wrong")
	}
}

func TestTrie_Unicode(t *testing.T) {
	t.Parallel()

	trie := titleTrie("Amélie", "Åsa-Nisse")
	if got := values(trie.Autocomplete("amé")); !reflect.DeepEqual(got, []string{"Amélie"}) {
		t.Errorf("Autocomplete(amé) = %v", got)
	}
	if got := values(trie.Autocomplete("å")); !reflect.DeepEqual(got, []string{"Åsa-Nisse"}) {
		t.Errorf("Autocomplete(å) = %v", got)
	}
}

func TestTrie_Clear(t *testing.T) {
	t.Parallel()

	trie := titleTrie("a", "b")
	trie.Clear()
	if trie.Size() != 0 || trie.HasPrefix("a") {
		t.Error("Clear should remove everything")
	}
}

func TestTrie_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	trie := NewTrie[int](5)
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(2)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				trie.Insert(string(rune('a'+g))+string(rune('a'+i%26)), i)
			}
		}(g)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				trie.Autocomplete("a")
			}
		}()
	}
	wg.Wait()

	if trie.Size() != 4*26 {
		t.Errorf("Size() = %d, want %d", trie.Size(), 4*26)
	}
}
