// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"sort"
	"strings"
	"unicode"
)

// DefaultMaxFeatures caps the vocabulary size.
const DefaultMaxFeatures = 5000

// DefaultMinTokenLength is the shortest token kept, in runes.
const DefaultMinTokenLength = 2

// Tokenize lowercases text and splits it into maximal runs of letters and digits.
// Tokens shorter than minLen runes and English stop words are dropped.
func Tokenize(text string, minLen int) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := words[:0]
	for _, w := range words {
		if len([]rune(w)) < minLen || IsStopWord(w) {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// Vocabulary maps selected terms to dense column indices.
// Columns are assigned in lexicographic term order. Immutable once built.
type Vocabulary struct {
	terms []string
	index map[string]int
}

// NewVocabulary builds a vocabulary from terms already in column order.
func NewVocabulary(terms []string) *Vocabulary {
	index := make(map[string]int, len(terms))
	for i, t := range terms {
		index[t] = i
	}
	return &Vocabulary{terms: terms, index: index}
}

// Len returns the number of columns.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// Column returns the column for term.
func (v *Vocabulary) Column(term string) (int, bool) {
	col, ok := v.index[term]
	return col, ok
}

// Terms returns a copy of the terms in column order.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// TermCount is one non-zero cell of a feature row.
type TermCount struct {
	Column int
	Count  int
}

// FeatureMatrix holds one term-count row per document.
// Rows are stored sparsely with ascending columns.
type FeatureMatrix struct {
	rows [][]TermCount
	cols int
}

// Rows returns the number of documents.
func (m *FeatureMatrix) Rows() int {
	return len(m.rows)
}

// Cols returns the vocabulary size.
func (m *FeatureMatrix) Cols() int {
	return m.cols
}

// Row returns the sparse cells of row i.
func (m *FeatureMatrix) Row(i int) []TermCount {
	return m.rows[i]
}

// Dense expands row i into a full count vector.
func (m *FeatureMatrix) Dense(i int) []float64 {
	out := make([]float64, m.cols)
	for _, tc := range m.rows[i] {
		out[tc.Column] = float64(tc.Count)
	}
	return out
}

// Vectorizer turns tag documents into raw term-count vectors.
type Vectorizer struct {
	maxFeatures int
	minTokenLen int
}

// NewVectorizer creates a vectorizer. Non-positive arguments fall back to defaults.
func NewVectorizer(maxFeatures, minTokenLen int) *Vectorizer {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	if minTokenLen <= 0 {
		minTokenLen = DefaultMinTokenLength
	}
	return &Vectorizer{maxFeatures: maxFeatures, minTokenLen: minTokenLen}
}

// termStat tracks corpus frequency and first appearance of a term.
type termStat struct {
	term      string
	count     int
	firstSeen int
}

// FitTransform selects the vocabulary from the corpus and vectorizes every document.
// It also returns the number of distinct terms seen before the cap was applied.
//
// Terms are ranked by total corpus frequency; ties are broken by the order in
// which terms first appear in the corpus, so the cutoff is deterministic.
func (v *Vectorizer) FitTransform(docs []string) (*Vocabulary, *FeatureMatrix, int) {
	tokenized := make([][]string, len(docs))
	stats := make(map[string]*termStat)
	order := 0
	for i, doc := range docs {
		tokens := Tokenize(doc, v.minTokenLen)
		tokenized[i] = tokens
		for _, tok := range tokens {
			st, ok := stats[tok]
			if !ok {
				st = &termStat{term: tok, firstSeen: order}
				order++
				stats[tok] = st
			}
			st.count++
		}
	}

	ranked := make([]*termStat, 0, len(stats))
	for _, st := range stats {
		ranked = append(ranked, st)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].firstSeen < ranked[j].firstSeen
	})
	if len(ranked) > v.maxFeatures {
		ranked = ranked[:v.maxFeatures]
	}

	terms := make([]string, len(ranked))
	for i, st := range ranked {
		terms[i] = st.term
	}
	sort.Strings(terms)
	vocab := NewVocabulary(terms)

	return vocab, v.transform(vocab, tokenized), len(stats)
}

// Transform vectorizes documents against an existing vocabulary.
// Terms outside the vocabulary are ignored.
func (v *Vectorizer) Transform(vocab *Vocabulary, docs []string) *FeatureMatrix {
	tokenized := make([][]string, len(docs))
	for i, doc := range docs {
		tokenized[i] = Tokenize(doc, v.minTokenLen)
	}
	return v.transform(vocab, tokenized)
}

func (v *Vectorizer) transform(vocab *Vocabulary, tokenized [][]string) *FeatureMatrix {
	rows := make([][]TermCount, len(tokenized))
	for i, tokens := range tokenized {
		counts := make(map[int]int)
		for _, tok := range tokens {
			if col, ok := vocab.Column(tok); ok {
				counts[col]++
			}
		}
		row := make([]TermCount, 0, len(counts))
		for col, n := range counts {
			row = append(row, TermCount{Column: col, Count: n})
		}
		sort.Slice(row, func(a, b int) bool { return row[a].Column < row[b].Column })
		rows[i] = row
	}
	return &FeatureMatrix{rows: rows, cols: vocab.Len()}
}
