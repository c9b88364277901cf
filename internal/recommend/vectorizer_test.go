// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and splits on punctuation",
			text: "Sam Worthington's 3D Space-Opera!",
			want: []string{"sam", "worthington", "3d", "space", "opera"},
		},
		{
			name: "drops stop words",
			text: "The hero of the story and his ship",
			want: []string{"hero", "story", "ship"},
		},
		{
			name: "drops single-rune tokens",
			text: "a b c dd",
			want: []string{"dd"},
		},
		{
			name: "only stop words",
			text: "the and of in",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text, DefaultMinTokenLength)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStopWords(t *testing.T) {
	words := StopWords()
	if len(words) != 318 {
		t.Errorf("len(StopWords()) = %d, want 318", len(words))
	}
	for _, w := range []string{"the", "and", "yourselves", "amoungst"} {
		if !IsStopWord(w) {
			t.Errorf("IsStopWord(%q) = false, want true", w)
		}
	}
	if IsStopWord("space") {
		t.Error("IsStopWord(space) = true, want false")
	}
}

func TestVectorizer_FitTransform(t *testing.T) {
	docs := []string{"space adventure space", "opera space", "romantic comedy"}
	vocab, features, distinct := NewVectorizer(0, 0).FitTransform(docs)

	wantTerms := []string{"adventure", "comedy", "opera", "romantic", "space"}
	if got := vocab.Terms(); !reflect.DeepEqual(got, wantTerms) {
		t.Errorf("Terms() = %v, want %v", got, wantTerms)
	}
	if distinct != 5 {
		t.Errorf("distinct = %d, want 5", distinct)
	}

	space, _ := vocab.Column("space")
	adventure, _ := vocab.Column("adventure")
	row0 := features.Dense(0)
	if row0[space] != 2 || row0[adventure] != 1 {
		t.Errorf("row 0 = %v, want space=2 adventure=1", row0)
	}
	if features.Rows() != 3 || features.Cols() != 5 {
		t.Errorf("shape = %dx%d, want 3x5", features.Rows(), features.Cols())
	}
}

func TestVectorizer_CutoffTieBreak(t *testing.T) {
	// bb has frequency 2; aa, cc and dd tie at 1 and aa appears first.
	docs := []string{"aa bb", "bb cc", "dd"}
	vocab, features, _ := NewVectorizer(2, 0).FitTransform(docs)

	want := []string{"aa", "bb"}
	if got := vocab.Terms(); !reflect.DeepEqual(got, want) {
		t.Errorf("Terms() = %v, want %v", got, want)
	}
	if len(features.Row(2)) != 0 {
		t.Errorf("row 2 = %v, want empty (dd cut)", features.Row(2))
	}
}

func TestVectorizer_Deterministic(t *testing.T) {
	docs := []string{
		"alien planet war marine",
		"ocean ship iceberg love",
		"alien ship war fleet",
		"love story ocean war",
	}
	v := NewVectorizer(3, 0)
	vocab1, feat1, _ := v.FitTransform(docs)
	for run := 0; run < 10; run++ {
		vocab2, feat2, _ := v.FitTransform(docs)
		if !reflect.DeepEqual(vocab1.Terms(), vocab2.Terms()) {
			t.Fatalf("run %d: vocabulary %v != %v", run, vocab2.Terms(), vocab1.Terms())
		}
		if !reflect.DeepEqual(feat1, feat2) {
			t.Fatalf("run %d: feature matrices differ", run)
		}
	}
}

func TestVectorizer_Transform(t *testing.T) {
	vocab := NewVocabulary([]string{"alien", "war"})
	features := NewVectorizer(0, 0).Transform(vocab, []string{"war war alien unknown"})

	want := []TermCount{{Column: 0, Count: 1}, {Column: 1, Count: 2}}
	if got := features.Row(0); !reflect.DeepEqual(got, want) {
		t.Errorf("Row(0) = %v, want %v", got, want)
	}
}
