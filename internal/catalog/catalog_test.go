// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/cinematch/internal/recommend"
)

const moviesCSV = `budget,genres,id,keywords,overview,title
237000000,"[{""id"": 28, ""name"": ""Action""}, {""id"": 878, ""name"": ""Science Fiction""}]",19995,"[{""id"": 1463, ""name"": ""culture clash""}]","In the 22nd century, a paraplegic Marine is dispatched to the moon Pandora.",Avatar
300000000,"[{""id"": 12, ""name"": ""Adventure""}]",285,"[{""id"": 270, ""name"": ""ocean""}]",,Pirates of the Caribbean: At World's End
1000,"[]",1,"[]",Nobody credited this one.,Orphan
`

const creditsCSV = `movie_id,title,cast,crew
19995,Avatar,"[{""cast_id"": 242, ""name"": ""Sam Worthington""}, {""cast_id"": 3, ""name"": ""Zoe Saldana""}]","[{""job"": ""Director"", ""name"": ""James Cameron""}]"
285,Pirates of the Caribbean: At World's End,"[{""cast_id"": 4, ""name"": ""Johnny Depp""}]","[{""job"": ""Director"", ""name"": ""Gore Verbinski""}]"
`

func writeCSVs(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	movies := filepath.Join(dir, "tmdb_5000_movies.csv")
	credits := filepath.Join(dir, "tmdb_5000_credits.csv")
	if err := os.WriteFile(movies, []byte(moviesCSV), 0o600); err != nil {
		t.Fatalf("write movies: %v", err)
	}
	if err := os.WriteFile(credits, []byte(creditsCSV), 0o600); err != nil {
		t.Fatalf("write credits: %v", err)
	}
	return movies, credits
}

func TestNewCSVSource_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     CSVConfig
		wantErr bool
	}{
		{"missing paths", CSVConfig{}, true},
		{"bad id column", CSVConfig{MoviesPath: "m", CreditsPath: "c", MovieIDColumn: "id; DROP"}, true},
		{"defaults", CSVConfig{MoviesPath: "m", CreditsPath: "c"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCSVSource(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewCSVSource() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCSVSource_Load(t *testing.T) {
	moviesPath, creditsPath := writeCSVs(t)
	src, err := NewCSVSource(CSVConfig{MoviesPath: moviesPath, CreditsPath: creditsPath})
	if err != nil {
		t.Fatalf("NewCSVSource() error = %v", err)
	}

	movies, credits, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(movies) != 3 || len(credits) != 2 {
		t.Fatalf("got %d movies %d credits, want 3 and 2", len(movies), len(credits))
	}
	if movies[0].ID != 19995 || movies[0].Title != "Avatar" {
		t.Errorf("movies[0] = %+v, want Avatar 19995", movies[0])
	}
	if movies[1].Overview != "" {
		t.Errorf("missing overview = %q, want empty", movies[1].Overview)
	}

	catalog, err := recommend.LoadCatalog(movies, credits, recommend.MergeDrop)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if catalog.Len() != 2 || catalog.Stats.DroppedMovies != 1 {
		t.Errorf("catalog len %d dropped %d, want 2 and 1", catalog.Len(), catalog.Stats.DroppedMovies)
	}
	if got := catalog.Items[0].Director; len(got) != 1 || got[0] != "James Cameron" {
		t.Errorf("Director = %v, want [James Cameron]", got)
	}
}

func TestCSVSource_FingerprintTracksContent(t *testing.T) {
	moviesPath, creditsPath := writeCSVs(t)
	src, err := NewCSVSource(CSVConfig{MoviesPath: moviesPath, CreditsPath: creditsPath})
	if err != nil {
		t.Fatalf("NewCSVSource() error = %v", err)
	}
	ctx := context.Background()

	first, err := src.Fingerprint(ctx)
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	again, _ := src.Fingerprint(ctx)
	if first != again {
		t.Error("fingerprint changed without a file change")
	}

	if err := os.WriteFile(creditsPath, []byte(creditsCSV+"1,Orphan,[],[]\n"), 0o600); err != nil {
		t.Fatalf("rewrite credits: %v", err)
	}
	future := time.Now().Add(time.Minute)
	_ = os.Chtimes(creditsPath, future, future)

	changed, err := src.Fingerprint(ctx)
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	if changed == first {
		t.Error("fingerprint unchanged after credits file changed")
	}
}

func TestCSVSource_MissingFile(t *testing.T) {
	src, err := NewCSVSource(CSVConfig{MoviesPath: "/nonexistent/m.csv", CreditsPath: "/nonexistent/c.csv"})
	if err != nil {
		t.Fatalf("NewCSVSource() error = %v", err)
	}
	if _, err := src.Fingerprint(context.Background()); err == nil {
		t.Error("Fingerprint() error = nil, want stat error")
	}
}

func TestMemorySource(t *testing.T) {
	movies := []recommend.RawMovie{{ID: 1, Title: "Alien", Genres: `[]`, Keywords: `[]`}}
	credits := []recommend.RawCredit{{MovieID: 1, Title: "Alien", Cast: `[]`, Crew: `[]`}}
	src, err := NewMemorySource(movies, credits)
	if err != nil {
		t.Fatalf("NewMemorySource() error = %v", err)
	}
	ctx := context.Background()

	fp1, _ := src.Fingerprint(ctx)
	movies[0].Title = "mutated after construction"
	gotMovies, _, _ := src.Load(ctx)
	if gotMovies[0].Title != "Alien" {
		t.Error("source shares caller's slice")
	}

	if err := src.Set(append(gotMovies, recommend.RawMovie{ID: 2, Title: "Aliens"}), credits); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	fp2, _ := src.Fingerprint(ctx)
	if fp1 == fp2 {
		t.Error("fingerprint unchanged after Set")
	}
}

func TestMemorySource_DrivesEngine(t *testing.T) {
	movies := []recommend.RawMovie{
		{ID: 1, Title: "A", Overview: "space adventure action", Genres: `[]`, Keywords: `[]`},
		{ID: 2, Title: "B", Overview: "space opera action", Genres: `[]`, Keywords: `[]`},
		{ID: 3, Title: "C", Overview: "romantic comedy", Genres: `[]`, Keywords: `[]`},
	}
	credits := []recommend.RawCredit{
		{MovieID: 1, Title: "A", Cast: `[]`, Crew: `[]`},
		{MovieID: 2, Title: "B", Cast: `[]`, Crew: `[]`},
		{MovieID: 3, Title: "C", Cast: `[]`, Crew: `[]`},
	}
	src, err := NewMemorySource(movies, credits)
	if err != nil {
		t.Fatalf("NewMemorySource() error = %v", err)
	}

	engine, err := recommend.NewEngine(nil, src, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	ctx := context.Background()
	if _, err := engine.Ensure(ctx); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	recs, err := engine.Recommend(ctx, "A", 2)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 2 || recs[0].Title != "B" || recs[1].Title != "C" {
		t.Errorf("Recommend(A) = %+v, want [B C]", recs)
	}
}

func TestMongoDocConversion(t *testing.T) {
	movieDoc, err := bson.Marshal(bson.D{
		{Key: "id", Value: int32(19995)},
		{Key: "title", Value: "Avatar"},
		{Key: "overview", Value: nil},
		{Key: "genres", Value: bson.A{bson.D{{Key: "id", Value: 28}, {Key: "name", Value: "Action"}}}},
		{Key: "keywords", Value: `[{"id": 1463, "name": "culture clash"}]`},
	})
	if err != nil {
		t.Fatalf("bson.Marshal() error = %v", err)
	}

	m, err := movieFromDoc(movieDoc, "id")
	if err != nil {
		t.Fatalf("movieFromDoc() error = %v", err)
	}
	if m.ID != 19995 || m.Title != "Avatar" || m.Overview != "" {
		t.Errorf("movie = %+v", m)
	}
	genres, err := recommend.ParseRecords(m.Genres)
	if err != nil {
		t.Fatalf("ParseRecords(genres) error = %v", err)
	}
	if len(genres) != 1 || genres[0].Name != "Action" {
		t.Errorf("genres = %+v, want [Action]", genres)
	}
	keywords, err := recommend.ParseRecords(m.Keywords)
	if err != nil || len(keywords) != 1 {
		t.Errorf("keywords = %+v, %v", keywords, err)
	}

	creditDoc, err := bson.Marshal(bson.D{
		{Key: "movie_id", Value: "19995"},
		{Key: "title", Value: "Avatar"},
		{Key: "cast", Value: bson.A{}},
		{Key: "crew", Value: bson.A{bson.D{{Key: "job", Value: "Director"}, {Key: "name", Value: "James Cameron"}}}},
	})
	if err != nil {
		t.Fatalf("bson.Marshal() error = %v", err)
	}
	c, err := creditFromDoc(creditDoc)
	if err != nil {
		t.Fatalf("creditFromDoc() error = %v", err)
	}
	if c.MovieID != 19995 {
		t.Errorf("MovieID = %d, want 19995", c.MovieID)
	}
	crew, err := recommend.ParseRecords(c.Crew)
	if err != nil || len(recommend.Director(crew)) != 1 {
		t.Errorf("crew = %+v, %v", crew, err)
	}
}

func TestMongoDocConversion_BadTypes(t *testing.T) {
	doc, err := bson.Marshal(bson.D{{Key: "id", Value: true}})
	if err != nil {
		t.Fatalf("bson.Marshal() error = %v", err)
	}
	if _, err := movieFromDoc(doc, "id"); err == nil {
		t.Error("movieFromDoc() error = nil, want unsupported type")
	}
}
