// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// MongoConfig configures a MongoSource.
type MongoConfig struct {
	URI               string
	Database          string
	MoviesCollection  string
	CreditsCollection string
	MovieIDField      string
	ConnectTimeout    time.Duration
}

// MongoSource reads movies and credits from two MongoDB collections.
// Record-list fields may be stored either as serialized strings (as imported
// from CSV) or as native arrays of documents.
type MongoSource struct {
	cfg    MongoConfig
	client *mongo.Client
}

// NewMongoSource connects to MongoDB and verifies the connection.
// The caller must Close the source.
func NewMongoSource(ctx context.Context, cfg MongoConfig) (*MongoSource, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = "cinematch"
	}
	if cfg.MoviesCollection == "" {
		cfg.MoviesCollection = "movies"
	}
	if cfg.CreditsCollection == "" {
		cfg.CreditsCollection = "credits"
	}
	if cfg.MovieIDField == "" {
		cfg.MovieIDField = "id"
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(serverAPI).
		SetConnectTimeout(cfg.ConnectTimeout)
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx) //nolint:errcheck // connection never became usable
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	logging.Info().
		Str("database", cfg.Database).
		Str("movies", cfg.MoviesCollection).
		Str("credits", cfg.CreditsCollection).
		Msg("connected to MongoDB catalog")

	return &MongoSource{cfg: cfg, client: client}, nil
}

// Name identifies the source.
func (s *MongoSource) Name() string {
	return "mongo"
}

// Close disconnects the client.
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping checks the connection.
func (s *MongoSource) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Fingerprint hashes every document of both collections in _id order.
func (s *MongoSource) Fingerprint(ctx context.Context) (string, error) {
	h := sha256.New()
	for _, coll := range []string{s.cfg.MoviesCollection, s.cfg.CreditsCollection} {
		if err := s.each(ctx, coll, func(doc bson.Raw) error {
			_, err := h.Write(doc)
			return err
		}); err != nil {
			return "", err
		}
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Load reads both collections in _id order.
func (s *MongoSource) Load(ctx context.Context) ([]recommend.RawMovie, []recommend.RawCredit, error) {
	var movies []recommend.RawMovie
	err := s.each(ctx, s.cfg.MoviesCollection, func(doc bson.Raw) error {
		m, err := movieFromDoc(doc, s.cfg.MovieIDField)
		if err != nil {
			return err
		}
		movies = append(movies, m)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var credits []recommend.RawCredit
	err = s.each(ctx, s.cfg.CreditsCollection, func(doc bson.Raw) error {
		c, err := creditFromDoc(doc)
		if err != nil {
			return err
		}
		credits = append(credits, c)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return movies, credits, nil
}

func (s *MongoSource) each(ctx context.Context, collection string, fn func(bson.Raw) error) error {
	coll := s.client.Database(s.cfg.Database).Collection(collection)
	cursor, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}
	defer func() { _ = cursor.Close(ctx) }() //nolint:errcheck // cursor.Err checked below

	for cursor.Next(ctx) {
		if err := fn(cursor.Current); err != nil {
			return fmt.Errorf("%s document: %w", collection, err)
		}
	}
	return cursor.Err()
}

func movieFromDoc(doc bson.Raw, idField string) (recommend.RawMovie, error) {
	id, err := intField(doc, idField)
	if err != nil {
		return recommend.RawMovie{}, err
	}
	m := recommend.RawMovie{ID: id}
	fields := []struct {
		key string
		dst *string
	}{
		{"title", &m.Title},
		{"overview", &m.Overview},
		{"genres", &m.Genres},
		{"keywords", &m.Keywords},
	}
	for _, f := range fields {
		if *f.dst, err = stringField(doc, f.key); err != nil {
			return recommend.RawMovie{}, err
		}
	}
	return m, nil
}

func creditFromDoc(doc bson.Raw) (recommend.RawCredit, error) {
	id, err := intField(doc, "movie_id")
	if err != nil {
		return recommend.RawCredit{}, err
	}
	c := recommend.RawCredit{MovieID: id}
	fields := []struct {
		key string
		dst *string
	}{
		{"title", &c.Title},
		{"cast", &c.Cast},
		{"crew", &c.Crew},
	}
	for _, f := range fields {
		if *f.dst, err = stringField(doc, f.key); err != nil {
			return recommend.RawCredit{}, err
		}
	}
	return c, nil
}

// stringField returns a field as a string. Arrays and documents are
// re-serialized as JSON so they decode like the CSV representation.
// Missing and null fields are empty.
func stringField(doc bson.Raw, key string) (string, error) {
	val, err := doc.LookupErr(key)
	if err != nil {
		return "", nil //nolint:nilerr // absent field is an empty value
	}

	switch val.Type {
	case bson.TypeString:
		return val.StringValue(), nil
	case bson.TypeNull, bson.TypeUndefined:
		return "", nil
	case bson.TypeArray, bson.TypeEmbeddedDocument:
		var decoded interface{}
		if val.Type == bson.TypeArray {
			var arr []map[string]interface{}
			if err := val.Unmarshal(&arr); err != nil {
				return "", fmt.Errorf("field %s: %w", key, err)
			}
			decoded = arr
		} else {
			var m map[string]interface{}
			if err := val.Unmarshal(&m); err != nil {
				return "", fmt.Errorf("field %s: %w", key, err)
			}
			decoded = m
		}
		out, err := json.Marshal(decoded)
		if err != nil {
			return "", fmt.Errorf("field %s: %w", key, err)
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("field %s: unsupported type %s", key, val.Type)
	}
}

// intField returns a numeric or numeric-string field. Missing fields are 0.
func intField(doc bson.Raw, key string) (int64, error) {
	val, err := doc.LookupErr(key)
	if err != nil {
		return 0, nil //nolint:nilerr // absent field is a zero id
	}

	switch val.Type {
	case bson.TypeInt32:
		return int64(val.Int32()), nil
	case bson.TypeInt64:
		return val.Int64(), nil
	case bson.TypeDouble:
		return int64(val.Double()), nil
	case bson.TypeString:
		n, err := strconv.ParseInt(val.StringValue(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("field %s: %w", key, err)
		}
		return n, nil
	case bson.TypeNull:
		return 0, nil
	default:
		return 0, fmt.Errorf("field %s: unsupported type %s", key, val.Type)
	}
}
