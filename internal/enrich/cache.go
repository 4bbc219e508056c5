package enrich

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the cache schema changes. A mismatch
// surfaces as ErrSchemaMismatch rather than an in-place migration.
const schemaVersion = 1

// ErrSchemaMismatch indicates the cache database was created by a
// different schema version.
var ErrSchemaMismatch = errors.New("cache schema version mismatch")

// Record is a cached artist profile with its fetch timestamp. A record
// without a SpotifyID is a remembered miss, kept so unmatched names are
// not re-queried every night.
type Record struct {
	ArtistName string
	Profile    ArtistProfile
	FetchedAt  time.Time
}

// Found reports whether the record carries a real Spotify profile.
func (r Record) Found() bool {
	return r.Profile.SpotifyID != ""
}

// Cache stores artist profiles in SQLite with a freshness TTL.
type Cache struct {
	db   *sql.DB
	path string
	ttl  time.Duration
	now  func() time.Time
}

// OpenCache initializes or connects to the enrichment cache database.
func OpenCache(path string, ttlDays int) (*Cache, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("cache path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if ttlDays <= 0 {
		ttlDays = 30
	}
	cache := &Cache{
		db:   db,
		path: path,
		ttl:  time.Duration(ttlDays) * 24 * time.Hour,
		now:  time.Now,
	}
	if err := cache.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Cache) initSchema(ctx context.Context) error {
	var tableExists int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return c.createSchema(ctx)
	}

	var version int
	err = c.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, c.path)
	}
	return nil
}

func (c *Cache) createSchema(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Get returns the cached record for an artist if one exists and is
// still within the TTL.
func (c *Cache) Get(ctx context.Context, artistName string) (Record, bool, error) {
	artistName = strings.TrimSpace(artistName)
	if artistName == "" {
		return Record{}, false, errors.New("artist name must not be empty")
	}

	row := c.db.QueryRowContext(ctx, `
		SELECT artist_name, spotify_id, spotify_name, popularity, followers,
		       genres, match_confidence, match_score, fetched_at
		FROM artist_profiles WHERE artist_name = ?`, artistName)

	var (
		record     Record
		genresJSON string
		fetchedAt  string
	)
	err := row.Scan(
		&record.ArtistName,
		&record.Profile.SpotifyID,
		&record.Profile.SpotifyName,
		&record.Profile.Popularity,
		&record.Profile.Followers,
		&genresJSON,
		&record.Profile.MatchConfidence,
		&record.Profile.MatchScore,
		&fetchedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("read cache entry: %w", err)
	}

	record.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return Record{}, false, fmt.Errorf("parse fetched_at %q: %w", fetchedAt, err)
	}
	if genresJSON != "" {
		if err := json.Unmarshal([]byte(genresJSON), &record.Profile.Genres); err != nil {
			return Record{}, false, fmt.Errorf("parse genres: %w", err)
		}
	}

	if c.now().Sub(record.FetchedAt) >= c.ttl {
		return Record{}, false, nil
	}
	return record, true, nil
}

// Put stores a record, replacing any existing entry for the artist.
func (c *Cache) Put(ctx context.Context, record Record) error {
	record.ArtistName = strings.TrimSpace(record.ArtistName)
	if record.ArtistName == "" {
		return errors.New("artist name must not be empty")
	}
	if record.FetchedAt.IsZero() {
		record.FetchedAt = c.now()
	}

	genres := record.Profile.Genres
	if genres == nil {
		genres = []string{}
	}
	genresJSON, err := json.Marshal(genres)
	if err != nil {
		return fmt.Errorf("encode genres: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO artist_profiles
			(artist_name, spotify_id, spotify_name, popularity, followers,
			 genres, match_confidence, match_score, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(artist_name) DO UPDATE SET
			spotify_id = excluded.spotify_id,
			spotify_name = excluded.spotify_name,
			popularity = excluded.popularity,
			followers = excluded.followers,
			genres = excluded.genres,
			match_confidence = excluded.match_confidence,
			match_score = excluded.match_score,
			fetched_at = excluded.fetched_at`,
		record.ArtistName,
		record.Profile.SpotifyID,
		record.Profile.SpotifyName,
		record.Profile.Popularity,
		record.Profile.Followers,
		string(genresJSON),
		record.Profile.MatchConfidence,
		record.Profile.MatchScore,
		record.FetchedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// All returns every cached record regardless of freshness, ordered by
// artist name. Reports use this for inventory summaries.
func (c *Cache) All(ctx context.Context) ([]Record, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT artist_name, spotify_id, spotify_name, popularity, followers,
		       genres, match_confidence, match_score, fetched_at
		FROM artist_profiles ORDER BY artist_name`)
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			record     Record
			genresJSON string
			fetchedAt  string
		)
		if err := rows.Scan(
			&record.ArtistName,
			&record.Profile.SpotifyID,
			&record.Profile.SpotifyName,
			&record.Profile.Popularity,
			&record.Profile.Followers,
			&genresJSON,
			&record.Profile.MatchConfidence,
			&record.Profile.MatchScore,
			&fetchedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		record.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt)
		if err != nil {
			return nil, fmt.Errorf("parse fetched_at %q: %w", fetchedAt, err)
		}
		if genresJSON != "" {
			if err := json.Unmarshal([]byte(genresJSON), &record.Profile.Genres); err != nil {
				return nil, fmt.Errorf("parse genres: %w", err)
			}
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
