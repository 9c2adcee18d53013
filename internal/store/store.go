// Package store keeps a privacy-conscious log of carousel interactions in
// SQLite. Visitors are only ever stored as salted hashes.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Action names a navigation a visitor performed.
type Action string

const (
	ActionNext   Action = "next"
	ActionPrev   Action = "prev"
	ActionSelect Action = "select"
	ActionMount  Action = "mount"
)

// Interaction is one recorded navigation.
type Interaction struct {
	ID          int64     `json:"id"`
	VisitorHash string    `json:"visitor_hash"`
	Deck        string    `json:"deck"`
	Action      Action    `json:"action"`
	Index       int       `json:"index"`
	At          time.Time `json:"at"`
}

// Stats summarises the interaction log for the admin dashboard.
type Stats struct {
	TotalInteractions int64            `json:"total_interactions"`
	UniqueVisitors    int64            `json:"unique_visitors"`
	InteractionsToday int64            `json:"interactions_today"`
	InteractionsWeek  int64            `json:"interactions_this_week"`
	ByDeck            map[string]int64 `json:"by_deck"`
	ByAction          map[string]int64 `json:"by_action"`
	Recent            []Interaction    `json:"recent"`
}

// recentLimit caps Stats.Recent.
const recentLimit = 50

// Store is the SQLite-backed interaction log.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
// It is safe to call on an existing database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends an interaction. A zero At is stamped with the current
// time.
func (s *Store) Record(ctx context.Context, in Interaction) error {
	if in.At.IsZero() {
		in.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO interactions (visitor_hash, deck, action, item_index, at_ms)
		VALUES (?, ?, ?, ?, ?)
	`, in.VisitorHash, in.Deck, string(in.Action), in.Index, in.At.UnixMilli())
	if err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}
	return nil
}

// Stats computes dashboard statistics relative to now. "Today" starts at
// midnight UTC.
func (s *Store) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	stats := &Stats{
		ByDeck:   make(map[string]int64),
		ByAction: make(map[string]int64),
	}

	utc := now.UTC()
	midnight := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	counts := []struct {
		query string
		args  []any
		dst   *int64
	}{
		{"SELECT COUNT(*) FROM interactions", nil, &stats.TotalInteractions},
		{"SELECT COUNT(DISTINCT visitor_hash) FROM interactions", nil, &stats.UniqueVisitors},
		{"SELECT COUNT(*) FROM interactions WHERE at_ms >= ?", []any{midnight.UnixMilli()}, &stats.InteractionsToday},
		{"SELECT COUNT(*) FROM interactions WHERE at_ms >= ?", []any{weekAgo.UnixMilli()}, &stats.InteractionsWeek},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
	}

	if err := s.groupCounts(ctx, "deck", stats.ByDeck); err != nil {
		return nil, err
	}
	if err := s.groupCounts(ctx, "action", stats.ByAction); err != nil {
		return nil, err
	}

	recent, err := s.Recent(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	stats.Recent = recent
	return stats, nil
}

// groupCounts fills dst with COUNT(*) grouped by column. column is always a
// package constant.
func (s *Store) groupCounts(ctx context.Context, column string, dst map[string]int64) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+column+", COUNT(*) FROM interactions GROUP BY "+column)
	if err != nil {
		return fmt.Errorf("stats by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("stats by %s: %w", column, err)
		}
		dst[key] = n
	}
	return rows.Err()
}

// Recent returns up to limit interactions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Interaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, visitor_hash, deck, action, item_index, at_ms
		FROM interactions
		ORDER BY at_ms DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent interactions: %w", err)
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		var in Interaction
		var action string
		var atMS int64
		if err := rows.Scan(&in.ID, &in.VisitorHash, &in.Deck, &action, &in.Index, &atMS); err != nil {
			return nil, fmt.Errorf("recent interactions: %w", err)
		}
		in.Action = Action(action)
		in.At = time.UnixMilli(atMS).UTC()
		out = append(out, in)
	}
	return out, rows.Err()
}

// Cleanup deletes interactions recorded before cutoff and returns how many
// were removed.
func (s *Store) Cleanup(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM interactions WHERE at_ms < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("cleanup interactions: %w", err)
	}
	return res.RowsAffected()
}

// HashVisitor returns a salted, truncated SHA-256 of a visitor address.
// The same address and salt always hash to the same value.
func HashVisitor(salt, addr string) string {
	sum := sha256.Sum256([]byte(addr + salt))
	return hex.EncodeToString(sum[:])[:16]
}
