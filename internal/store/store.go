// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package store keeps a SQLite log of decoded sentences.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	logging "github.com/ipfs/go-log/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Thermoquad/sextant/internal/export"
	"github.com/Thermoquad/sextant/pkg/nmea"
)

var log = logging.Logger("sextant-store")

// Store appends flattened records to a SQLite database. Each row carries the
// CBOR encoded record plus indexed columns for position queries.
type Store struct {
	db   *sql.DB
	path string
}

// Entry is a stored record with its row metadata.
type Entry struct {
	ID         int64
	RecordedAt time.Time
	Record     export.Record
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	log.Infof("fix log opened at %s", path)
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sentences (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		talker TEXT NOT NULL,
		received_at INTEGER,
		recorded_at TIMESTAMP NOT NULL,
		lat REAL,
		lon REAL,
		record BLOB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sentences_kind ON sentences(kind);
	CREATE INDEX IF NOT EXISTS idx_sentences_recorded_at ON sentences(recorded_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Append stores m. Nil messages are ignored.
func (s *Store) Append(m nmea.Message) error {
	r, ok := export.FromMessage(m)
	if !ok {
		return nil
	}
	return s.AppendRecord(r, time.Now())
}

// AppendRecord stores r with the given recording time.
func (s *Store) AppendRecord(r export.Record, recordedAt time.Time) error {
	blob, err := export.Encode(export.CBOR, r)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO sentences (kind, talker, received_at, recorded_at, lat, lon, record)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		r.Kind,
		r.Talker,
		nullableUint(r.ReceivedAt),
		recordedAt.UTC(),
		nullableFloat(r.Latitude),
		nullableFloat(r.Longitude),
		blob,
	)
	if err != nil {
		return fmt.Errorf("append %s: %w", r.Kind, err)
	}
	return nil
}

// Recent returns up to limit records, newest first. An empty kind matches
// every kind.
func (s *Store) Recent(kind string, limit int) ([]Entry, error) {
	query := `SELECT id, recorded_at, record FROM sentences`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	return s.query(query, args...)
}

// Track returns up to limit records that carry a position, oldest first.
func (s *Store) Track(since time.Time, limit int) ([]Entry, error) {
	return s.query(`
		SELECT id, recorded_at, record FROM sentences
		WHERE lat IS NOT NULL AND lon IS NOT NULL AND recorded_at >= ?
		ORDER BY id ASC LIMIT ?
	`, since.UTC(), limit)
}

// CountByKind returns the number of stored rows per sentence kind.
func (s *Store) CountByKind() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT kind, COUNT(*) FROM sentences GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

// Prune deletes rows recorded before cutoff and returns how many were removed.
func (s *Store) Prune(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM sentences WHERE recorded_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err == nil && n > 0 {
		log.Infof("pruned %d sentences recorded before %s", n, cutoff.Format(time.RFC3339))
	}
	return n, err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) query(query string, args ...any) ([]Entry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var blob []byte
		if err := rows.Scan(&e.ID, &e.RecordedAt, &blob); err != nil {
			return nil, err
		}
		r, err := export.Decode(export.CBOR, blob)
		if err != nil {
			log.Warnf("skipping row %d: %v", e.ID, err)
			continue
		}
		e.Record = r
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullableUint(v *uint64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullableFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
