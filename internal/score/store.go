package score

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"photoid/internal/quiz"
)

// SessionResult is one finished session as persisted in the history table.
type SessionResult struct {
	ID         string
	FinishedAt time.Time
	Correct    int
	Total      int
}

// Accuracy returns the session's overall fraction of correct answers.
func (r SessionResult) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// Store persists the score ledger and per-session history in SQLite.
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the default score database path.
func DefaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "photoid", "scores.sqlite")
}

const schema = `
	CREATE TABLE IF NOT EXISTS scores (
		individual TEXT PRIMARY KEY,
		correct INTEGER NOT NULL,
		total INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		finishedAt REAL NOT NULL,
		correct INTEGER NOT NULL,
		total INTEGER NOT NULL
	);
`

// Open opens (creating if needed) the score database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadLedger seeds a ledger from the scores table. An empty database yields
// an empty ledger, never an error.
func (s *Store) LoadLedger() (*Ledger, error) {
	rows, err := s.db.Query(`SELECT individual, correct, total FROM scores`)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	l := NewLedger()
	for rows.Next() {
		var id string
		var rec Record
		if err := rows.Scan(&id, &rec.Correct, &rec.Total); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		l.Set(id, rec)
	}
	return l, rows.Err()
}

// SaveLedger rewrites the scores table from the ledger in one transaction.
// Saving twice without intervening merges produces identical contents.
func (s *Store) SaveLedger(l *Ledger) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM scores`); err != nil {
		return fmt.Errorf("clear scores: %w", err)
	}
	for _, id := range l.IDs() {
		rec, _ := l.Get(id)
		if _, err := tx.Exec(
			`INSERT INTO scores (individual, correct, total) VALUES (?, ?, ?)`,
			id, rec.Correct, rec.Total,
		); err != nil {
			return fmt.Errorf("insert score %q: %w", id, err)
		}
	}
	return tx.Commit()
}

// RecordSession merges one finished session's tally into the scores table
// and appends a history row, atomically: a failure leaves prior state
// untouched.
func (s *Store) RecordSession(sessionID string, tally quiz.Tally, finishedAt time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin record: %w", err)
	}
	defer tx.Rollback()

	for id, rec := range tally.PerID {
		if _, err := tx.Exec(`
			INSERT INTO scores (individual, correct, total) VALUES (?, ?, ?)
			ON CONFLICT(individual) DO UPDATE SET
				correct = correct + excluded.correct,
				total = total + excluded.total
		`, id, rec.Correct, rec.Total); err != nil {
			return fmt.Errorf("merge score %q: %w", id, err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO sessions (id, finishedAt, correct, total) VALUES (?, ?, ?, ?)`,
		sessionID, unixFloat(finishedAt), tally.Correct, tally.Answered,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return tx.Commit()
}

// History returns all recorded sessions ordered by finish time. This is the
// data behind the accuracy-over-time figure.
func (s *Store) History() ([]SessionResult, error) {
	rows, err := s.db.Query(`
		SELECT id, finishedAt, correct, total
		FROM sessions
		ORDER BY finishedAt ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var results []SessionResult
	for rows.Next() {
		var r SessionResult
		var finishedAt float64
		if err := rows.Scan(&r.ID, &finishedAt, &r.Correct, &r.Total); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		r.FinishedAt = timeFromUnix(finishedAt)
		results = append(results, r)
	}
	return results, rows.Err()
}

func unixFloat(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
