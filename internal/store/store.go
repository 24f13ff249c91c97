// Package store persists a journal of posted replies so the bot stays
// idempotent across restarts while the platform's comment listing is the
// authoritative record.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS replies (
		id TEXT PRIMARY KEY,
		submission_id TEXT NOT NULL UNIQUE,
		submission_url TEXT NOT NULL,
		detected_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		message TEXT NOT NULL,
		posted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_replies_posted ON replies(posted_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Reply is one posted-reply journal row.
type Reply struct {
	ID           string
	SubmissionID string
	URL          string
	DetectedLang string
	TargetLang   string
	Message      string
	PostedAt     time.Time
}

// RecordReply journals a posted reply. A second record for the same
// submission is ignored.
func (s *Store) RecordReply(ctx context.Context, submissionID, submissionURL, detected, target, message string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO replies (id, submission_id, submission_url, detected_lang, target_lang, message, posted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), submissionID, submissionURL, detected, target, message, time.Now())
	return err
}

// HasReplied reports whether a reply for submissionID has been journaled.
func (s *Store) HasReplied(ctx context.Context, submissionID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM replies WHERE submission_id = ?`, submissionID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListReplies returns the journal, most recent first.
func (s *Store) ListReplies(ctx context.Context) ([]Reply, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, submission_id, submission_url, detected_lang, target_lang, message, posted_at
		 FROM replies ORDER BY posted_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var replies []Reply
	for rows.Next() {
		var r Reply
		if err := rows.Scan(&r.ID, &r.SubmissionID, &r.URL, &r.DetectedLang, &r.TargetLang, &r.Message, &r.PostedAt); err != nil {
			return nil, err
		}
		replies = append(replies, r)
	}
	return replies, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
