// Package storage keeps a SQLite manifest of archived submissions.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("not found")

// ArchivedSubmission records one submission written to the archive tree.
type ArchivedSubmission struct {
	ID          int64
	ContestID   string
	ProblemID   string
	Language    string
	EpochSecond int64
	Path        string
	ArchivedAt  time.Time
}

// LanguageCount holds the number of archived submissions per language family.
type LanguageCount struct {
	Language string
	Count    int
}

// DB wraps the SQLite database connection and provides manifest operations.
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection and initializes the schema.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY,
		contest_id TEXT NOT NULL,
		problem_id TEXT NOT NULL,
		language TEXT NOT NULL,
		epoch_second INTEGER NOT NULL,
		path TEXT NOT NULL,
		archived_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_contest ON submissions(contest_id, problem_id);
	CREATE INDEX IF NOT EXISTS idx_submissions_language ON submissions(language);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// SaveSubmission inserts or updates a manifest entry.
func (db *DB) SaveSubmission(ctx context.Context, sub *ArchivedSubmission) error {
	query := `
	INSERT INTO submissions (id, contest_id, problem_id, language, epoch_second, path, archived_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		contest_id = excluded.contest_id,
		problem_id = excluded.problem_id,
		language = excluded.language,
		epoch_second = excluded.epoch_second,
		path = excluded.path,
		archived_at = excluded.archived_at
	`

	_, err := db.conn.ExecContext(ctx, query,
		sub.ID,
		sub.ContestID,
		sub.ProblemID,
		sub.Language,
		sub.EpochSecond,
		sub.Path,
		sub.ArchivedAt,
	)
	return err
}

// GetSubmission retrieves a manifest entry by submission ID.
func (db *DB) GetSubmission(ctx context.Context, id int64) (*ArchivedSubmission, error) {
	query := `
	SELECT id, contest_id, problem_id, language, epoch_second, path, archived_at
	FROM submissions WHERE id = ?
	`

	sub := &ArchivedSubmission{}
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&sub.ID,
		&sub.ContestID,
		&sub.ProblemID,
		&sub.Language,
		&sub.EpochSecond,
		&sub.Path,
		&sub.ArchivedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// CountSubmissions returns the total number of archived submissions.
func (db *DB) CountSubmissions(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM submissions`
	var count int
	err := db.conn.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}

// CountByLanguage returns archived submission counts per language family,
// most frequent first.
func (db *DB) CountByLanguage(ctx context.Context) ([]LanguageCount, error) {
	query := `
	SELECT language, COUNT(*) AS n FROM submissions
	GROUP BY language ORDER BY n DESC, language ASC
	`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []LanguageCount
	for rows.Next() {
		var lc LanguageCount
		if err := rows.Scan(&lc.Language, &lc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, lc)
	}
	return counts, rows.Err()
}

// ListContestSubmissions returns manifest entries for one contest,
// ordered by problem then language.
func (db *DB) ListContestSubmissions(ctx context.Context, contestID string) ([]ArchivedSubmission, error) {
	query := `
	SELECT id, contest_id, problem_id, language, epoch_second, path, archived_at
	FROM submissions WHERE contest_id = ?
	ORDER BY problem_id, language
	`
	rows, err := db.conn.QueryContext(ctx, query, contestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []ArchivedSubmission
	for rows.Next() {
		var sub ArchivedSubmission
		if err := rows.Scan(
			&sub.ID,
			&sub.ContestID,
			&sub.ProblemID,
			&sub.Language,
			&sub.EpochSecond,
			&sub.Path,
			&sub.ArchivedAt,
		); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
