package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vulnwatch/cyberrag/internal/domain"
	"github.com/vulnwatch/cyberrag/internal/shared"
	_ "modernc.org/sqlite"
)

const lastRefreshKey = "last_refresh"

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed CVE cache.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS cves (
		cve_id TEXT PRIMARY KEY,
		severity TEXT NOT NULL,
		score TEXT NOT NULL,
		status TEXT NOT NULL,
		published TEXT NOT NULL,
		last_modified TEXT NOT NULL,
		year TEXT NOT NULL,
		description TEXT NOT NULL,
		fetched_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cves_fetched ON cves(fetched_at);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetCVE returns a cached record no older than maxAge, or nil on a miss.
func (s *SQLiteStore) GetCVE(ctx context.Context, id string, maxAge time.Duration) (*domain.CVERecord, error) {
	query := `
		SELECT cve_id, severity, score, status, published, last_modified, year, description
		FROM cves WHERE cve_id = ? AND fetched_at >= ?`

	cutoff := time.Now().Add(-maxAge).Unix()
	row := s.db.QueryRowContext(ctx, query, id, cutoff)

	var rec domain.CVERecord
	var severity, score string
	err := row.Scan(
		&rec.CVEID, &severity, &score, &rec.Status,
		&rec.Published, &rec.LastModified, &rec.Year, &rec.Description,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan cve row: %w", err)
	}

	rec.Severity = domain.Severity(severity)
	rec.Score = domain.Score(score)
	return &rec, nil
}

// UpsertCVEs inserts or replaces a batch of records in one transaction,
// retrying once on SQLite lock contention.
func (s *SQLiteStore) UpsertCVEs(ctx context.Context, records []domain.CVERecord) error {
	if len(records) == 0 {
		return nil
	}

	err := s.upsertCVEs(ctx, records)
	if shared.IsSQLiteConflictError(err) {
		time.Sleep(100 * time.Millisecond)
		err = s.upsertCVEs(ctx, records)
	}
	return err
}

func (s *SQLiteStore) upsertCVEs(ctx context.Context, records []domain.CVERecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cves (cve_id, severity, score, status, published, last_modified, year, description, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cve_id) DO UPDATE SET
			severity = excluded.severity,
			score = excluded.score,
			status = excluded.status,
			published = excluded.published,
			last_modified = excluded.last_modified,
			year = excluded.year,
			description = excluded.description,
			fetched_at = excluded.fetched_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().Unix()
	for _, rec := range records {
		if rec.CVEID == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx,
			rec.CVEID, string(rec.Severity), string(rec.Score), rec.Status,
			rec.Published, rec.LastModified, rec.Year, rec.Description, now,
		); err != nil {
			return fmt.Errorf("upsert cve %s: %w", rec.CVEID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert transaction: %w", err)
	}
	return nil
}

// PruneOlderThan removes entries fetched more than age ago.
func (s *SQLiteStore) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age).Unix()
	res, err := s.db.ExecContext(ctx, `DELETE FROM cves WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune cve cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune cve cache rows affected: %w", err)
	}
	return n, nil
}

// LastRefresh returns when the refresh job last completed.
func (s *SQLiteStore) LastRefresh(ctx context.Context) (time.Time, error) {
	var value string
	row := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, lastRefreshKey)
	err := row.Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("scan last refresh: %w", err)
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last refresh %q: %w", value, err)
	}
	return t, nil
}

// SetLastRefresh records a refresh completion time.
func (s *SQLiteStore) SetLastRefresh(ctx context.Context, t time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		lastRefreshKey, t.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("set last refresh: %w", err)
	}
	return nil
}
