package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository handles data access
type Repository struct {
	db *DB
}

// NewRepository creates a new Repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Get returns the blob stored under key. ok is false when the key is absent.
func (r *Repository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, true, nil
}

// Put overwrites the blob stored under key and bumps its revision.
func (r *Repository) Put(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO kv (key, value, revision, updated_at) VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, revision = kv.revision + 1, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// GetWithRevision returns the blob under key with its revision. Revision 0
// means the key is absent.
func (r *Repository) GetWithRevision(ctx context.Context, key string) ([]byte, int64, error) {
	var (
		value []byte
		rev   int64
	)
	err := r.db.QueryRowContext(ctx, `SELECT value, revision FROM kv WHERE key = ?`, key).Scan(&value, &rev)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, rev, nil
}

// Revision returns the current revision of key, 0 when absent.
func (r *Repository) Revision(ctx context.Context, key string) (int64, error) {
	var rev int64
	err := r.db.QueryRowContext(ctx, `SELECT revision FROM kv WHERE key = ?`, key).Scan(&rev)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read revision of %s: %w", key, err)
	}
	return rev, nil
}

// CompareAndPut writes value only if key is still at revision rev (0 for
// absent). It returns the new revision, or ok=false when another writer got
// there first.
func (r *Repository) CompareAndPut(ctx context.Context, key string, value []byte, rev int64) (int64, bool, error) {
	now := time.Now().UTC()
	var (
		res sql.Result
		err error
	)
	if rev == 0 {
		res, err = r.db.ExecContext(ctx,
			`INSERT INTO kv (key, value, revision, updated_at) VALUES (?, ?, 1, ?) ON CONFLICT(key) DO NOTHING`,
			key, value, now)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE kv SET value = ?, revision = revision + 1, updated_at = ? WHERE key = ? AND revision = ?`,
			value, now, key, rev)
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to write key %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("failed to write key %s: %w", key, err)
	}
	if n == 0 {
		return 0, false, nil
	}
	return rev + 1, true, nil
}

// Delete removes key. Missing keys are not an error.
func (r *Repository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// RolloverLog represents a row in the rollovers table
type RolloverLog struct {
	ID        int64
	Week      int
	Score     int
	Completed int
	Total     int
	CreatedAt time.Time
}

// LogRollover records a finished week.
func (r *Repository) LogRollover(ctx context.Context, week, score, completed, total int) error {
	query := `INSERT INTO rollovers (week, score, completed, total, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, week, score, completed, total, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to log rollover: %w", err)
	}
	return nil
}

// GetLatestRollover returns the most recent rollover log, or nil if none.
func (r *Repository) GetLatestRollover(ctx context.Context) (*RolloverLog, error) {
	query := `SELECT id, week, score, completed, total, created_at FROM rollovers ORDER BY id DESC LIMIT 1`
	row := r.db.QueryRowContext(ctx, query)

	var log RolloverLog
	err := row.Scan(&log.ID, &log.Week, &log.Score, &log.Completed, &log.Total, &log.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest rollover: %w", err)
	}
	return &log, nil
}

// ListRollovers returns up to limit rollover logs, newest first.
func (r *Repository) ListRollovers(ctx context.Context, limit int) ([]RolloverLog, error) {
	if limit <= 0 {
		limit = 52
	}
	query := `SELECT id, week, score, completed, total, created_at FROM rollovers ORDER BY id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rollovers: %w", err)
	}
	defer rows.Close()

	var logs []RolloverLog
	for rows.Next() {
		var log RolloverLog
		if err := rows.Scan(&log.ID, &log.Week, &log.Score, &log.Completed, &log.Total, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rollover: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// BackupRecord represents a row in the backups table
type BackupRecord struct {
	ID        int64
	Target    string
	Location  string
	CreatedAt time.Time
}

// LogBackup records where a backup was written (local, git, drive).
func (r *Repository) LogBackup(ctx context.Context, target, location string) error {
	query := `INSERT INTO backups (target, location, created_at) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, target, location, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to log backup: %w", err)
	}
	return nil
}

// GetLatestBackup returns the most recent backup for target, or nil if none.
func (r *Repository) GetLatestBackup(ctx context.Context, target string) (*BackupRecord, error) {
	query := `SELECT id, target, location, created_at FROM backups WHERE target = ? ORDER BY id DESC LIMIT 1`
	var rec BackupRecord
	err := r.db.QueryRowContext(ctx, query, target).Scan(&rec.ID, &rec.Target, &rec.Location, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest backup: %w", err)
	}
	return &rec, nil
}
