package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"catalog-proxy-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteCallLogRepository implements CallLogRepository using SQLite.
// Thread-safe with WAL mode for high-concurrency reads.
type SQLiteCallLogRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteCallLogRepository creates a new SQLite call-log repository.
// dbPath is the path to the SQLite database file (e.g., "./data/calllog.db")
func NewSQLiteCallLogRepository(dbPath string) (*SQLiteCallLogRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	// Open with WAL mode and other optimizations
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite connection pool settings
	db.SetMaxOpenConns(1) // SQLite only supports 1 writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0) // Keep connection alive

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteCallLogRepository] Initialized with database: %s", dbPath)
	return &SQLiteCallLogRepository{db: db}, nil
}

// createTables creates the call-log table.
func createTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS upstream_calls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		method TEXT NOT NULL,
		url TEXT NOT NULL,
		status INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_upstream_calls_created_at ON upstream_calls(created_at);
	`
	_, err := db.Exec(query)
	return err
}

// Insert records one outbound upstream call.
func (r *SQLiteCallLogRepository) Insert(ctx context.Context, entry *model.CallLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO upstream_calls (method, url, status, duration_ms, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		entry.Method, entry.URL, entry.Status, entry.DurationMs, entry.Error, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert call log: %w", err)
	}
	return nil
}

// List returns call-log entries newest first, with the total row count.
func (r *SQLiteCallLogRepository) List(ctx context.Context, limit, offset int) ([]model.CallLog, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, method, url, status, duration_ms, COALESCE(error, ''), created_at
		FROM upstream_calls
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list call logs: %w", err)
	}
	defer rows.Close()

	entries := []model.CallLog{}
	for rows.Next() {
		var e model.CallLog
		if err := rows.Scan(&e.ID, &e.Method, &e.URL, &e.Status, &e.DurationMs, &e.Error, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan call log: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM upstream_calls").Scan(&total); err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// DeleteOlderThan removes entries created before now-threshold.
func (r *SQLiteCallLogRepository) DeleteOlderThan(ctx context.Context, threshold time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().UTC().Add(-threshold)

	result, err := r.db.ExecContext(ctx, `DELETE FROM upstream_calls WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old call logs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		log.Printf("[SQLite] Pruned %d call-log records (retention: %v)", deleted, threshold)
	}

	return deleted, nil
}

// Stats returns statistics about the call-log database.
func (r *SQLiteCallLogRepository) Stats(ctx context.Context) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]interface{})

	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM upstream_calls").Scan(&count); err != nil {
		return nil, err
	}
	stats["total_calls"] = count

	var failed int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM upstream_calls WHERE status >= 400 OR error != ''").Scan(&failed); err == nil {
		stats["failed_calls"] = failed
	}

	var lastCall sql.NullTime
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(created_at) FROM upstream_calls").Scan(&lastCall); err == nil && lastCall.Valid {
		stats["last_call"] = lastCall.Time
	}

	return stats, nil
}

// Close closes the database connection.
func (r *SQLiteCallLogRepository) Close() error {
	return r.db.Close()
}

// Ensure SQLiteCallLogRepository implements CallLogRepository
var _ CallLogRepository = (*SQLiteCallLogRepository)(nil)
