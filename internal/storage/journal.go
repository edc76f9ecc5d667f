package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"appdna/internal/logging"
)

// ChangeEntry is one recorded model mutation.
type ChangeEntry struct {
	ID         int64     `json:"id" yaml:"id"`
	OccurredAt time.Time `json:"occurredAt" yaml:"occurredAt"`
	Actor      string    `json:"actor" yaml:"actor"`
	Action     string    `json:"action" yaml:"action"`
	Entity     string    `json:"entity" yaml:"entity"`
	Name       string    `json:"name" yaml:"name"`
	Namespace  string    `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Detail     string    `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Journal is an append-only SQLite log of model mutations. Writes are
// best-effort: a failed Record never blocks the mutation that triggered it.
type Journal struct {
	conn   *sql.DB
	logger *logging.Logger
	path   string
}

// OpenJournal opens or creates the mutation journal at path.
// The parent directory is created if missing.
func OpenJournal(path string, logger *logging.Logger) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	dbExists := fileExists(path)

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	// Set pragmas for performance and reliability
	pragmas := []string{
		"PRAGMA journal_mode=WAL",   // Write-Ahead Logging for better concurrency
		"PRAGMA synchronous=NORMAL", // Balance between safety and performance
		"PRAGMA busy_timeout=5000",  // Wait up to 5 seconds on lock
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	j := &Journal{
		conn:   conn,
		logger: logger,
		path:   path,
	}

	if !dbExists {
		logger.Info("Creating new journal database", map[string]interface{}{
			"path": path,
		})
		if err := j.initializeSchema(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
		}
	} else {
		if err := j.runMigrations(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to run journal migrations: %w", err)
		}
	}

	return j, nil
}

// Close closes the journal database connection
func (j *Journal) Close() error {
	if j.conn != nil {
		return j.conn.Close()
	}
	return nil
}

// Record appends one entry. A zero OccurredAt is stamped with the current
// time. Failures are logged and returned; callers may ignore them.
func (j *Journal) Record(entry ChangeEntry) error {
	occurredAt := entry.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	_, err := j.conn.Exec(`
		INSERT INTO model_changes (occurred_at, actor, action, entity, name, namespace, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, occurredAt.Format(time.RFC3339Nano), entry.Actor, entry.Action, entry.Entity, entry.Name, entry.Namespace, entry.Detail)
	if err != nil {
		j.logger.Warn("Journal write failed", map[string]interface{}{
			"action": entry.Action,
			"entity": entry.Entity,
			"error":  err.Error(),
		})
		return err
	}
	return nil
}

// Recent returns the newest entries, most recent first. limit <= 0 means 50.
func (j *Journal) Recent(limit int) ([]ChangeEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := j.conn.Query(`
		SELECT id, occurred_at, actor, action, entity, name, namespace, detail
		FROM model_changes
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []ChangeEntry
	for rows.Next() {
		var entry ChangeEntry
		var occurredAt string
		if err := rows.Scan(&entry.ID, &occurredAt, &entry.Actor, &entry.Action,
			&entry.Entity, &entry.Name, &entry.Namespace, &entry.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		entry.OccurredAt, _ = time.Parse(time.RFC3339Nano, occurredAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than the cutoff and returns the count removed.
func (j *Journal) Prune(olderThan time.Time) (int64, error) {
	result, err := j.conn.Exec(`
		DELETE FROM model_changes WHERE occurred_at < ?
	`, olderThan.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("failed to prune journal: %w", err)
	}
	return result.RowsAffected()
}

// withTx executes a function within a transaction
// If the function returns an error, the transaction is rolled back
// Otherwise, the transaction is committed
func (j *Journal) withTx(fn func(*sql.Tx) error) error {
	tx, err := j.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-throw panic after rollback
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			j.logger.Error("failed to rollback transaction", map[string]interface{}{
				"error":          err.Error(),
				"rollback_error": rbErr.Error(),
			})
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
