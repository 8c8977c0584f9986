// Package db persists the most recent snapshot so a freshly started
// dashboard has data before its first refresh completes. Only the
// latest snapshot is kept; trend history is out of scope.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/quotadeck/quotadeck/internal/models"
)

// Cache wraps the SQLite connection holding the last snapshot.
type Cache struct {
	*sql.DB
	path string
}

// Open creates the cache database and its schema.
func Open(path string) (*Cache, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to cache database: %w", err)
	}

	c := &Cache{DB: sqlDB, path: path}

	if err := c.configure(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to configure cache database: %w", err)
	}
	if err := c.createSchema(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return c, nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.path
}

func (c *Cache) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := c.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}
	return nil
}

func (c *Cache) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshot_meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		fetched_at TEXT NOT NULL,
		latency_ms INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS snapshot_models (
		position INTEGER PRIMARY KEY,
		model TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS snapshot_accounts (
		position INTEGER PRIMARY KEY,
		email TEXT NOT NULL,
		status TEXT NOT NULL,
		last_used TEXT,
		error TEXT
	);
	CREATE TABLE IF NOT EXISTS snapshot_quotas (
		account_position INTEGER NOT NULL,
		position INTEGER NOT NULL,
		model TEXT NOT NULL,
		fraction REAL,
		reset_time TEXT,
		PRIMARY KEY (account_position, position)
	);`
	if _, err := c.Exec(schema); err != nil {
		return err
	}
	return nil
}

// ReplaceSnapshot swaps the cached snapshot in a single transaction, so
// the cache is as all-or-nothing as the in-memory snapshot it mirrors.
func (c *Cache) ReplaceSnapshot(snap *models.Snapshot) error {
	tx, err := c.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"snapshot_meta", "snapshot_models", "snapshot_accounts", "snapshot_quotas"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO snapshot_meta (id, fetched_at, latency_ms) VALUES (1, ?, ?)",
		snap.FetchedAt.UTC().Format(time.RFC3339Nano), snap.Latency.Milliseconds(),
	); err != nil {
		return fmt.Errorf("failed to insert meta: %w", err)
	}

	for i, model := range snap.Models {
		if _, err := tx.Exec(
			"INSERT INTO snapshot_models (position, model) VALUES (?, ?)", i, model,
		); err != nil {
			return fmt.Errorf("failed to insert model: %w", err)
		}
	}

	for i, acc := range snap.Accounts {
		if _, err := tx.Exec(
			"INSERT INTO snapshot_accounts (position, email, status, last_used, error) VALUES (?, ?, ?, ?, ?)",
			i, acc.Email, string(acc.Status), nullableTime(acc.LastUsed), nullableString(acc.Err),
		); err != nil {
			return fmt.Errorf("failed to insert account: %w", err)
		}
		for j, q := range acc.Quotas {
			var fraction any
			if q.Fraction != nil {
				fraction = *q.Fraction
			}
			if _, err := tx.Exec(
				"INSERT INTO snapshot_quotas (account_position, position, model, fraction, reset_time) VALUES (?, ?, ?, ?, ?)",
				i, j, q.Model, fraction, nullableTime(q.ResetTime),
			); err != nil {
				return fmt.Errorf("failed to insert quota: %w", err)
			}
		}
	}

	return tx.Commit()
}

// LoadSnapshot reads the cached snapshot back, or returns (nil, nil)
// when no snapshot has been stored yet.
func (c *Cache) LoadSnapshot() (*models.Snapshot, error) {
	var fetchedAt string
	var latencyMs int64
	err := c.QueryRow("SELECT fetched_at, latency_ms FROM snapshot_meta WHERE id = 1").
		Scan(&fetchedAt, &latencyMs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read meta: %w", err)
	}

	snap := &models.Snapshot{Latency: time.Duration(latencyMs) * time.Millisecond}
	if t, err := time.Parse(time.RFC3339Nano, fetchedAt); err == nil {
		snap.FetchedAt = t
	}

	if snap.Models, err = c.loadModels(); err != nil {
		return nil, err
	}
	if snap.Accounts, err = c.loadAccounts(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (c *Cache) loadModels() ([]string, error) {
	rows, err := c.Query("SELECT model FROM snapshot_models ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to read models: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (c *Cache) loadAccounts() ([]models.Account, error) {
	rows, err := c.Query(
		"SELECT position, email, status, last_used, error FROM snapshot_accounts ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accs []models.Account
	var positions []int
	for rows.Next() {
		var pos int
		var email, status string
		var lastUsed, errMsg sql.NullString
		if err := rows.Scan(&pos, &email, &status, &lastUsed, &errMsg); err != nil {
			return nil, err
		}
		acc := models.Account{
			Email:  email,
			Status: models.ParseStatus(status),
			Err:    errMsg.String,
		}
		if lastUsed.Valid {
			if t, err := time.Parse(time.RFC3339Nano, lastUsed.String); err == nil {
				acc.LastUsed = t
			}
		}
		accs = append(accs, acc)
		positions = append(positions, pos)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, pos := range positions {
		quotas, err := c.loadQuotas(pos)
		if err != nil {
			return nil, err
		}
		accs[i].Quotas = quotas
	}
	return accs, nil
}

func (c *Cache) loadQuotas(accountPos int) ([]models.ModelQuota, error) {
	rows, err := c.Query(
		"SELECT model, fraction, reset_time FROM snapshot_quotas WHERE account_position = ? ORDER BY position",
		accountPos)
	if err != nil {
		return nil, fmt.Errorf("failed to read quotas: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var quotas []models.ModelQuota
	for rows.Next() {
		var model string
		var fraction sql.NullFloat64
		var resetTime sql.NullString
		if err := rows.Scan(&model, &fraction, &resetTime); err != nil {
			return nil, err
		}
		q := models.ModelQuota{Model: model}
		if fraction.Valid {
			q.Fraction = models.Fraction(fraction.Float64)
		}
		if resetTime.Valid {
			if t, err := time.Parse(time.RFC3339Nano, resetTime.String); err == nil {
				q.ResetTime = t
			}
		}
		quotas = append(quotas, q)
	}
	return quotas, rows.Err()
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
