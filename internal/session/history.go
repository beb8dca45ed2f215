package session

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// maxRecent caps the recent-file list; older entries are pruned on insert.
const maxRecent = 10

const preferredLoaderKey = "preferred_loader"

// LoadEntry is one successful load recorded in the history database.
type LoadEntry struct {
	ID              string
	Path            string
	Loader          string
	Channels        int
	DurationSeconds float64
	SamplingRate    float64
	LoadedAt        time.Time
}

// HistoryStore persists load history and user preferences in sqlite.
type HistoryStore struct {
	db *sql.DB
}

// OpenHistory opens (creating if needed) the history database at path and
// applies any pending schema migrations.
func OpenHistory(path string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history db pragmas: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &HistoryStore{db: db}, nil
}

// migrateUp runs all pending embedded migrations.
func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	// Note: we don't close m because it would close the underlying DB
	// connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (h *HistoryStore) Close() error { return h.db.Close() }

// RecordLoad inserts a load entry, de-duplicating on path (the newer entry
// wins) and pruning the list down to maxRecent.
func (h *HistoryStore) RecordLoad(e LoadEntry) error {
	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM load_history WHERE path = ?`, e.Path); err != nil {
		return fmt.Errorf("dedupe history: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO load_history (id, path, loader, channels, duration_seconds, sampling_rate, loaded_at_unix_nanos)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Path, e.Loader, e.Channels, e.DurationSeconds, e.SamplingRate, e.LoadedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	_, err = tx.Exec(`
		DELETE FROM load_history WHERE id NOT IN (
			SELECT id FROM load_history ORDER BY loaded_at_unix_nanos DESC LIMIT ?
		)`, maxRecent)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return tx.Commit()
}

// Recent returns up to limit entries, most recent first.
func (h *HistoryStore) Recent(limit int) ([]LoadEntry, error) {
	if limit <= 0 || limit > maxRecent {
		limit = maxRecent
	}
	rows, err := h.db.Query(`
		SELECT id, path, loader, channels, duration_seconds, sampling_rate, loaded_at_unix_nanos
		FROM load_history ORDER BY loaded_at_unix_nanos DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []LoadEntry
	for rows.Next() {
		var e LoadEntry
		var nanos int64
		if err := rows.Scan(&e.ID, &e.Path, &e.Loader, &e.Channels, &e.DurationSeconds, &e.SamplingRate, &nanos); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.LoadedAt = time.Unix(0, nanos)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SetPreferredLoader stores the loader variant to default to.
func (h *HistoryStore) SetPreferredLoader(variant string) error {
	_, err := h.db.Exec(`
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		preferredLoaderKey, variant)
	if err != nil {
		return fmt.Errorf("set preferred loader: %w", err)
	}
	return nil
}

// PreferredLoader returns the stored loader variant, or def when unset.
func (h *HistoryStore) PreferredLoader(def string) (string, error) {
	var v string
	err := h.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, preferredLoaderKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return "", fmt.Errorf("get preferred loader: %w", err)
	}
	return v, nil
}
