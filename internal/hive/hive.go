// Package hive implements a registry.Store on top of SQLite so registry
// trees can be compiled, inspected and removed on hosts without a native
// Windows registry.
package hive

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver with database/sql

	"github.com/go-ports/contextmenu/internal/registry"
)

// ErrHasSubKeys is returned by DeleteKey when the key still has children.
var ErrHasSubKeys = errors.New("registry key has subkeys")

// Hive is a SQLite-backed registry.Store. Key paths compare
// case-insensitively, as they do in the Windows registry.
type Hive struct {
	db   *sql.DB
	path string
}

var _ registry.Store = (*Hive)(nil)

// Open opens (or creates) the hive file at path and initialises the schema.
func Open(path string) (*Hive, error) {
	sqldb, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("hive.Open: %w", err)
	}
	h := &Hive{db: sqldb, path: path}
	if err := h.createSchema(); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("hive.Open createSchema: %w", err)
	}
	return h, nil
}

// Path returns the file the hive was opened from.
func (h *Hive) Path() string { return h.path }

// Close closes the underlying database connection.
func (h *Hive) Close() error {
	return h.db.Close()
}

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

func (h *Hive) createSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS keys (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			path   TEXT UNIQUE NOT NULL COLLATE NOCASE,
			parent TEXT NOT NULL COLLATE NOCASE,
			name   TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS keys_parent ON keys(parent)`,
		`CREATE TABLE IF NOT EXISTS key_values (
			key_path TEXT NOT NULL COLLATE NOCASE,
			name     TEXT NOT NULL COLLATE NOCASE,
			value    TEXT NOT NULL,
			PRIMARY KEY (key_path, name)
		)`,
	}
	for _, s := range stmts {
		if _, err := h.db.Exec(s); err != nil {
			return fmt.Errorf("createSchema exec: %w\nSQL: %s", err, s)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// registry.Store
// ---------------------------------------------------------------------------

// CreateKey creates path and any missing ancestors.
func (h *Hive) CreateKey(path string) error {
	parts, err := split(path)
	if err != nil {
		return fmt.Errorf("hive.CreateKey: %w", err)
	}
	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("hive.CreateKey: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	parent := ""
	for _, name := range parts {
		full := name
		if parent != "" {
			full = registry.JoinKeys(parent, name)
		}
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO keys (path, parent, name) VALUES (?, ?, ?)`,
			full, parent, name,
		); err != nil {
			return fmt.Errorf("hive.CreateKey %q: %w", full, err)
		}
		parent = full
	}
	return tx.Commit()
}

// SetValue sets a string value on an existing key, replacing any previous
// value with the same name.
func (h *Hive) SetValue(path, name, value string) error {
	path = clean(path)
	if err := h.mustExist(path); err != nil {
		return fmt.Errorf("hive.SetValue: %w", err)
	}
	_, err := h.db.Exec(`
		INSERT INTO key_values (key_path, name, value) VALUES (?, ?, ?)
		ON CONFLICT(key_path, name) DO UPDATE SET value = excluded.value`,
		path, name, value,
	)
	if err != nil {
		return fmt.Errorf("hive.SetValue %q: %w", path, err)
	}
	return nil
}

// Value reads a string value. ok is false when the key exists but the
// value does not.
func (h *Hive) Value(path, name string) (string, bool, error) {
	path = clean(path)
	if err := h.mustExist(path); err != nil {
		return "", false, fmt.Errorf("hive.Value: %w", err)
	}
	var value string
	err := h.db.QueryRow(
		`SELECT value FROM key_values WHERE key_path = ? AND name = ?`, path, name,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("hive.Value %q: %w", path, err)
	}
	return value, true, nil
}

// SubKeys lists the direct children of path in creation order.
func (h *Hive) SubKeys(path string) ([]string, error) {
	path = clean(path)
	if err := h.mustExist(path); err != nil {
		return nil, fmt.Errorf("hive.SubKeys: %w", err)
	}
	rows, err := h.db.Query(`SELECT name FROM keys WHERE parent = ? ORDER BY id`, path)
	if err != nil {
		return nil, fmt.Errorf("hive.SubKeys %q: %w", path, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteKey removes a key and its values. Keys with children are refused
// with ErrHasSubKeys.
func (h *Hive) DeleteKey(path string) error {
	path = clean(path)
	if err := h.mustExist(path); err != nil {
		return fmt.Errorf("hive.DeleteKey: %w", err)
	}
	var children int
	if err := h.db.QueryRow(`SELECT COUNT(*) FROM keys WHERE parent = ?`, path).Scan(&children); err != nil {
		return fmt.Errorf("hive.DeleteKey %q: %w", path, err)
	}
	if children > 0 {
		return fmt.Errorf("hive.DeleteKey %q: %w", path, ErrHasSubKeys)
	}

	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("hive.DeleteKey: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`DELETE FROM key_values WHERE key_path = ?`, path); err != nil {
		return fmt.Errorf("hive.DeleteKey values: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM keys WHERE path = ?`, path); err != nil {
		return fmt.Errorf("hive.DeleteKey: %w", err)
	}
	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (h *Hive) mustExist(path string) error {
	var id int64
	err := h.db.QueryRow(`SELECT id FROM keys WHERE path = ?`, path).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", registry.ErrKeyNotFound, path)
	}
	return err
}

func clean(path string) string {
	return strings.Trim(path, `\`)
}

func split(path string) ([]string, error) {
	path = clean(path)
	if path == "" {
		return nil, errors.New("empty key path")
	}
	parts := strings.Split(path, `\`)
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("empty key name in %q", path)
		}
	}
	return parts, nil
}
