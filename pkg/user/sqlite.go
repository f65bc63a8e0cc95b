package user

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bramblewiki/bramble/pkg/principal"
)

// SQLiteDirectory is a Directory backed by an embedded SQLite database. It
// owns its schema the same way the group store does: the table is created on
// open if absent.
type SQLiteDirectory struct {
	db *sql.DB
}

// OpenSQLiteDirectory opens (or creates) the user database at path. Use
// ":memory:" for tests.
func OpenSQLiteDirectory(path string) (*SQLiteDirectory, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open user database: %w", err)
	}
	d := &SQLiteDirectory{db: db}
	if err := d.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// NewSQLiteDirectory wraps an existing database handle.
func NewSQLiteDirectory(db *sql.DB) (*SQLiteDirectory, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	d := &SQLiteDirectory{db: db}
	if err := d.ensureSchema(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *SQLiteDirectory) ensureSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		login_name TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		wiki_name TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_users_full_name ON users(full_name);
	CREATE INDEX IF NOT EXISTS idx_users_wiki_name ON users(wiki_name);
	`
	if _, err := d.db.Exec(query); err != nil {
		return fmt.Errorf("failed to ensure users table: %w", err)
	}
	return nil
}

// Save inserts or updates a profile keyed by login name.
func (d *SQLiteDirectory) Save(p Profile) error {
	if p.WikiName == "" {
		p.WikiName = WikiNameOf(p.FullName)
	}
	query := `
		INSERT INTO users (login_name, full_name, wiki_name)
		VALUES (?, ?, ?)
		ON CONFLICT(login_name) DO UPDATE SET full_name = excluded.full_name, wiki_name = excluded.wiki_name
	`
	if _, err := d.db.Exec(query, p.LoginName, p.FullName, p.WikiName); err != nil {
		return fmt.Errorf("failed to save user %q: %w", p.LoginName, err)
	}
	return nil
}

// Lookup implements Directory. A name is matched against login, full, and
// wiki names in that order.
func (d *SQLiteDirectory) Lookup(name string) (*Profile, principal.UserKind, bool) {
	query := `
		SELECT login_name, full_name, wiki_name
		FROM users
		WHERE login_name = ? OR full_name = ? OR wiki_name = ?
		LIMIT 1
	`
	var p Profile
	err := d.db.QueryRow(query, name, name, name).Scan(&p.LoginName, &p.FullName, &p.WikiName)
	if err != nil {
		return nil, 0, false
	}

	switch name {
	case p.LoginName:
		return &p, principal.KindLogin, true
	case p.FullName:
		return &p, principal.KindFull, true
	default:
		return &p, principal.KindWiki, true
	}
}

// Close releases the underlying database handle.
func (d *SQLiteDirectory) Close() error {
	return d.db.Close()
}
