package group

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bramblewiki/bramble/pkg/principal"
)

// SQLiteDatabase persists groups in an embedded SQLite database. Membership
// is stored as a JSON array of member names; on load, members come back as
// unresolved principals and match by name like everything else.
type SQLiteDatabase struct {
	db *sql.DB
}

// OpenSQLiteDatabase opens (or creates) the group database at path. Use
// ":memory:" for tests.
func OpenSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open group database: %w", err)
	}
	d := &SQLiteDatabase{db: db}
	if err := d.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// NewSQLiteDatabase wraps an existing database handle.
func NewSQLiteDatabase(db *sql.DB) (*SQLiteDatabase, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	d := &SQLiteDatabase{db: db}
	if err := d.ensureSchema(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *SQLiteDatabase) ensureSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS groups (
		name TEXT PRIMARY KEY,
		members TEXT NOT NULL DEFAULT '[]',
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := d.db.Exec(query); err != nil {
		return fmt.Errorf("failed to ensure groups table: %w", err)
	}
	return nil
}

// SaveGroup implements Database.
func (d *SQLiteDatabase) SaveGroup(g *Group) error {
	names := make([]string, 0, len(g.Members()))
	for _, m := range g.Members() {
		names = append(names, m.Name())
	}
	membersJSON, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("failed to marshal members: %w", err)
	}

	query := `
		INSERT INTO groups (name, members, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET members = excluded.members, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := d.db.Exec(query, g.Name(), string(membersJSON)); err != nil {
		return fmt.Errorf("failed to save group: %w", err)
	}
	return nil
}

// DeleteGroup implements Database.
func (d *SQLiteDatabase) DeleteGroup(name string) error {
	if _, err := d.db.Exec(`DELETE FROM groups WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

// LoadAll implements Database.
func (d *SQLiteDatabase) LoadAll() ([]*Group, error) {
	rows, err := d.db.Query(`SELECT name, members FROM groups`)
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		var name, membersJSON string
		if err := rows.Scan(&name, &membersJSON); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		var memberNames []string
		if err := json.Unmarshal([]byte(membersJSON), &memberNames); err != nil {
			return nil, fmt.Errorf("failed to unmarshal members of %q: %w", name, err)
		}
		g := New(name)
		for _, m := range memberNames {
			g.Add(principal.NewUnresolved(m))
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Close releases the underlying database handle.
func (d *SQLiteDatabase) Close() error {
	return d.db.Close()
}
