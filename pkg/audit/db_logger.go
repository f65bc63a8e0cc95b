package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DBLogger writes audit records to a SQL table so they can be queried and
// retained alongside the rest of the service's data.
type DBLogger struct {
	db *sql.DB
}

// NewDBLogger creates the audit table if missing and returns a logger over
// the database.
func NewDBLogger(db *sql.DB) (*DBLogger, error) {
	const schema = `
	CREATE TABLE IF NOT EXISTS audit_records (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp  TEXT NOT NULL,
		type       TEXT NOT NULL,
		outcome    TEXT NOT NULL,
		actor      TEXT,
		resource   TEXT,
		detail     TEXT,
		request_id TEXT,
		remote_ip  TEXT
	)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create audit table: %w", err)
	}
	return &DBLogger{db: db}, nil
}

// Log inserts one record.
func (l *DBLogger) Log(ctx context.Context, record *Record) error {
	const insert = `
	INSERT INTO audit_records (timestamp, type, outcome, actor, resource, detail, request_id, remote_ip)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := l.db.ExecContext(ctx, insert,
		record.Timestamp.Format(time.RFC3339Nano),
		string(record.Type),
		string(record.Outcome),
		record.Actor,
		record.Resource,
		record.Detail,
		record.RequestID,
		record.RemoteIP,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (l *DBLogger) Recent(ctx context.Context, limit int) ([]*Record, error) {
	const query = `
	SELECT id, timestamp, type, outcome, actor, resource, detail, request_id, remote_ip
	FROM audit_records ORDER BY id DESC LIMIT ?`
	rows, err := l.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var r Record
		var ts string
		if err := rows.Scan(&r.ID, &ts, &r.Type, &r.Outcome, &r.Actor,
			&r.Resource, &r.Detail, &r.RequestID, &r.RemoteIP); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		if parsed, perr := time.Parse(time.RFC3339Nano, ts); perr == nil {
			r.Timestamp = parsed
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// Close is a no-op; the logger does not own the database handle.
func (l *DBLogger) Close() error { return nil }
