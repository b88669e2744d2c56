// Package sqlite provides a SQLite-backed implementation of auditlog.Repository.
//
// WAL mode is enabled on Open so that readers never block writers and vice
// versa — the HTTP handler may be reading recent entries while a write
// workflow is appending new ones.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/catering-invoices/internal/coordinator/auditlog"

	// Register the pure-Go SQLite driver.
	// We use modernc.org/sqlite instead of mattn/go-sqlite3 to avoid CGO
	// requirements, making it easier to build and run in Docker (Alpine).
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup.
// The table is append-only: each row is an immutable event in a write
// workflow's lifecycle. Querying MAX(updated_at) per op_id gives the final
// outcome of each workflow.
const schema = `
CREATE TABLE IF NOT EXISTS invoice_audit_log (
    -- Surrogate primary key — auto-incremented by SQLite.
    id              INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Workflow identifier: the invoice number for creations, the invoice id
    -- for updates/deletes. Not UNIQUE: one row per transition.
    op_id           TEXT        NOT NULL,

    -- Lifecycle state at the time this row was written.
    status          TEXT        NOT NULL,

    -- Name of the step that just executed (e.g. "Create_Line_Items_Step").
    current_step    TEXT        NOT NULL DEFAULT '',

    -- JSON payload that started the workflow. Written once on STARTED, NULL after.
    payload         TEXT,

    -- JSON array of error strings accumulated during failure/compensation.
    error_messages  TEXT        NOT NULL DEFAULT '[]',

    -- HTTP request ID that triggered the workflow.
    request_id      TEXT        NOT NULL DEFAULT '',

    -- Wall-clock timestamp of this event (RFC3339 stored as TEXT, SQLite idiom).
    updated_at      TEXT        NOT NULL
);

-- Index for the most common query: "give me all events for invoice X in order".
CREATE INDEX IF NOT EXISTS idx_invoice_audit_log_op_id ON invoice_audit_log(op_id, updated_at);

-- Index for the observability query: "find the workflow behind request Y".
CREATE INDEX IF NOT EXISTS idx_invoice_audit_log_request_id ON invoice_audit_log(request_id);
`

// Repository is the SQLite implementation of auditlog.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at the given path and applies
// the schema. WAL mode is enabled for better concurrent read/write performance.
//
//	repo, err := sqlite.Open("./data/audit.db")
func Open(path string) (*Repository, error) {
	// The pure-Go driver uses _pragma query parameters to configure connection state.
	// WAL enables concurrent readers. foreign_keys=on enforces integrity.
	// busy_timeout waits for locks instead of failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// Use "sqlite", not "sqlite3" for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save inserts a new audit log entry. It is safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *auditlog.Entry) error {
	const q = `
		INSERT INTO invoice_audit_log
			(op_id, status, current_step, payload, error_messages, request_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.OpID,
		string(entry.Status),
		entry.CurrentStep,
		nullableString(entry.Payload),
		entry.ErrorMessages,
		entry.RequestID,
		entry.UpdatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z"),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save audit entry for %q: %w", entry.OpID, err)
	}
	return nil
}

// GetLatest returns the most recent log entry for a given workflow ID.
// Useful for inspecting the outcome of a write after the fact.
func (r *Repository) GetLatest(ctx context.Context, opID string) (*auditlog.Entry, error) {
	const q = `
		SELECT op_id, status, current_step, COALESCE(payload,''), error_messages,
		       request_id, updated_at
		FROM   invoice_audit_log
		WHERE  op_id = ?
		ORDER  BY updated_at DESC, id DESC
		LIMIT  1`

	row := r.db.QueryRowContext(ctx, q, opID)

	var entry auditlog.Entry
	var updatedAt string
	err := row.Scan(
		&entry.OpID,
		&entry.Status,
		&entry.CurrentStep,
		&entry.Payload,
		&entry.ErrorMessages,
		&entry.RequestID,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sqlite: workflow %q not found", opID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get latest for %q: %w", opID, err)
	}

	entry.UpdatedAt, err = parseRFC3339(updatedAt)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// applySchema runs the DDL statements once. Idempotent due to IF NOT EXISTS.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

// nullableString returns nil for empty strings so SQLite stores NULL instead
// of an empty TEXT — keeps the payload column clean on non-STARTED rows.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
