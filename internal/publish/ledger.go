package publish

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SyncRecord is one publication attempt as stored in the ledger.
type SyncRecord struct {
	ID         int64
	Cause      string
	StartedAt  time.Time
	FinishedAt time.Time
	Rows       int
	Success    bool
	Message    string
}

// Ledger records every publication attempt in SQLite so operators can audit
// sync history independently of process logs.
type Ledger struct {
	db   *sql.DB
	path string
}

// OpenLedger initializes or connects to the sync ledger database.
func OpenLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sync ledger: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	const schema = `CREATE TABLE IF NOT EXISTS sync_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        cause TEXT NOT NULL,
        started_at TEXT NOT NULL,
        finished_at TEXT NOT NULL,
        row_count INTEGER NOT NULL,
        success INTEGER NOT NULL,
        message TEXT
    )`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sync_log table: %w", err)
	}

	return &Ledger{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Record appends one attempt to the ledger.
func (l *Ledger) Record(ctx context.Context, rec SyncRecord) error {
	_, err := l.db.ExecContext(
		ctx,
		`INSERT INTO sync_log (cause, started_at, finished_at, row_count, success, message)
         VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Cause,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
		rec.Rows,
		boolToInt(rec.Success),
		rec.Message,
	)
	if err != nil {
		return fmt.Errorf("record sync attempt: %w", err)
	}
	return nil
}

// Recent returns the newest attempts, most recent first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]SyncRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(
		ctx,
		`SELECT id, cause, started_at, finished_at, row_count, success, message
         FROM sync_log ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sync history: %w", err)
	}
	defer rows.Close()

	var out []SyncRecord
	for rows.Next() {
		var (
			rec        SyncRecord
			startedRaw string
			finishRaw  string
			success    int
			message    sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Cause, &startedRaw, &finishRaw, &rec.Rows, &success, &message); err != nil {
			return nil, fmt.Errorf("scan sync record: %w", err)
		}
		rec.Success = success != 0
		rec.Message = message.String
		if t, err := time.Parse(time.RFC3339Nano, startedRaw); err == nil {
			rec.StartedAt = t
		}
		if t, err := time.Parse(time.RFC3339Nano, finishRaw); err == nil {
			rec.FinishedAt = t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
