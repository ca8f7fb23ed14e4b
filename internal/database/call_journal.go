package database

import (
	"database/sql"
	"fmt"
	"time"
)

// CallRecord is one platform call made by the CLI
type CallRecord struct {
	ID             int64     `json:"id"`
	RequestID      string    `json:"request_id"`
	Operation      string    `json:"operation"`
	Target         string    `json:"target,omitempty"`
	Environment    string    `json:"environment"`
	Outcome        string    `json:"outcome"`
	Code           string    `json:"code,omitempty"`
	HTTPStatus     int       `json:"http_status,omitempty"`
	KeyFingerprint string    `json:"key_fingerprint"`
	DurationMS     int64     `json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// InitCallJournalTable creates the call_journal table if it doesn't exist
func (sqlm *SQLiteManager) InitCallJournalTable() error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS call_journal (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL,
		operation TEXT NOT NULL,
		target TEXT,
		environment TEXT NOT NULL,
		outcome TEXT NOT NULL,
		code TEXT,
		http_status INTEGER,
		key_fingerprint TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_call_journal_created_at ON call_journal(created_at);
	CREATE INDEX IF NOT EXISTS idx_call_journal_operation ON call_journal(operation);
	`

	if _, err := sqlm.db.Exec(createTableSQL); err != nil {
		sqlm.logger.Error("Failed to create call_journal table", "database")
		return err
	}

	return nil
}

// RecordCall appends a call to the journal and sets its ID
func (sqlm *SQLiteManager) RecordCall(rec *CallRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO call_journal (request_id, operation, target, environment, outcome,
			code, http_status, key_fingerprint, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := ExecWithLogging(sqlm.db, query, sqlm.logger, "database",
		rec.RequestID, rec.Operation, rec.Target, rec.Environment, rec.Outcome,
		rec.Code, rec.HTTPStatus, rec.KeyFingerprint, rec.DurationMS, rec.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record call: %w", err)
	}

	if rec.ID, err = result.LastInsertId(); err != nil {
		return err
	}
	return nil
}

// ListCalls returns the most recent calls first. An empty operation matches all.
func (sqlm *SQLiteManager) ListCalls(limit int, operation string) ([]*CallRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, request_id, operation, COALESCE(target, ''), environment, outcome,
			COALESCE(code, ''), COALESCE(http_status, 0), key_fingerprint, duration_ms, created_at
		FROM call_journal
		WHERE (? = '' OR operation = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	return QueryRows(sqlm.db, query, scanCallRecord, sqlm.logger, "database", operation, operation, limit)
}

// PruneCalls deletes calls recorded before cutoff and returns how many went
func (sqlm *SQLiteManager) PruneCalls(cutoff time.Time) (int64, error) {
	result, err := ExecWithLogging(sqlm.db, `DELETE FROM call_journal WHERE created_at < ?`,
		sqlm.logger, "database", cutoff.UnixMilli())
	if err != nil {
		return 0, err
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		sqlm.logger.Info(fmt.Sprintf("Pruned %d call journal entries", removed), "database")
	}
	return removed, nil
}

func scanCallRecord(rows *sql.Rows) (*CallRecord, error) {
	var (
		rec       CallRecord
		createdAt int64
	)
	err := rows.Scan(
		&rec.ID,
		&rec.RequestID,
		&rec.Operation,
		&rec.Target,
		&rec.Environment,
		&rec.Outcome,
		&rec.Code,
		&rec.HTTPStatus,
		&rec.KeyFingerprint,
		&rec.DurationMS,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = time.UnixMilli(createdAt)
	return &rec, nil
}
