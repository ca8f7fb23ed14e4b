package database

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// countingLogger records how many errors were logged
type countingLogger struct {
	mockLogger
	errors int
}

func (l *countingLogger) Error(msg, category string) { l.errors++ }

func setupOperationsDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", MemoryPath)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE operations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			http_status INTEGER
		)
	`)
	if err != nil {
		t.Fatalf("Failed to create test table: %v", err)
	}
	return db
}

type operationRow struct {
	Name       string
	HTTPStatus int
}

func scanOperation(rows *sql.Rows) (*operationRow, error) {
	var r operationRow
	err := rows.Scan(&r.Name, &r.HTTPStatus)
	return &r, err
}

func TestQueryRows(t *testing.T) {
	db := setupOperationsDB(t)
	logger := &countingLogger{}

	for _, name := range []string{"get_merchant", "create_merchant", "get_payment_status"} {
		if _, err := db.Exec("INSERT INTO operations (name, http_status) VALUES (?, ?)", name, 200); err != nil {
			t.Fatalf("Failed to insert test data: %v", err)
		}
	}

	t.Run("returns rows in query order", func(t *testing.T) {
		rows, err := QueryRows(db, "SELECT name, http_status FROM operations ORDER BY id", scanOperation, logger, "test")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(rows) != 3 || rows[0].Name != "get_merchant" || rows[2].Name != "get_payment_status" {
			t.Errorf("unexpected rows: %+v", rows)
		}
	})

	t.Run("empty result set returns nil slice", func(t *testing.T) {
		rows, err := QueryRows(db, "SELECT name, http_status FROM operations WHERE name = ?", scanOperation, logger, "test", "missing")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("Expected no rows, got %d", len(rows))
		}
	})

	t.Run("unscannable rows are skipped", func(t *testing.T) {
		if _, err := db.Exec("INSERT INTO operations (name, http_status) VALUES (?, NULL)", "broken"); err != nil {
			t.Fatalf("Failed to insert test data: %v", err)
		}
		before := logger.errors

		rows, err := QueryRows(db, "SELECT name, http_status FROM operations", scanOperation, logger, "test")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(rows) != 3 {
			t.Errorf("Expected 3 scannable rows, got %d", len(rows))
		}
		if logger.errors != before+1 {
			t.Errorf("Expected one logged scan error, got %d", logger.errors-before)
		}
	})

	t.Run("query error is returned", func(t *testing.T) {
		if _, err := QueryRows(db, "SELECT nope FROM operations", scanOperation, logger, "test"); err == nil {
			t.Error("Expected an error for a bad column")
		}
	})
}

func TestExecWithLogging(t *testing.T) {
	db := setupOperationsDB(t)
	logger := &countingLogger{}

	result, err := ExecWithLogging(db, "INSERT INTO operations (name, http_status) VALUES (?, ?)", logger, "test", "get_merchant", 404)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if n, _ := result.RowsAffected(); n != 1 {
		t.Errorf("RowsAffected = %d, want 1", n)
	}

	_, err = ExecWithLogging(db, "INSERT INTO missing_table VALUES (1)", logger, "test")
	if err == nil {
		t.Fatal("Expected an error for a missing table")
	}
	if logger.errors != 1 {
		t.Errorf("Expected one logged error, got %d", logger.errors)
	}
}
