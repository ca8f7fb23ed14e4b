package database

import (
	"path/filepath"
	"testing"
	"time"
)

// mockLogger is a simple test logger that doesn't write anywhere
type mockLogger struct{}

func (m *mockLogger) Error(msg, category string) {}
func (m *mockLogger) Info(msg, category string)  {}
func (m *mockLogger) Warn(msg, category string)  {}

func setupTestJournal(t *testing.T) *SQLiteManager {
	t.Helper()
	sqlm, err := NewSQLiteManager(MemoryPath, &mockLogger{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { sqlm.Close() })
	return sqlm
}

func TestRecordAndListCalls(t *testing.T) {
	sqlm := setupTestJournal(t)
	base := time.Now().Add(-time.Hour)

	records := []*CallRecord{
		{RequestID: "r1", Operation: "get_merchant", Target: "m_1", Environment: "development", Outcome: "ok", KeyFingerprint: "fp", CreatedAt: base},
		{RequestID: "r2", Operation: "get_payment_status", Target: "p_1", Environment: "development", Outcome: "payment", Code: "PAYMENT_NOT_FOUND", HTTPStatus: 404, KeyFingerprint: "fp", CreatedAt: base.Add(time.Minute)},
		{RequestID: "r3", Operation: "get_merchant", Target: "m_2", Environment: "production", Outcome: "network", KeyFingerprint: "fp", DurationMS: 30000, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, rec := range records {
		if err := sqlm.RecordCall(rec); err != nil {
			t.Fatalf("RecordCall() failed: %v", err)
		}
		if rec.ID == 0 {
			t.Errorf("RecordCall() did not set ID for %s", rec.RequestID)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		calls, err := sqlm.ListCalls(10, "")
		if err != nil {
			t.Fatalf("ListCalls() failed: %v", err)
		}
		if len(calls) != 3 {
			t.Fatalf("expected 3 calls, got %d", len(calls))
		}
		if calls[0].RequestID != "r3" || calls[2].RequestID != "r1" {
			t.Errorf("unexpected order: %s, %s, %s", calls[0].RequestID, calls[1].RequestID, calls[2].RequestID)
		}
		if calls[1].Code != "PAYMENT_NOT_FOUND" || calls[1].HTTPStatus != 404 {
			t.Errorf("payment failure not preserved: %+v", calls[1])
		}
		if !calls[0].CreatedAt.Equal(records[2].CreatedAt.Truncate(time.Millisecond)) {
			t.Errorf("CreatedAt = %s, want %s", calls[0].CreatedAt, records[2].CreatedAt)
		}
	})

	t.Run("limit", func(t *testing.T) {
		calls, err := sqlm.ListCalls(1, "")
		if err != nil {
			t.Fatalf("ListCalls() failed: %v", err)
		}
		if len(calls) != 1 || calls[0].RequestID != "r3" {
			t.Errorf("unexpected calls: %v", calls)
		}
	})

	t.Run("filter by operation", func(t *testing.T) {
		calls, err := sqlm.ListCalls(10, "get_merchant")
		if err != nil {
			t.Fatalf("ListCalls() failed: %v", err)
		}
		if len(calls) != 2 {
			t.Errorf("expected 2 get_merchant calls, got %d", len(calls))
		}
	})

	t.Run("prune", func(t *testing.T) {
		removed, err := sqlm.PruneCalls(base.Add(90 * time.Second))
		if err != nil {
			t.Fatalf("PruneCalls() failed: %v", err)
		}
		if removed != 2 {
			t.Errorf("removed = %d, want 2", removed)
		}
		calls, _ := sqlm.ListCalls(10, "")
		if len(calls) != 1 || calls[0].RequestID != "r3" {
			t.Errorf("unexpected remaining calls: %v", calls)
		}
	})
}

func TestJournalPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "setto.db")

	sqlm, err := NewSQLiteManager(path, &mockLogger{})
	if err != nil {
		t.Fatalf("NewSQLiteManager() failed: %v", err)
	}
	if err := sqlm.RecordCall(&CallRecord{RequestID: "r1", Operation: "get_merchant", Environment: "development", Outcome: "ok", KeyFingerprint: "fp"}); err != nil {
		t.Fatalf("RecordCall() failed: %v", err)
	}
	if err := sqlm.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	reopened, err := NewSQLiteManager(path, &mockLogger{})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	calls, err := reopened.ListCalls(0, "")
	if err != nil {
		t.Fatalf("ListCalls() failed: %v", err)
	}
	if len(calls) != 1 || calls[0].RequestID != "r1" {
		t.Errorf("unexpected calls after reopen: %v", calls)
	}
	if calls[0].CreatedAt.IsZero() {
		t.Errorf("CreatedAt not set")
	}
}
