package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// SQLiteManager handles all database operations
type SQLiteManager struct {
	path   string
	db     *sql.DB
	logger Logger
}

// NewSQLiteManager opens (or creates) the database at path and makes sure the
// tables exist.
func NewSQLiteManager(path string, logger Logger) (*SQLiteManager, error) {
	sqlm := &SQLiteManager{
		path:   path,
		logger: logger,
	}

	db, err := sqlm.CreateConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %v", err)
	}
	sqlm.db = db

	if err := sqlm.InitCallJournalTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize call journal table: %v", err)
	}

	return sqlm, nil
}

// CreateConnection creates and configures the database connection
func (sqlm *SQLiteManager) CreateConnection() (*sql.DB, error) {
	dsn := sqlm.path
	if sqlm.path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(sqlm.path), 0755); err != nil {
			return nil, err
		}
		dsn = "file:" + sqlm.path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		sqlm.logger.Error(fmt.Sprintf("Can not create database connection. (%s)", err.Error()), "database")
		return nil, err
	}

	if sqlm.path == MemoryPath {
		// Every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
	}
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		sqlm.logger.Error(fmt.Sprintf("Failed to set busy timeout: %s", err.Error()), "database")
		db.Close()
		return nil, err
	}

	if sqlm.path != MemoryPath {
		// WAL lets `setto history` read while another invocation writes
		if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
			sqlm.logger.Warn(fmt.Sprintf("Failed to enable WAL mode: %s", err.Error()), "database")
		}
	}

	return db, nil
}

// Path returns the database file location
func (sqlm *SQLiteManager) Path() string {
	return sqlm.path
}

// GetDB returns the database connection for direct access if needed
func (sqlm *SQLiteManager) GetDB() *sql.DB {
	return sqlm.db
}

// Close closes the database connection
func (sqlm *SQLiteManager) Close() error {
	if sqlm.db != nil {
		return sqlm.db.Close()
	}
	return nil
}
