package database

import (
	"database/sql"
)

// Logger interface for query helpers - compatible with utils.LogsManager
type Logger interface {
	Error(msg, category string)
	Info(msg, category string)
	Warn(msg, category string)
}

// QueryRows executes a multi-row query with consistent error handling.
// Returns empty slice if no rows found, logs and returns error for failures.
func QueryRows[T any](
	db *sql.DB,
	query string,
	scanFunc func(*sql.Rows) (*T, error),
	logger Logger,
	logContext string,
	args ...interface{},
) ([]*T, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		logger.Error("Failed to query rows", logContext)
		return nil, err
	}
	defer rows.Close()

	var results []*T
	for rows.Next() {
		result, err := scanFunc(rows)
		if err != nil {
			logger.Error("Failed to scan row", logContext)
			// Continue processing other rows instead of failing completely
			continue
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error iterating rows", logContext)
		return nil, err
	}

	return results, nil
}

// ExecWithLogging executes a query with logging on error.
// Returns the sql.Result for further processing (e.g., LastInsertId, RowsAffected).
func ExecWithLogging(
	db *sql.DB,
	query string,
	logger Logger,
	logContext string,
	args ...interface{},
) (sql.Result, error) {
	result, err := db.Exec(query, args...)
	if err != nil {
		logger.Error("Failed to execute query", logContext)
		return nil, err
	}
	return result, nil
}
