// internal/storage/history_repo.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Annany2002/nebula-nlsql/internal/core"
	"github.com/Annany2002/nebula-nlsql/internal/domain"
)

// InsertQueryHistory stores one statement execution.
func InsertQueryHistory(ctx context.Context, db *sql.DB, entry domain.QueryHistoryEntry) (int64, error) {
	var params sql.NullString
	if len(entry.Params) > 0 {
		encoded, err := json.Marshal(entry.Params)
		if err != nil {
			return 0, fmt.Errorf("failed to encode query params: %w", err)
		}
		params = sql.NullString{String: string(encoded), Valid: true}
	}
	queryType := entry.QueryType
	if queryType == "" {
		queryType = core.DetectQueryType(entry.QueryText)
	}

	sqlStatement := `INSERT INTO query_history
		(project_id, user_id, query_text, params, query_type, success, error_message, execution_time_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, sqlStatement,
		entry.ProjectID, entry.UserID, entry.QueryText, params, queryType,
		entry.Success, sql.NullString{String: entry.ErrorMessage, Valid: entry.ErrorMessage != ""},
		entry.ExecutionTimeMs, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("database error logging query: %w", err)
	}
	return result.LastInsertId()
}

// ListQueryHistory returns a page of the project's history for the owner.
func ListQueryHistory(ctx context.Context, db *sql.DB, userID, projectID string, opts *core.HistoryQueryOptions) ([]domain.QueryHistoryEntry, error) {
	where := []string{"project_id = ?", "user_id = ?"}
	args := []any{projectID, userID}
	if opts.Success != nil {
		where = append(where, "success = ?")
		args = append(args, *opts.Success)
	}
	if opts.QueryType != "" {
		where = append(where, "query_type = ?")
		args = append(args, opts.QueryType)
	}

	order := "DESC"
	if opts.SortOrder == "asc" {
		order = "ASC"
	}
	// nolint:gosec // clauses are fixed strings and order is one of ASC/DESC
	query := fmt.Sprintf(`SELECT history_id, project_id, user_id, query_text, params, query_type, success, error_message, execution_time_ms, created_at
		FROM query_history WHERE %s ORDER BY created_at %s, history_id %s LIMIT ? OFFSET ?`,
		strings.Join(where, " AND "), order, order)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		customLog.Warnf("Storage: Error listing history for project %s: %v", projectID, err)
		return nil, fmt.Errorf("database error listing query history: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.QueryHistoryEntry, 0)
	for rows.Next() {
		var (
			e        domain.QueryHistoryEntry
			params   sql.NullString
			errorMsg sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.UserID, &e.QueryText, &params, &e.QueryType, &e.Success, &errorMsg, &e.ExecutionTimeMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed processing query history: %w", err)
		}
		if params.Valid {
			if err := json.Unmarshal([]byte(params.String), &e.Params); err != nil {
				customLog.Warnf("Storage: Undecodable params on history entry %d: %v", e.ID, err)
			}
		}
		e.ErrorMessage = errorMsg.String
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading query history: %w", err)
	}
	return entries, nil
}

// HistoryLogger writes history entries to the metadata database.
// Failures are logged and never returned to the caller.
type HistoryLogger struct {
	DB *sql.DB
}

// NewHistoryLogger wraps an open metadata database.
func NewHistoryLogger(db *sql.DB) *HistoryLogger {
	return &HistoryLogger{DB: db}
}

// Log implements domain.HistoryLogger.
func (l *HistoryLogger) Log(ctx context.Context, entry domain.QueryHistoryEntry) {
	// Recorded even when the request context is already cancelled.
	if _, err := InsertQueryHistory(context.WithoutCancel(ctx), l.DB, entry); err != nil {
		customLog.Warnf("Storage: Failed to log query for project %s: %v", entry.ProjectID, err)
	}
}
