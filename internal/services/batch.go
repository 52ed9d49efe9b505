// internal/services/batch.go
package services

import (
	"context"
	"strings"
	"time"

	"github.com/Annany2002/nebula-nlsql/internal/core"
	"github.com/Annany2002/nebula-nlsql/internal/domain"
	"github.com/Annany2002/nebula-nlsql/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// DefaultMaxRows caps the rows returned per statement.
const DefaultMaxRows = 1000

// BatchResult is the outcome of a batch, statements in execution order.
type BatchResult struct {
	Results            []domain.StatementResult `json:"results"`
	Succeeded          int                      `json:"succeeded"`
	Failed             int                      `json:"failed"`
	TotalExecutionTime int64                    `json:"totalExecutionTime"`
}

// BatchExecutor runs statements one at a time. A failing statement does not
// stop the ones after it.
type BatchExecutor struct {
	History domain.HistoryLogger
	MaxRows int
}

// NewBatchExecutor returns an executor that logs to history.
func NewBatchExecutor(history domain.HistoryLogger) *BatchExecutor {
	return &BatchExecutor{History: history, MaxRows: DefaultMaxRows}
}

// Execute runs every non-empty statement in order and logs each one.
func (b *BatchExecutor) Execute(ctx context.Context, conn domain.ProjectConn, projectID, userID string, statements []string) BatchResult {
	start := time.Now()
	result := BatchResult{Results: make([]domain.StatementResult, 0, len(statements))}
	for _, stmt := range statements {
		stmt = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(stmt), ";"))
		if stmt == "" {
			continue
		}
		r := runStatement(ctx, conn, b.History, projectID, userID, stmt, b.maxRows())
		if r.Success {
			result.Succeeded++
		} else {
			result.Failed++
		}
		result.Results = append(result.Results, r)
	}
	result.TotalExecutionTime = time.Since(start).Milliseconds()
	return result
}

func (b *BatchExecutor) maxRows() int {
	if b.MaxRows <= 0 {
		return DefaultMaxRows
	}
	return b.MaxRows
}

// runStatement executes one statement and records it in history.
func runStatement(ctx context.Context, conn domain.ProjectConn, history domain.HistoryLogger, projectID, userID, stmt string, maxRows int) domain.StatementResult {
	start := time.Now()
	rows, err := conn.Query(ctx, stmt)
	elapsed := time.Since(start).Milliseconds()

	result := domain.StatementResult{
		Query:           stmt,
		Success:         err == nil,
		ExecutionTimeMs: elapsed,
	}
	if err != nil {
		result.Error = err.Error()
		customLog.Warnf("Service: Statement failed (%s): %v", core.DetectQueryType(stmt), err)
	} else {
		result.RowCount = len(rows)
		if maxRows > 0 && len(rows) > maxRows {
			rows = rows[:maxRows]
		}
		if len(rows) > 0 {
			result.Rows = rows
		}
	}

	if history != nil {
		history.Log(ctx, domain.QueryHistoryEntry{
			ProjectID:       projectID,
			UserID:          userID,
			QueryText:       stmt,
			QueryType:       core.DetectQueryType(stmt),
			Success:         result.Success,
			ErrorMessage:    result.Error,
			ExecutionTimeMs: elapsed,
		})
	}
	return result
}
