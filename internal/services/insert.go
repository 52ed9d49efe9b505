// internal/services/insert.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Annany2002/nebula-nlsql/internal/core"
	"github.com/Annany2002/nebula-nlsql/internal/domain"
)

// InsertRequest is a single-row insert into a project table.
type InsertRequest struct {
	ProjectID string
	UserID    string
	// Schema defaults to "public".
	Schema  string
	Table   *domain.TableSchema
	Payload map[string]any
}

// InsertExecutor validates, coerces and inserts one row.
type InsertExecutor struct {
	History domain.HistoryLogger
}

// NewInsertExecutor returns an executor that logs to history.
func NewInsertExecutor(history domain.HistoryLogger) *InsertExecutor {
	return &InsertExecutor{History: history}
}

// Execute inserts the payload and returns the inserted row, or nil when the
// database returned none. Validation and coercion failures are reported
// before any SQL is sent.
func (e *InsertExecutor) Execute(ctx context.Context, conn domain.ProjectConn, req InsertRequest) (row map[string]any, err error) {
	schema := req.Schema
	if schema == "" {
		schema = "public"
	}
	var (
		query   string
		args    []any
		elapsed int64
	)
	// every attempt is recorded, including ones rejected before any SQL runs
	defer func() {
		e.logHistory(ctx, req, schema, query, args, elapsed, err)
	}()

	if req.Table == nil {
		return nil, ErrTableNotFound
	}
	if conn == nil {
		return nil, ErrMissingConnection
	}

	columns, values := acceptedColumns(req.Table, req.Payload)
	if len(columns) == 0 {
		return nil, ErrNoValidColumns
	}
	if missing := missingRequired(req.Table, req.Payload); len(missing) > 0 {
		return nil, &MissingRequiredColumnsError{Missing: missing}
	}

	placeholders := make([]string, len(columns))
	params := make([]any, len(columns))
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = core.QuoteIdentifier(col.Name)
		placeholder := fmt.Sprintf("$%d", i+1)

		if core.IsDateType(col.Type) {
			cast := core.CastSuffixFor(col.Type)
			normalized, err := core.NormalizeDate(values[i])
			if err != nil {
				return nil, &InvalidDateFormatError{Column: col.Name, Value: fmt.Sprint(values[i])}
			}
			if normalized == nil {
				params[i] = nil
			} else {
				params[i] = normalized.Format(cast)
			}
			placeholders[i] = placeholder + cast
			continue
		}

		arg, err := toParam(values[i])
		if err != nil {
			return nil, fmt.Errorf("%w: column '%s': %v", ErrDataCoercion, col.Name, err)
		}
		params[i] = arg
		placeholders[i] = placeholder
	}

	args = params
	query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		core.QualifiedName(schema, req.Table.Name),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "))

	start := time.Now()
	rows, err := conn.Query(ctx, query, args...)
	elapsed = time.Since(start).Milliseconds()

	if err != nil {
		customLog.Warnf("Service: Insert into '%s' failed: %v", req.Table.Name, err)
		return nil, &InsertExecutionError{Detail: err.Error(), err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// logHistory records one insert attempt. Rejected payloads carry the target
// table instead of a full statement.
func (e *InsertExecutor) logHistory(ctx context.Context, req InsertRequest, schema, query string, args []any, elapsed int64, err error) {
	if e.History == nil {
		return
	}
	if query == "" {
		query = "INSERT"
		if req.Table != nil {
			query = "INSERT INTO " + core.QualifiedName(schema, req.Table.Name)
		}
	}
	entry := domain.QueryHistoryEntry{
		ProjectID:       req.ProjectID,
		UserID:          req.UserID,
		QueryText:       query,
		Params:          args,
		QueryType:       "INSERT",
		Success:         err == nil,
		ExecutionTimeMs: elapsed,
	}
	if err != nil {
		entry.ErrorMessage = err.Error()
	}
	e.History.Log(ctx, entry)
}

// acceptedColumns keeps payload keys that name a column, in table order.
func acceptedColumns(table *domain.TableSchema, payload map[string]any) ([]domain.ColumnMetadata, []any) {
	var (
		columns []domain.ColumnMetadata
		values  []any
	)
	for _, col := range table.Columns {
		if v, ok := payload[col.Name]; ok {
			columns = append(columns, col)
			values = append(values, v)
		}
	}
	return columns, values
}

func missingRequired(table *domain.TableSchema, payload map[string]any) []string {
	var missing []string
	for _, col := range table.Columns {
		if col.Nullable || col.Default != nil {
			continue
		}
		if _, ok := payload[col.Name]; !ok {
			missing = append(missing, col.Name)
		}
	}
	return missing
}

// toParam passes scalars through and encodes objects and arrays as JSON text.
func toParam(v any) (any, error) {
	switch v.(type) {
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	default:
		return v, nil
	}
}
