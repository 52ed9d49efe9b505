// api/models/project_models.go
package models

import "github.com/Annany2002/nebula-nlsql/internal/domain"

// CreateProjectRequest is the body of POST /projects.
// Blank input is rejected by the service, so it is not bound as required here.
type CreateProjectRequest struct {
	NaturalLanguageInput string `json:"naturalLanguageInput"`
}

// NaturalLanguageRequest carries a free-text request for the analyzers.
type NaturalLanguageRequest struct {
	Request string `json:"request" binding:"required"`
}

// ExecuteRequest is a batch of statements to run in order.
type ExecuteRequest struct {
	Statements []string `json:"statements" binding:"required,min=1"`
}

// ExplainErrorRequest asks for a user-facing explanation of a database error.
// Error may be a string or any JSON value.
type ExplainErrorRequest struct {
	Error any    `json:"error"`
	SQL   string `json:"sql"`
}

// InsertRequest is the body of POST /projects/:project_id/insert.
type InsertRequest struct {
	Table      string         `json:"table"`
	InsertData map[string]any `json:"insertData"`
}

// InsertResponse returns the inserted row, which may be null.
type InsertResponse struct {
	Row   map[string]any `json:"row"`
	Table string         `json:"table"`
}

// ExportRequest is a result set to render as a file.
type ExportRequest struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows" binding:"required"`
}

// SchemaResponse lists a project's live tables.
type SchemaResponse struct {
	ProjectID string               `json:"projectId"`
	Tables    []domain.TableSchema `json:"tables"`
}

// HistoryResponse is a page of query history.
type HistoryResponse struct {
	Entries []domain.QueryHistoryEntry `json:"entries"`
	Limit   int                        `json:"limit"`
	Offset  int                        `json:"offset"`
}
