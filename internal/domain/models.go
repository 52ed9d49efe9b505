// internal/domain/models.go
package domain

import "time"

// UserMetadata defines the structure for user data in the metadata DB
type UserMetadata struct {
	UserId       string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// ColumnMetadata describes a live column as reported by introspection.
type ColumnMetadata struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Nullable bool    `json:"nullable"`
	Default  *string `json:"default"`
	// Constraints holds rendered constraints such as "PRIMARY KEY" or "REFERENCES users(id)".
	Constraints []string `json:"constraints,omitempty"`
}

// TableSchema is a table with its columns in ordinal order.
type TableSchema struct {
	Name    string           `json:"name"`
	Columns []ColumnMetadata `json:"columns"`
}

// Column returns the column with the given name, or nil.
func (t *TableSchema) Column(name string) *ColumnMetadata {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// ColumnDefinition is a column as proposed by schema inference.
type ColumnDefinition struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Constraints []string `json:"constraints,omitempty"`
	References  string   `json:"references,omitempty"`
}

// TableDefinition is a table as proposed by schema inference.
type TableDefinition struct {
	Name    string             `json:"name"`
	Columns []ColumnDefinition `json:"columns"`
}

// InferredSchema is the validated result of turning a project description into tables.
type InferredSchema struct {
	ProjectName string            `json:"projectName"`
	Description string            `json:"description"`
	Tables      []TableDefinition `json:"tables"`
}

// Project is a user-owned database plus its metadata row.
type Project struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	ProjectName      string    `json:"projectName"`
	DatabaseName     string    `json:"databaseName"`
	Description      string    `json:"description"`
	ConnectionString string    `json:"-"`
	SchemaSQL        string    `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ProvisionedDatabase is returned by the provisioning collaborator.
type ProvisionedDatabase struct {
	DatabaseName     string
	ConnectionString string
}

// Risk levels reported by the analyzer.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// ProposedOperation is one SQL step suggested by the analyzer.
type ProposedOperation struct {
	Type         string `json:"type"`
	Target       string `json:"target"`
	SQL          string `json:"sql"`
	Explanation  string `json:"explaination"`
	RiskLevel    string `json:"risk_level"`
	IsIdempotent bool   `json:"is_idempotent"`
}

// UpdateAnalysis is the analyzer's plan for a natural-language request.
type UpdateAnalysis struct {
	Operations           []ProposedOperation `json:"operations"`
	Summary              string              `json:"summary"`
	RequiresConfirmation bool                `json:"requires_confirmation"`
	EstimatedImpact      string              `json:"estimated_impact"`
}

// ErrorContext records which inputs were available when an error was explained.
type ErrorContext struct {
	Schema bool `json:"schema"`
	SQL    bool `json:"sql"`
}

// TechnicalDetails is the machine-facing part of a ParsedDbError.
type TechnicalDetails struct {
	OriginalError    string       `json:"originalError"`
	AvailableContext ErrorContext `json:"availableContext"`
	MissingData      []string     `json:"missingData"`
}

// ParsedDbError is a user-facing explanation of a database error.
type ParsedDbError struct {
	ErrorType               string           `json:"errorType"`
	Summary                 string           `json:"summary"`
	UserFriendlyExplanation string           `json:"userFriendlyExplanation"`
	ForeignKeyExplanation   *string          `json:"foreignKeyExplanation"`
	TechnicalDetails        TechnicalDetails `json:"technicalDetails"`
}

// QueryHistoryEntry is one logged statement execution.
type QueryHistoryEntry struct {
	ID              int64     `json:"id,omitempty"`
	ProjectID       string    `json:"projectId"`
	UserID          string    `json:"userId"`
	QueryText       string    `json:"queryText"`
	Params          []any     `json:"params,omitempty"`
	QueryType       string    `json:"queryType"`
	Success         bool      `json:"success"`
	ErrorMessage    string    `json:"errorMessage,omitempty"`
	ExecutionTimeMs int64     `json:"executionTime"`
	CreatedAt       time.Time `json:"createdAt,omitempty"`
}

// StatementResult is the outcome of executing a single statement.
type StatementResult struct {
	Query           string           `json:"query"`
	Success         bool             `json:"success"`
	ExecutionTimeMs int64            `json:"executionTime"`
	Error           string           `json:"error,omitempty"`
	Rows            []map[string]any `json:"rows,omitempty"`
	RowCount        int              `json:"rowCount"`
}
