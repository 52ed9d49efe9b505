// internal/services/project.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Annany2002/nebula-nlsql/internal/ai"
	"github.com/Annany2002/nebula-nlsql/internal/core"
	"github.com/Annany2002/nebula-nlsql/internal/domain"
	"github.com/Annany2002/nebula-nlsql/internal/llm"
)

// SchemaSummary reports which tables were attempted and how many succeeded.
type SchemaSummary struct {
	Tables        []string `json:"tables"`
	TablesCreated int      `json:"tablesCreated"`
	TablesFailed  int      `json:"tablesFailed"`
}

// SQLSummary is the table-creation SQL that was run.
type SQLSummary struct {
	Statements int    `json:"statements"`
	Executed   string `json:"executed"`
}

// ProjectCreationReport is the full result of creating or resuming a project.
type ProjectCreationReport struct {
	Project              *domain.Project          `json:"project"`
	Schema               SchemaSummary            `json:"schema"`
	SQL                  SQLSummary               `json:"sql"`
	ExecutionDetails     []domain.StatementResult `json:"executionDetails"`
	TotalExecutionTime   int64                    `json:"totalExecutionTime"`
	NaturalLanguageInput string                   `json:"naturalLanguageInput,omitempty"`
}

// StatementOutcome accumulates table-creation results.
type StatementOutcome struct {
	Created []domain.StatementResult
	Failed  []domain.StatementResult
	All     []domain.StatementResult
}

// With returns the outcome extended by r.
func (o StatementOutcome) With(r domain.StatementResult) StatementOutcome {
	if r.Success {
		o.Created = append(o.Created, r)
	} else {
		o.Failed = append(o.Failed, r)
	}
	o.All = append(o.All, r)
	return o
}

// ProjectCreator turns a project description into a provisioned database
// with its tables.
type ProjectCreator struct {
	LLM     llm.Client
	Gateway domain.DatabaseGateway
	Store   domain.ProjectStore
	History domain.HistoryLogger
	// NewID generates project ids; uuid by default.
	NewID func() string
}

// NewProjectCreator wires a creator from its collaborators.
func NewProjectCreator(client llm.Client, gateway domain.DatabaseGateway, store domain.ProjectStore, history domain.HistoryLogger) *ProjectCreator {
	return &ProjectCreator{LLM: client, Gateway: gateway, Store: store, History: history, NewID: uuid.NewString}
}

// Create infers a schema, provisions a database, records the project and
// creates its tables. Once the project row exists, failures carry it so the
// caller can resume with ApplySchema.
func (p *ProjectCreator) Create(ctx context.Context, userID, naturalLanguageInput string) (*ProjectCreationReport, error) {
	if strings.TrimSpace(naturalLanguageInput) == "" {
		return nil, ErrEmptyInput
	}

	schema, err := ai.InferDatabaseSchema(ctx, p.LLM, naturalLanguageInput)
	if err != nil {
		return nil, &SchemaInferenceError{Details: err.Error(), err: err}
	}

	existing, err := p.Store.FindProjectByName(ctx, userID, schema.ProjectName)
	if err != nil {
		return nil, fmt.Errorf("checking project name: %w", err)
	}
	if existing != nil {
		return nil, &ProjectConflictError{
			ProjectName: schema.ProjectName,
			Suggestion:  fmt.Sprintf("Use a different project name or add to the existing project '%s'.", existing.ProjectName),
		}
	}

	provisioned, err := p.Gateway.ProvisionDatabase(ctx, userID, schema.ProjectName)
	if err != nil {
		customLog.Warnf("Service: Provisioning failed for project '%s': %v", schema.ProjectName, err)
		return nil, &ProvisioningError{Details: err.Error(), err: err}
	}

	description := schema.Description
	if strings.TrimSpace(description) == "" {
		description = naturalLanguageInput
	}
	project := &domain.Project{
		ID:               p.newID(),
		UserID:           userID,
		ProjectName:      schema.ProjectName,
		DatabaseName:     provisioned.DatabaseName,
		Description:      description,
		ConnectionString: provisioned.ConnectionString,
		SchemaSQL:        core.GenerateCreateTableStatements(schema.Tables),
		CreatedAt:        time.Now().UTC(),
	}
	if err := p.Store.CreateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("saving project metadata: %w", err)
	}
	customLog.Printf("Service: Project '%s' (%s) registered for user %s", project.ProjectName, project.ID, userID)

	tableNames := make([]string, len(schema.Tables))
	for i, t := range schema.Tables {
		tableNames[i] = t.Name
	}

	report, err := p.createTables(ctx, project, tableNames)
	if err != nil {
		return nil, err
	}
	report.NaturalLanguageInput = naturalLanguageInput
	return report, nil
}

// ApplySchema waits for an existing project's database and runs its stored
// table-creation SQL.
func (p *ProjectCreator) ApplySchema(ctx context.Context, project *domain.Project) (*ProjectCreationReport, error) {
	if strings.TrimSpace(project.SchemaSQL) == "" {
		return nil, ErrNoSchemaToApply
	}
	statements := core.SplitStatements(project.SchemaSQL)
	tableNames := make([]string, 0, len(statements))
	for _, stmt := range statements {
		if name := createdTableName(stmt); name != "" {
			tableNames = append(tableNames, name)
		}
	}
	return p.createTables(ctx, project, tableNames)
}

func (p *ProjectCreator) createTables(ctx context.Context, project *domain.Project, tableNames []string) (*ProjectCreationReport, error) {
	if err := p.Gateway.WaitForReady(ctx, project.ConnectionString); err != nil {
		return nil, p.notReady(project, err)
	}
	conn, err := p.Gateway.Connect(ctx, project.ConnectionString)
	if err != nil {
		return nil, p.notReady(project, err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			customLog.Warnf("Service: Failed to close connection for project %s: %v", project.ID, err)
		}
	}()

	start := time.Now()
	statements := core.SplitStatements(project.SchemaSQL)
	outcome := StatementOutcome{}
	for _, stmt := range statements {
		outcome = outcome.With(runStatement(ctx, conn, p.History, project.ID, project.UserID, stmt, 0))
	}
	total := time.Since(start).Milliseconds()

	customLog.Printf("Service: Project %s tables created: %d, failed: %d", project.ID, len(outcome.Created), len(outcome.Failed))

	details := outcome.All
	if details == nil {
		details = []domain.StatementResult{}
	}
	return &ProjectCreationReport{
		Project: project,
		Schema: SchemaSummary{
			Tables:        tableNames,
			TablesCreated: len(outcome.Created),
			TablesFailed:  len(outcome.Failed),
		},
		SQL: SQLSummary{
			Statements: len(statements),
			Executed:   project.SchemaSQL,
		},
		ExecutionDetails:   details,
		TotalExecutionTime: total,
	}, nil
}

func (p *ProjectCreator) notReady(project *domain.Project, err error) error {
	customLog.Warnf("Service: Database for project %s not ready: %v", project.ID, err)
	return &ReadinessError{
		Project:    project,
		Suggestion: fmt.Sprintf("The project was saved. Retry table creation with POST /api/v1/projects/%s/apply-schema.", project.ID),
		err:        err,
	}
}

func (p *ProjectCreator) newID() string {
	if p.NewID == nil {
		return uuid.NewString()
	}
	return p.NewID()
}

// createdTableName returns the table of a CREATE TABLE statement, or "".
func createdTableName(stmt string) string {
	fields := strings.Fields(stmt)
	if len(fields) < 3 || !strings.EqualFold(fields[0], "CREATE") || !strings.EqualFold(fields[1], "TABLE") {
		return ""
	}
	name := fields[2]
	if strings.EqualFold(name, "IF") && len(fields) >= 6 {
		name = fields[5]
	}
	return strings.Trim(strings.TrimSuffix(name, "("), `"`)
}

// IsReadinessError reports whether err left a persisted project behind.
func IsReadinessError(err error) (*ReadinessError, bool) {
	var re *ReadinessError
	ok := errors.As(err, &re)
	return re, ok
}
