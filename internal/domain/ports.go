package domain

import "context"

// ProjectConn is an open connection to one project's database.
// Callers must Close it.
type ProjectConn interface {
	Query(ctx context.Context, query string, args ...any) ([]map[string]any, error)
	GetSchema(ctx context.Context) ([]TableSchema, error)
	Close() error
}

// DatabaseGateway provisions project databases and opens connections to them.
type DatabaseGateway interface {
	ProvisionDatabase(ctx context.Context, userID, projectName string) (*ProvisionedDatabase, error)
	WaitForReady(ctx context.Context, connectionString string) error
	Connect(ctx context.Context, connectionString string) (ProjectConn, error)
}

// ProjectStore persists project metadata.
// FindProjectByName returns (nil, nil) when no project matches.
type ProjectStore interface {
	FindProjectByName(ctx context.Context, userID, projectName string) (*Project, error)
	FindProjectByID(ctx context.Context, userID, projectID string) (*Project, error)
	CreateProject(ctx context.Context, project *Project) error
	ListProjects(ctx context.Context, userID string) ([]Project, error)
}

// HistoryLogger records statement executions. Log never fails the caller.
type HistoryLogger interface {
	Log(ctx context.Context, entry QueryHistoryEntry)
}
