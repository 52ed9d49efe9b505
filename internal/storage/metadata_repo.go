// internal/storage/metadata_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/Annany2002/nebula-nlsql/internal/domain"
)

// Specific errors for metadata operations
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrProjectNotFound    = errors.New("project not found for this user")
	ErrDatabaseNameExists = errors.New("database name is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// --- User Operations ---

// CreateUser inserts a new user into the metadata database.
func CreateUser(ctx context.Context, db *sql.DB, userID, username, email, passwordHash string) (string, error) {
	sqlStatement := `INSERT INTO users (user_id, username, email, password_hash) VALUES (?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, sqlStatement, userID, username, email, passwordHash)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			if strings.Contains(sqliteErr.Error(), "users.email") {
				return "", ErrEmailExists
			}
		}
		customLog.Warnf("Storage: Failed to insert user %s: %v", email, err)
		return "", fmt.Errorf("database error during user creation: %w", err)
	}

	return userID, nil
}

const userColumns = `user_id, username, email, password_hash, created_at`

// FindUserByEmail retrieves a user by their email address.
func FindUserByEmail(ctx context.Context, db *sql.DB, email string) (*domain.UserMetadata, error) {
	row := db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email)
	user, err := scanUser(row)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		customLog.Warnf("Storage: Failed to find user by email %s: %v", email, err)
	}
	return user, err
}

// FindUserByUserId finds a user with user_id
func FindUserByUserId(ctx context.Context, db *sql.DB, userID string) (*domain.UserMetadata, error) {
	row := db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = ? LIMIT 1`, userID)
	user, err := scanUser(row)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		customLog.Warnf("Storage: Failed to find user by user_id %s: %v", userID, err)
	}
	return user, err
}

func scanUser(row *sql.Row) (*domain.UserMetadata, error) {
	var user domain.UserMetadata
	err := row.Scan(&user.UserId, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error finding user: %w", err)
	}
	return &user, nil
}

// --- Project Operations ---

const projectColumns = `project_id, owner_id, project_name, database_name, description, connection_string, schema_sql, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	if err := row.Scan(&p.ID, &p.UserID, &p.ProjectName, &p.DatabaseName, &p.Description, &p.ConnectionString, &p.SchemaSQL, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject inserts a project row. CreatedAt is set when zero.
func CreateProject(ctx context.Context, db *sql.DB, p *domain.Project) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	sqlStatement := `INSERT INTO projects (` + projectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, sqlStatement, p.ID, p.UserID, p.ProjectName, p.DatabaseName, p.Description, p.ConnectionString, p.SchemaSQL, p.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			customLog.Warnf("Storage: Database name '%s' already registered: %v", p.DatabaseName, err)
			return ErrDatabaseNameExists
		}
		customLog.Warnf("Storage: Failed to insert project '%s' for user %s: %v", p.ProjectName, p.UserID, err)
		return fmt.Errorf("database error registering project: %w", err)
	}
	return nil
}

// FindProjectByName returns (nil, nil) when the user has no project with that name.
func FindProjectByName(ctx context.Context, db *sql.DB, userID, projectName string) (*domain.Project, error) {
	lookupSQL := `SELECT ` + projectColumns + ` FROM projects WHERE owner_id = ? AND project_name = ? LIMIT 1`
	p, err := scanProject(db.QueryRowContext(ctx, lookupSQL, userID, projectName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		customLog.Warnf("Storage: Error looking up project '%s' for user %s: %v", projectName, userID, err)
		return nil, fmt.Errorf("database error finding project: %w", err)
	}
	return p, nil
}

// FindProjectByID returns ErrProjectNotFound unless the project exists and belongs to userID.
func FindProjectByID(ctx context.Context, db *sql.DB, userID, projectID string) (*domain.Project, error) {
	lookupSQL := `SELECT ` + projectColumns + ` FROM projects WHERE owner_id = ? AND project_id = ? LIMIT 1`
	p, err := scanProject(db.QueryRowContext(ctx, lookupSQL, userID, projectID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		customLog.Warnf("Storage: Error looking up project %s for user %s: %v", projectID, userID, err)
		return nil, fmt.Errorf("database error finding project: %w", err)
	}
	return p, nil
}

// ListProjects returns the user's projects, newest first.
func ListProjects(ctx context.Context, db *sql.DB, userID string) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE owner_id = ? ORDER BY created_at DESC, project_name;`
	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		customLog.Warnf("Storage: Error listing projects for UserID %s: %v", userID, err)
		return nil, fmt.Errorf("database error listing projects: %w", err)
	}
	defer rows.Close()

	projects := make([]domain.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			customLog.Warnf("Storage: Error scanning project for UserID %s: %v", userID, err)
			return nil, fmt.Errorf("failed processing project list: %w", err)
		}
		projects = append(projects, *p)
	}
	if err = rows.Err(); err != nil {
		customLog.Warnf("Storage: Error iterating project list for UserID %s: %v", userID, err)
		return nil, fmt.Errorf("failed reading project list: %w", err)
	}
	return projects, nil
}

// MetadataStore exposes the project functions as a domain.ProjectStore.
type MetadataStore struct {
	DB *sql.DB
}

// NewMetadataStore wraps an open metadata database.
func NewMetadataStore(db *sql.DB) *MetadataStore {
	return &MetadataStore{DB: db}
}

func (s *MetadataStore) FindProjectByName(ctx context.Context, userID, projectName string) (*domain.Project, error) {
	return FindProjectByName(ctx, s.DB, userID, projectName)
}

func (s *MetadataStore) FindProjectByID(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	return FindProjectByID(ctx, s.DB, userID, projectID)
}

func (s *MetadataStore) CreateProject(ctx context.Context, p *domain.Project) error {
	return CreateProject(ctx, s.DB, p)
}

func (s *MetadataStore) ListProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	return ListProjects(ctx, s.DB, userID)
}
