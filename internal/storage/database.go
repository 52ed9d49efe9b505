// internal/storage/database.go
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // Driver registration

	"github.com/Annany2002/nebula-nlsql/config"
	"github.com/Annany2002/nebula-nlsql/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

var metadataSchema = []struct {
	name string
	ddl  string
}{
	{"users", `
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY UNIQUE NOT NULL,
		username TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`},
	// No UNIQUE (owner_id, project_name): name uniqueness is checked before provisioning.
	{"projects", `
	CREATE TABLE IF NOT EXISTS projects (
		project_id TEXT PRIMARY KEY NOT NULL,
		owner_id TEXT NOT NULL,
		project_name TEXT NOT NULL,
		database_name TEXT UNIQUE NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		connection_string TEXT NOT NULL,
		schema_sql TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (owner_id) REFERENCES users(user_id) ON DELETE CASCADE
	);`},
	{"projects_owner_name_idx", `CREATE INDEX IF NOT EXISTS projects_owner_name_idx ON projects (owner_id, project_name);`},
	{"query_history", `
	CREATE TABLE IF NOT EXISTS query_history (
		history_id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		query_text TEXT NOT NULL,
		params TEXT,
		query_type TEXT NOT NULL DEFAULT 'OTHER',
		success INTEGER NOT NULL,
		error_message TEXT,
		execution_time_ms INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (project_id) REFERENCES projects(project_id) ON DELETE CASCADE
	);`},
	{"query_history_project_idx", `CREATE INDEX IF NOT EXISTS query_history_project_idx ON query_history (project_id, created_at);`},
}

// ConnectMetadataDB initializes the connection pool for the metadata SQLite database
// and ensures the 'users', 'projects' and 'query_history' tables exist.
func ConnectMetadataDB(cfg *config.Config) (*sql.DB, error) {
	dbPath := filepath.Join(cfg.MetadataDbDir, cfg.MetadataDbFile)
	customLog.Printf("Storage: Initializing metadata database: %s", dbPath)

	if err := os.MkdirAll(cfg.MetadataDbDir, 0o750); err != nil {
		customLog.Warnf("Storage: Error creating data directory '%s': %v", cfg.MetadataDbDir, err)
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// foreign keys on, WAL mode, 5s busy timeout
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		customLog.Warnf("Storage: Failed to open metadata db '%s': %v", dbPath, err)
		return nil, fmt.Errorf("failed to open metadata db: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		customLog.Warnf("Storage: Failed to ping metadata db '%s': %v", dbPath, err)
		return nil, fmt.Errorf("failed to connect to metadata db: %w", err)
	}
	customLog.Println("Storage: Metadata database connection successful.")

	for _, object := range metadataSchema {
		if _, err = db.Exec(object.ddl); err != nil {
			db.Close()
			customLog.Warnf("Storage: Failed to create %s: %v", object.name, err)
			return nil, fmt.Errorf("failed to ensure %s: %w", object.name, err)
		}
		customLog.Debugf("Storage: %s ensured.", object.name)
	}

	return db, nil
}
