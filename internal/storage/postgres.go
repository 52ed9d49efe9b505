// internal/storage/postgres.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Annany2002/nebula-nlsql/config"
	"github.com/Annany2002/nebula-nlsql/internal/core"
	"github.com/Annany2002/nebula-nlsql/internal/domain"
)

// ErrDatabaseNotReady is returned when a new database does not accept
// connections within the readiness timeout.
var ErrDatabaseNotReady = errors.New("database is not ready")

// maxBaseNameLen leaves room for "_" plus a 6 character suffix within 63 bytes.
const maxBaseNameLen = 56

// PostgresGateway provisions one Postgres database per project through an
// admin connection pool.
type PostgresGateway struct {
	pool          *pgxpool.Pool
	adminURL      string
	prefix        string
	readyTimeout  time.Duration
	readyInterval time.Duration
}

// NewPostgresGateway connects the admin pool described by cfg.AdminDatabaseURL.
func NewPostgresGateway(ctx context.Context, cfg *config.Config) (*PostgresGateway, error) {
	pool, err := pgxpool.New(ctx, cfg.AdminDatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach admin database: %w", err)
	}
	customLog.Println("Storage: Admin Postgres connection successful.")

	return &PostgresGateway{
		pool:          pool,
		adminURL:      cfg.AdminDatabaseURL,
		prefix:        cfg.ProjectDbPrefix,
		readyTimeout:  cfg.ReadinessTimeout,
		readyInterval: cfg.ReadinessInterval,
	}, nil
}

// ProvisionDatabase creates an empty database for the user's project.
func (g *PostgresGateway) ProvisionDatabase(ctx context.Context, userID, projectName string) (*domain.ProvisionedDatabase, error) {
	dbName := databaseNameFor(g.prefix, userID, projectName, uuid.NewString())
	connStr, err := projectConnectionString(g.adminURL, dbName)
	if err != nil {
		return nil, err
	}

	// CREATE DATABASE cannot take parameters; the name is sanitized and quoted.
	if _, err := g.pool.Exec(ctx, "CREATE DATABASE "+core.QuoteIdentifier(dbName)); err != nil {
		customLog.Warnf("Storage: Failed to create database '%s': %v", dbName, err)
		return nil, fmt.Errorf("create database %s: %w", dbName, ClassifyPgError(err))
	}
	customLog.Printf("Storage: Provisioned database '%s' for user %s", dbName, userID)

	return &domain.ProvisionedDatabase{DatabaseName: dbName, ConnectionString: connStr}, nil
}

// WaitForReady polls the new database until it accepts a connection or the
// readiness timeout elapses.
func (g *PostgresGateway) WaitForReady(ctx context.Context, connectionString string) error {
	timeout, interval := g.readyTimeout, g.readyInterval
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if interval <= 0 {
		interval = time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		err := pingDatabase(ctx, connectionString)
		if err == nil {
			customLog.Debugf("Storage: Database ready after %d attempt(s)", attempt)
			return nil
		}
		customLog.Debugf("Storage: Database not ready (attempt %d): %v", attempt, err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w after %d attempts: %v", ErrDatabaseNotReady, attempt, err)
		case <-ticker.C:
		}
	}
}

func pingDatabase(ctx context.Context, connectionString string) error {
	conn, err := pgx.Connect(ctx, connectionString)
	if err != nil {
		return err
	}
	defer conn.Close(context.WithoutCancel(ctx))
	return conn.Ping(ctx)
}

// Connect opens a connection to a project database.
func (g *PostgresGateway) Connect(ctx context.Context, connectionString string) (domain.ProjectConn, error) {
	return ConnectProjectDB(ctx, connectionString)
}

// Close releases the admin pool.
func (g *PostgresGateway) Close() {
	g.pool.Close()
}

// databaseNameFor builds "<prefix>_<user8>_<project>_<suffix6>", sanitized and
// within the Postgres identifier limit.
func databaseNameFor(prefix, userID, projectName, suffix string) string {
	userPart := strings.ReplaceAll(userID, "-", "")
	if len(userPart) > 8 {
		userPart = userPart[:8]
	}
	base := core.SanitizeDatabaseName(prefix, userPart, projectName)
	if len(base) > maxBaseNameLen {
		base = strings.TrimRight(base[:maxBaseNameLen], "_")
	}
	suffix = core.SanitizeDatabaseName(strings.ReplaceAll(suffix, "-", ""))
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	if suffix == "" {
		return base
	}
	return base + "_" + suffix
}

// projectConnectionString swaps the database in the admin URL for dbName.
func projectConnectionString(adminURL, dbName string) (string, error) {
	u, err := url.Parse(adminURL)
	if err != nil || u.Scheme == "" {
		return "", errors.New("admin database url must be a postgres:// url")
	}
	u.Path = "/" + dbName
	u.RawPath = ""
	return u.String(), nil
}
