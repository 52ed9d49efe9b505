// internal/storage/project_db.go
package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/Annany2002/nebula-nlsql/internal/domain"
)

// DefaultSchema is where project tables live.
const DefaultSchema = "public"

// ProjectDB is an open connection to one project database.
// The caller is responsible for closing it.
type ProjectDB struct {
	db     *sqlx.DB
	schema string
}

// ConnectProjectDB opens and pings a project database.
func ConnectProjectDB(ctx context.Context, connectionString string) (*ProjectDB, error) {
	config, err := pgx.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	// Parameters are interpolated client side, so "$1::date" casts apply to text values.
	config.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	db := sqlx.NewDb(stdlib.OpenDB(*config), "pgx")
	db.SetMaxOpenConns(2)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		customLog.Warnf("Storage: Failed to ping project DB '%s': %v", config.Database, err)
		return nil, fmt.Errorf("failed to connect to project database: %w", err)
	}
	return &ProjectDB{db: db, schema: DefaultSchema}, nil
}

// Query runs a statement and returns its rows as column maps. Statements
// without a result set return an empty slice.
func (p *ProjectDB) Query(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := p.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, ClassifyPgError(err)
	}
	defer rows.Close()

	results := make([]map[string]any, 0)
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("unable to scan row: %w", err)
		}
		results = append(results, normalizeRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, ClassifyPgError(err)
	}
	return results, nil
}

func normalizeRow(row map[string]any) map[string]any {
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}
	return row
}

type columnInfo struct {
	TableName         string  `db:"table_name"`
	ColumnName        string  `db:"column_name"`
	ColumnType        string  `db:"column_type"`
	Nullable          bool    `db:"nullable"`
	ColumnDefault     *string `db:"column_default"`
	IsPrimary         bool    `db:"is_primary"`
	IsUnique          bool    `db:"is_unique"`
	ForeignTableName  *string `db:"foreign_table_name"`
	ForeignColumnName *string `db:"foreign_column_name"`
}

const schemaQuery = `
	WITH key_info AS (
		SELECT kcu.table_name, kcu.column_name, tc.constraint_type
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.table_schema = $1
			AND tc.constraint_type IN ('PRIMARY KEY', 'UNIQUE')
	),
	fk_info AS (
		SELECT
			kcu.table_name,
			kcu.column_name,
			ccu.table_name AS foreign_table_name,
			ccu.column_name AS foreign_column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1
	)
	SELECT
		c.table_name,
		c.column_name,
		CASE WHEN c.data_type = 'USER-DEFINED' THEN c.udt_name ELSE c.data_type END AS column_type,
		c.is_nullable = 'YES' AS nullable,
		c.column_default,
		EXISTS (SELECT 1 FROM key_info k WHERE k.table_name = c.table_name AND k.column_name = c.column_name AND k.constraint_type = 'PRIMARY KEY') AS is_primary,
		EXISTS (SELECT 1 FROM key_info k WHERE k.table_name = c.table_name AND k.column_name = c.column_name AND k.constraint_type = 'UNIQUE') AS is_unique,
		fk.foreign_table_name,
		fk.foreign_column_name
	FROM information_schema.columns c
	JOIN information_schema.tables t
		ON t.table_schema = c.table_schema AND t.table_name = c.table_name
	LEFT JOIN fk_info fk
		ON fk.table_name = c.table_name AND fk.column_name = c.column_name
	WHERE c.table_schema = $1
		AND t.table_type = 'BASE TABLE'
	ORDER BY c.table_name, c.ordinal_position;
`

// GetSchema introspects the tables of the project schema, columns in ordinal order.
func (p *ProjectDB) GetSchema(ctx context.Context) ([]domain.TableSchema, error) {
	var infos []columnInfo
	if err := p.db.SelectContext(ctx, &infos, schemaQuery, p.schema); err != nil {
		customLog.Warnf("Storage: Failed to introspect schema '%s': %v", p.schema, err)
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	return buildTableSchemas(infos), nil
}

// buildTableSchemas groups rows by table. A column referencing several
// tables arrives once per reference and is merged.
func buildTableSchemas(infos []columnInfo) []domain.TableSchema {
	tables := make([]domain.TableSchema, 0)
	for _, info := range infos {
		if len(tables) == 0 || tables[len(tables)-1].Name != info.TableName {
			tables = append(tables, domain.TableSchema{Name: info.TableName})
		}
		table := &tables[len(tables)-1]

		col := table.Column(info.ColumnName)
		if col == nil {
			table.Columns = append(table.Columns, domain.ColumnMetadata{
				Name:     info.ColumnName,
				Type:     info.ColumnType,
				Nullable: info.Nullable,
				Default:  info.ColumnDefault,
			})
			col = &table.Columns[len(table.Columns)-1]
			if info.IsPrimary {
				col.Constraints = append(col.Constraints, "PRIMARY KEY")
			}
			if info.IsUnique {
				col.Constraints = append(col.Constraints, "UNIQUE")
			}
		}
		if info.ForeignTableName != nil && info.ForeignColumnName != nil {
			col.Constraints = append(col.Constraints, fmt.Sprintf("REFERENCES %s(%s)", *info.ForeignTableName, *info.ForeignColumnName))
		}
	}
	return tables
}

// Close releases the connection pool.
func (p *ProjectDB) Close() error {
	return p.db.Close()
}
