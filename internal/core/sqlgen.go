// internal/core/sqlgen.go
package core

import (
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Annany2002/nebula-nlsql/internal/domain"
)

// GenerateCreateTableStatements renders inferred tables as CREATE TABLE text.
// Each column is "<name> <type>[ <constraints...>][ REFERENCES <target>]".
func GenerateCreateTableStatements(tables []domain.TableDefinition) string {
	statements := make([]string, 0, len(tables))
	for _, table := range tables {
		columns := make([]string, 0, len(table.Columns))
		for _, col := range table.Columns {
			parts := []string{col.Name, col.Type}
			for _, c := range col.Constraints {
				if c = strings.TrimSpace(c); c != "" {
					parts = append(parts, c)
				}
			}
			if col.References != "" {
				parts = append(parts, "REFERENCES "+col.References)
			}
			columns = append(columns, "  "+strings.Join(parts, " "))
		}
		statements = append(statements, "CREATE TABLE "+table.Name+" (\n"+strings.Join(columns, ",\n")+"\n);")
	}
	return strings.Join(statements, "\n\n")
}

// SplitStatements splits SQL text on ';', trimming and dropping empty fragments.
// It does not understand quoted semicolons.
func SplitStatements(sqlText string) []string {
	fragments := strings.Split(sqlText, ";")
	statements := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f = strings.TrimSpace(f); f != "" {
			statements = append(statements, f)
		}
	}
	return statements
}

var knownQueryTypes = map[string]bool{
	"SELECT": true, "INSERT": true, "UPDATE": true, "DELETE": true,
	"CREATE": true, "ALTER": true, "DROP": true, "TRUNCATE": true,
	"WITH": true, "EXPLAIN": true,
}

// DetectQueryType returns the statement's leading keyword in upper case, or "OTHER".
func DetectQueryType(sqlText string) string {
	fields := strings.Fields(sqlText)
	if len(fields) == 0 {
		return "OTHER"
	}
	kw := strings.ToUpper(strings.TrimLeft(fields[0], "("))
	if knownQueryTypes[kw] {
		return kw
	}
	return "OTHER"
}

// IsReadOnlyStatement reports whether a statement only reads data.
func IsReadOnlyStatement(sqlText string) bool {
	switch DetectQueryType(sqlText) {
	case "SELECT", "EXPLAIN":
		return true
	case "WITH":
		upper := strings.ToUpper(sqlText)
		for _, kw := range []string{"INSERT ", "UPDATE ", "DELETE ", "DROP ", "ALTER "} {
			if strings.Contains(upper, kw) {
				return false
			}
		}
		return true
	}
	return false
}

// QuoteIdentifier quotes a single identifier for Postgres.
func QuoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// QualifiedName quotes schema and table as "schema"."table".
// An empty schema yields just the quoted table.
func QualifiedName(schema, table string) string {
	if schema == "" {
		return pgx.Identifier{table}.Sanitize()
	}
	return pgx.Identifier{schema, table}.Sanitize()
}
