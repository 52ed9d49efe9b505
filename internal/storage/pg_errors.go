// internal/storage/pg_errors.go
package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error classes surfaced to callers.
var (
	ErrUniqueViolation     = errors.New("unique constraint violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrNotNullViolation    = errors.New("not-null constraint violation")
	ErrUndefinedTable      = errors.New("table does not exist")
	ErrUndefinedColumn     = errors.New("column does not exist")
	ErrDuplicateTable      = errors.New("table already exists")
	ErrDuplicateDatabase   = errors.New("database already exists")
	ErrSyntax              = errors.New("sql syntax error")
	ErrInvalidValue        = errors.New("invalid value for column type")
)

var pgErrorKinds = map[string]error{
	"23505": ErrUniqueViolation,
	"23503": ErrForeignKeyViolation,
	"23502": ErrNotNullViolation,
	"42P01": ErrUndefinedTable,
	"42703": ErrUndefinedColumn,
	"42P07": ErrDuplicateTable,
	"42P04": ErrDuplicateDatabase,
	"42601": ErrSyntax,
	"22007": ErrInvalidValue,
	"22008": ErrInvalidValue,
	"22P02": ErrInvalidValue,
}

// DBError is a Postgres error with its class attached.
type DBError struct {
	Kind    error
	Code    string
	Message string
	Detail  string
	Hint    string
	err     error
}

func (e *DBError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ERROR: %s (SQLSTATE %s)", e.Message, e.Code)
	if e.Detail != "" {
		b.WriteString(" DETAIL: " + e.Detail)
	}
	if e.Hint != "" {
		b.WriteString(" HINT: " + e.Hint)
	}
	return b.String()
}

func (e *DBError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.err}
	}
	return []error{e.Kind, e.err}
}

// ClassifyPgError converts a *pgconn.PgError into a *DBError. Other errors
// are returned unchanged.
func ClassifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	return &DBError{
		Kind:    pgErrorKinds[pgErr.Code],
		Code:    pgErr.Code,
		Message: pgErr.Message,
		Detail:  pgErr.Detail,
		Hint:    pgErr.Hint,
		err:     err,
	}
}
