// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Annany2002/nebula-nlsql/internal/core"
	"github.com/Annany2002/nebula-nlsql/internal/domain"
)

// Error categories. Concrete errors wrap exactly one of these so callers can
// map them to a status with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrUpstream     = errors.New("upstream service error")
	ErrDataCoercion = errors.New("data coercion error")
	ErrExecution    = errors.New("execution error")
)

var (
	ErrEmptyInput        = fmt.Errorf("%w: naturalLanguageInput must be a non-empty string", ErrValidation)
	ErrTableNotFound     = fmt.Errorf("%w: table not found", ErrNotFound)
	ErrNoValidColumns    = fmt.Errorf("%w: no valid columns provided", ErrValidation)
	ErrMissingConnection = fmt.Errorf("%w: project connection information is missing", ErrValidation)
	ErrNoStatements      = fmt.Errorf("%w: no statements to execute", ErrValidation)
	ErrProjectNotReady   = fmt.Errorf("%w: project database is not yet ready", ErrUpstream)
	ErrNoSchemaToApply   = fmt.Errorf("%w: project has no stored schema to apply", ErrValidation)
)

// MissingRequiredColumnsError lists NOT NULL columns without a default that the payload omitted.
type MissingRequiredColumnsError struct {
	Missing []string
}

func (e *MissingRequiredColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

func (e *MissingRequiredColumnsError) Unwrap() error { return ErrValidation }

// InvalidDateFormatError is a date-typed column value that could not be parsed.
type InvalidDateFormatError struct {
	Column string
	Value  string
}

func (e *InvalidDateFormatError) Error() string {
	return fmt.Sprintf("invalid date format for column '%s': %q", e.Column, e.Value)
}

func (e *InvalidDateFormatError) Unwrap() []error {
	return []error{ErrDataCoercion, core.ErrInvalidDateFormat}
}

// InsertExecutionError carries the driver message of a failed INSERT.
type InsertExecutionError struct {
	Detail string
	err    error
}

func (e *InsertExecutionError) Error() string {
	return "insert failed: " + e.Detail
}

func (e *InsertExecutionError) Unwrap() []error { return []error{ErrExecution, e.err} }

// SchemaInferenceError is returned when the project description could not be
// turned into a schema.
type SchemaInferenceError struct {
	Details string
	err     error
}

func (e *SchemaInferenceError) Error() string {
	return "failed to infer database schema: " + e.Details
}

func (e *SchemaInferenceError) Unwrap() []error { return []error{ErrUpstream, e.err} }

// ProjectConflictError means the user already owns a project with that name.
type ProjectConflictError struct {
	ProjectName string
	Suggestion  string
}

func (e *ProjectConflictError) Error() string {
	return fmt.Sprintf("a project named '%s' already exists", e.ProjectName)
}

func (e *ProjectConflictError) Unwrap() error { return ErrConflict }

// ProvisioningError means the project database could not be created.
type ProvisioningError struct {
	Details string
	err     error
}

func (e *ProvisioningError) Error() string {
	return "failed to create database: " + e.Details
}

func (e *ProvisioningError) Unwrap() []error { return []error{ErrUpstream, e.err} }

// ReadinessError is returned after the project row exists but its database
// could not be reached. Table creation can be resumed with the project id.
type ReadinessError struct {
	Project    *domain.Project
	Suggestion string
	err        error
}

func (e *ReadinessError) Error() string {
	return fmt.Sprintf("database for project '%s' is not yet ready: %v", e.Project.ProjectName, e.err)
}

func (e *ReadinessError) Unwrap() []error { return []error{ErrProjectNotReady, e.err} }
