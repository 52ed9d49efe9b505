// internal/ai/errors.go
package ai

import "errors"

var (
	// ErrSchemaInferenceFailed wraps transport failures of the schema inference call.
	ErrSchemaInferenceFailed = errors.New("schema inference failed")
	// ErrInvalidSchemaStructure means the model answered but not with a usable schema.
	ErrInvalidSchemaStructure = errors.New("invalid schema structure")
	// ErrInvalidResponseStructure means an analyzer response was malformed or incomplete.
	ErrInvalidResponseStructure = errors.New("invalid response structure")
	// ErrAnalysisFailed wraps transport failures of analyzer calls.
	ErrAnalysisFailed = errors.New("analysis request failed")
)
