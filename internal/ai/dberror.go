// internal/ai/dberror.go
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Annany2002/nebula-nlsql/internal/core"
	"github.com/Annany2002/nebula-nlsql/internal/domain"
	"github.com/Annany2002/nebula-nlsql/internal/llm"
)

const (
	maxOriginalErrorLen = 200
	maxExplanationLen   = 300

	fallbackErrorType = "Unknown"
	fallbackSummary   = "The database could not complete the operation."
)

type rawParsedError struct {
	ErrorType               *string `json:"errorType"`
	Summary                 *string `json:"summary"`
	UserFriendlyExplanation *string `json:"userFriendlyExplanation"`
	ForeignKeyExplanation   *string `json:"foreignKeyExplanation"`
}

// ParseDbError explains a database error in user-facing terms. It never fails:
// when the model is unreachable or answers with the wrong shape, a fixed
// fallback with ErrorType "Unknown" is returned.
func ParseDbError(ctx context.Context, client llm.Client, dbErr any, sqlText string, schema []domain.TableSchema) (result domain.ParsedDbError) {
	var (
		message string
		details domain.TechnicalDetails
	)
	defer func() {
		if r := recover(); r != nil {
			customLog.Errorf("AI: recovered while explaining database error: %v", r)
			if message == "" {
				message = "unknown error"
				details.OriginalError = message
			}
			result = fallbackParsedError(message, details)
		}
	}()

	message = normalizeError(dbErr)
	details = domain.TechnicalDetails{
		OriginalError: core.Truncate(message, maxOriginalErrorLen),
		AvailableContext: domain.ErrorContext{
			Schema: len(schema) > 0,
			SQL:    strings.TrimSpace(sqlText) != "",
		},
		MissingData: []string{},
	}
	if !details.AvailableContext.SQL {
		details.MissingData = append(details.MissingData, "sql")
	}
	if !details.AvailableContext.Schema {
		details.MissingData = append(details.MissingData, "schema")
	}
	result = fallbackParsedError(message, details)

	if client == nil {
		return result
	}

	sqlContext := unavailable
	if details.AvailableContext.SQL {
		sqlContext = sqlText
	}
	schemaContext := unavailable
	if details.AvailableContext.Schema {
		schemaContext = RenderSchema(schema)
	}

	resp, err := client.GenerateText(ctx, llm.GenerateRequest{
		Prompt:      fmt.Sprintf(dbErrorPrompt, message, sqlContext, schemaContext),
		Temperature: 0.1,
		MaxTokens:   800,
	})
	if err != nil {
		customLog.Warnf("AI: error explanation unavailable, using fallback: %v", err)
		return result
	}

	var raw rawParsedError
	if err := json.Unmarshal([]byte(llm.StripCodeFences(resp.Text)), &raw); err != nil {
		customLog.Warnf("AI: malformed error explanation, using fallback: %v", err)
		return result
	}
	if raw.ErrorType == nil || raw.Summary == nil || raw.UserFriendlyExplanation == nil ||
		*raw.ErrorType == "" || *raw.UserFriendlyExplanation == "" {
		customLog.Warnln("AI: error explanation missing required fields, using fallback")
		return result
	}

	return domain.ParsedDbError{
		ErrorType:               *raw.ErrorType,
		Summary:                 *raw.Summary,
		UserFriendlyExplanation: *raw.UserFriendlyExplanation,
		ForeignKeyExplanation:   raw.ForeignKeyExplanation,
		TechnicalDetails:        details,
	}
}

func fallbackParsedError(message string, details domain.TechnicalDetails) domain.ParsedDbError {
	return domain.ParsedDbError{
		ErrorType:               fallbackErrorType,
		Summary:                 fallbackSummary,
		UserFriendlyExplanation: core.Truncate(message, maxExplanationLen),
		ForeignKeyExplanation:   nil,
		TechnicalDetails:        details,
	}
}

// normalizeError flattens any error value into text.
func normalizeError(v any) string {
	switch e := v.(type) {
	case nil:
		return "unknown error"
	case string:
		return e
	case error:
		return e.Error()
	case fmt.Stringer:
		return e.String()
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprint(v)
}
