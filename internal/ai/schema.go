// internal/ai/schema.go
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Annany2002/nebula-nlsql/internal/domain"
	"github.com/Annany2002/nebula-nlsql/internal/llm"
	"github.com/Annany2002/nebula-nlsql/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// InferDatabaseSchema asks the model to design tables for a project description.
func InferDatabaseSchema(ctx context.Context, client llm.Client, description string) (*domain.InferredSchema, error) {
	resp, err := client.GenerateText(ctx, llm.GenerateRequest{
		Prompt:      fmt.Sprintf(inferSchemaPrompt, description),
		Temperature: 0.2,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInferenceFailed, err)
	}

	schema, err := decodeInferredSchema(llm.StripCodeFences(resp.Text))
	if err != nil {
		customLog.Warnf("AI: rejected inferred schema: %v", err)
		return nil, err
	}
	customLog.Printf("AI: inferred schema '%s' with %d tables", schema.ProjectName, len(schema.Tables))
	return schema, nil
}

// decodeInferredSchema checks field presence and kinds before decoding the tables.
func decodeInferredSchema(text string) (*domain.InferredSchema, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: response is not a JSON object: %v", ErrInvalidSchemaStructure, err)
	}

	var name string
	if err := json.Unmarshal(raw["projectName"], &name); err != nil || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: projectName must be a non-empty string", ErrInvalidSchemaStructure)
	}

	tablesRaw := bytes.TrimSpace(raw["tables"])
	if len(tablesRaw) == 0 || tablesRaw[0] != '[' {
		return nil, fmt.Errorf("%w: tables must be an array", ErrInvalidSchemaStructure)
	}
	var tables []domain.TableDefinition
	if err := json.Unmarshal(tablesRaw, &tables); err != nil {
		return nil, fmt.Errorf("%w: tables: %v", ErrInvalidSchemaStructure, err)
	}

	var description string
	if d, ok := raw["description"]; ok {
		_ = json.Unmarshal(d, &description)
	}

	return &domain.InferredSchema{
		ProjectName: strings.TrimSpace(name),
		Description: description,
		Tables:      tables,
	}, nil
}
