// internal/ai/analyzer.go
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

// rawOperation keeps pointers so missing keys can be told apart from zero values.
type rawOperation struct {
	Type         *string `json:"type"`
	Target       *string `json:"target"`
	SQL          *string `json:"sql"`
	Explanation  *string `json:"explaination"`
	RiskLevel    *string `json:"risk_level"`
	IsIdempotent *bool   `json:"is_idempotent"`
}

type rawAnalysis struct {
	Operations           *[]rawOperation `json:"operations"`
	Summary              *string         `json:"summary"`
	RequiresConfirmation *bool           `json:"requires_confirmation"`
	EstimatedImpact      *string         `json:"estimated_impact"`
}

// AnalyzeProjectUpdateRequest turns a schema change request into a plan of
// operations. The result always requires confirmation.
func AnalyzeProjectUpdateRequest(ctx context.Context, client llm.Client, request string, schema []domain.TableSchema, dbName string) (*domain.UpdateAnalysis, error) {
	text, err := generate(ctx, client, fmt.Sprintf(updatePrompt, dbName, RenderSchema(schema), request))
	if err != nil {
		return nil, err
	}
	analysis, err := decodeAnalysis(text)
	if err != nil {
		return nil, err
	}
	analysis.RequiresConfirmation = true
	return analysis, nil
}

// AnalyzeCreateTableRequest proposes a single CREATE TABLE operation.
func AnalyzeCreateTableRequest(ctx context.Context, client llm.Client, request string, schema []domain.TableSchema) (*domain.ProposedOperation, error) {
	text, err := generate(ctx, client, fmt.Sprintf(createTablePrompt, RenderSchema(schema), request))
	if err != nil {
		return nil, err
	}

	var raw rawOperation
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponseStructure, err)
	}
	op, err := raw.validate()
	if err != nil {
		return nil, err
	}
	if core.DetectQueryType(op.SQL) != "CREATE" {
		return nil, fmt.Errorf("%w: expected a CREATE statement, got %s", ErrInvalidResponseStructure, core.DetectQueryType(op.SQL))
	}
	return op, nil
}

// AnalyzeQuery translates a natural-language question or command into SQL.
// Confirmation is required whenever any operation writes or is high risk.
func AnalyzeQuery(ctx context.Context, client llm.Client, request string, schema []domain.TableSchema) (*domain.UpdateAnalysis, error) {
	text, err := generate(ctx, client, fmt.Sprintf(queryPrompt, RenderSchema(schema), request))
	if err != nil {
		return nil, err
	}
	analysis, err := decodeAnalysis(text)
	if err != nil {
		return nil, err
	}
	for _, op := range analysis.Operations {
		if !core.IsReadOnlyStatement(op.SQL) || op.RiskLevel == domain.RiskHigh {
			analysis.RequiresConfirmation = true
			break
		}
	}
	return analysis, nil
}

func generate(ctx context.Context, client llm.Client, prompt string) (string, error) {
	resp, err := client.GenerateText(ctx, llm.GenerateRequest{
		Prompt:      prompt,
		Temperature: 0.1,
		MaxTokens:   2000,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	return llm.StripCodeFences(resp.Text), nil
}

func decodeAnalysis(text string) (*domain.UpdateAnalysis, error) {
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponseStructure, err)
	}
	if raw.Operations == nil {
		return nil, fmt.Errorf("%w: missing operations array", ErrInvalidResponseStructure)
	}

	analysis := &domain.UpdateAnalysis{Operations: make([]domain.ProposedOperation, 0, len(*raw.Operations))}
	for i, r := range *raw.Operations {
		op, err := r.validate()
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		analysis.Operations = append(analysis.Operations, *op)
	}
	if raw.Summary != nil {
		analysis.Summary = *raw.Summary
	}
	if raw.RequiresConfirmation != nil {
		analysis.RequiresConfirmation = *raw.RequiresConfirmation
	}
	if raw.EstimatedImpact != nil {
		analysis.EstimatedImpact = *raw.EstimatedImpact
	}
	return analysis, nil
}

// validate requires type and sql. An unknown or missing risk level is
// treated as high.
func (r rawOperation) validate() (*domain.ProposedOperation, error) {
	if r.Type == nil || strings.TrimSpace(*r.Type) == "" {
		return nil, fmt.Errorf("%w: operation type is required", ErrInvalidResponseStructure)
	}
	if r.SQL == nil || strings.TrimSpace(*r.SQL) == "" {
		return nil, fmt.Errorf("%w: operation sql is required", ErrInvalidResponseStructure)
	}

	op := &domain.ProposedOperation{
		Type:      strings.TrimSpace(*r.Type),
		SQL:       strings.TrimSpace(*r.SQL),
		RiskLevel: domain.RiskHigh,
	}
	if r.Target != nil {
		op.Target = *r.Target
	}
	if r.Explanation != nil {
		op.Explanation = *r.Explanation
	}
	if r.IsIdempotent != nil {
		op.IsIdempotent = *r.IsIdempotent
	}
	if r.RiskLevel != nil {
		switch level := strings.ToLower(strings.TrimSpace(*r.RiskLevel)); level {
		case domain.RiskLow, domain.RiskMedium, domain.RiskHigh:
			op.RiskLevel = level
		}
	}
	return op, nil
}
