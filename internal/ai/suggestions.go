// internal/ai/suggestions.go
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Annany2002/nebula-nlsql/internal/domain"
	"github.com/Annany2002/nebula-nlsql/internal/llm"
)

const maxSuggestions = 5

// SuggestQueries returns example questions for the schema. When the model
// fails, suggestions are built from the table names.
func SuggestQueries(ctx context.Context, client llm.Client, schema []domain.TableSchema) []string {
	if client != nil && len(schema) > 0 {
		resp, err := client.GenerateText(ctx, llm.GenerateRequest{
			Prompt:      fmt.Sprintf(suggestionsPrompt, RenderSchema(schema), maxSuggestions),
			Temperature: 0.7,
			MaxTokens:   500,
		})
		if err == nil {
			var suggestions []string
			if err := json.Unmarshal([]byte(llm.StripCodeFences(resp.Text)), &suggestions); err == nil {
				if cleaned := cleanSuggestions(suggestions); len(cleaned) > 0 {
					return cleaned
				}
			}
		}
		customLog.Debugf("AI: falling back to table-based suggestions")
	}
	return fallbackSuggestions(schema)
}

func cleanSuggestions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

func fallbackSuggestions(schema []domain.TableSchema) []string {
	if len(schema) == 0 {
		return []string{"Create a table to start storing data"}
	}
	out := make([]string, 0, maxSuggestions)
	for _, t := range schema {
		out = append(out, fmt.Sprintf("Show the latest 10 rows from %s", t.Name))
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, fmt.Sprintf("How many rows are in %s?", t.Name))
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
