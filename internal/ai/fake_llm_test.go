package ai

import (
	"context"

	"github.com/Annany2002/nebula-nlsql/internal/llm"
)

// fakeLLM returns a canned answer and records prompts.
type fakeLLM struct {
	text    string
	err     error
	panics  bool
	prompts []string
}

func (f *fakeLLM) GenerateText(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.prompts = append(f.prompts, req.Prompt)
	if f.panics {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llm.GenerateResponse{Text: f.text}, nil
}
