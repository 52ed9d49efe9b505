// internal/llm/client.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/Annany2002/nebula-nlsql/config"
	"github.com/Annany2002/nebula-nlsql/internal/logger"
)

var (
	customLog = logger.NewLogger()

	// ErrEmptyCompletion is returned when the backend answers without any choice.
	ErrEmptyCompletion = errors.New("llm returned no completion")
	// ErrMissingAPIKey is returned by NewOpenAIClient when no key is configured.
	ErrMissingAPIKey = errors.New("llm api key is not configured")
)

// GenerateRequest is a single prompt sent to the text-generation backend.
// Zero Model/Temperature/MaxTokens fall back to the client's defaults.
type GenerateRequest struct {
	Model       string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// GenerateResponse carries the raw generated text.
type GenerateResponse struct {
	Text string
}

// Client generates text from a prompt.
type Client interface {
	GenerateText(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// OpenAIClient implements Client over the OpenAI chat completion API
// or any compatible endpoint.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAIClient builds a client from the LLM section of the config.
func NewOpenAIClient(cfg config.LLMConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	openaiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		openaiCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(openaiCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// GenerateText sends the prompt as a single user message.
func (c *OpenAIClient) GenerateText(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	})
	if err != nil {
		customLog.Warnf("LLM: completion request failed (model %s): %v", model, err)
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	customLog.Debugf("LLM: completion finished (model %s, %d tokens)", model, resp.Usage.TotalTokens)
	return &GenerateResponse{Text: resp.Choices[0].Message.Content}, nil
}

// StripCodeFences removes a surrounding markdown code fence (``` or ```json)
// from model output. Text without a fence is returned trimmed.
func StripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = stripLanguageTag(strings.TrimPrefix(s, "```"))
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

// stripLanguageTag drops a leading word such as "json" when it is followed by
// whitespace or the start of a JSON document.
func stripLanguageTag(s string) string {
	i := 0
	for i < len(s) && (s[i] >= 'a' && s[i] <= 'z' || s[i] >= 'A' && s[i] <= 'Z') {
		i++
	}
	if i == 0 || i == len(s) {
		return s
	}
	switch s[i] {
	case ' ', '\t', '\r', '\n', '{', '[':
		return s[i:]
	}
	return s
}
