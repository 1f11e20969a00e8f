// Package quiz is the question-generation collaborator: it turns topic
// material into structured quiz questions through an LLM provider. The
// analytics core never calls into this package; only the resulting quiz
// score, recorded against the topic, feeds back into predictions.
package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/revisio/revisio/internal/config"
)

// Question is one generated quiz question.
type Question struct {
	Type        string   `json:"type"` // "multiple_choice" or "open"
	Text        string   `json:"text"`
	Options     []string `json:"options,omitempty"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

// Client is the interface for question-generation providers.
type Client interface {
	Generate(ctx context.Context, material string, count int) ([]Question, error)
}

// NewClient creates a quiz client based on the config provider setting.
// An empty provider returns an error; callers treat that as "quiz
// generation disabled".
func NewClient(cfg config.QuizConfig) (Client, error) {
	switch cfg.Provider {
	case "anthropic":
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("anthropic provider requires an API key")
		}
		model := cfg.Model
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		return NewAnthropic(cfg.AnthropicKey, model), nil
	case "ollama":
		url := cfg.OllamaURL
		if url == "" {
			url = "http://localhost:11434"
		}
		model := cfg.OllamaModel
		if model == "" {
			model = "llama3.2"
		}
		return NewOllama(url, model), nil
	case "mock":
		return &MockClient{}, nil
	default:
		return nil, fmt.Errorf("unknown quiz provider: %q", cfg.Provider)
	}
}

// parseQuestions extracts the JSON question array from raw model output,
// tolerating fenced code blocks and prose around the array.
func parseQuestions(raw string, count int) ([]Question, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in model output")
	}

	var questions []Question
	if err := json.Unmarshal([]byte(raw[start:end+1]), &questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}

	valid := questions[:0]
	for _, q := range questions {
		if q.Text == "" || q.Answer == "" {
			continue
		}
		if q.Type == "" {
			q.Type = "open"
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("model returned no usable questions")
	}
	if count > 0 && len(valid) > count {
		valid = valid[:count]
	}
	return valid, nil
}
