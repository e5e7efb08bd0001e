package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// GenerationConfig holds API settings for the generative model.
type GenerationConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Generator produces a completion for a single prompt. No streaming and no
// retries; one blocking call per answer.
type Generator struct {
	client *Client
	cfg    GenerationConfig
}

func NewGenerator(client *Client, cfg GenerationConfig) *Generator {
	return &Generator{client: client, cfg: cfg}
}

// Generate sends the prompt and returns the raw completion text. A hung
// model call is cut off by the configured timeout rather than blocking the
// caller indefinitely.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	reqBody := map[string]any{
		"model": g.cfg.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"stream": false,
	}
	if g.cfg.MaxTokens > 0 {
		reqBody["max_tokens"] = g.cfg.MaxTokens
	}

	raw, err := g.client.postJSON(ctx, g.cfg.BaseURL, "/chat/completions", g.cfg.APIKey, reqBody)
	if err != nil {
		return "", fmt.Errorf("generation: %w", err)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse generation json failed: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty generation choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
