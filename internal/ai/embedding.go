package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// EmbeddingConfig holds API settings for text embedding (OpenAI-compatible).
type EmbeddingConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// EmbeddingGateway wraps the embedding endpoint behind a fixed-dimensionality
// contract. The same gateway instance serves both ingestion-time chunk
// embedding and query-time question embedding; mixing vectors from different
// models in one collection silently degrades retrieval, so the dimension of
// the first successful call is pinned and later mismatches are rejected.
type EmbeddingGateway struct {
	client *Client
	cfg    EmbeddingConfig

	mu        sync.Mutex // guards dimension; Embed runs under concurrent handlers
	dimension int
}

func NewEmbeddingGateway(client *Client, cfg EmbeddingConfig) *EmbeddingGateway {
	return &EmbeddingGateway{client: client, cfg: cfg}
}

// Dimension reports the pinned output dimensionality, 0 before the first call.
func (g *EmbeddingGateway) Dimension() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dimension
}

// Embed returns the embedding vector for the given text.
func (g *EmbeddingGateway) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("embedding input is empty")
	}

	raw, err := g.client.postJSON(ctx, g.cfg.BaseURL, "/embeddings", g.cfg.APIKey, map[string]any{
		"model": g.cfg.Model,
		"input": text,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}

	var parsed struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse embedding json failed: %w", err)
	}
	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}
	vec := parsed.Data[0].Embedding
	if err := g.pinDimension(len(vec)); err != nil {
		return nil, err
	}
	return vec, nil
}

// EmbedBatch returns embeddings for multiple texts in input order.
func (g *EmbeddingGateway) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	raw, err := g.client.postJSON(ctx, g.cfg.BaseURL, "/embeddings", g.cfg.APIKey, map[string]any{
		"model": g.cfg.Model,
		"input": texts,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding batch: %w", err)
	}

	var parsed struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse embedding batch json failed: %w", err)
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: want %d, got %d", len(texts), len(parsed.Data))
	}
	result := make([][]float32, len(parsed.Data))
	for i := range parsed.Data {
		if err := g.pinDimension(len(parsed.Data[i].Embedding)); err != nil {
			return nil, err
		}
		result[i] = parsed.Data[i].Embedding
	}
	return result, nil
}

func (g *EmbeddingGateway) pinDimension(d int) error {
	if d == 0 {
		return fmt.Errorf("empty embedding in response")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.dimension == 0 {
		g.dimension = d
		return nil
	}
	if g.dimension != d {
		return fmt.Errorf("embedding dimension changed: pinned %d, got %d", g.dimension, d)
	}
	return nil
}
