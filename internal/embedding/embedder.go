// Package embedding wraps the text embedding collaborator. The core only
// ever sees the Embedder interface; the Gemini implementation is the
// production binding.
package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is the embedding model used unless configured otherwise.
const DefaultModel = "gemini-embedding-001"

// Embedder maps text to a fixed-length numeric vector, deterministic for
// identical input. Called once per stored document and once per query
// string. Implementations may block and may fail transiently; callers treat
// failures as collaborator errors, never as empty results.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// GeminiEmbedder computes embeddings through the Gemini API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder creates an embedder backed by the Gemini API. The API
// key is taken from the environment (GEMINI_API_KEY / GOOGLE_API_KEY), same
// as the rest of the genai client configuration.
func NewGeminiEmbedder(ctx context.Context, model string) (*GeminiEmbedder, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiEmbedder: create genai client: %w", err)
	}
	return &GeminiEmbedder{client: client, model: model}, nil
}

// Embed returns the embedding vector for text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("Embed: embed content: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("Embed: empty embedding response from model %s", e.model)
	}
	return resp.Embeddings[0].Values, nil
}

// Model reports the configured model name, used by the health probe.
func (e *GeminiEmbedder) Model() string {
	return e.model
}
