package service

import (
	"context"
	"fmt"
	"math"

	"github.com/google/generative-ai-go/genai"
)

// Embedder converts text into fixed-length vectors suitable for the
// article index. Implementations must produce vectors that are
// comparable under cosine distance.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingModelName is the Gemini model used for article and query
// embeddings. Its native 768 dimensions match the legal_articles schema.
const EmbeddingModelName = "text-embedding-004"

// GeminiEmbedder implements Embedder on the Gemini embedding API.
type GeminiEmbedder struct {
	model *genai.EmbeddingModel
}

// NewGeminiEmbedder creates an embedder backed by the given Gemini client.
func NewGeminiEmbedder(client *genai.Client) *GeminiEmbedder {
	return &GeminiEmbedder{model: client.EmbeddingModel(EmbeddingModelName)}
}

// Embed generates a normalized embedding for a single text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := e.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embedding API returned empty vector")
	}

	return normalize(res.Embedding.Values), nil
}

// EmbedBatch generates normalized embeddings for a batch of texts in a
// single API call.
func (e *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batch := e.model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	res, err := e.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to embed batch: %w", err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("mismatch: got %d embeddings for %d texts", len(res.Embeddings), len(texts))
	}

	embeddings := make([][]float32, 0, len(res.Embeddings))
	for i, emb := range res.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("embedding %d is empty", i)
		}
		embeddings = append(embeddings, normalize(emb.Values))
	}

	return embeddings, nil
}

// normalize scales the vector to unit length so pgvector cosine
// distances stay on a comparable scale across model revisions.
func normalize(values []float32) []float32 {
	var norm float64
	for _, v := range values {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return values
	}

	normalized := make([]float32, len(values))
	for i, v := range values {
		normalized[i] = float32(float64(v) / norm)
	}
	return normalized
}
