package search

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/canonist/canonist/internal/cache"
)

// Embedder turns query text into a vector in the index's embedding space
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OpenAIEmbedder implements Embedder using the OpenAI embeddings API,
// with a TTL cache so repeated fan-out queries within a batch (entity
// names, recurring dates) are embedded once.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	cache  cache.VectorCache
	ttl    time.Duration
}

// NewOpenAIEmbedder creates an embedder for the given model
func NewOpenAIEmbedder(apiKey, baseURL, embeddingModel string, ttl time.Duration) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required for query embeddings")
	}
	if embeddingModel == "" {
		embeddingModel = string(openai.SmallEmbedding3)
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(clientConfig),
		model:  embeddingModel,
		cache:  cache.NewMemoryCache(ttl, 2*ttl),
		ttl:    ttl,
	}, nil
}

// Embed returns the embedding vector for text
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cache.Key(e.model, text)
	if vec, ok := e.cache.Get(key); ok {
		return vec, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}

	vec := resp.Data[0].Embedding
	e.cache.Set(key, vec, e.ttl)
	return vec, nil
}
