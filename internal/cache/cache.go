package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// VectorCache caches query-embedding vectors. Only embeddings are cached:
// retrieved excerpts are always fetched fresh per request.
type VectorCache interface {
	Get(key string) ([]float32, bool)
	Set(key string, vec []float32, ttl time.Duration)
}

// Key generates a cache key for a query under a given embedding model
func Key(embeddingModel, query string) string {
	hash := sha256.Sum256([]byte(embeddingModel + "\x00" + query))
	return "canonist:v1:" + hex.EncodeToString(hash[:])
}
