package llm

import (
	"context"
	"crypto/sha256"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedEmbeddingGenerator wraps an EmbeddingGenerator with an LRU cache.
// Repeated embeds of the same text (queries especially) skip the API call.
type CachedEmbeddingGenerator struct {
	inner EmbeddingGenerator
	cache *lru.Cache[string, []float32]
}

// Compile-time assertion.
var _ EmbeddingGenerator = (*CachedEmbeddingGenerator)(nil)

// NewCachedEmbeddingGenerator wraps inner with a cache holding up to size
// entries. Size defaults to 1024 when non-positive.
func NewCachedEmbeddingGenerator(inner EmbeddingGenerator, size int) (*CachedEmbeddingGenerator, error) {
	if size < 1 {
		size = 1024
	}

	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}

	return &CachedEmbeddingGenerator{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector for text when present, delegating to the
// wrapped generator otherwise.
func (c *CachedEmbeddingGenerator) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(c.inner.GetModel(), text)

	if vec, ok := c.cache.Get(key); ok {
		return vec, nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, vec)
	return vec, nil
}

// GetModel returns the wrapped generator's model name.
func (c *CachedEmbeddingGenerator) GetModel() string {
	return c.inner.GetModel()
}

// cacheKey hashes model+text so arbitrarily long inputs stay fixed-size keys.
func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return fmt.Sprintf("%x", sum)
}
