package cli

import (
	"fmt"

	"courserec/config"
	"courserec/internal/adapter/catalog"
	"courserec/internal/adapter/embedding"
	"courserec/internal/adapter/vectorcache"
	"courserec/internal/port"
	"courserec/internal/usecase"
)

// newRecommender wires the catalog source, vector cache and embedder for the
// current config. The returned closer releases the cache database.
func newRecommender() (*usecase.Recommender, func() error, error) {
	if err := config.EnsureCacheDir(rootDir); err != nil {
		return nil, nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache, err := vectorcache.Open(config.CacheDBPath(rootDir))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open vector cache: %w", err)
	}

	source := catalog.NewCSVSource(dataDir(), cfg.Catalog.Includes)
	rec := usecase.NewRecommender(source, cache, newEmbedder(),
		usecase.WithCandidateWindow(cfg.Recommend.CandidateWindow))
	return rec, cache.Close, nil
}

// newEmbedder builds the configured embedder behind a lazy wrapper so the
// provider client is constructed once, on first use.
func newEmbedder() port.Embedder {
	emb := cfg.Embedding
	return embedding.NewLazy(emb.Dimension, emb.Model, func() (port.Embedder, error) {
		switch emb.Provider {
		case "openai":
			baseURL := emb.BaseURL
			if baseURL == "" {
				baseURL = "https://api.openai.com/v1"
			}
			return embedding.NewOpenAICompatibleEmbedder(emb.APIKeyEnv, emb.Model, baseURL)
		case "ollama":
			return embedding.NewOllamaEmbedder(emb.Model, emb.BaseURL)
		case "mock":
			return embedding.NewMockEmbedder(emb.Dimension), nil
		default:
			return nil, fmt.Errorf("unsupported embedding provider: %s", emb.Provider)
		}
	})
}
