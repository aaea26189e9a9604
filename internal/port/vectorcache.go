package port

import "courserec/internal/domain"

// VectorCache persists course embedding vectors alongside the catalog
// fingerprint that produced them. Freshness is decided by the caller by
// comparing CacheMeta against the current catalog.
type VectorCache interface {
	// Load returns the persisted vectors and their metadata. Returns an
	// error wrapping domain.ErrCacheCorrupt when the persisted state is
	// unreadable or inconsistent; callers treat that as an absent cache.
	Load() ([][]float32, domain.CacheMeta, bool, error)

	// Store replaces the persisted vectors and metadata in one transaction.
	// len(vectors) must equal meta.Count.
	Store(vectors [][]float32, meta domain.CacheMeta) error

	// Clear removes all persisted artifacts.
	Clear() error

	Close() error
}
