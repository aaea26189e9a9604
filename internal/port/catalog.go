package port

import (
	"context"

	"courserec/internal/domain"
)

// CatalogSource loads the course catalog in a stable order.
type CatalogSource interface {
	// Load reads every course record. The returned order is stable for an
	// unchanged source; vectors are correlated with courses by position.
	Load(ctx context.Context) ([]domain.Course, error)

	// Fingerprint hashes the catalog content. It changes if and only if any
	// record is edited, inserted, removed or reordered.
	Fingerprint(courses []domain.Course) string
}
