package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"courserec/internal/domain"
	"courserec/internal/port"
)

// minCandidateWindow is the default floor on the unfiltered candidate set
// considered by RecommendFiltered, regardless of the requested top-k.
const minCandidateWindow = 20

// ProgressFunc reports embedding progress during a cache rebuild.
type ProgressFunc func(done, total int)

// embedBatchSize is the number of course texts embedded between progress
// callbacks.
const embedBatchSize = 32

// Recommender orchestrates catalog loading, the vector cache and the
// embedder, and ranks courses against a student profile.
type Recommender struct {
	catalog         port.CatalogSource
	cache           port.VectorCache
	embedder        port.Embedder
	candidateWindow int

	// mu serializes the fingerprint-compare / regenerate / persist sequence
	// so concurrent requests cannot race on a stale cache.
	mu sync.Mutex
}

// Option configures a Recommender.
type Option func(*Recommender)

// WithCandidateWindow sets the minimum unfiltered candidate set size used by
// RecommendFiltered. Non-positive values keep the default.
func WithCandidateWindow(n int) Option {
	return func(r *Recommender) {
		if n > 0 {
			r.candidateWindow = n
		}
	}
}

// NewRecommender creates a recommendation engine.
func NewRecommender(catalog port.CatalogSource, cache port.VectorCache, embedder port.Embedder, opts ...Option) *Recommender {
	r := &Recommender{
		catalog:         catalog,
		cache:           cache,
		embedder:        embedder,
		candidateWindow: minCandidateWindow,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EnsureVectors returns the current catalog and one vector per course, in
// catalog order. A fresh cache is returned as-is; an absent, stale or
// corrupt cache triggers a rebuild. progress may be nil.
func (r *Recommender) EnsureVectors(ctx context.Context, progress ProgressFunc) ([]domain.Course, [][]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	courses, err := r.catalog.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	fingerprint := r.catalog.Fingerprint(courses)

	vectors, meta, found, err := r.cache.Load()
	if err != nil {
		if !errors.Is(err, domain.ErrCacheCorrupt) {
			return nil, nil, err
		}
		// Corrupt cache is recoverable: fall through to a rebuild.
	} else if found && r.isFresh(meta, fingerprint, len(courses)) {
		return courses, vectors, nil
	}

	vectors, err = r.rebuild(ctx, courses, fingerprint, progress)
	if err != nil {
		return nil, nil, err
	}
	return courses, vectors, nil
}

// isFresh reports whether cached vectors were produced from the current
// catalog content by the current embedding model.
func (r *Recommender) isFresh(meta domain.CacheMeta, fingerprint string, count int) bool {
	return meta.Fingerprint == fingerprint &&
		meta.ModelName == r.embedder.ModelName() &&
		meta.Dimension == r.embedder.Dimension() &&
		meta.Count == count
}

// rebuild embeds every course text in catalog order and persists the result.
// Caller holds r.mu.
func (r *Recommender) rebuild(ctx context.Context, courses []domain.Course, fingerprint string, progress ProgressFunc) ([][]float32, error) {
	texts := make([]string, len(courses))
	for i, c := range courses {
		texts[i] = c.FullText()
	}

	vectors := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += embedBatchSize {
		end := i + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := r.embedder.Embed(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed courses: %w", err)
		}
		if len(batch) != end-i {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(batch), end-i)
		}
		vectors = append(vectors, batch...)
		if progress != nil {
			progress(end, len(texts))
		}
	}

	for i, v := range vectors {
		if len(v) != r.embedder.Dimension() {
			return nil, fmt.Errorf("course %d vector has dimension %d, expected %d", i, len(v), r.embedder.Dimension())
		}
	}

	meta := domain.CacheMeta{
		Fingerprint: fingerprint,
		ModelName:   r.embedder.ModelName(),
		Dimension:   r.embedder.Dimension(),
		Count:       len(vectors),
		BuiltAt:     time.Now(),
	}
	if err := r.cache.Store(vectors, meta); err != nil {
		return nil, fmt.Errorf("failed to persist vectors: %w", err)
	}
	return vectors, nil
}

// Recommend ranks all courses against the profile and returns the topK best
// matches, sorted by descending similarity. Ties break on catalog order so
// results are reproducible.
func (r *Recommender) Recommend(ctx context.Context, profile domain.StudentProfile, topK int) ([]domain.Recommendation, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d", topK)
	}

	courses, vectors, err := r.EnsureVectors(ctx, nil)
	if err != nil {
		return nil, err
	}

	queryVector, err := r.embedder.EmbedOne(ctx, profile.Text())
	if err != nil {
		return nil, fmt.Errorf("failed to embed profile: %w", err)
	}

	indices := rankByScore(queryVector, vectors)
	if topK > len(indices) {
		topK = len(indices)
	}

	results := make([]domain.Recommendation, 0, topK)
	for _, ranked := range indices[:topK] {
		results = append(results, domain.Recommendation{
			Course:          courses[ranked.index],
			SimilarityScore: ranked.score,
			MatchPercentage: matchPercentage(ranked.score),
		})
	}
	return results, nil
}

// RecommendFiltered ranks a candidate window larger than topK, then filters
// by duration substring and exact level without re-ranking. Fewer than topK
// items are returned when the window does not contain enough matches.
func (r *Recommender) RecommendFiltered(ctx context.Context, profile domain.StudentProfile, preferredDuration, skillLevel string, topK int) ([]domain.Recommendation, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d", topK)
	}

	window := topK * 4
	if window < r.candidateWindow {
		window = r.candidateWindow
	}

	candidates, err := r.Recommend(ctx, profile, window)
	if err != nil {
		return nil, err
	}

	results := make([]domain.Recommendation, 0, topK)
	for _, c := range candidates {
		if preferredDuration != "" &&
			!strings.Contains(strings.ToLower(c.Course.Duration), strings.ToLower(preferredDuration)) {
			continue
		}
		if skillLevel != "" && !strings.EqualFold(c.Course.Level, skillLevel) {
			continue
		}
		results = append(results, c)
		if len(results) == topK {
			break
		}
	}
	return results, nil
}

// Invalidate deletes the persisted cache, returning it to its absent state.
func (r *Recommender) Invalidate() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Clear()
}

// ForceRebuild discards the cache and regenerates vectors from the current
// catalog. Returns the number of courses embedded.
func (r *Recommender) ForceRebuild(ctx context.Context, progress ProgressFunc) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.cache.Clear(); err != nil {
		return 0, err
	}

	courses, err := r.catalog.Load(ctx)
	if err != nil {
		return 0, err
	}
	fingerprint := r.catalog.Fingerprint(courses)

	if _, err := r.rebuild(ctx, courses, fingerprint, progress); err != nil {
		return 0, err
	}
	return len(courses), nil
}

// Status describes the current catalog and cache state. BuiltAt is nil when
// no cache metadata exists.
type Status struct {
	Courses     int        `json:"courses"`
	CacheExists bool       `json:"cache_exists"`
	Fresh       bool       `json:"fresh"`
	Corrupt     bool       `json:"corrupt,omitempty"`
	ModelName   string     `json:"model_name,omitempty"`
	Dimension   int        `json:"dimension,omitempty"`
	BuiltAt     *time.Time `json:"built_at,omitempty"`
}

// Status reports catalog size and cache freshness without rebuilding.
func (r *Recommender) Status(ctx context.Context) (Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	courses, err := r.catalog.Load(ctx)
	if err != nil {
		return Status{}, err
	}
	fingerprint := r.catalog.Fingerprint(courses)

	st := Status{Courses: len(courses)}

	_, meta, found, err := r.cache.Load()
	if err != nil {
		if errors.Is(err, domain.ErrCacheCorrupt) {
			st.CacheExists = found
			st.Corrupt = true
			return st, nil
		}
		return Status{}, err
	}
	if !found {
		return st, nil
	}

	st.CacheExists = true
	st.Fresh = r.isFresh(meta, fingerprint, len(courses))
	st.ModelName = meta.ModelName
	st.Dimension = meta.Dimension
	st.BuiltAt = &meta.BuiltAt
	return st, nil
}

type rankedIndex struct {
	index int
	score float64
}

// rankByScore scores every vector against the query and returns indices
// sorted by descending similarity, ties broken by catalog order.
func rankByScore(query []float32, vectors [][]float32) []rankedIndex {
	ranked := make([]rankedIndex, len(vectors))
	for i, v := range vectors {
		ranked[i] = rankedIndex{index: i, score: cosineSimilarity(query, v)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	return ranked
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// matchPercentage converts a similarity score to a whole percentage.
// Truncation, not rounding: a 0.999 score reads as 99%. Scores outside
// [0, 1] clamp so the percentage stays within [0, 100].
func matchPercentage(score float64) int {
	if score <= 0 {
		return 0
	}
	p := int(score * 100)
	if p > 100 {
		p = 100
	}
	return p
}

// ScoreLabel maps a similarity score to a human-readable band. Bounds are
// exclusive: exactly 0.8 is a "Great match".
func ScoreLabel(score float64) string {
	switch {
	case score > 0.8:
		return "Perfect match!"
	case score > 0.6:
		return "Great match"
	case score > 0.4:
		return "Good match"
	case score > 0.2:
		return "Fair match"
	default:
		return "Basic match"
	}
}
