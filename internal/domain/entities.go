package domain

import (
	"errors"
	"strings"
	"time"
)

// Errors returned by catalog and cache operations.
var (
	// ErrDataUnavailable means the course catalog could not be read or is
	// missing required columns. Fatal for the current request.
	ErrDataUnavailable = errors.New("course data unavailable")

	// ErrCacheCorrupt means persisted vectors are unreadable or inconsistent.
	// Callers treat the cache as absent and rebuild.
	ErrCacheCorrupt = errors.New("vector cache corrupt")

	// ErrExplanationUnavailable means the explanation call failed. Recovered
	// with a fallback string, never surfaced to the end user.
	ErrExplanationUnavailable = errors.New("explanation unavailable")
)

const (
	// DefaultLevel is assumed when a course row carries no level.
	DefaultLevel = "Intermediate"

	// DefaultRating is assumed when a course row carries no rating.
	DefaultRating = 4.5
)

// Course is one catalog record. Identity is positional: the index within
// the loaded catalog correlates a course with its embedding vector.
type Course struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Provider    string  `json:"provider"`
	Duration    string  `json:"duration"`
	Skills      string  `json:"skills"`
	Level       string  `json:"level"`
	Rating      float64 `json:"rating"`
}

// FullText assembles the text that gets embedded. Derived only, never
// written back to the catalog.
func (c Course) FullText() string {
	return c.Title + " " + c.Description + " " + c.Skills
}

// StudentProfile is the transient query side of a recommendation request.
type StudentProfile struct {
	Background string
	CareerGoal string
	Interests  string
}

// Text concatenates the profile fields into the query text that is embedded
// into the same vector space as the courses.
func (p StudentProfile) Text() string {
	return strings.TrimSpace(p.Background + " " + p.CareerGoal + " " + p.Interests)
}

// Recommendation is one ranked result item.
type Recommendation struct {
	Course          Course  `json:"course"`
	SimilarityScore float64 `json:"similarity_score"`
	MatchPercentage int     `json:"match_percentage"`
	Explanation     string  `json:"explanation,omitempty"`
}

// Explanation is the outcome of an explanation call. Fallback reports
// whether the text is the deterministic filler rather than generated prose.
type Explanation struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

// CacheMeta describes a persisted vector set and the catalog state that
// produced it.
type CacheMeta struct {
	Fingerprint string    `json:"fingerprint"`
	ModelName   string    `json:"model_name"`
	Dimension   int       `json:"dimension"`
	Count       int       `json:"count"`
	BuiltAt     time.Time `json:"built_at"`
}
