package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"courserec/internal/domain"
)

// Required catalog columns. Level and rating are optional and default when
// absent.
var requiredColumns = []string{"title", "description", "provider", "duration", "skills"}

// CSVSource loads courses from CSV files discovered under a data directory.
type CSVSource struct {
	dataDir  string
	includes []string
}

// NewCSVSource creates a catalog source over dataDir. Files are matched
// against the include glob patterns and read in lexical path order, so the
// catalog order is stable across runs.
func NewCSVSource(dataDir string, includes []string) *CSVSource {
	if len(includes) == 0 {
		includes = []string{"*.csv", "**/*.csv"}
	}
	return &CSVSource{
		dataDir:  dataDir,
		includes: includes,
	}
}

// Load reads every course record from the discovered files.
func (s *CSVSource) Load(ctx context.Context) ([]domain.Course, error) {
	paths, err := s.discover()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no catalog files under %s", domain.ErrDataUnavailable, s.dataDir)
	}

	var courses []domain.Course
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := readFile(path)
		if err != nil {
			return nil, err
		}
		courses = append(courses, records...)
	}

	return courses, nil
}

// discover resolves the include patterns to absolute file paths, sorted
// lexically for a stable catalog order.
func (s *CSVSource) discover() ([]string, error) {
	root, err := filepath.Abs(s.dataDir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var paths []string

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		for _, pattern := range s.includes {
			matched, err := doublestar.Match(pattern, relPath)
			if err == nil && matched {
				if !seen[path] {
					seen[path] = true
					paths = append(paths, path)
				}
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// readFile parses one CSV file into course records.
func readFile(path string) ([]domain.Course, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header of %s: %v", domain.ErrDataUnavailable, path, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s is missing column %q", domain.ErrDataUnavailable, path, name)
		}
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrDataUnavailable, path, err)
	}

	courses := make([]domain.Course, 0, len(rows))
	for _, row := range rows {
		course := domain.Course{
			Title:       field(row, cols, "title"),
			Description: field(row, cols, "description"),
			Provider:    field(row, cols, "provider"),
			Duration:    field(row, cols, "duration"),
			Skills:      field(row, cols, "skills"),
			Level:       field(row, cols, "level"),
			Rating:      domain.DefaultRating,
		}
		if course.Level == "" {
			course.Level = domain.DefaultLevel
		}
		if raw := field(row, cols, "rating"); raw != "" {
			rating, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s has invalid rating %q", domain.ErrDataUnavailable, path, raw)
			}
			course.Rating = rating
		}
		courses = append(courses, course)
	}

	return courses, nil
}

func field(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Fingerprint hashes a canonical serialization of the catalog. Any record
// edit, insertion, deletion or reorder yields a different fingerprint;
// identical content yields an identical fingerprint across restarts.
// Fields are quoted so embedded separators cannot blur field boundaries.
func (s *CSVSource) Fingerprint(courses []domain.Course) string {
	h := sha256.New()
	for _, c := range courses {
		fmt.Fprintf(h, "%q\t%q\t%q\t%q\t%q\t%q\t%g\n",
			c.Title, c.Description, c.Provider, c.Duration, c.Skills, c.Level, c.Rating)
	}
	return hex.EncodeToString(h.Sum(nil))
}
