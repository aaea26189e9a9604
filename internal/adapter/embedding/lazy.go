package embedding

import (
	"context"
	"fmt"
	"sync"

	"courserec/internal/port"
)

// Lazy defers construction of an embedder to first use. Construction runs
// exactly once even under concurrent first use; the result (or the
// construction error) is shared by every caller for the process lifetime.
type Lazy struct {
	construct func() (port.Embedder, error)
	dimension int
	model     string

	once     sync.Once
	embedder port.Embedder
	err      error
}

// NewLazy creates a lazily-initialized embedder. dimension and model are the
// configured values, reported before the underlying embedder exists so that
// cache freshness can be checked without forcing initialization.
func NewLazy(dimension int, model string, construct func() (port.Embedder, error)) *Lazy {
	return &Lazy{
		construct: construct,
		dimension: dimension,
		model:     model,
	}
}

func (l *Lazy) init() (port.Embedder, error) {
	l.once.Do(func() {
		l.embedder, l.err = l.construct()
	})
	if l.err != nil {
		return nil, fmt.Errorf("embedder initialization failed: %w", l.err)
	}
	return l.embedder, nil
}

func (l *Lazy) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e, err := l.init()
	if err != nil {
		return nil, err
	}
	return e.Embed(ctx, texts)
}

func (l *Lazy) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	e, err := l.init()
	if err != nil {
		return nil, err
	}
	return e.EmbedOne(ctx, text)
}

func (l *Lazy) Dimension() int {
	return l.dimension
}

func (l *Lazy) ModelName() string {
	return l.model
}
