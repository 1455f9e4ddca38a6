package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"lsasearch/internal/constants"
)

// Memory - Brute-force cosine index. Fine for a corpus the size of 20 newsgroups.
type Memory struct {
	mu      sync.RWMutex
	dims    int
	vectors map[int][]float32
}

func NewMemory(dims int) *Memory {
	return &Memory{dims: dims, vectors: make(map[int][]float32)}
}

func (m *Memory) Upsert(_ context.Context, vectors []constants.DocumentVector) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range vectors {
		if len(v.Vector) != m.dims {
			return fmt.Errorf("document %d: %w (got %d, want %d)", v.Index, ErrDimensionMismatch, len(v.Vector), m.dims)
		}
		m.vectors[v.Index] = v.Vector
	}
	return nil
}

// Search ranks by cosine similarity, ties going to the lower document index.
func (m *Memory) Search(ctx context.Context, query []float32, limit int) ([]constants.ScoredDocument, error) {
	if len(query) != m.dims {
		return nil, fmt.Errorf("query: %w (got %d, want %d)", ErrDimensionMismatch, len(query), m.dims)
	}
	queryNorm := norm(query)

	m.mu.RLock()
	scored := make([]constants.ScoredDocument, 0, len(m.vectors))
	for idx, vec := range m.vectors {
		scored = append(scored, constants.ScoredDocument{Index: idx, Score: cosine(query, queryNorm, vec)})
	}
	m.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Index < scored[j].Index
	})
	if limit < len(scored) {
		scored = scored[:limit]
	}
	return scored, nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors), nil
}

func cosine(a []float32, aNorm float64, b []float32) float64 {
	bNorm := norm(b)
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (aNorm * bNorm)
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
