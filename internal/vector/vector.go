package vector

import (
	"context"
	"errors"

	"lsasearch/internal/constants"
)

var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Index - Where the reduced document vectors live and get searched. Scores are cosine similarities.
type Index interface {
	Upsert(ctx context.Context, vectors []constants.DocumentVector) error
	Search(ctx context.Context, query []float32, limit int) ([]constants.ScoredDocument, error)
	Count(ctx context.Context) (int, error)
}
