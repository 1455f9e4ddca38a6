package lsa

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"lsasearch/internal/analysis"
)

type Options struct {
	Components  int
	Oversamples int
	Iterations  int
	Seed        int64
	MaxFeatures int
	Stemming    bool
}

// Model is a fitted latent semantic space over a fixed document set.
type Model struct {
	opts       Options
	vectorizer *Vectorizer
	components *mat.Dense // terms x k
	singular   []float64
	documents  [][]float32 // unit length, zero for documents with no known terms
}

// Fit builds the TF-IDF matrix for docs and projects it onto its top singular directions.
func Fit(ctx context.Context, docs []string, opts Options) (*Model, error) {
	vectorizer := NewVectorizer(analysis.New(opts.Stemming), opts.MaxFeatures)
	matrix, err := vectorizer.FitTransform(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("vectorizing corpus: %w", err)
	}

	svd := SVD{
		Components:  opts.Components,
		Oversamples: opts.Oversamples,
		Iterations:  opts.Iterations,
		Seed:        opts.Seed,
	}
	components, singular, err := svd.Fit(ctx, matrix)
	if err != nil {
		return nil, fmt.Errorf("fitting svd: %w", err)
	}

	reduced, err := matrix.Mul(ctx, components)
	if err != nil {
		return nil, fmt.Errorf("projecting corpus: %w", err)
	}
	rows, _ := reduced.Dims()
	documents := make([][]float32, rows)
	for i := 0; i < rows; i++ {
		documents[i] = unit(reduced.RawRowView(i))
	}

	return &Model{
		opts:       opts,
		vectorizer: vectorizer,
		components: components,
		singular:   singular,
		documents:  documents,
	}, nil
}

// Transform projects text into the latent space as a unit vector (zero if no term is known).
func (m *Model) Transform(text string) []float32 {
	row := m.vectorizer.Transform(text)
	_, k := m.components.Dims()
	out := make([]float64, k)
	raw := m.components.RawMatrix()
	for j, col := range row.Cols {
		val := row.Values[j]
		loadings := raw.Data[col*raw.Stride : col*raw.Stride+k]
		for c := range out {
			out[c] += val * loadings[c]
		}
	}
	return unit(out)
}

func (m *Model) DocumentVectors() [][]float32 {
	return m.documents
}

func (m *Model) Dimensions() int {
	_, k := m.components.Dims()
	return k
}

func (m *Model) SingularValues() []float64 {
	return m.singular
}

// Fingerprint identifies the fitted space, so cached results from another fit are never reused.
func (m *Model) Fingerprint() string {
	return fmt.Sprintf("k%d-o%d-i%d-s%d-f%d-st%t-d%d-v%d",
		m.Dimensions(), m.opts.Oversamples, m.opts.Iterations, m.opts.Seed,
		m.opts.MaxFeatures, m.opts.Stemming, len(m.documents), m.vectorizer.VocabularySize())
}

func unit(values []float64) []float32 {
	var sum float64
	for _, v := range values {
		sum += v * v
	}
	out := make([]float32, len(values))
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, v := range values {
		out[i] = float32(v / norm)
	}
	return out
}
