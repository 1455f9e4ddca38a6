package lsa

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"lsasearch/internal/analysis"
)

// Vectorizer builds L2-normalised TF-IDF rows with smoothed idf: ln((1+n)/(1+df)) + 1.
type Vectorizer struct {
	analyzer    *analysis.Analyzer
	maxFeatures int // 0 keeps the whole vocabulary

	vocabulary map[string]int
	idf        []float64
}

func NewVectorizer(analyzer *analysis.Analyzer, maxFeatures int) *Vectorizer {
	return &Vectorizer{analyzer: analyzer, maxFeatures: maxFeatures}
}

func (v *Vectorizer) VocabularySize() int {
	return len(v.vocabulary)
}

// FitTransform learns the vocabulary and idf weights from docs and returns their matrix.
func (v *Vectorizer) FitTransform(ctx context.Context, docs []string) (*Sparse, error) {
	counts := make([]map[string]int, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			counts[i] = v.analyzer.Counts(doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	df := make(map[string]int)
	total := make(map[string]int)
	for _, docCounts := range counts {
		for term, c := range docCounts {
			df[term]++
			total[term] += c
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	if v.maxFeatures > 0 && len(terms) > v.maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if total[terms[i]] != total[terms[j]] {
				return total[terms[i]] > total[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.maxFeatures]
	}
	sort.Strings(terms)

	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	n := float64(len(docs))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	matrix := &Sparse{Rows: make([]Row, len(docs)), Cols: len(terms)}
	for i, docCounts := range counts {
		matrix.Rows[i] = v.row(docCounts)
	}
	return matrix, nil
}

// Transform weighs text against the fitted vocabulary. Unknown terms are ignored.
func (v *Vectorizer) Transform(text string) Row {
	return v.row(v.analyzer.Counts(text))
}

func (v *Vectorizer) row(counts map[string]int) Row {
	cols := make([]int, 0, len(counts))
	for term := range counts {
		if col, ok := v.vocabulary[term]; ok {
			cols = append(cols, col)
		}
	}
	sort.Ints(cols)

	row := Row{Cols: cols, Values: make([]float64, len(cols))}
	for term, c := range counts {
		col, ok := v.vocabulary[term]
		if !ok {
			continue
		}
		j := sort.SearchInts(cols, col)
		row.Values[j] = float64(c) * v.idf[col]
	}
	row.Normalize()
	return row
}
