package search

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"lsasearch/internal/cache"
	"lsasearch/internal/constants"
	"lsasearch/internal/metrics"
	"lsasearch/internal/vector"
)

// Projector maps text into the latent space the index was built in.
type Projector interface {
	Transform(text string) []float32
	DocumentVectors() [][]float32
	Fingerprint() string
}

type DocumentProvider interface {
	Get(ctx context.Context, index int) (constants.Document, error)
}

type ResultCache interface {
	Get(ctx context.Context, key string) (*constants.SearchResponse, error)
	Set(ctx context.Context, key string, resp *constants.SearchResponse) error
}

// Engine answers POST /search: the top K documents by cosine similarity in the latent space.
type Engine struct {
	log       *logrus.Logger
	model     Projector
	index     vector.Index
	documents DocumentProvider
	cache     ResultCache // optional
	topK      int
}

func New(
	log *logrus.Logger,
	model Projector,
	index vector.Index,
	documents DocumentProvider,
	results ResultCache,
	topK int,
) *Engine {
	return &Engine{
		log:       log,
		model:     model,
		index:     index,
		documents: documents,
		cache:     results,
		topK:      topK,
	}
}

// BuildIndex pushes every fitted document vector into the index.
func BuildIndex(ctx context.Context, model Projector, index vector.Index) error {
	vectors := model.DocumentVectors()
	batch := make([]constants.DocumentVector, len(vectors))
	for i, v := range vectors {
		batch[i] = constants.DocumentVector{Index: i, Vector: v}
	}
	if err := index.Upsert(ctx, batch); err != nil {
		return fmt.Errorf("indexing %d documents: %w", len(batch), err)
	}
	metrics.IndexedDocuments.Set(float64(len(batch)))
	return nil
}

func (e *Engine) Search(ctx context.Context, query string) (*constants.SearchResponse, error) {
	start := time.Now()
	defer func() {
		metrics.SearchLatency.Observe(time.Since(start).Seconds())
	}()

	log := e.log.WithField("query", query)

	var key string
	if e.cache != nil {
		key = cache.Key(e.model.Fingerprint(), e.topK, query)
		cached, err := e.cache.Get(ctx, key)
		if err != nil {
			log.WithError(err).Warn("result cache unavailable")
		} else if cached != nil {
			metrics.SearchRequests.WithLabelValues("cached").Inc()
			log.Debug("served from cache")
			return cached, nil
		}
	}

	scored, err := e.rank(ctx, query)
	if err != nil {
		metrics.SearchRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	resp := &constants.SearchResponse{
		Documents:    make([]string, len(scored)),
		Indices:      make([]int, len(scored)),
		Similarities: make([]float64, len(scored)),
	}
	for i, hit := range scored {
		doc, err := e.documents.Get(ctx, hit.Index)
		if err != nil {
			metrics.SearchRequests.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("loading document %d: %w", hit.Index, err)
		}
		resp.Documents[i] = doc.Content
		resp.Indices[i] = hit.Index
		resp.Similarities[i] = hit.Score
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, resp); err != nil {
			log.WithError(err).Warn("caching search result")
		}
	}

	metrics.SearchRequests.WithLabelValues("ok").Inc()
	log.WithFields(logrus.Fields{
		"results": len(scored),
		"took":    time.Since(start).String(),
	}).Info("search done")
	return resp, nil
}

// rank - A query with no known term scores zero against everything, so the lowest indices win.
func (e *Engine) rank(ctx context.Context, query string) ([]constants.ScoredDocument, error) {
	queryVector := e.model.Transform(query)
	if !isZero(queryVector) {
		scored, err := e.index.Search(ctx, queryVector, e.topK)
		if err != nil {
			return nil, fmt.Errorf("searching index: %w", err)
		}
		return scored, nil
	}

	count, err := e.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting index: %w", err)
	}
	scored := make([]constants.ScoredDocument, min(e.topK, count))
	for i := range scored {
		scored[i] = constants.ScoredDocument{Index: i}
	}
	return scored, nil
}

func isZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
