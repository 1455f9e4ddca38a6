package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"lsasearch/internal/cache"
	"lsasearch/internal/config"
	"lsasearch/internal/constants"
	"lsasearch/internal/corpus"
	"lsasearch/internal/lsa"
	"lsasearch/internal/search"
	"lsasearch/internal/store"
	"lsasearch/internal/vector"
)

var ErrNoDocuments = errors.New("no documents in store")

// App - Everything the backend needs to answer a query, wired from config.
type App struct {
	Store  *store.Storage
	Model  *lsa.Model
	Index  vector.Index
	Engine *search.Engine

	closers []func() error
}

// Build opens the store (seeding it from the corpus if it is empty), fits the model,
// fills the vector index and puts the engine on top.
func Build(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	docs, err := store.New(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	a := &App{Store: docs, closers: []func() error{docs.Close}}

	documents, err := Documents(ctx, log, docs, cfg.Storage.CorpusPath)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Model, err = FitModel(ctx, log, cfg.LSA, documents)
	if err != nil {
		a.Close()
		return nil, err
	}

	index, closeIndex, err := OpenIndex(ctx, cfg.Vector, a.Model.Dimensions())
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Index = index
	a.closers = append(a.closers, closeIndex)

	if err := SyncIndex(ctx, log, a.Model, index, docs, IndexStateKey(cfg.Vector.Backend, cfg.Vector.Collection)); err != nil {
		a.Close()
		return nil, err
	}

	var results search.ResultCache
	if cfg.Cache.Addr != "" {
		c := cache.New(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.TTL)
		a.closers = append(a.closers, c.Close)
		results = c
		log.WithField("addr", cfg.Cache.Addr).Info("result cache enabled")
	}

	a.Engine = search.New(log, a.Model, index, docs, results, cfg.LSA.TopK)
	return a, nil
}

// Close releases everything Build opened, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// Documents - The stored corpus. An empty store is first filled from corpusPath.
func Documents(ctx context.Context, log *logrus.Logger, docs *store.Storage, corpusPath string) ([]constants.Document, error) {
	count, err := docs.Count()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		if _, err := SeedStore(ctx, log, docs, corpusPath); err != nil {
			return nil, err
		}
	}

	documents, err := docs.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(documents) == 0 {
		return nil, ErrNoDocuments
	}
	return documents, nil
}

// SeedStore loads the corpus at corpusPath into the store and returns how many documents it wrote.
func SeedStore(ctx context.Context, log *logrus.Logger, docs *store.Storage, corpusPath string) (int, error) {
	timer := time.Now()
	documents, err := corpus.Load(ctx, corpusPath)
	if err != nil {
		return 0, fmt.Errorf("loading corpus %s: %w", corpusPath, err)
	}
	if err := docs.Put(ctx, documents); err != nil {
		return 0, err
	}
	log.WithFields(logrus.Fields{
		"corpus":    corpusPath,
		"documents": len(documents),
		"took":      time.Since(timer).String(),
	}).Info("corpus stored")
	return len(documents), nil
}

func FitModel(ctx context.Context, log *logrus.Logger, cfg config.LSAConfig, documents []constants.Document) (*lsa.Model, error) {
	contents := make([]string, len(documents))
	for i, doc := range documents {
		contents[i] = doc.Content
	}

	timer := time.Now()
	model, err := lsa.Fit(ctx, contents, lsa.Options{
		Components:  cfg.Components,
		Oversamples: cfg.Oversamples,
		Iterations:  cfg.Iterations,
		Seed:        cfg.Seed,
		MaxFeatures: cfg.MaxFeatures,
		Stemming:    cfg.Stemming,
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"documents":  len(documents),
		"dimensions": model.Dimensions(),
		"took":       time.Since(timer).String(),
	}).Info("model fitted")
	return model, nil
}

// OpenIndex - The configured vector index and how to close it.
func OpenIndex(ctx context.Context, cfg config.VectorConfig, dims int) (vector.Index, func() error, error) {
	switch cfg.Backend {
	case config.VectorBackendQdrant:
		db, err := vector.Connect(ctx, cfg.QdrantAddr, cfg.Collection, dims)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		return vector.NewMemory(dims), func() error { return nil }, nil
	}
}

// IndexState - Where the fingerprint of the fit behind an index's points is remembered.
type IndexState interface {
	GetMeta(key string) (string, error)
	PutMeta(key string, value string) error
}

func IndexStateKey(backend string, collection string) string {
	return "index:" + backend + ":" + collection
}

// SyncIndex skips the upsert only when the index holds one point per document and those
// points came from a fit with the same fingerprint as model.
func SyncIndex(ctx context.Context, log *logrus.Logger, model search.Projector, index vector.Index, state IndexState, key string) error {
	count, err := index.Count(ctx)
	if err != nil {
		return err
	}
	stored, err := state.GetMeta(key)
	if err != nil {
		return err
	}

	documents := len(model.DocumentVectors())
	if count == documents && stored == model.Fingerprint() {
		log.WithField("points", count).Info("vector index up to date")
		return nil
	}
	if count > documents {
		log.WithFields(logrus.Fields{"points": count, "documents": documents}).
			Warn("vector index has points past the last document")
	}
	log.WithFields(logrus.Fields{
		"points":      count,
		"fingerprint": model.Fingerprint(),
		"previous":    stored,
	}).Info("rebuilding vector index")
	return RebuildIndex(ctx, model, index, state, key)
}

// RebuildIndex upserts every document vector and records the fit they came from.
func RebuildIndex(ctx context.Context, model search.Projector, index vector.Index, state IndexState, key string) error {
	if err := search.BuildIndex(ctx, model, index); err != nil {
		return err
	}
	return state.PutMeta(key, model.Fingerprint())
}
