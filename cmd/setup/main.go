package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"lsasearch/internal/app"
	"lsasearch/internal/config"
	"lsasearch/internal/logger"
	"lsasearch/internal/store"
	"lsasearch/internal/vector"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	corpusFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:  "corpus",
			Usage: "corpus directory or .tar.gz archive",
			Value: cfg.Storage.CorpusPath,
		}
	}

	cmd := &cli.Command{
		Name:  "lsasearch-setup",
		Usage: "Load the corpus and fill the qdrant collection. Run corpus first if you're new",
		Commands: []*cli.Command{
			{
				Name:  "corpus",
				Usage: "load the corpus into the document store",
				Flags: []cli.Flag{corpusFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return timed(log, func() error { return initCorpus(ctx, log, cfg, cmd.String("corpus")) })
				},
			},
			{
				Name:  "vectors",
				Usage: "fit the model on the stored corpus and upsert every document vector into qdrant",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return timed(log, func() error { return initVectors(ctx, log, cfg) })
				},
			},
			{
				Name:  "all",
				Usage: "corpus, then vectors",
				Flags: []cli.Flag{corpusFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return timed(log, func() error {
						if err := initCorpus(ctx, log, cfg, cmd.String("corpus")); err != nil {
							return err
						}
						return initVectors(ctx, log, cfg)
					})
				},
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.WithError(err).Fatal("setup")
	}
}

func timed(log *logrus.Logger, fn func() error) error {
	timeStart := time.Now()
	if err := fn(); err != nil {
		return err
	}
	log.WithField("took", time.Since(timeStart).String()).Info("done")
	return nil
}

func initCorpus(ctx context.Context, log *logrus.Logger, cfg *config.Config, corpusPath string) error {
	docs, err := store.New(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer docs.Close()

	_, err = app.SeedStore(ctx, log, docs, corpusPath)
	return err
}

func initVectors(ctx context.Context, log *logrus.Logger, cfg *config.Config) error {
	docs, err := store.New(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer docs.Close()

	documents, err := docs.All(ctx)
	if err != nil {
		return err
	}
	if len(documents) == 0 {
		return app.ErrNoDocuments
	}

	model, err := app.FitModel(ctx, log, cfg.LSA, documents)
	if err != nil {
		return err
	}

	db, err := vector.Connect(ctx, cfg.Vector.QdrantAddr, cfg.Vector.Collection, model.Dimensions())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := app.RebuildIndex(ctx, model, db, docs, app.IndexStateKey(config.VectorBackendQdrant, cfg.Vector.Collection)); err != nil {
		return err
	}

	count, err := db.Count(ctx)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"collection": cfg.Vector.Collection,
		"points":     count,
	}).Info("vectors stored")
	return nil
}
