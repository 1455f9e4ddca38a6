package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"lsasearch/internal/config"
	"lsasearch/internal/frontend"
	"lsasearch/internal/logger"
	"lsasearch/internal/utils"
)

const previewLength = 80

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "lsasearch-cli",
		Usage: "Search the newsgroup corpus from a terminal; each rendered page is also written as HTML",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "backend",
				Usage: "base url of the search backend",
				Value: cfg.Frontend.BackendURL,
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "where the latest rendered page is written",
				Value: "results.html",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "per request timeout",
				Value: cfg.Frontend.RequestTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client := frontend.NewClient(cmd.String("backend"), &http.Client{}, frontend.BreakerSettings{
				Timeout:     cfg.Frontend.BreakerTimeout,
				MaxFailures: cfg.Frontend.BreakerMaxFailure,
			})
			submitter := frontend.NewSubmitter(log, client, frontend.NewPage(), cmd.Duration("timeout"))
			return prompt(ctx, log, submitter, cmd.String("out"))
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.WithError(err).Fatal("cli")
	}
}

// prompt - Every line is submitted right away; a slow answer does not block the next query.
func prompt(ctx context.Context, log *logrus.Logger, submitter *frontend.Submitter, out string) error {
	var (
		wg      sync.WaitGroup
		printMu sync.Mutex
	)
	defer wg.Wait()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("Enter your query: ")
	for scanner.Scan() {
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			fmt.Print("Enter your query: ")
			continue
		}

		sub := submitter.Submit(ctx, query)
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := sub.Wait(ctx)
			if err != nil {
				return
			}

			printMu.Lock()
			defer printMu.Unlock()
			report(sub, outcome)
			if outcome == frontend.Stale {
				return
			}
			if err := writePage(submitter.Page(), out); err != nil {
				log.WithError(err).Error("writing page")
			}
		}()
	}
	return scanner.Err()
}

func report(sub *frontend.Submission, outcome frontend.Outcome) {
	switch outcome {
	case frontend.Stale:
		fmt.Printf("\n[%d] %q superseded by a newer query\n", sub.Seq, sub.Query)
	case frontend.Failed:
		fmt.Printf("\n[%d] %q failed: %v\n", sub.Seq, sub.Query, sub.Err())
	case frontend.Rendered:
		resp := sub.Response()
		fmt.Printf("\n[%d] %s for %q\n", sub.Seq, frontend.Heading, sub.Query)
		for i := range resp.Documents {
			fmt.Printf("  %s  similarity %s\n    %s\n",
				frontend.Label(resp.Indices[i]), frontend.FormatSimilarity(resp.Similarities[i]), utils.Truncate(resp.Documents[i], previewLength))
		}
	}
	fmt.Print("Enter your query: ")
}

func writePage(page *frontend.Page, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := page.Render(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
