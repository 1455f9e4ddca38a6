package frontend

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"lsasearch/internal/constants"
	"lsasearch/internal/metrics"
)

type Outcome int

const (
	Pending Outcome = iota
	Rendered
	Stale  // a newer submission was issued before this response arrived
	Failed // request failed or response was malformed; the failure state is on the page
)

func (o Outcome) String() string {
	switch o {
	case Rendered:
		return "rendered"
	case Stale:
		return "stale"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Submission - Handle for one async search. Outcome and Err are only meaningful after Done.
type Submission struct {
	Seq   uint64
	Query string

	done    chan struct{}
	outcome Outcome
	resp    *constants.SearchResponse
	err     error
}

func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the submission settles or ctx ends. The error is ctx's, see Err for the search's.
func (s *Submission) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-s.done:
		return s.outcome, nil
	case <-ctx.Done():
		return Pending, ctx.Err()
	}
}

func (s *Submission) Outcome() Outcome {
	select {
	case <-s.done:
		return s.outcome
	default:
		return Pending
	}
}

func (s *Submission) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Response - What the backend returned, nil unless the submission was rendered.
func (s *Submission) Response() *constants.SearchResponse {
	if s.Outcome() != Rendered {
		return nil
	}
	return s.resp
}

// Submitter drives the page: clear results, ask the backend, render results then chart.
// Only the most recently issued submission may render; older responses are dropped.
type Submitter struct {
	log      *logrus.Logger
	searcher Searcher
	page     *Page
	timeout  time.Duration
	latest   uint64 // guarded by page.mu
}

func NewSubmitter(log *logrus.Logger, searcher Searcher, page *Page, timeout time.Duration) *Submitter {
	return &Submitter{
		log:      log,
		searcher: searcher,
		page:     page,
		timeout:  timeout,
	}
}

func (s *Submitter) Page() *Page {
	return s.page
}

// Submit returns immediately; the search runs on its own goroutine.
func (s *Submitter) Submit(ctx context.Context, query string) *Submission {
	sub := &Submission{Query: query, done: make(chan struct{})}

	s.page.mu.Lock()
	s.latest++
	sub.Seq = s.latest
	s.page.query = query
	s.page.results.Clear()
	s.page.mu.Unlock()

	go s.run(ctx, sub)
	return sub
}

func (s *Submitter) run(ctx context.Context, sub *Submission) {
	defer close(sub.done)
	log := s.log.WithFields(logrus.Fields{"seq": sub.Seq, "query": sub.Query})

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.searcher.Search(ctx, sub.Query)
	if err == nil {
		err = Validate(resp)
	}

	s.page.update(func(results *Container, canvas *Canvas) {
		if sub.Seq != s.latest {
			sub.outcome = Stale
			return
		}
		if err != nil {
			RenderFailure(results, err)
			canvas.Clear()
			sub.outcome, sub.err = Failed, err
			return
		}
		// both renderers validate the same response, which already passed Validate
		_ = RenderResults(results, resp)
		_, _ = RenderChart(canvas, resp)
		sub.outcome, sub.resp = Rendered, resp
	})

	metrics.Submissions.WithLabelValues(sub.outcome.String()).Inc()
	switch sub.outcome {
	case Stale:
		log.Debug("dropping stale response")
	case Failed:
		log.WithError(err).Warn("search request failed")
	default:
		log.WithField("results", len(resp.Documents)).Debug("rendered")
	}
}
