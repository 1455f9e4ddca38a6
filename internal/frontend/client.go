package frontend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"lsasearch/internal/constants"
	"lsasearch/internal/utils"
)

const (
	SearchPath = "/search"
	QueryField = "query"
	maxBody    = 8 * 1024 * 1024
)

var (
	ErrRequestFailed     = errors.New("search request failed")
	ErrBadStatus         = errors.New("search backend returned an error status")
	ErrMalformedResponse = errors.New("malformed search response")
)

// Searcher - Anything that can answer a query with a SearchResponse
type Searcher interface {
	Search(ctx context.Context, query string) (*constants.SearchResponse, error)
}

// Client - Talks to the search backend over HTTP: POST /search, form body, JSON back.
type Client struct {
	endpoint string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker
}

type BreakerSettings struct {
	Timeout     time.Duration // how long the breaker stays open
	MaxFailures uint32        // consecutive failures before it opens
}

func NewClient(baseURL string, httpClient *http.Client, settings BreakerSettings) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + SearchPath,
		http:     httpClient,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "search-backend",
			MaxRequests: 1,
			Timeout:     settings.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return settings.MaxFailures > 0 && counts.ConsecutiveFailures >= settings.MaxFailures
			},
		}),
	}
}

func (c *Client) Search(ctx context.Context, query string) (*constants.SearchResponse, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.search(ctx, query)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	if err != nil {
		return nil, err
	}
	return result.(*constants.SearchResponse), nil
}

func (c *Client) search(ctx context.Context, query string) (*constants.SearchResponse, error) {
	form := url.Values{QueryField: {query}}
	resp, err := utils.MakeHeadersRequest(ctx, c.endpoint, strings.NewReader(form.Encode()), c.http, utils.Header{
		Key:   "Content-Type",
		Value: "application/x-www-form-urlencoded",
	}, utils.Header{
		Key:   "Accept",
		Value: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	var decoded constants.SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return &decoded, nil
}

// Validate - The three arrays must line up before anything gets rendered.
func Validate(resp *constants.SearchResponse) error {
	if resp == nil {
		return fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}
	if resp.Len() < 0 {
		return fmt.Errorf("%w: %d documents, %d indices, %d similarities",
			ErrMalformedResponse, len(resp.Documents), len(resp.Indices), len(resp.Similarities))
	}
	return nil
}
