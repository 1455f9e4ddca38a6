package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"lsasearch/internal/constants"
	handlers "lsasearch/internal/handlers/search"
	"lsasearch/internal/logger"
)

type fixedSearcher struct{}

func (fixedSearcher) Search(_ context.Context, query string) (*constants.SearchResponse, error) {
	return &constants.SearchResponse{
		Documents:    []string{"about " + query},
		Indices:      []int{1},
		Similarities: []float64{0.5},
	}, nil
}

func newServer() *echo.Echo {
	e := echo.New()
	InitRoutes(e, handlers.NewHandler(logger.Discard(), fixedSearcher{}, fixedSearcher{}, time.Second))
	return e
}

func TestRoutes(t *testing.T) {
	e := newServer()

	tests := []struct {
		method string
		target string
		body   string
		status int
		want   string
	}{
		{http.MethodPost, "/search", url.Values{"query": {"orbit"}}.Encode(), http.StatusOK, `"documents":["about orbit"]`},
		{http.MethodPost, "/search", "", http.StatusBadRequest, `"message"`},
		{http.MethodGet, "/", "", http.StatusOK, `<form id="search-form"`},
		{http.MethodPost, "/", url.Values{"query": {"orbit"}}.Encode(), http.StatusOK, "about orbit"},
		{http.MethodGet, "/healthz", "", http.StatusOK, `"ok"`},
		{http.MethodGet, "/metrics", "", http.StatusOK, "go_goroutines"},
		{http.MethodGet, "/search", "", http.StatusMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}
