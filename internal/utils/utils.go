package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type Header struct {
	Key   string
	Value string
}

// MakeHeadersRequest - A POST like http.Post, but with a context and extra headers. Does not close body.
func MakeHeadersRequest(ctx context.Context, url string, body io.Reader, client *http.Client, headers ...Header) (*http.Response, error) {
	if client == nil {
		return nil, fmt.Errorf("nil http client")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	return client.Do(req)
}

// Truncate - Collapse whitespace to single spaces and cut to at most limit runes, marking the cut with "..."
func Truncate(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
