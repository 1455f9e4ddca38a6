package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"lsasearch/internal/frontend"
)

// GetPageHandler - GET /, an empty search page
func (handler *Handler) GetPageHandler(c echo.Context) error {
	return renderPage(c, frontend.NewPage())
}

// PostPageHandler - POST /, the form submitted without javascript. Runs one submission
// against the backend and returns the page with results and chart filled in.
func (handler *Handler) PostPageHandler(c echo.Context) error {
	page := frontend.NewPage()
	submitter := frontend.NewSubmitter(handler.log, handler.backend, page, handler.timeout)

	ctx := c.Request().Context()
	sub := submitter.Submit(ctx, c.FormValue(frontend.QueryField))
	if _, err := sub.Wait(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil // client went away
		}
		return err
	}
	return renderPage(c, page)
}

func renderPage(c echo.Context, page *frontend.Page) error {
	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
