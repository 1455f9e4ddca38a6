package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"lsasearch/internal/frontend"
	"lsasearch/internal/handlers"
)

// Handler - Serves both the search backend and the search page.
type Handler struct {
	log     *logrus.Logger
	engine  frontend.Searcher // answers POST /search
	backend frontend.Searcher // what the page submits to, normally an HTTP client for POST /search
	timeout time.Duration
}

func NewHandler(log *logrus.Logger, engine, backend frontend.Searcher, timeout time.Duration) *Handler {
	return &Handler{
		log:     log,
		engine:  engine,
		backend: backend,
		timeout: timeout,
	}
}

// PostSearchHandler - POST /search, form field "query", JSON {documents, indices, similarities} back
func (handler *Handler) PostSearchHandler(c echo.Context) error {
	params, err := c.FormParams()
	if err != nil {
		return c.JSON(http.StatusBadRequest, handlers.ReturnType{
			Message: "Invalid request body. Error: " + err.Error(),
		})
	}
	values, ok := params[frontend.QueryField]
	if !ok || len(values) == 0 {
		return c.JSON(http.StatusBadRequest, handlers.ReturnType{
			Message: "Missing form field \"" + frontend.QueryField + "\".",
		})
	}

	resp, err := handler.engine.Search(c.Request().Context(), values[0])
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, c.Request().Context().Err()) {
			status = http.StatusServiceUnavailable
		}
		handler.log.WithError(err).WithField("query", values[0]).Error("search failed")
		return c.JSON(status, handlers.ReturnType{
			Message: "Error handling request. Error: " + err.Error(),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (handler *Handler) GetHealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, handlers.ReturnType{Message: "ok"})
}
