package routing

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	handlers "lsasearch/internal/handlers/search"
	"lsasearch/internal/metrics"
)

func InitRoutes(e *echo.Echo, handler *handlers.Handler) {
	InitSearchRoutes(e, handler)
	InitPageRoutes(e, handler)
	InitOpsRoutes(e, handler)
}

func InitSearchRoutes(e *echo.Echo, handler *handlers.Handler) {
	e.POST("/search", handler.PostSearchHandler)
}

func InitPageRoutes(e *echo.Echo, handler *handlers.Handler) {
	e.GET("/", handler.GetPageHandler)
	e.POST("/", handler.PostPageHandler)
}

func InitOpsRoutes(e *echo.Echo, handler *handlers.Handler) {
	e.GET("/healthz", handler.GetHealthHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
}
