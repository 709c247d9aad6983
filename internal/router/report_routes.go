package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/recipe-favorites/internal/handler"
)

// RegisterReports registers the aggregate report endpoints.  Any
// authenticated user may read them.
func RegisterReports(e *echo.Echo, h *handler.ReportHandler, auth, rl echo.MiddlewareFunc) {
	g := e.Group("/api/reports", auth, rl)
	g.GET("/favorites", h.FavoritesReport)
}
