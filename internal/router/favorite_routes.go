package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/recipe-favorites/internal/handler"
)

// RegisterFavorites registers the per-user favorites endpoints.  The rate
// limiter runs after auth so it can key on the user id.
func RegisterFavorites(e *echo.Echo, h *handler.FavoriteHandler, auth, rl echo.MiddlewareFunc) {
	g := e.Group("/api/recipes/favorite", auth, rl)
	g.GET("", h.List)
	g.POST("", h.Add)
	g.DELETE("", h.Remove)
	g.PATCH("/notes/:id", h.UpdateNote)
	g.GET("/details/:id", h.Details)
}
