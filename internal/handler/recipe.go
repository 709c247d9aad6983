package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RecipeHandler exposes the public catalog search and summary routes.
type RecipeHandler struct {
	Proxy RecipeProxy
	Log   zerolog.Logger
}

func NewRecipeHandler(proxy RecipeProxy, log zerolog.Logger) *RecipeHandler {
	return &RecipeHandler{Proxy: proxy, Log: log}
}

// Search handles GET /api/recipe/search?searchTerm=&page=&pageSize=.
// The upstream JSON is returned unchanged.
func (h *RecipeHandler) Search(c echo.Context) error {
	term := sanitizeSearchTerm(c.QueryParam("searchTerm"))
	if term == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "searchTerm is required"})
	}
	page, ok := optionalInt(c.QueryParam("page"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "page must be an integer"})
	}
	pageSize, ok := optionalInt(c.QueryParam("pageSize"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pageSize must be an integer"})
	}

	body, err := h.Proxy.Search(c.Request().Context(), term, page, pageSize)
	if err != nil {
		return serverError(c, h.Log, err, "recipe search failed")
	}
	return c.JSONBlob(http.StatusOK, body)
}

// Summary handles GET /api/recipes/:id/summary.
func (h *RecipeHandler) Summary(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid recipe id"})
	}
	body, err := h.Proxy.Summary(c.Request().Context(), int64(id))
	if err != nil {
		return serverError(c, h.Log, err, "recipe summary failed")
	}
	return c.JSONBlob(http.StatusOK, body)
}

// optionalInt parses s, treating an empty string as 0 so the proxy applies
// its defaults.
func optionalInt(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
