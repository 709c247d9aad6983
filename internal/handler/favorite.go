package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/recipe-favorites/internal/repository"
	"github.com/iliyamo/recipe-favorites/internal/service"
)

// FavoriteHandler serves the authenticated favorites routes.  Every route
// expects JWTAuth to have run.
type FavoriteHandler struct {
	Favorites FavoriteService
	Proxy     RecipeProxy
	Log       zerolog.Logger
}

func NewFavoriteHandler(favorites FavoriteService, proxy RecipeProxy, log zerolog.Logger) *FavoriteHandler {
	return &FavoriteHandler{Favorites: favorites, Proxy: proxy, Log: log}
}

type addFavoriteReq struct {
	RecipeID int64 `json:"recipeId" validate:"required,gt=0"`
}

// removeFavoriteReq identifies the favorite either by its own id or by the
// recipe it points at; favoriteId wins when both are sent.
type removeFavoriteReq struct {
	FavoriteID uint64 `json:"favoriteId" query:"favoriteId"`
	RecipeID   int64  `json:"recipeId" query:"recipeId"`
}

type updateNoteReq struct {
	Note string `json:"note" validate:"required,max=10000"`
}

// List handles GET /api/recipes/favorite.  The stored recipe ids are
// resolved against the catalog in one bulk call.
func (h *FavoriteHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	favs, err := h.Favorites.List(ctx, uid)
	if err != nil {
		return serverError(c, h.Log, err, "list favorites failed")
	}
	ids := make([]int64, len(favs))
	for i, f := range favs {
		ids[i] = f.RecipeID
	}

	// the catalog call gets the request deadline, not the DB one
	recipes, err := h.Proxy.Bulk(c.Request().Context(), ids)
	if err != nil {
		return serverError(c, h.Log, err, "favorite recipe lookup failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"results": recipes})
}

// Add handles POST /api/recipes/favorite.
func (h *FavoriteHandler) Add(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req addFavoriteReq
	if msg, ok := bindAndValidate(c, &req); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.Favorites.Add(ctx, uid, req.RecipeID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRecipeID):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrFavoriteExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return serverError(c, h.Log, err, "add favorite failed")
	}
	return c.JSON(http.StatusCreated, f)
}

// Remove handles DELETE /api/recipes/favorite.
func (h *FavoriteHandler) Remove(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req removeFavoriteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch {
	case req.FavoriteID > 0:
		err = h.Favorites.Remove(ctx, uid, req.FavoriteID)
	case req.RecipeID > 0:
		err = h.Favorites.RemoveByRecipe(ctx, uid, req.RecipeID)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "favoriteId or recipeId is required"})
	}
	if err != nil {
		return h.ownedError(c, err, "remove favorite failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateNote handles PATCH /api/recipes/favorite/notes/:id.
func (h *FavoriteHandler) UpdateNote(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid favorite id"})
	}
	var req updateNoteReq
	if msg, ok := bindAndValidate(c, &req); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.Favorites.UpdateNote(ctx, id, req.Note, uid)
	if err != nil {
		if errors.Is(err, service.ErrMissingNote) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return h.ownedError(c, err, "update note failed")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":         "Note updated successfully",
		"updatedFavorite": f,
	})
}

// Details handles GET /api/recipes/favorite/details/:id.
func (h *FavoriteHandler) Details(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid favorite id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.Favorites.GetDetails(ctx, uid, id)
	if err != nil {
		if errors.Is(err, repository.ErrFavoriteNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
		return serverError(c, h.Log, err, "load favorite failed")
	}
	return c.JSON(http.StatusOK, f)
}

// ownedError maps the errors of a mutation on an owned favorite.
func (h *FavoriteHandler) ownedError(c echo.Context, err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrFavoriteNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidRecipeID):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return serverError(c, h.Log, err, msg)
}
