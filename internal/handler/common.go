package handler // HTTP handlers for the recipe favorites API

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/recipe-favorites/internal/middleware"
	"github.com/iliyamo/recipe-favorites/internal/model"
	"github.com/iliyamo/recipe-favorites/internal/service"
)

// AuthService registers and logs in users.
type AuthService interface {
	Register(ctx context.Context, email, password string) (service.AuthResult, error)
	Login(ctx context.Context, email, password string) (service.AuthResult, error)
}

// RecipeProxy forwards catalog lookups upstream.
type RecipeProxy interface {
	Search(ctx context.Context, term string, page, pageSize int) (json.RawMessage, error)
	Summary(ctx context.Context, recipeID int64) (json.RawMessage, error)
	Bulk(ctx context.Context, recipeIDs []int64) (json.RawMessage, error)
}

// FavoriteService manages a user's favorites and the global report.
type FavoriteService interface {
	Add(ctx context.Context, userID uint64, recipeID int64) (*model.FavoriteRecipe, error)
	Remove(ctx context.Context, userID, favoriteID uint64) error
	RemoveByRecipe(ctx context.Context, userID uint64, recipeID int64) error
	UpdateNote(ctx context.Context, favoriteID uint64, note string, requesterID uint64) (*model.FavoriteRecipe, error)
	List(ctx context.Context, userID uint64) ([]model.FavoriteRecipe, error)
	GetDetails(ctx context.Context, requesterID, favoriteID uint64) (*model.FavoriteRecipe, error)
	Report(ctx context.Context) (model.FavoritesReport, error)
}

var errNoUser = errors.New("no authenticated user in context")

// getUserID returns the id JWTAuth stored in the context.
func getUserID(c echo.Context) (uint64, error) {
	if id, ok := middleware.UserID(c); ok {
		return id, nil
	}
	return 0, errNoUser
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
}

// parseID reads a positive integer path parameter that also fits an int64.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 63)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// sanitizeSearchTerm keeps letters, digits and spaces and trims the result.
func sanitizeSearchTerm(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// serverError logs the cause and answers 500 with a generic message.
func serverError(c echo.Context, log zerolog.Logger, err error, msg string) error {
	log.Error().Err(err).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Str("path", c.Path()).
		Msg(msg)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}

// bindAndValidate decodes the body into req and runs struct validation.  The
// returned message is safe to send to the client.
func bindAndValidate(c echo.Context, req any) (string, bool) {
	if err := c.Bind(req); err != nil {
		return "invalid body", false
	}
	if err := c.Validate(req); err != nil {
		return validationMessage(err), false
	}
	return "", true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid body"
	}
	fe := verrs[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "gt":
		return field + " must be a positive integer"
	default:
		return field + " is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
