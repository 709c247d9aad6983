package router // package router builds the echo server and registers the API routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/iliyamo/recipe-favorites/internal/handler"
	"github.com/iliyamo/recipe-favorites/internal/middleware"
)

// Deps is everything New needs to assemble the server.
type Deps struct {
	Auth      *handler.AuthHandler
	Recipes   *handler.RecipeHandler
	Favorites *handler.FavoriteHandler
	Reports   *handler.ReportHandler

	JWTSecret   string
	CORSOrigins []string
	// RateLimit is applied to every /api group; nil disables it.
	RateLimit echo.MiddlewareFunc
	Log       zerolog.Logger
}

// New returns an echo instance with the global middleware stack and all
// routes registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = middleware.NewValidator()

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.Recover())
	e.Use(echomw.Secure())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomw.BodyLimit("1M"))

	rl := d.RateLimit
	if rl == nil {
		rl = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	auth := middleware.JWTAuth(d.JWTSecret, d.Log)

	RegisterRoutes(e)
	RegisterPublic(e, d.Auth, d.Recipes, rl)
	RegisterFavorites(e, d.Favorites, auth, rl)
	RegisterReports(e, d.Reports, auth, rl)
	return e
}

// RegisterRoutes registers routes outside the /api tree.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated API: account creation and
// login plus the catalog pass-through.
func RegisterPublic(e *echo.Echo, a *handler.AuthHandler, r *handler.RecipeHandler, rl echo.MiddlewareFunc) {
	g := e.Group("/api", rl)
	g.POST("/auth/register", a.Register)
	g.POST("/auth/login", a.Login)
	g.GET("/recipe/search", r.Search)
	g.GET("/recipes/:id/summary", r.Summary)
}
