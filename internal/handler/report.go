package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ReportHandler serves aggregate reports.
type ReportHandler struct {
	Favorites FavoriteService
	Log       zerolog.Logger
}

func NewReportHandler(favorites FavoriteService, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{Favorites: favorites, Log: log}
}

// FavoritesReport handles GET /api/reports/favorites.
func (h *ReportHandler) FavoritesReport(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rep, err := h.Favorites.Report(ctx)
	if err != nil {
		return serverError(c, h.Log, err, "favorites report failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"report": rep})
}
