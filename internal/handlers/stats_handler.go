package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/effisocial/backend/internal/middleware"
	"github.com/anonto42/effisocial/backend/internal/services"
)

type StatsHandler struct {
	stats *services.StatsService
}

func NewStatsHandler(stats *services.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// RegisterStatsRoutes registers statistics routes under /stats
func (h *StatsHandler) RegisterStatsRoutes(g *echo.Group) {
	g.GET("", h.GetOverview)
	g.GET("/me", h.GetMine)
}

func (h *StatsHandler) GetOverview(c echo.Context) error {
	overview, err := h.stats.Overview(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, overview)
}

func (h *StatsHandler) GetMine(c echo.Context) error {
	stats, err := h.stats.ForUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
