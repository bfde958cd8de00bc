package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cruxdb/cruxd/cmd/cruxd/middleware"
	"github.com/cruxdb/cruxd/cmd/cruxd/service"
	"github.com/cruxdb/cruxd/common/telemetry"
)

// StatsHandler exposes maintenance operations over the statistics tree
type StatsHandler struct {
	stats     *service.StatsService
	telemetry *telemetry.Telemetry
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(stats *service.StatsService, tel *telemetry.Telemetry) *StatsHandler {
	return &StatsHandler{stats: stats, telemetry: tel}
}

// Recalculate rebuilds every area's rolled-up statistics bottom-up
// POST /api/v1/stats/recalculate
func (h *StatsHandler) Recalculate(c echo.Context) error {
	if _, err := middleware.RequireUser(c); err != nil {
		return err
	}

	start := time.Now()
	if err := h.stats.RecalculateAll(c.Request().Context()); err != nil {
		return err
	}
	if h.telemetry != nil {
		h.telemetry.RecordDuration("stats_recalculate", start)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
	})
}
