package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/cruxdb/cruxd/cmd/cruxd/container"
	"github.com/cruxdb/cruxd/cmd/cruxd/handlers"
)

// RegisterImportRoutes registers bulk import and maintenance routes
func RegisterImportRoutes(e *echo.Echo, c *container.Container) {
	ih := handlers.NewImportHandler(c.ImportService)
	sh := handlers.NewStatsHandler(c.StatsService, c.Components.Telemetry)

	e.POST("/api/v1/import", ih.Import)                 // POST /api/v1/import
	e.POST("/api/v1/import/seed", ih.ImportSeed)        // POST /api/v1/import/seed
	e.POST("/api/v1/stats/recalculate", sh.Recalculate) // POST /api/v1/stats/recalculate
}
