package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/cruxdb/cruxd/cmd/cruxd/container"
	"github.com/cruxdb/cruxd/cmd/cruxd/handlers"
)

// RegisterClimbRoutes registers all climb routes
func RegisterClimbRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewClimbHandler(c.ClimbService)

	areas := e.Group("/api/v1/areas")
	{
		areas.POST("/:id/climbs", h.AddOrUpdateClimbs)  // POST /api/v1/areas/:id/climbs
		areas.DELETE("/:id/climbs", h.DeleteClimbs)     // DELETE /api/v1/areas/:id/climbs
		areas.GET("/:id/climbs", h.ListClimbs)          // GET /api/v1/areas/:id/climbs
	}

	climbs := e.Group("/api/v1/climbs")
	{
		climbs.GET("/:id", h.GetClimb)  // GET /api/v1/climbs/:id
	}
}
