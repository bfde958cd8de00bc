package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/cruxdb/cruxd/cmd/cruxd/container"
	"github.com/cruxdb/cruxd/cmd/cruxd/handlers"
)

// RegisterAreaRoutes registers all area-tree routes
func RegisterAreaRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewAreaHandler(c.AreaService)

	countries := e.Group("/api/v1/countries")
	{
		countries.POST("", h.AddCountry)    // POST /api/v1/countries
		countries.GET("", h.ListCountries)  // GET /api/v1/countries
	}

	areas := e.Group("/api/v1/areas")
	{
		areas.POST("", h.AddArea)                        // POST /api/v1/areas
		areas.GET("/:id", h.GetArea)                     // GET /api/v1/areas/:id
		areas.PATCH("/:id", h.UpdateArea)                // PATCH /api/v1/areas/:id
		areas.DELETE("/:id", h.DeleteArea)               // DELETE /api/v1/areas/:id
		areas.GET("/:id/children", h.GetChildren)        // GET /api/v1/areas/:id/children
		areas.PUT("/:id/destination", h.SetDestination)  // PUT /api/v1/areas/:id/destination
	}
}
