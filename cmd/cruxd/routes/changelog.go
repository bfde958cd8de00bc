package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/cruxdb/cruxd/cmd/cruxd/container"
	"github.com/cruxdb/cruxd/cmd/cruxd/handlers"
)

// RegisterChangeLogRoutes registers the edit-history routes
func RegisterChangeLogRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewChangeLogHandler(c.ChangeLogService)

	changesets := e.Group("/api/v1/changesets")
	{
		changesets.GET("", h.ListChangeSets)   // GET /api/v1/changesets?docId=&editedBy=&limit=
		changesets.GET("/:id", h.GetChangeSet) // GET /api/v1/changesets/:id
	}
}
