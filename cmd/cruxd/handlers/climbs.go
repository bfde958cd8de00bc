package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cruxdb/cruxd/cmd/cruxd/middleware"
	"github.com/cruxdb/cruxd/cmd/cruxd/models"
	"github.com/cruxdb/cruxd/cmd/cruxd/service"
)

// ClimbHandler handles climb-related requests
type ClimbHandler struct {
	climbs *service.ClimbService
}

// NewClimbHandler creates a new climb handler
func NewClimbHandler(climbs *service.ClimbService) *ClimbHandler {
	return &ClimbHandler{climbs: climbs}
}

// AddOrUpdateClimbs upserts a batch of climbs into a leaf area
// POST /api/v1/areas/:id/climbs
func (h *ClimbHandler) AddOrUpdateClimbs(c echo.Context) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid area id")
	}

	var req struct {
		Changes []models.ClimbChange `json:"changes"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Changes) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "changes must not be empty")
	}

	ids, err := h.climbs.AddOrUpdateClimbs(c.Request().Context(), user, areaID, req.Changes)
	if err != nil {
		return areaError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ids": ids,
	})
}

// DeleteClimbs removes a batch of climbs from a leaf area
// DELETE /api/v1/areas/:id/climbs
func (h *ClimbHandler) DeleteClimbs(c echo.Context) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid area id")
	}

	var req struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.IDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "ids must not be empty")
	}

	deleted, err := h.climbs.DeleteClimbs(c.Request().Context(), user, areaID, req.IDs)
	if err != nil {
		return areaError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"deleted": deleted,
	})
}

// ListClimbs lists the climbs of a leaf area in left-to-right order
// GET /api/v1/areas/:id/climbs
func (h *ClimbHandler) ListClimbs(c echo.Context) error {
	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid area id")
	}

	climbs, err := h.climbs.ListClimbs(c.Request().Context(), areaID)
	if err != nil {
		return areaError(err)
	}

	return c.JSON(http.StatusOK, climbs)
}

// GetClimb retrieves one climb
// GET /api/v1/climbs/:id
func (h *ClimbHandler) GetClimb(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid climb id")
	}

	climb, err := h.climbs.GetClimb(c.Request().Context(), id)
	if err != nil {
		return areaError(err)
	}

	return c.JSON(http.StatusOK, climb)
}
