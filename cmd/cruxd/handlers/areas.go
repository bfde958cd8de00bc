package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cruxdb/cruxd/cmd/cruxd/middleware"
	"github.com/cruxdb/cruxd/cmd/cruxd/models"
	"github.com/cruxdb/cruxd/cmd/cruxd/service"
)

// AreaHandler handles area-related requests
type AreaHandler struct {
	areas *service.AreaService
}

// NewAreaHandler creates a new area handler
func NewAreaHandler(areas *service.AreaService) *AreaHandler {
	return &AreaHandler{areas: areas}
}

// AddCountry creates a tree root from an ISO code
// POST /api/v1/countries
func (h *AreaHandler) AddCountry(c echo.Context) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	var req struct {
		CountryCode string `json:"countryCode"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	area, err := h.areas.AddCountry(c.Request().Context(), user, req.CountryCode)
	if err != nil {
		return areaError(err)
	}

	return c.JSON(http.StatusCreated, area)
}

// ListCountries lists all tree roots
// GET /api/v1/countries
func (h *AreaHandler) ListCountries(c echo.Context) error {
	countries, err := h.areas.ListCountries(c.Request().Context())
	if err != nil {
		return areaError(err)
	}
	return c.JSON(http.StatusOK, countries)
}

// AddArea creates a child area under an existing parent
// POST /api/v1/areas
func (h *AreaHandler) AddArea(c echo.Context) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	var req service.AddAreaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	area, err := h.areas.AddArea(c.Request().Context(), user, req)
	if err != nil {
		return areaError(err)
	}

	return c.JSON(http.StatusCreated, area)
}

// GetArea retrieves one area
// GET /api/v1/areas/:id
func (h *AreaHandler) GetArea(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid area id")
	}

	area, err := h.areas.GetArea(c.Request().Context(), id)
	if err != nil {
		return areaError(err)
	}

	return c.JSON(http.StatusOK, area)
}

// GetChildren retrieves an area's children in order
// GET /api/v1/areas/:id/children
func (h *AreaHandler) GetChildren(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid area id")
	}

	children, err := h.areas.GetChildren(c.Request().Context(), id)
	if err != nil {
		return areaError(err)
	}

	return c.JSON(http.StatusOK, children)
}

// UpdateArea edits an area's editable fields
// PATCH /api/v1/areas/:id
func (h *AreaHandler) UpdateArea(c echo.Context) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid area id")
	}

	var fields models.AreaEditableFields
	if err := c.Bind(&fields); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	area, err := h.areas.UpdateArea(c.Request().Context(), user, id, fields)
	if err != nil {
		return areaError(err)
	}

	return c.JSON(http.StatusOK, area)
}

// SetDestination toggles the destination flag
// PUT /api/v1/areas/:id/destination
func (h *AreaHandler) SetDestination(c echo.Context) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid area id")
	}

	var req struct {
		Flag bool `json:"flag"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	area, err := h.areas.SetDestinationFlag(c.Request().Context(), user, id, req.Flag)
	if err != nil {
		return areaError(err)
	}

	return c.JSON(http.StatusOK, area)
}

// DeleteArea soft-deletes a childless area
// DELETE /api/v1/areas/:id
func (h *AreaHandler) DeleteArea(c echo.Context) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid area id")
	}

	area, err := h.areas.DeleteArea(c.Request().Context(), user, id)
	if err != nil {
		return areaError(err)
	}

	return c.JSON(http.StatusOK, area)
}

// areaError maps domain errors onto HTTP statuses
func areaError(err error) error {
	switch {
	case errors.Is(err, models.ErrAreaNotFound),
		errors.Is(err, models.ErrClimbNotFound),
		errors.Is(err, models.ErrHistoryNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrSubtreeNotEmpty),
		errors.Is(err, models.ErrCountryImmutable),
		errors.Is(err, models.ErrLeafFlagWithChildren),
		errors.Is(err, models.ErrLeafHasContent),
		errors.Is(err, models.ErrMixedDiscipline),
		errors.Is(err, models.ErrNotLeaf):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidCountryCode),
		errors.Is(err, models.ErrImportVariant):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return err
	}
}
