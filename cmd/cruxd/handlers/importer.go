package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cruxdb/cruxd/cmd/cruxd/middleware"
	"github.com/cruxdb/cruxd/cmd/cruxd/models"
	"github.com/cruxdb/cruxd/cmd/cruxd/service"
)

// ImportHandler accepts bulk tree imports
type ImportHandler struct {
	importer *service.BulkImportService
}

// NewImportHandler creates a new bulk import handler
func NewImportHandler(importer *service.BulkImportService) *ImportHandler {
	return &ImportHandler{importer: importer}
}

// Import applies a bulk import document as a single change set
// POST /api/v1/import
func (h *ImportHandler) Import(c echo.Context) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	var input models.BulkImportInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.importer.Import(c.Request().Context(), user, input)
	if err != nil {
		return areaError(err)
	}

	return c.JSON(http.StatusOK, result)
}

// SeedImportRequest carries a path-delimited seed file for one country
type SeedImportRequest struct {
	CountryCode string            `json:"countryCode"`
	Lines       []models.SeedLine `json:"lines"`
}

// ImportSeed stages and applies a flat seed file as a single change set
// POST /api/v1/import/seed
func (h *ImportHandler) ImportSeed(c echo.Context) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	var req SeedImportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.CountryCode == "" || len(req.Lines) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "countryCode and lines are required")
	}

	result, err := h.importer.SeedImport(c.Request().Context(), user, req.CountryCode, req.Lines)
	if err != nil {
		return areaError(err)
	}

	return c.JSON(http.StatusOK, result)
}
