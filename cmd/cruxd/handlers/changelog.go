package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cruxdb/cruxd/cmd/cruxd/service"
)

const defaultChangeSetLimit = 100

// ChangeLogHandler serves the edit history
type ChangeLogHandler struct {
	changelog *service.ChangeLogService
}

// NewChangeLogHandler creates a new changelog handler
func NewChangeLogHandler(changelog *service.ChangeLogService) *ChangeLogHandler {
	return &ChangeLogHandler{changelog: changelog}
}

// ListChangeSets lists history records, newest first
// GET /api/v1/changesets?docId=&editedBy=&limit=
func (h *ChangeLogHandler) ListChangeSets(c echo.Context) error {
	var docID, editedBy uuid.UUID
	var err error

	if raw := c.QueryParam("docId"); raw != "" {
		docID, err = uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid docId")
		}
	}
	if raw := c.QueryParam("editedBy"); raw != "" {
		editedBy, err = uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid editedBy")
		}
	}

	limit := defaultChangeSetLimit
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
	}

	history, err := h.changelog.GetChangeSets(c.Request().Context(), docID, editedBy, limit)
	if err != nil {
		return areaError(err)
	}

	return c.JSON(http.StatusOK, history)
}

// GetChangeSet retrieves one history record with its entries
// GET /api/v1/changesets/:id
func (h *ChangeLogHandler) GetChangeSet(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid changeset id")
	}

	history, err := h.changelog.GetByID(c.Request().Context(), id)
	if err != nil {
		return areaError(err)
	}

	return c.JSON(http.StatusOK, history)
}
