package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// UserIDKey is the context key for the authenticated editor id
const UserIDKey ContextKey = "user_id"

// ExtractUser parses the X-User-ID header as a UUID and stores it in
// the request context. Mutating handlers require it; read handlers
// tolerate its absence.
func ExtractUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get("X-User-ID")
			if raw != "" {
				id, err := uuid.Parse(raw)
				if err != nil {
					return c.JSON(http.StatusBadRequest, map[string]interface{}{
						"error": "X-User-ID must be a UUID",
					})
				}
				c.Set(string(UserIDKey), id)
			}
			return next(c)
		}
	}
}

// GetUser retrieves the editor id from the request context. Returns the
// nil UUID when the header was absent.
func GetUser(c echo.Context) uuid.UUID {
	v := c.Get(string(UserIDKey))
	if v == nil {
		return uuid.Nil
	}
	return v.(uuid.UUID)
}

// RequireUser ensures an editor id exists in context
func RequireUser(c echo.Context) (uuid.UUID, error) {
	id := GetUser(c)
	if id == uuid.Nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "X-User-ID header is required")
	}
	return id, nil
}
