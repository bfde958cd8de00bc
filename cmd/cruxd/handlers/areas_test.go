package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruxdb/cruxd/cmd/cruxd/models"
)

func TestAreaErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{models.ErrAreaNotFound, http.StatusNotFound},
		{models.ErrClimbNotFound, http.StatusNotFound},
		{models.ErrHistoryNotFound, http.StatusNotFound},
		{models.ErrSubtreeNotEmpty, http.StatusConflict},
		{models.ErrCountryImmutable, http.StatusConflict},
		{models.ErrLeafFlagWithChildren, http.StatusConflict},
		{models.ErrLeafHasContent, http.StatusConflict},
		{models.ErrMixedDiscipline, http.StatusConflict},
		{models.ErrNotLeaf, http.StatusConflict},
		{models.ErrInvalidCountryCode, http.StatusBadRequest},
		{models.ErrImportVariant, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			var httpErr *echo.HTTPError
			require.ErrorAs(t, areaError(tt.err), &httpErr)
			assert.Equal(t, tt.code, httpErr.Code)
		})
	}

	t.Run("wrapped errors map too", func(t *testing.T) {
		wrapped := errors.Join(errors.New("context"), models.ErrSubtreeNotEmpty)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, areaError(wrapped), &httpErr)
		assert.Equal(t, http.StatusConflict, httpErr.Code)
	})

	t.Run("unknown errors pass through", func(t *testing.T) {
		plain := errors.New("boom")
		assert.Equal(t, plain, areaError(plain))
	})
}
