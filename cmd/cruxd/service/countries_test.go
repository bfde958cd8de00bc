package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruxdb/cruxd/cmd/cruxd/models"
)

func TestResolveCountry(t *testing.T) {
	t.Run("alpha-3", func(t *testing.T) {
		c, err := ResolveCountry("USA")
		require.NoError(t, err)
		assert.Equal(t, "US", c.Alpha2)
		assert.Equal(t, "USA", c.Alpha3)
		assert.Equal(t, "United States of America", c.Name)
		assert.Equal(t, "US", c.GradeContext)
		require.NotNil(t, c.LngLat)
	})

	t.Run("alpha-2 and case folding", func(t *testing.T) {
		c, err := ResolveCountry(" de ")
		require.NoError(t, err)
		assert.Equal(t, "DEU", c.Alpha3)
	})

	t.Run("grade contexts", func(t *testing.T) {
		for code, want := range map[string]string{
			"AUS": "AU",
			"FRA": "FR",
			"GBR": "UK",
			"AUT": "UIAA",
			"BRA": "BRZ",
			"ZAF": "SA",
		} {
			c, err := ResolveCountry(code)
			require.NoError(t, err)
			assert.Equal(t, want, c.GradeContext, code)
		}

		// anything without an explicit context grades on the US system
		c, err := ResolveCountry("JPN")
		require.NoError(t, err)
		assert.Equal(t, "US", c.GradeContext)
	})

	t.Run("invalid codes", func(t *testing.T) {
		for _, code := range []string{"", "X", "XX", "XXX", "USAA"} {
			_, err := ResolveCountry(code)
			assert.ErrorIs(t, err, models.ErrInvalidCountryCode, code)
		}
	})
}
