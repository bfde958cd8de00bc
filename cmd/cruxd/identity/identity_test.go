package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPath_Deterministic(t *testing.T) {
	a := FromPath("Canada", "Squamish")
	b := FromPath("Canada", "Squamish")
	require.Equal(t, a, b, "same path must derive the same id")
	assert.Equal(t, "8f623793-c2b2-59e0-9e64-d167097e3a3d", a.String())
}

func TestFromPath_CaseInsensitive(t *testing.T) {
	assert.Equal(t, FromPath("canada", "squamish"), FromPath("CANADA", "Squamish"))
}

func TestFromPath_OrderMatters(t *testing.T) {
	assert.NotEqual(t, FromPath("Canada", "Squamish"), FromPath("Squamish", "Canada"))
}

func TestFromCountryCode(t *testing.T) {
	usa := FromCountryCode("USA")
	require.NotEqual(t, uuid.Nil, usa)
	assert.Equal(t, usa, FromCountryCode("usa"))
	// a country id is the single-token path hash of its alpha-3 code
	assert.Equal(t, usa, FromPath("USA"))
}

func TestFromSourceURL(t *testing.T) {
	id, ok := FromSourceURL("https://www.mountainproject.com/route/105862912/exasperator")
	require.True(t, ok)
	assert.NotEqual(t, uuid.Nil, id)

	id2, ok := FromSourceURL("https://www.mountainproject.com/area/105862912")
	require.True(t, ok)
	// route and area ids share the numeric keyspace
	assert.Equal(t, id, id2)

	_, ok = FromSourceURL("https://example.com/nothing-here")
	assert.False(t, ok)

	_, ok = FromSourceURL("")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	path := []string{"USA", "Nevada", "Red Rocks"}

	t.Run("leaf with source url uses the external id", func(t *testing.T) {
		got := Resolve(path, true, "https://www.mountainproject.com/area/105731932/red-rocks")
		want, ok := FromSourceURL("https://www.mountainproject.com/area/105731932/red-rocks")
		require.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("container ignores the source url", func(t *testing.T) {
		got := Resolve(path, false, "https://www.mountainproject.com/area/105731932/red-rocks")
		assert.Equal(t, FromPath(path...), got)
	})

	t.Run("unparseable url falls back to the path", func(t *testing.T) {
		got := Resolve(path, true, "https://example.com/red-rocks")
		assert.Equal(t, FromPath(path...), got)
	})
}
