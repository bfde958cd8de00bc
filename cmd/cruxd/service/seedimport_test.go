package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruxdb/cruxd/cmd/cruxd/identity"
	"github.com/cruxdb/cruxd/cmd/cruxd/models"
)

func TestSeedImport(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := uuid.New()

	usa, err := f.areas.AddCountry(ctx, user, "usa")
	require.NoError(t, err)

	lat, lng := 44.3682, -121.1406
	result, err := f.imp.SeedImport(ctx, user, "usa", []models.SeedLine{
		{
			Path: "Oregon|Central Oregon|Smith Rock",
			Lat:  &lat, Lng: &lng,
			Climbs: []models.ClimbChange{
				{Name: "Chain Reaction", Grade: "5.12c", Disciplines: models.Disciplines{Sport: true}},
			},
		},
		{Path: "Oregon|Central Oregon|Paulina Peak"},
	})
	require.NoError(t, err)

	// the shared prefix is created once, parents before children
	require.Len(t, result.AddedAreas, 4)
	require.Len(t, result.AddedOrUpdatedClimbs, 1)

	oregonID := identity.FromPath(usa.Name, "Oregon")
	oregon, err := f.areas.GetArea(ctx, oregonID)
	require.NoError(t, err)
	assert.False(t, oregon.IsLeaf)
	assert.Equal(t, usa.ID, *oregon.ParentID)

	central, err := f.areas.GetArea(ctx, identity.FromPath(usa.Name, "Oregon", "Central Oregon"))
	require.NoError(t, err)
	require.Len(t, central.Children, 2)

	smith, err := f.areas.GetArea(ctx, identity.FromPath(usa.Name, "Oregon", "Central Oregon", "Smith Rock"))
	require.NoError(t, err)
	assert.True(t, smith.IsLeaf)
	require.NotNil(t, smith.LngLat)
	assert.Equal(t, 1, smith.TotalClimbs)

	// one change set covers the whole seed
	for _, a := range result.AddedAreas {
		assert.Equal(t, result.AddedAreas[0].Change.HistoryID, a.Change.HistoryID)
		assert.Equal(t, models.OpBulkImport, a.Change.Operation)
	}
}

func TestSeedImport_AllOrNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := uuid.New()

	_, err := f.areas.AddCountry(ctx, user, "usa")
	require.NoError(t, err)

	// the second line's mixed-discipline batch fails; the first line's
	// areas must roll back with it
	_, err = f.imp.SeedImport(ctx, user, "usa", []models.SeedLine{
		{Path: "Oregon|Smith Rock"},
		{
			Path: "Oregon|Trout Creek",
			Climbs: []models.ClimbChange{
				{Name: "Gold Rush", Grade: "5.11c", Disciplines: models.Disciplines{Trad: true}},
				{Name: "Low Tide", Grade: "V4", Disciplines: models.Disciplines{Bouldering: true}},
			},
		},
	})
	require.ErrorIs(t, err, models.ErrMixedDiscipline)

	_, err = f.areas.GetArea(ctx, identity.FromPath("United States of America", "Oregon"))
	assert.ErrorIs(t, err, models.ErrAreaNotFound)

	t.Run("unknown country", func(t *testing.T) {
		_, err := f.imp.SeedImport(ctx, user, "xq", []models.SeedLine{{Path: "Somewhere"}})
		assert.ErrorIs(t, err, models.ErrInvalidCountryCode)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := f.imp.SeedImport(ctx, user, "usa", []models.SeedLine{{Path: ""}})
		assert.Error(t, err)
	})
}
