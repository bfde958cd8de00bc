package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruxdb/cruxd/cmd/cruxd/models"
)

func setupCrag(t *testing.T, f *fixture, user uuid.UUID) *models.Area {
	t.Helper()
	ctx := context.Background()

	_, err := f.areas.AddCountry(ctx, user, "usa")
	require.NoError(t, err)
	lat, lng := 44.3682, -121.1406
	crag, err := f.areas.AddArea(ctx, user, AddAreaRequest{
		Name: "Smith Rock", CountryCode: "usa", IsLeaf: true, Lat: &lat, Lng: &lng,
	})
	require.NoError(t, err)
	return crag
}

func TestAddOrUpdateClimbs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := uuid.New()
	crag := setupCrag(t, f, user)

	ids, err := f.climbs.AddOrUpdateClimbs(ctx, user, crag.ID, []models.ClimbChange{
		{Name: "Chain Reaction", Grade: "5.12c", Disciplines: models.Disciplines{Sport: true}},
		{Name: "Five Gallon Buckets", Grade: "5.8", Disciplines: models.Disciplines{Sport: true}},
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	climbs, err := f.climbs.ListClimbs(ctx, crag.ID)
	require.NoError(t, err)
	assert.Len(t, climbs, 2)

	// the crag's statistics refresh in the same operation
	area := f.store.areas[crag.ID]
	assert.Equal(t, 2, area.TotalClimbs)
	assert.Equal(t, 1, area.Aggregate.ByGradeBand.Beginner)
	assert.Equal(t, 1, area.Aggregate.ByGradeBand.Advanced)
	assert.Equal(t, []models.CountByGroup{{Label: "sport", Count: 2}}, area.Aggregate.ByDiscipline)

	// so do the ancestors
	country := f.store.areas[*crag.ParentID]
	assert.Equal(t, 2, country.TotalClimbs)

	t.Run("update by id", func(t *testing.T) {
		grade := "5.12d"
		got, err := f.climbs.AddOrUpdateClimbs(ctx, user, crag.ID, []models.ClimbChange{
			{ID: &ids[0], Grade: grade},
		})
		require.NoError(t, err)
		require.Equal(t, ids[:1], got)

		c, err := f.climbs.GetClimb(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, "5.12d", c.Grade)
		assert.Equal(t, "Chain Reaction", c.Name)
	})

	t.Run("unknown id", func(t *testing.T) {
		bogus := uuid.New()
		_, err := f.climbs.AddOrUpdateClimbs(ctx, user, crag.ID, []models.ClimbChange{
			{ID: &bogus, Name: "Ghost"},
		})
		assert.ErrorIs(t, err, models.ErrClimbNotFound)
	})
}

func TestAddOrUpdateClimbs_DisciplineExclusivity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := uuid.New()
	crag := setupCrag(t, f, user)

	t.Run("mixed batch fails whole", func(t *testing.T) {
		_, err := f.climbs.AddOrUpdateClimbs(ctx, user, crag.ID, []models.ClimbChange{
			{Name: "Route", Grade: "5.10a", Disciplines: models.Disciplines{Sport: true}},
			{Name: "Problem", Grade: "V4", Disciplines: models.Disciplines{Bouldering: true}},
		})
		require.ErrorIs(t, err, models.ErrMixedDiscipline)

		climbs, err := f.climbs.ListClimbs(ctx, crag.ID)
		require.NoError(t, err)
		assert.Empty(t, climbs, "failed batch must write nothing")
	})

	t.Run("first batch fixes the crag's discipline", func(t *testing.T) {
		_, err := f.climbs.AddOrUpdateClimbs(ctx, user, crag.ID, []models.ClimbChange{
			{Name: "Problem", Grade: "V4", Disciplines: models.Disciplines{Bouldering: true}},
		})
		require.NoError(t, err)
		assert.True(t, f.store.areas[crag.ID].IsBoulder)

		_, err = f.climbs.AddOrUpdateClimbs(ctx, user, crag.ID, []models.ClimbChange{
			{Name: "Route", Grade: "5.10a", Disciplines: models.Disciplines{Sport: true}},
		})
		assert.ErrorIs(t, err, models.ErrMixedDiscipline)
	})
}

func TestAddOrUpdateClimbs_NotLeaf(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := uuid.New()

	_, err := f.areas.AddCountry(ctx, user, "usa")
	require.NoError(t, err)
	nv, err := f.areas.AddArea(ctx, user, AddAreaRequest{Name: "Nevada", CountryCode: "usa"})
	require.NoError(t, err)
	_, err = f.areas.AddArea(ctx, user, AddAreaRequest{Name: "Red Rocks", ParentID: &nv.ID})
	require.NoError(t, err)

	_, err = f.climbs.AddOrUpdateClimbs(ctx, user, nv.ID, []models.ClimbChange{
		{Name: "Nope", Grade: "5.9", Disciplines: models.Disciplines{Trad: true}},
	})
	assert.ErrorIs(t, err, models.ErrNotLeaf)
}

func TestDeleteClimbs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := uuid.New()
	crag := setupCrag(t, f, user)

	ids, err := f.climbs.AddOrUpdateClimbs(ctx, user, crag.ID, []models.ClimbChange{
		{Name: "A", Grade: "5.9", Disciplines: models.Disciplines{Sport: true}},
		{Name: "B", Grade: "5.10a", Disciplines: models.Disciplines{Sport: true}},
	})
	require.NoError(t, err)

	n, err := f.climbs.DeleteClimbs(ctx, user, crag.ID, ids[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// soft-deleted, invisible to reads, stats re-reduced
	_, err = f.climbs.GetClimb(ctx, ids[0])
	assert.ErrorIs(t, err, models.ErrClimbNotFound)
	assert.Equal(t, 1, f.store.areas[crag.ID].TotalClimbs)
	assert.Equal(t, 1, f.store.areas[*crag.ParentID].TotalClimbs)

	// the raw row still exists for the feed listener
	raw := f.store.climbs[ids[0]]
	require.NotNil(t, raw)
	assert.NotNil(t, raw.Deleting)
	assert.Equal(t, models.OpDeleteClimb, raw.Change.Operation)

	t.Run("already deleted", func(t *testing.T) {
		_, err := f.climbs.DeleteClimbs(ctx, user, crag.ID, ids[:1])
		assert.ErrorIs(t, err, models.ErrClimbNotFound)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		n, err := f.climbs.DeleteClimbs(ctx, user, crag.ID, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestSweepDeleted(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := uuid.New()
	crag := setupCrag(t, f, user)

	ids, err := f.climbs.AddOrUpdateClimbs(ctx, user, crag.ID, []models.ClimbChange{
		{Name: "A", Grade: "5.9", Disciplines: models.Disciplines{Sport: true}},
	})
	require.NoError(t, err)
	_, err = f.climbs.DeleteClimbs(ctx, user, crag.ID, ids)
	require.NoError(t, err)

	// inside the grace period nothing is removed
	require.NoError(t, f.areas.SweepDeleted(ctx, nil, 3600))
	assert.Contains(t, f.store.climbs, ids[0])

	// a zero grace period removes it
	require.NoError(t, f.areas.SweepDeleted(ctx, nil, -1))
	assert.NotContains(t, f.store.climbs, ids[0])
}
