package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruxdb/cruxd/cmd/cruxd/models"
)

func TestSummarizeLeaf(t *testing.T) {
	crag := &models.Area{GradeContext: "US", LngLat: &models.Point{Lng: -121.14, Lat: 44.37}}
	climbs := []*models.Climb{
		{Grade: "5.8", Disciplines: models.Disciplines{Sport: true}},
		{Grade: "5.8", Disciplines: models.Disciplines{Sport: true, Trad: true}},
		{Grade: "V4", Disciplines: models.Disciplines{Bouldering: true}},
		{Disciplines: models.Disciplines{Sport: true}}, // ungraded
	}

	sum := SummarizeLeaf(crag, climbs)

	assert.Equal(t, 4, sum.totalClimbs)
	assert.Equal(t, []models.CountByGroup{{Label: "5.8", Count: 2}, {Label: "V4", Count: 1}}, sum.aggregate.ByGrade)
	assert.Equal(t, []models.CountByGroup{
		{Label: "sport", Count: 3}, {Label: "trad", Count: 1}, {Label: "bouldering", Count: 1},
	}, sum.aggregate.ByDiscipline)
	assert.Equal(t, 2, sum.aggregate.ByGradeBand.Beginner) // 5.8 x2
	assert.Equal(t, 1, sum.aggregate.ByGradeBand.Advanced) // V4
	assert.Equal(t, 1, sum.aggregate.ByGradeBand.Unknown)

	require.NotNil(t, sum.bbox)
	assert.Greater(t, sum.density, 0.0)
}

func TestSummarizeLeaf_NoCoordinates(t *testing.T) {
	sum := SummarizeLeaf(&models.Area{GradeContext: "US"}, []*models.Climb{{Grade: "5.9"}})
	assert.Nil(t, sum.bbox)
	assert.Zero(t, sum.density)
	assert.Equal(t, 1, sum.totalClimbs)
}

func TestCombineSummaries(t *testing.T) {
	b1 := models.BBox{0, 0, 1, 1}
	b2 := models.BBox{2, 2, 3, 3}
	agg1 := models.NewAggregate()
	agg1.ByGrade = []models.CountByGroup{{Label: "5.9", Count: 2}}
	agg2 := models.NewAggregate()
	agg2.ByGrade = []models.CountByGroup{{Label: "5.9", Count: 1}}

	sum := combineSummaries([]treeSummary{
		{totalClimbs: 2, bbox: &b1, aggregate: agg1},
		{totalClimbs: 1, bbox: &b2, aggregate: agg2},
		{totalClimbs: 0, aggregate: models.NewAggregate()}, // no bbox
	})

	assert.Equal(t, 3, sum.totalClimbs)
	require.NotNil(t, sum.bbox)
	assert.Equal(t, models.BBox{0, 0, 3, 3}, *sum.bbox)
	assert.Equal(t, []models.CountByGroup{{Label: "5.9", Count: 3}}, sum.aggregate.ByGrade)
	assert.NotEmpty(t, sum.polygon)
	assert.Greater(t, sum.density, 0.0)
}

func TestCombineSummaries_Empty(t *testing.T) {
	sum := combineSummaries(nil)
	assert.Zero(t, sum.totalClimbs)
	assert.Nil(t, sum.bbox)
	assert.Nil(t, sum.polygon)
}

func TestApplySummary_ChangeDetection(t *testing.T) {
	a := &models.Area{Aggregate: models.NewAggregate()}

	sum := treeSummary{totalClimbs: 3, aggregate: models.NewAggregate()}
	assert.True(t, applySummary(a, sum))
	assert.Equal(t, 3, a.TotalClimbs)

	// identical summary is a no-op
	assert.False(t, applySummary(a, sum))
}

func TestRecalculateAll(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := uuid.New()

	crag := setupCrag(t, f, user)
	_, err := f.climbs.AddOrUpdateClimbs(ctx, user, crag.ID, []models.ClimbChange{
		{Name: "A", Grade: "5.9", Disciplines: models.Disciplines{Sport: true}},
		{Name: "B", Grade: "5.13a", Disciplines: models.Disciplines{Sport: true}},
	})
	require.NoError(t, err)

	// corrupt the stored statistics, then rebuild
	country := f.store.areas[*crag.ParentID]
	country.TotalClimbs = 99
	f.store.areas[crag.ID].TotalClimbs = 99

	stats := NewStatsService(nil, f.store, climbStore{f.store}, 1, testLogger())
	require.NoError(t, stats.RecalculateAll(ctx))

	assert.Equal(t, 2, f.store.areas[crag.ID].TotalClimbs)
	assert.Equal(t, 2, f.store.areas[*crag.ParentID].TotalClimbs)
	assert.Equal(t, 1, f.store.areas[crag.ID].Aggregate.ByGradeBand.Intermediate)
	assert.Equal(t, 1, f.store.areas[crag.ID].Aggregate.ByGradeBand.Expert)

	// a second run converges to the same state
	before := copyArea(f.store.areas[crag.ID])
	require.NoError(t, stats.RecalculateAll(ctx))
	assert.Equal(t, before, f.store.areas[crag.ID])
}
