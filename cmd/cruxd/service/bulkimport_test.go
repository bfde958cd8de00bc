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

func boolp(b bool) *bool { return &b }

func TestBulkImport(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := uuid.New()

	_, err := f.areas.AddCountry(ctx, user, "usa")
	require.NoError(t, err)

	result, err := f.imp.Import(ctx, user, models.BulkImportInput{
		Areas: []models.AreaImportNode{{
			Create: &models.AreaImportCreate{Name: "Oregon", CountryCode: "usa"},
			Children: []models.AreaImportNode{{
				Create: &models.AreaImportCreate{Name: "Smith Rock", IsLeaf: boolp(true)},
				Climbs: []models.ClimbChange{
					{Name: "Chain Reaction", Grade: "5.12c", Disciplines: models.Disciplines{Sport: true}},
				},
			}},
		}},
	})
	require.NoError(t, err)

	require.Len(t, result.AddedAreas, 2)
	assert.Len(t, result.UpdatedAreas, 0)
	require.Len(t, result.AddedOrUpdatedClimbs, 1)

	// nested nodes hang off the node above them
	oregon := result.AddedAreas[0]
	smith := result.AddedAreas[1]
	assert.Equal(t, identity.FromPath("United States of America", "Oregon"), oregon.ID)
	require.NotNil(t, smith.ParentID)
	assert.Equal(t, oregon.ID, *smith.ParentID)

	// the whole import shares one change set, seq strictly increasing
	require.NotNil(t, oregon.Change)
	assert.Equal(t, models.OpBulkImport, oregon.Change.Operation)
	assert.Equal(t, oregon.Change.HistoryID, smith.Change.HistoryID)
	assert.Less(t, oregon.Change.Seq, smith.Change.Seq)
	require.Len(t, f.store.headers, 2) // addCountry + bulkImport
}

func TestBulkImport_AllOrNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := uuid.New()

	_, err := f.areas.AddCountry(ctx, user, "usa")
	require.NoError(t, err)
	areasBefore := len(f.store.areas)

	// the second root fails on the discipline guard
	_, err = f.imp.Import(ctx, user, models.BulkImportInput{
		Areas: []models.AreaImportNode{
			{Create: &models.AreaImportCreate{Name: "Oregon", CountryCode: "usa"}},
			{
				Create: &models.AreaImportCreate{Name: "Bishop", CountryCode: "usa", IsLeaf: boolp(true)},
				Climbs: []models.ClimbChange{
					{Name: "Route", Grade: "5.9", Disciplines: models.Disciplines{Sport: true}},
					{Name: "Problem", Grade: "V4", Disciplines: models.Disciplines{Bouldering: true}},
				},
			},
		},
	})
	require.ErrorIs(t, err, models.ErrMixedDiscipline)

	// the first root rolled back with it
	assert.Len(t, f.store.areas, areasBefore)
	assert.Nil(t, f.store.areas[identity.FromPath("United States of America", "Oregon")])
	assert.Empty(t, f.store.climbs)
}

func TestBulkImport_ValidationRejectsBeforeWriting(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := uuid.New()

	_, err := f.imp.Import(ctx, user, models.BulkImportInput{
		Areas: []models.AreaImportNode{{}},
	})
	require.ErrorIs(t, err, models.ErrImportVariant)
	assert.Empty(t, f.store.headers)
}

func TestBulkImport_UpdateTouchesOnlyNamedNode(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := uuid.New()

	_, err := f.areas.AddCountry(ctx, user, "usa")
	require.NoError(t, err)
	or, err := f.areas.AddArea(ctx, user, AddAreaRequest{Name: "Oregon", CountryCode: "usa"})
	require.NoError(t, err)
	smith, err := f.areas.AddArea(ctx, user, AddAreaRequest{Name: "Smith Rock", ParentID: &or.ID})
	require.NoError(t, err)

	desc := "High desert basalt and tuff"
	result, err := f.imp.Import(ctx, user, models.BulkImportInput{
		Areas: []models.AreaImportNode{{
			Update: &models.AreaImportUpdate{
				ID:     or.ID,
				Fields: models.AreaEditableFields{Description: &desc},
			},
		}},
	})
	require.NoError(t, err)

	require.Len(t, result.UpdatedAreas, 1)
	assert.Empty(t, result.AddedAreas)
	assert.Equal(t, desc, f.store.areas[or.ID].Description)

	// the sibling subtree is untouched
	assert.Equal(t, smith.Change.HistoryID, f.store.areas[smith.ID].Change.HistoryID)
}
