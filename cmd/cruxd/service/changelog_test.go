package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruxdb/cruxd/cmd/cruxd/models"
)

func TestChangeLogRecord(t *testing.T) {
	m := newMemStore()
	svc := NewChangeLogService(nil, changeLogStore{m}, testLogger())
	ctx := context.Background()

	historyID := uuid.New()
	require.NoError(t, changeLogStore{m}.Create(ctx, nil, &models.History{
		ID: historyID, EditedBy: uuid.New(), Operation: models.OpAddArea,
	}))

	entry := &models.ChangeEntry{
		HistoryID:   historyID,
		FeedEventID: 7,
		Collection:  models.CollectionAreas,
		DBOp:        models.DBOpInsert,
		DocID:       uuid.New(),
	}

	recorded, err := svc.Record(ctx, nil, entry)
	require.NoError(t, err)
	assert.True(t, recorded)

	// replaying the same feed event is absorbed
	recorded, err = svc.Record(ctx, nil, entry)
	require.NoError(t, err)
	assert.False(t, recorded)

	got, err := svc.GetByID(ctx, historyID)
	require.NoError(t, err)
	require.Len(t, got.Changes, 1)
	assert.Equal(t, int64(7), got.Changes[0].FeedEventID)
}

func TestChangeLogRecord_MissingHeaderDropsEntry(t *testing.T) {
	m := newMemStore()
	svc := NewChangeLogService(nil, changeLogStore{m}, testLogger())

	recorded, err := svc.Record(context.Background(), nil, &models.ChangeEntry{
		HistoryID:   uuid.New(),
		FeedEventID: 1,
		Collection:  models.CollectionAreas,
	})
	require.NoError(t, err, "a missing header must not fail the feed")
	assert.False(t, recorded)
	assert.Empty(t, m.entries)
}

func TestChangeLogRecordExternal(t *testing.T) {
	m := newMemStore()
	svc := NewChangeLogService(nil, changeLogStore{m}, testLogger())
	ctx := context.Background()

	entry := &models.ChangeEntry{
		FeedEventID: 3,
		Collection:  models.CollectionClimbs,
		DBOp:        models.DBOpUpdate,
		DocID:       uuid.New(),
	}
	recorded, err := svc.RecordExternal(ctx, nil, entry)
	require.NoError(t, err)
	assert.True(t, recorded)

	// a synthetic header attributes the out-of-band write
	h, err := svc.GetByID(ctx, entry.HistoryID)
	require.NoError(t, err)
	assert.Equal(t, models.OperationType("external"), h.Operation)
	assert.Equal(t, uuid.Nil, h.EditedBy)
	require.Len(t, h.Changes, 1)
}

func TestResumePosition(t *testing.T) {
	m := newMemStore()
	svc := NewChangeLogService(nil, changeLogStore{m}, testLogger())
	ctx := context.Background()

	pos, err := svc.ResumePosition(ctx)
	require.NoError(t, err)
	assert.Zero(t, pos)

	m.entries = append(m.entries,
		models.ChangeEntry{FeedEventID: 4},
		models.ChangeEntry{FeedEventID: 11},
		models.ChangeEntry{FeedEventID: 6},
	)
	pos, err = svc.ResumePosition(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), pos)
}

func TestChangeSetEntriesOrderedBySeq(t *testing.T) {
	m := newMemStore()
	svc := NewChangeLogService(nil, changeLogStore{m}, testLogger())
	ctx := context.Background()

	historyID := uuid.New()
	require.NoError(t, changeLogStore{m}.Create(ctx, nil, &models.History{
		ID: historyID, EditedBy: uuid.New(), Operation: models.OpDeleteArea,
	}))

	// the feed delivered the later write first; replay must follow the
	// seq the operation stamped, not arrival order
	for _, e := range []models.ChangeEntry{
		{HistoryID: historyID, FeedEventID: 22, Seq: 1, Collection: models.CollectionAreas},
		{HistoryID: historyID, FeedEventID: 21, Seq: 0, Collection: models.CollectionAreas},
	} {
		e := e
		recorded, err := svc.Record(ctx, nil, &e)
		require.NoError(t, err)
		require.True(t, recorded)
	}

	got, err := svc.GetByID(ctx, historyID)
	require.NoError(t, err)
	require.Len(t, got.Changes, 2)
	assert.Equal(t, 0, got.Changes[0].Seq)
	assert.Equal(t, int64(21), got.Changes[0].FeedEventID)
	assert.Equal(t, 1, got.Changes[1].Seq)
}
