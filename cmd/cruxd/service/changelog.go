package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/cruxdb/cruxd/cmd/cruxd/models"
	"github.com/cruxdb/cruxd/cmd/cruxd/repository"
	"github.com/cruxdb/cruxd/common/db"
	"github.com/cruxdb/cruxd/common/logger"
)

// ChangeLogService reads and appends the audit trail. Appending never
// fails the primary write path: a missing change-set header is logged
// and the entry dropped, because the document write it describes has
// already committed.
type ChangeLogService struct {
	pool  db.Querier
	store ChangelogStore
	log   *logger.Logger
}

// NewChangeLogService creates a new change-log service
func NewChangeLogService(pool db.Querier, store ChangelogStore, log *logger.Logger) *ChangeLogService {
	return &ChangeLogService{
		pool:  pool,
		store: store,
		log:   log,
	}
}

// GetChangeSets lists change sets most-recent-first, optionally
// filtered to one document or one editor
func (s *ChangeLogService) GetChangeSets(ctx context.Context, docID, editedBy uuid.UUID, limit int) ([]*models.History, error) {
	return s.store.List(ctx, s.pool, repository.HistoryFilter{
		DocID:    docID,
		EditedBy: editedBy,
		Limit:    limit,
	})
}

// GetByID retrieves one change set with its ordered entries
func (s *ChangeLogService) GetByID(ctx context.Context, id uuid.UUID) (*models.History, error) {
	return s.store.GetByID(ctx, s.pool, id)
}

// Record appends one entry to the change set named by the entry's
// history id. A missing header degrades the audit trail only: the error
// is logged and swallowed. Returns whether the entry was newly
// recorded (false for replayed feed events).
func (s *ChangeLogService) Record(ctx context.Context, q db.Querier, e *models.ChangeEntry) (bool, error) {
	if _, err := s.store.GetByID(ctx, q, e.HistoryID); err != nil {
		if errors.Is(err, models.ErrHistoryNotFound) {
			s.log.WithHistoryID(e.HistoryID.String()).Warn("change set not found, dropping audit entry",
				"collection", e.Collection,
				"doc_id", e.DocID,
			)
			return false, nil
		}
		return false, err
	}

	return s.store.AppendEntry(ctx, q, e)
}

// RecordExternal records a write that did not come through the mutation
// engine. A synthetic change-set header is created so the event is
// still durably attributable.
func (s *ChangeLogService) RecordExternal(ctx context.Context, q db.Querier, e *models.ChangeEntry) (bool, error) {
	e.HistoryID = uuid.New()
	h := &models.History{
		ID:        e.HistoryID,
		EditedBy:  uuid.Nil,
		Operation: "external",
	}
	if err := s.store.Create(ctx, q, h); err != nil {
		return false, err
	}
	return s.store.AppendEntry(ctx, q, e)
}

// ResumePosition returns the newest feed event id already recorded
func (s *ChangeLogService) ResumePosition(ctx context.Context) (int64, error) {
	return s.store.MaxRecordedEventID(ctx, s.pool)
}
