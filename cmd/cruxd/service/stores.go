package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cruxdb/cruxd/cmd/cruxd/models"
	"github.com/cruxdb/cruxd/cmd/cruxd/repository"
	"github.com/cruxdb/cruxd/common/db"
)

// TxRunner runs a function inside a single database transaction. Every
// mutation of the tree goes through one of these so partial writes are
// never visible.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(q db.Querier) error) error
}

// AreaStore is the persistence surface the area service needs
type AreaStore interface {
	Insert(ctx context.Context, q db.Querier, a *models.Area) error
	GetByID(ctx context.Context, q db.Querier, id uuid.UUID) (*models.Area, error)
	Update(ctx context.Context, q db.Querier, a *models.Area) error
	MarkDeleting(ctx context.Context, q db.Querier, id uuid.UUID, change *models.ChangeRecordMetadata, user uuid.UUID) error
	ListChildren(ctx context.Context, q db.Querier, parent *models.Area) ([]*models.Area, error)
	ListByDepth(ctx context.Context, q db.Querier, depth int) ([]*models.Area, error)
	SweepDeleted(ctx context.Context, q db.Querier, graceSeconds int) (int64, error)
}

// ClimbStore is the persistence surface the climb service needs
type ClimbStore interface {
	Insert(ctx context.Context, q db.Querier, c *models.Climb) error
	Update(ctx context.Context, q db.Querier, c *models.Climb) error
	GetByID(ctx context.Context, q db.Querier, id uuid.UUID) (*models.Climb, error)
	ListByArea(ctx context.Context, q db.Querier, areaID uuid.UUID) ([]*models.Climb, error)
	MarkDeleting(ctx context.Context, q db.Querier, areaID uuid.UUID, ids []uuid.UUID, change *models.ChangeRecordMetadata, user uuid.UUID) (int64, error)
	SweepDeleted(ctx context.Context, q db.Querier, graceSeconds int) (int64, error)
}

// ChangelogStore is the persistence surface for change sets
type ChangelogStore interface {
	Create(ctx context.Context, q db.Querier, h *models.History) error
	AppendEntry(ctx context.Context, q db.Querier, e *models.ChangeEntry) (bool, error)
	GetByID(ctx context.Context, q db.Querier, id uuid.UUID) (*models.History, error)
	List(ctx context.Context, q db.Querier, f repository.HistoryFilter) ([]*models.History, error)
	MaxRecordedEventID(ctx context.Context, q db.Querier) (int64, error)
}

// EventStore reads the committed-write feed
type EventStore interface {
	ListAfter(ctx context.Context, q db.Querier, afterID int64, collections []string, limit int) ([]models.DocEvent, error)
	WaitForWakeup(ctx context.Context, timeout time.Duration) error
	Prune(ctx context.Context, q db.Querier, upToID int64) (int64, error)
}
