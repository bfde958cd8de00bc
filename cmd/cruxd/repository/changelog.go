package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cruxdb/cruxd/cmd/cruxd/models"
	"github.com/cruxdb/cruxd/common/db"
)

// ChangelogRepository handles database operations for change sets and
// their per-collection history entries
type ChangelogRepository struct {
	db *db.DB
}

// NewChangelogRepository creates a new changelog repository
func NewChangelogRepository(database *db.DB) *ChangelogRepository {
	return &ChangelogRepository{db: database}
}

func historyTable(c string) (string, error) {
	switch c {
	case models.CollectionAreas:
		return "area_history", nil
	case models.CollectionClimbs:
		return "climb_history", nil
	case models.CollectionOrganizations:
		return "organization_history", nil
	default:
		return "", fmt.Errorf("unknown collection %q", c)
	}
}

// Create inserts a change-set header
func (r *ChangelogRepository) Create(ctx context.Context, q db.Querier, h *models.History) error {
	query := `INSERT INTO changelog (id, edited_by, operation) VALUES ($1, $2, $3)`

	_, err := q.Exec(ctx, query, h.ID, h.EditedBy, h.Operation)
	if err != nil {
		return fmt.Errorf("failed to insert changelog: %w", err)
	}

	return nil
}

// AppendEntry records one document snapshot under a change set. Replays
// of the same feed event are absorbed by the unique feed_event_id, so
// the at-least-once pipeline stays idempotent. Returns false when the
// event was already recorded.
func (r *ChangelogRepository) AppendEntry(ctx context.Context, q db.Querier, e *models.ChangeEntry) (bool, error) {
	table, err := historyTable(e.Collection)
	if err != nil {
		return false, err
	}

	query := `
		INSERT INTO ` + table + ` (history_id, feed_event_id, db_op, doc_id, seq, full_document, updated_fields)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (feed_event_id) DO NOTHING
	`

	tag, err := q.Exec(ctx, query,
		e.HistoryID,
		e.FeedEventID,
		e.DBOp,
		e.DocID,
		e.Seq,
		e.FullDocument,
		e.UpdatedFields,
	)
	if err != nil {
		return false, fmt.Errorf("failed to append history entry: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// GetByID retrieves one change set with its entries
func (r *ChangelogRepository) GetByID(ctx context.Context, q db.Querier, id uuid.UUID) (*models.History, error) {
	query := `SELECT id, edited_by, operation, created_at FROM changelog WHERE id = $1`

	h := &models.History{}
	err := q.QueryRow(ctx, query, id).Scan(&h.ID, &h.EditedBy, &h.Operation, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrHistoryNotFound
		}
		return nil, fmt.Errorf("scan changelog: %w", err)
	}

	if err := r.loadEntries(ctx, q, []*models.History{h}); err != nil {
		return nil, err
	}

	return h, nil
}

// HistoryFilter narrows change-set queries. Zero values mean "no filter".
type HistoryFilter struct {
	EditedBy uuid.UUID
	DocID    uuid.UUID
	Limit    int
}

// List retrieves change sets newest first, each with its entries
// ordered by the seq their operation stamped
func (r *ChangelogRepository) List(ctx context.Context, q db.Querier, f HistoryFilter) ([]*models.History, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT DISTINCT c.id, c.edited_by, c.operation, c.created_at
		FROM changelog c
		WHERE ($1::uuid = '00000000-0000-0000-0000-000000000000' OR c.edited_by = $1)
		  AND ($2::uuid = '00000000-0000-0000-0000-000000000000' OR c.id IN (
			SELECT history_id FROM area_history WHERE doc_id = $2
			UNION ALL
			SELECT history_id FROM climb_history WHERE doc_id = $2
			UNION ALL
			SELECT history_id FROM organization_history WHERE doc_id = $2
		  ))
		ORDER BY c.created_at DESC, c.id
		LIMIT $3
	`

	rows, err := q.Query(ctx, query, f.EditedBy, f.DocID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list change sets: %w", err)
	}
	defer rows.Close()

	var sets []*models.History
	for rows.Next() {
		h := &models.History{}
		if err := rows.Scan(&h.ID, &h.EditedBy, &h.Operation, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan changelog: %w", err)
		}
		sets = append(sets, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate change sets: %w", err)
	}

	if err := r.loadEntries(ctx, q, sets); err != nil {
		return nil, err
	}

	return sets, nil
}

func (r *ChangelogRepository) loadEntries(ctx context.Context, q db.Querier, sets []*models.History) error {
	if len(sets) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(sets))
	byID := make(map[uuid.UUID]*models.History, len(sets))
	for i, h := range sets {
		ids[i] = h.ID
		byID[h.ID] = h
	}

	for _, src := range []struct {
		table      string
		collection string
	}{
		{"area_history", models.CollectionAreas},
		{"climb_history", models.CollectionClimbs},
		{"organization_history", models.CollectionOrganizations},
	} {
		query := `
			SELECT id, history_id, feed_event_id, db_op, doc_id, seq, full_document, updated_fields, created_at
			FROM ` + src.table + `
			WHERE history_id = ANY($1)
			ORDER BY seq, feed_event_id
		`

		rows, err := q.Query(ctx, query, ids)
		if err != nil {
			return fmt.Errorf("failed to load %s entries: %w", src.table, err)
		}

		for rows.Next() {
			e := models.ChangeEntry{Collection: src.collection}
			if err := rows.Scan(&e.ID, &e.HistoryID, &e.FeedEventID, &e.DBOp, &e.DocID, &e.Seq, &e.FullDocument, &e.UpdatedFields, &e.CreatedAt); err != nil {
				rows.Close()
				return fmt.Errorf("scan %s entry: %w", src.table, err)
			}
			byID[e.HistoryID].Changes = append(byID[e.HistoryID].Changes, e)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("iterate %s entries: %w", src.table, err)
		}
		rows.Close()
	}

	// entries replay in the order the operation stamped them, not the
	// order the feed delivered them; feed id breaks seq ties across
	// collections
	for _, h := range sets {
		sort.Slice(h.Changes, func(i, j int) bool {
			if h.Changes[i].Seq != h.Changes[j].Seq {
				return h.Changes[i].Seq < h.Changes[j].Seq
			}
			return h.Changes[i].FeedEventID < h.Changes[j].FeedEventID
		})
	}

	return nil
}

// MaxRecordedEventID returns the highest feed event id already written
// to any history table. The listener resumes from here after a restart,
// so no external cursor has to be kept.
func (r *ChangelogRepository) MaxRecordedEventID(ctx context.Context, q db.Querier) (int64, error) {
	query := `
		SELECT COALESCE(GREATEST(
			(SELECT MAX(feed_event_id) FROM area_history),
			(SELECT MAX(feed_event_id) FROM climb_history),
			(SELECT MAX(feed_event_id) FROM organization_history)
		), 0)
	`

	var max int64
	if err := q.QueryRow(ctx, query).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to read max recorded event id: %w", err)
	}

	return max, nil
}
