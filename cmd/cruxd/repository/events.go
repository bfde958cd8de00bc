package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cruxdb/cruxd/cmd/cruxd/models"
	"github.com/cruxdb/cruxd/common/db"
)

// notifyChannel matches the channel name used by the log_doc_event trigger
const notifyChannel = "doc_events"

// EventRepository reads the trigger-populated outbox that stands in for
// the document store's change stream
type EventRepository struct {
	db *db.DB

	mu   sync.Mutex
	conn *pgxpool.Conn
}

// NewEventRepository creates a new event repository
func NewEventRepository(database *db.DB) *EventRepository {
	return &EventRepository{db: database}
}

// ListAfter retrieves outbox events with id > afterID for the tracked
// collections, oldest first
func (r *EventRepository) ListAfter(ctx context.Context, q db.Querier, afterID int64, collections []string, limit int) ([]models.DocEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, collection, op, doc_id, doc, prev_doc, occurred_at
		FROM doc_events
		WHERE id > $1 AND collection = ANY($2)
		ORDER BY id
		LIMIT $3
	`

	rows, err := q.Query(ctx, query, afterID, collections, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list doc events: %w", err)
	}
	defer rows.Close()

	var events []models.DocEvent
	for rows.Next() {
		var e models.DocEvent
		if err := rows.Scan(&e.ID, &e.Collection, &e.Op, &e.DocID, &e.Doc, &e.PrevDoc, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan doc event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate doc events: %w", err)
	}

	return events, nil
}

// WaitForWakeup blocks until the trigger raises a notification or the
// timeout elapses. A timeout is not an error: the listener polls anyway
// so a lost notification only delays delivery.
func (r *EventRepository) WaitForWakeup(ctx context.Context, timeout time.Duration) error {
	conn, err := r.listenConn(ctx)
	if err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err = conn.Conn().WaitForNotification(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		// drop the connection; the next call re-establishes LISTEN
		r.releaseConn()
		return fmt.Errorf("wait for notification: %w", err)
	}

	return nil
}

func (r *EventRepository) listenConn(ctx context.Context) (*pgxpool.Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn != nil {
		return r.conn, nil
	}

	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen %s: %w", notifyChannel, err)
	}

	r.conn = conn
	return conn, nil
}

func (r *EventRepository) releaseConn() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn != nil {
		r.conn.Release()
		r.conn = nil
	}
}

// Close releases the dedicated listen connection
func (r *EventRepository) Close() {
	r.releaseConn()
}

// Prune removes outbox rows that have already been consumed. Keeps the
// outbox from growing without bound once history tables hold the events.
func (r *EventRepository) Prune(ctx context.Context, q db.Querier, upToID int64) (int64, error) {
	tag, err := q.Exec(ctx, `DELETE FROM doc_events WHERE id <= $1`, upToID)
	if err != nil {
		return 0, fmt.Errorf("failed to prune doc events: %w", err)
	}

	return tag.RowsAffected(), nil
}
