package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cruxdb/cruxd/cmd/cruxd/models"
	"github.com/cruxdb/cruxd/common/db"
)

const climbColumns = `id, name, area_id, grade, disciplines, description, location,
	protection, fa, length, bolts_count, left_right_index, lnglat, change, deleting,
	created_by, updated_by, created_at, updated_at`

// ClimbRepository handles database operations for climbs
type ClimbRepository struct {
	db *db.DB
}

// NewClimbRepository creates a new climb repository
func NewClimbRepository(database *db.DB) *ClimbRepository {
	return &ClimbRepository{db: database}
}

func scanClimb(row pgx.Row) (*models.Climb, error) {
	c := &models.Climb{}
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.AreaID,
		&c.Grade,
		&c.Disciplines,
		&c.Description,
		&c.Location,
		&c.Protection,
		&c.FA,
		&c.Length,
		&c.BoltsCount,
		&c.LeftRightIndex,
		&c.LngLat,
		&c.Change,
		&c.Deleting,
		&c.CreatedBy,
		&c.UpdatedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrClimbNotFound
		}
		return nil, fmt.Errorf("scan climb: %w", err)
	}
	return c, nil
}

// Insert inserts a new climb
func (r *ClimbRepository) Insert(ctx context.Context, q db.Querier, c *models.Climb) error {
	query := `
		INSERT INTO climb (id, name, area_id, grade, disciplines, description, location,
			protection, fa, length, bolts_count, left_right_index, lnglat, change,
			created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := q.Exec(ctx, query,
		c.ID,
		c.Name,
		c.AreaID,
		c.Grade,
		c.Disciplines,
		c.Description,
		c.Location,
		c.Protection,
		c.FA,
		c.Length,
		c.BoltsCount,
		c.LeftRightIndex,
		c.LngLat,
		c.Change,
		c.CreatedBy,
		c.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert climb: %w", err)
	}

	return nil
}

// Update persists all mutable fields of a climb
func (r *ClimbRepository) Update(ctx context.Context, q db.Querier, c *models.Climb) error {
	query := `
		UPDATE climb
		SET name = $2, grade = $3, disciplines = $4, description = $5, location = $6,
			protection = $7, fa = $8, length = $9, bolts_count = $10,
			left_right_index = $11, lnglat = $12, change = $13, updated_by = $14,
			updated_at = now()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Grade,
		c.Disciplines,
		c.Description,
		c.Location,
		c.Protection,
		c.FA,
		c.Length,
		c.BoltsCount,
		c.LeftRightIndex,
		c.LngLat,
		c.Change,
		c.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update climb: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrClimbNotFound
	}

	return nil
}

// GetByID retrieves a climb by id, excluding soft-deleted documents
func (r *ClimbRepository) GetByID(ctx context.Context, q db.Querier, id uuid.UUID) (*models.Climb, error) {
	query := `SELECT ` + climbColumns + ` FROM climb WHERE id = $1 AND deleting IS NULL`
	return scanClimb(q.QueryRow(ctx, query, id))
}

// ListByArea retrieves the live climbs of a leaf area ordered left to right
func (r *ClimbRepository) ListByArea(ctx context.Context, q db.Querier, areaID uuid.UUID) ([]*models.Climb, error) {
	query := `
		SELECT ` + climbColumns + `
		FROM climb
		WHERE area_id = $1 AND deleting IS NULL
		ORDER BY left_right_index, name
	`

	rows, err := q.Query(ctx, query, areaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list climbs: %w", err)
	}
	defer rows.Close()

	var climbs []*models.Climb
	for rows.Next() {
		c, err := scanClimb(rows)
		if err != nil {
			return nil, err
		}
		climbs = append(climbs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate climbs: %w", err)
	}

	return climbs, nil
}

// MarkDeleting sets the soft-delete marker on a batch of climbs within one area
func (r *ClimbRepository) MarkDeleting(ctx context.Context, q db.Querier, areaID uuid.UUID, ids []uuid.UUID, change *models.ChangeRecordMetadata, user uuid.UUID) (int64, error) {
	query := `
		UPDATE climb
		SET deleting = now(), change = $3, updated_by = $4, updated_at = now()
		WHERE area_id = $1 AND id = ANY($2) AND deleting IS NULL
	`

	tag, err := q.Exec(ctx, query, areaID, ids, change, user)
	if err != nil {
		return 0, fmt.Errorf("failed to mark climbs deleting: %w", err)
	}

	return tag.RowsAffected(), nil
}

// SweepDeleted physically removes soft-deleted climbs older than the grace period
func (r *ClimbRepository) SweepDeleted(ctx context.Context, q db.Querier, graceSeconds int) (int64, error) {
	query := `DELETE FROM climb WHERE deleting IS NOT NULL AND deleting < now() - make_interval(secs => $1)`

	tag, err := q.Exec(ctx, query, graceSeconds)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep deleted climbs: %w", err)
	}

	return tag.RowsAffected(), nil
}
