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

const areaColumns = `id, name, short_code, parent_id, children, ancestors, path_tokens,
	grade_context, is_destination, is_leaf, is_boulder, left_right_index,
	lnglat, bbox, polygon,
	description, total_climbs, density, aggregate, change, deleting,
	created_by, updated_by, created_at, updated_at`

// AreaRepository handles database operations for areas
type AreaRepository struct {
	db *db.DB
}

// NewAreaRepository creates a new area repository
func NewAreaRepository(database *db.DB) *AreaRepository {
	return &AreaRepository{db: database}
}

func scanArea(row pgx.Row) (*models.Area, error) {
	a := &models.Area{}
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.ShortCode,
		&a.ParentID,
		&a.Children,
		&a.Ancestors,
		&a.PathTokens,
		&a.GradeContext,
		&a.IsDestination,
		&a.IsLeaf,
		&a.IsBoulder,
		&a.LeftRightIndex,
		&a.LngLat,
		&a.BBox,
		&a.Polygon,
		&a.Description,
		&a.TotalClimbs,
		&a.Density,
		&a.Aggregate,
		&a.Change,
		&a.Deleting,
		&a.CreatedBy,
		&a.UpdatedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrAreaNotFound
		}
		return nil, fmt.Errorf("scan area: %w", err)
	}
	return a, nil
}

// Insert inserts a new area
func (r *AreaRepository) Insert(ctx context.Context, q db.Querier, a *models.Area) error {
	query := `
		INSERT INTO area (id, name, short_code, parent_id, children, ancestors, path_tokens,
			grade_context, is_destination, is_leaf, is_boulder, left_right_index,
			lnglat, bbox, polygon,
			description, total_climbs, density, aggregate, change, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	_, err := q.Exec(ctx, query,
		a.ID,
		a.Name,
		a.ShortCode,
		a.ParentID,
		a.Children,
		a.Ancestors,
		a.PathTokens,
		a.GradeContext,
		a.IsDestination,
		a.IsLeaf,
		a.IsBoulder,
		a.LeftRightIndex,
		a.LngLat,
		a.BBox,
		a.Polygon,
		a.Description,
		a.TotalClimbs,
		a.Density,
		a.Aggregate,
		a.Change,
		a.CreatedBy,
		a.UpdatedBy,
	)

	if err != nil {
		return fmt.Errorf("failed to insert area: %w", err)
	}

	return nil
}

// GetByID retrieves an area by id, excluding soft-deleted documents
func (r *AreaRepository) GetByID(ctx context.Context, q db.Querier, id uuid.UUID) (*models.Area, error) {
	query := `SELECT ` + areaColumns + ` FROM area WHERE id = $1 AND deleting IS NULL`
	return scanArea(q.QueryRow(ctx, query, id))
}

// Update persists all mutable fields of an area
func (r *AreaRepository) Update(ctx context.Context, q db.Querier, a *models.Area) error {
	query := `
		UPDATE area
		SET name = $2, short_code = $3, children = $4, path_tokens = $5,
			is_destination = $6, is_leaf = $7, is_boulder = $8,
			left_right_index = $9,
			lnglat = $10, bbox = $11, polygon = $12, description = $13,
			total_climbs = $14, density = $15, aggregate = $16,
			change = $17, updated_by = $18, updated_at = now()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		a.ID,
		a.Name,
		a.ShortCode,
		a.Children,
		a.PathTokens,
		a.IsDestination,
		a.IsLeaf,
		a.IsBoulder,
		a.LeftRightIndex,
		a.LngLat,
		a.BBox,
		a.Polygon,
		a.Description,
		a.TotalClimbs,
		a.Density,
		a.Aggregate,
		a.Change,
		a.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update area: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrAreaNotFound
	}

	return nil
}

// MarkDeleting sets the soft-delete marker so the change feed captures
// a terminal snapshot before the expiry sweep removes the row
func (r *AreaRepository) MarkDeleting(ctx context.Context, q db.Querier, id uuid.UUID, change *models.ChangeRecordMetadata, user uuid.UUID) error {
	query := `
		UPDATE area
		SET deleting = now(), change = $2, updated_by = $3, updated_at = now()
		WHERE id = $1 AND deleting IS NULL
	`

	tag, err := q.Exec(ctx, query, id, change, user)
	if err != nil {
		return fmt.Errorf("failed to mark area deleting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrAreaNotFound
	}

	return nil
}

// ListChildren retrieves the live child areas of a node, preserving the
// parent's children order
func (r *AreaRepository) ListChildren(ctx context.Context, q db.Querier, parent *models.Area) ([]*models.Area, error) {
	if len(parent.Children) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + areaColumns + `
		FROM area
		WHERE id = ANY($1) AND deleting IS NULL
		ORDER BY array_position($1, id)
	`

	rows, err := q.Query(ctx, query, parent.Children)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	defer rows.Close()

	return collectAreas(rows)
}

// ListByDepth retrieves all live areas at a given tree depth
// (countries are depth 1)
func (r *AreaRepository) ListByDepth(ctx context.Context, q db.Querier, depth int) ([]*models.Area, error) {
	query := `
		SELECT ` + areaColumns + `
		FROM area
		WHERE cardinality(path_tokens) = $1 AND deleting IS NULL
		ORDER BY name
	`

	rows, err := q.Query(ctx, query, depth)
	if err != nil {
		return nil, fmt.Errorf("failed to list areas by depth: %w", err)
	}
	defer rows.Close()

	return collectAreas(rows)
}

// SweepDeleted physically removes soft-deleted areas older than the
// grace period. Stands in for the document store's TTL expiry.
func (r *AreaRepository) SweepDeleted(ctx context.Context, q db.Querier, graceSeconds int) (int64, error) {
	query := `DELETE FROM area WHERE deleting IS NOT NULL AND deleting < now() - make_interval(secs => $1)`

	tag, err := q.Exec(ctx, query, graceSeconds)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep deleted areas: %w", err)
	}

	return tag.RowsAffected(), nil
}

func collectAreas(rows pgx.Rows) ([]*models.Area, error) {
	var areas []*models.Area
	for rows.Next() {
		a, err := scanArea(rows)
		if err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate areas: %w", err)
	}
	return areas, nil
}
