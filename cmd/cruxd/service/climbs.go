package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/cruxdb/cruxd/cmd/cruxd/models"
	"github.com/cruxdb/cruxd/common/db"
	"github.com/cruxdb/cruxd/common/logger"
)

// ClimbService mutates climbs under a leaf area. Every call updates the
// owning crag's derived statistics and re-reduces its ancestors inside
// the same transaction.
type ClimbService struct {
	pool      db.Querier
	tx        TxRunner
	areas     AreaStore
	climbs    ClimbStore
	changelog ChangelogStore
	log       *logger.Logger
}

// NewClimbService creates a new climb service
func NewClimbService(pool db.Querier, tx TxRunner, areas AreaStore, climbs ClimbStore, changelog ChangelogStore, log *logger.Logger) *ClimbService {
	return &ClimbService{
		pool:      pool,
		tx:        tx,
		areas:     areas,
		climbs:    climbs,
		changelog: changelog,
		log:       log,
	}
}

// GetClimb retrieves one live climb
func (s *ClimbService) GetClimb(ctx context.Context, id uuid.UUID) (*models.Climb, error) {
	return s.climbs.GetByID(ctx, s.pool, id)
}

// ListClimbs retrieves a crag's live climbs, left to right
func (s *ClimbService) ListClimbs(ctx context.Context, areaID uuid.UUID) ([]*models.Climb, error) {
	return s.climbs.ListByArea(ctx, s.pool, areaID)
}

// AddOrUpdateClimbs applies a batch of climb additions and edits to one
// area. A nil change id adds a climb, a non-nil id edits the existing
// one. Once a crag has climbs it is exclusively a bouldering crag or
// exclusively a route crag; a batch that would mix the two fails whole.
func (s *ClimbService) AddOrUpdateClimbs(ctx context.Context, user uuid.UUID, areaID uuid.UUID, changes []models.ClimbChange) ([]uuid.UUID, error) {
	if len(changes) == 0 {
		return nil, nil
	}

	stamp := newChangeStamp(user, models.OpUpdateClimb)
	var climbs []*models.Climb

	err := s.tx.WithTransaction(ctx, func(q db.Querier) error {
		if err := s.changelog.Create(ctx, q, stamp.history()); err != nil {
			return err
		}
		var err error
		climbs, err = s.addOrUpdateClimbsTx(ctx, q, stamp, user, areaID, changes)
		return err
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(climbs))
	for i, c := range climbs {
		ids[i] = c.ID
	}

	s.log.Info("climbs added or updated", "area_id", areaID, "count", len(ids))
	return ids, nil
}

// addOrUpdateClimbsTx is the in-transaction body of AddOrUpdateClimbs,
// shared with the bulk importer
func (s *ClimbService) addOrUpdateClimbsTx(ctx context.Context, q db.Querier, stamp *changeStamp, user uuid.UUID, areaID uuid.UUID, changes []models.ClimbChange) ([]*models.Climb, error) {
	area, err := s.areas.GetByID(ctx, q, areaID)
	if err != nil {
		return nil, err
	}
	if len(area.Children) > 0 {
		return nil, models.ErrNotLeaf
	}

	existing, err := s.climbs.ListByArea(ctx, q, areaID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.Climb, len(existing))
	for _, c := range existing {
		byID[c.ID] = c
	}

	batchBoulder, err := batchDiscipline(changes, byID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 && area.IsBoulder != batchBoulder {
		return nil, models.ErrMixedDiscipline
	}

	out := make([]*models.Climb, 0, len(changes))
	for _, ch := range changes {
		if ch.ID == nil {
			c := newClimb(area, ch, user)
			c.Change = stamp.next(nil)
			if err := s.climbs.Insert(ctx, q, c); err != nil {
				return nil, err
			}
			byID[c.ID] = c
			out = append(out, c)
			continue
		}

		c, ok := byID[*ch.ID]
		if !ok {
			return nil, models.ErrClimbNotFound
		}
		applyClimbChange(c, ch, user)
		c.Change = stamp.next(c.Change)
		if err := s.climbs.Update(ctx, q, c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	// an area receiving its first climbs becomes a crag of the
	// batch's discipline
	area.IsLeaf = true
	area.IsBoulder = batchBoulder

	if err := s.refreshCragStats(ctx, q, area, stamp, user); err != nil {
		return nil, err
	}

	return out, nil
}

// DeleteClimbs soft-deletes a batch of climbs under one area and
// returns how many were actually flagged
func (s *ClimbService) DeleteClimbs(ctx context.Context, user uuid.UUID, areaID uuid.UUID, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	stamp := newChangeStamp(user, models.OpDeleteClimb)
	var deleted int64

	err := s.tx.WithTransaction(ctx, func(q db.Querier) error {
		area, err := s.areas.GetByID(ctx, q, areaID)
		if err != nil {
			return err
		}

		if err := s.changelog.Create(ctx, q, stamp.history()); err != nil {
			return err
		}

		deleted, err = s.climbs.MarkDeleting(ctx, q, areaID, ids, stamp.next(nil), user)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return models.ErrClimbNotFound
		}

		return s.refreshCragStats(ctx, q, area, stamp, user)
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("climbs deleted", "area_id", areaID, "count", deleted)
	return int(deleted), nil
}

// refreshCragStats recomputes the crag's statistics from its surviving
// climbs and re-reduces the ancestor chain, all within the caller's
// transaction
func (s *ClimbService) refreshCragStats(ctx context.Context, q db.Querier, area *models.Area, stamp *changeStamp, user uuid.UUID) error {
	climbs, err := s.climbs.ListByArea(ctx, q, area.ID)
	if err != nil {
		return err
	}

	applySummary(area, SummarizeLeaf(area, climbs))
	area.Change = stamp.next(area.Change)
	area.UpdatedBy = user
	if err := s.areas.Update(ctx, q, area); err != nil {
		return err
	}

	return bubbleStats(ctx, q, s.areas, area, func() *models.ChangeRecordMetadata {
		return stamp.next(nil)
	})
}

// batchDiscipline reports whether the batch is a bouldering batch and
// rejects mixed batches. Updates inherit the target climb's discipline
// when the change leaves it unset.
func batchDiscipline(changes []models.ClimbChange, existing map[uuid.UUID]*models.Climb) (bool, error) {
	boulders, routes := 0, 0
	for _, ch := range changes {
		d := ch.Disciplines
		if !d.Any() && ch.ID != nil {
			if c, ok := existing[*ch.ID]; ok {
				d = c.Disciplines
			}
		}
		if d.IsBoulder() {
			boulders++
		} else {
			routes++
		}
	}
	if boulders > 0 && routes > 0 {
		return false, models.ErrMixedDiscipline
	}
	return boulders > 0, nil
}

func newClimb(area *models.Area, ch models.ClimbChange, user uuid.UUID) *models.Climb {
	c := &models.Climb{
		ID:          uuid.New(),
		Name:        ch.Name,
		AreaID:      area.ID,
		Grade:       ch.Grade,
		Disciplines: ch.Disciplines,
		CreatedBy:   user,
		UpdatedBy:   user,
	}
	applyClimbChange(c, ch, user)
	return c
}

func applyClimbChange(c *models.Climb, ch models.ClimbChange, user uuid.UUID) {
	if ch.Name != "" {
		c.Name = ch.Name
	}
	if ch.Grade != "" {
		c.Grade = ch.Grade
	}
	if ch.Disciplines.Any() {
		c.Disciplines = ch.Disciplines
	}
	if ch.Description != nil {
		c.Description = *ch.Description
	}
	if ch.Location != nil {
		c.Location = *ch.Location
	}
	if ch.Protection != nil {
		c.Protection = *ch.Protection
	}
	if ch.FA != nil {
		c.FA = *ch.FA
	}
	if ch.Length != nil {
		c.Length = *ch.Length
	}
	if ch.BoltsCount != nil {
		c.BoltsCount = *ch.BoltsCount
	}
	if ch.LeftRightIndex != nil {
		c.LeftRightIndex = *ch.LeftRightIndex
	}
	c.UpdatedBy = user
}
