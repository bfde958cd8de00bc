package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cruxdb/cruxd/cmd/cruxd/identity"
	"github.com/cruxdb/cruxd/cmd/cruxd/models"
	"github.com/cruxdb/cruxd/common/cache"
	"github.com/cruxdb/cruxd/common/db"
	"github.com/cruxdb/cruxd/common/logger"
)

// AreaService is the transactional mutation engine for the area tree.
// Every externally visible write to areas goes through here: each call
// runs in one transaction, creates one change-set header, and stamps
// every touched document with ordered _change metadata.
type AreaService struct {
	pool      db.Querier
	tx        TxRunner
	areas     AreaStore
	climbs    ClimbStore
	changelog ChangelogStore
	cache     cache.Cache
	cacheTTL  time.Duration
	log       *logger.Logger
}

// NewAreaService creates a new area service. The cache is optional and
// only shadows single-area reads; mutations invalidate it.
func NewAreaService(pool db.Querier, tx TxRunner, areas AreaStore, climbs ClimbStore, changelog ChangelogStore, log *logger.Logger) *AreaService {
	return &AreaService{
		pool:      pool,
		tx:        tx,
		areas:     areas,
		climbs:    climbs,
		changelog: changelog,
		log:       log,
	}
}

// WithCache enables read-through caching of GetArea lookups
func (s *AreaService) WithCache(c cache.Cache, ttl time.Duration) *AreaService {
	s.cache = c
	s.cacheTTL = ttl
	return s
}

// GetArea retrieves one live area
func (s *AreaService) GetArea(ctx context.Context, id uuid.UUID) (*models.Area, error) {
	key := areaCacheKey(id)
	if s.cache != nil {
		if raw, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var area models.Area
			if err := json.Unmarshal(raw, &area); err == nil {
				return &area, nil
			}
		}
	}

	area, err := s.areas.GetByID(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(area); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
				s.log.Warn("area cache set failed", "areaId", id, "error", err)
			}
		}
	}
	return area, nil
}

func areaCacheKey(id uuid.UUID) string {
	return "area:" + id.String()
}

// invalidate drops cached copies after a write. Ancestors are included
// because stat bubbling rewrites them in the same transaction.
func (s *AreaService) invalidate(ctx context.Context, ids ...uuid.UUID) {
	if s.cache == nil {
		return
	}
	for _, id := range ids {
		if err := s.cache.Delete(ctx, areaCacheKey(id)); err != nil {
			s.log.Warn("area cache invalidation failed", "areaId", id, "error", err)
		}
	}
}

// GetChildren retrieves an area's live children in insertion order
func (s *AreaService) GetChildren(ctx context.Context, id uuid.UUID) ([]*models.Area, error) {
	area, err := s.areas.GetByID(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	return s.areas.ListChildren(ctx, s.pool, area)
}

// ListCountries retrieves all tree roots
func (s *AreaService) ListCountries(ctx context.Context) ([]*models.Area, error) {
	return s.areas.ListByDepth(ctx, s.pool, 1)
}

// AddCountry creates a tree root from an ISO country code (alpha-2 or
// alpha-3). The id derives from the alpha-3 code, so the call is
// idempotent up to the duplicate-key error on re-insert.
func (s *AreaService) AddCountry(ctx context.Context, user uuid.UUID, code string) (*models.Area, error) {
	country, err := ResolveCountry(code)
	if err != nil {
		return nil, err
	}

	stamp := newChangeStamp(user, models.OpAddCountry)
	id := identity.FromCountryCode(country.Alpha3)

	area := &models.Area{
		ID:             id,
		Name:           country.Name,
		ShortCode:      country.Alpha3,
		Children:       []uuid.UUID{},
		Ancestors:      []uuid.UUID{id},
		PathTokens:     []string{country.Name},
		GradeContext:   country.GradeContext,
		LeftRightIndex: -1,
		LngLat:         country.LngLat,
		Aggregate:      models.NewAggregate(),
		CreatedBy:      user,
		UpdatedBy:      user,
	}

	err = s.tx.WithTransaction(ctx, func(q db.Querier) error {
		if err := s.changelog.Create(ctx, q, stamp.history()); err != nil {
			return err
		}
		area.Change = stamp.next(nil)
		return s.areas.Insert(ctx, q, area)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("country added", "code", country.Alpha3, "area_id", area.ID)
	return area, nil
}

// AddAreaRequest is the input for AddArea. Exactly one of ParentID and
// CountryCode selects the parent node.
type AddAreaRequest struct {
	Name        string     `json:"areaName"`
	ParentID    *uuid.UUID `json:"parentId,omitempty"`
	CountryCode string     `json:"countryCode,omitempty"`
	Description string     `json:"description,omitempty"`
	IsLeaf      bool       `json:"isLeaf,omitempty"`
	IsBoulder   bool       `json:"isBoulder,omitempty"`
	Lat         *float64   `json:"lat,omitempty"`
	Lng         *float64   `json:"lng,omitempty"`

	// external source URL a leaf id can be derived from during imports
	SourceURL string `json:"sourceUrl,omitempty"`
}

// AddArea creates a child node under an existing parent. The new id is
// derived from the parent's path plus the new name, ancestry and path
// tokens extend the parent's, and the parent's children array gains the
// new id. Writes: new area (seq 0), parent (seq 1).
func (s *AreaService) AddArea(ctx context.Context, user uuid.UUID, req AddAreaRequest) (*models.Area, error) {
	stamp := newChangeStamp(user, models.OpAddArea)
	var area *models.Area

	err := s.tx.WithTransaction(ctx, func(q db.Querier) error {
		if err := s.changelog.Create(ctx, q, stamp.history()); err != nil {
			return err
		}
		var err error
		area, err = s.addAreaTx(ctx, q, stamp, user, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	if area.ParentID != nil {
		s.invalidate(ctx, *area.ParentID)
	}
	s.log.Info("area added", "name", req.Name, "area_id", area.ID)
	return area, nil
}

// addAreaTx is the in-transaction body of AddArea, shared with the bulk
// importer. It assumes the change-set header already exists and stamps
// its writes from the caller's stamp.
func (s *AreaService) addAreaTx(ctx context.Context, q db.Querier, stamp *changeStamp, user uuid.UUID, req AddAreaRequest) (*models.Area, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("area name is required")
	}

	isLeaf := req.IsLeaf
	if req.IsBoulder {
		isLeaf = true
	}

	parent, err := s.resolveParent(ctx, q, req.ParentID, req.CountryCode)
	if err != nil {
		return nil, err
	}

	if parent.IsLeaf {
		climbs, err := s.climbs.ListByArea(ctx, q, parent.ID)
		if err != nil {
			return nil, err
		}
		if len(climbs) > 0 {
			return nil, models.ErrLeafHasContent
		}
		// an empty crag gaining a subarea converts back to a container
		parent.IsLeaf = false
		parent.IsBoulder = false
	}

	pathTokens := append(append([]string{}, parent.PathTokens...), req.Name)
	id := identity.Resolve(pathTokens, isLeaf, req.SourceURL)

	area := &models.Area{
		ID:             id,
		Name:           req.Name,
		ParentID:       &parent.ID,
		Children:       []uuid.UUID{},
		Ancestors:      append(append([]uuid.UUID{}, parent.Ancestors...), id),
		PathTokens:     pathTokens,
		GradeContext:   parent.GradeContext,
		IsLeaf:         isLeaf,
		IsBoulder:      req.IsBoulder,
		LeftRightIndex: -1,
		Description:    req.Description,
		Aggregate:      models.NewAggregate(),
		CreatedBy:      user,
		UpdatedBy:      user,
	}
	if req.Lat != nil && req.Lng != nil {
		area.LngLat = &models.Point{Lng: *req.Lng, Lat: *req.Lat}
		if isLeaf {
			bbox := BBoxFromPoint(*area.LngLat)
			area.BBox = &bbox
		}
	}

	area.Change = stamp.next(nil)
	if err := s.areas.Insert(ctx, q, area); err != nil {
		return nil, err
	}

	parent.Children = append(parent.Children, id)
	parent.Change = stamp.next(parent.Change)
	parent.UpdatedBy = user
	if err := s.areas.Update(ctx, q, parent); err != nil {
		return nil, err
	}

	return area, nil
}

func (s *AreaService) resolveParent(ctx context.Context, q db.Querier, parentID *uuid.UUID, countryCode string) (*models.Area, error) {
	if parentID != nil {
		return s.areas.GetByID(ctx, q, *parentID)
	}
	if countryCode != "" {
		country, err := ResolveCountry(countryCode)
		if err != nil {
			return nil, err
		}
		return s.areas.GetByID(ctx, q, identity.FromCountryCode(country.Alpha3))
	}
	return nil, fmt.Errorf("either parentId or countryCode is required")
}

// UpdateArea edits the editable fields of one area. Country name and
// short code are immutable; leaf/boulder flags may not be set on a node
// with children; a rename rewrites the path tokens of the whole
// subtree (ids never change); a coordinate change on a crag recomputes
// its bounding box and re-reduces every ancestor's statistics.
func (s *AreaService) UpdateArea(ctx context.Context, user uuid.UUID, id uuid.UUID, fields models.AreaEditableFields) (*models.Area, error) {
	stamp := newChangeStamp(user, models.OpUpdateArea)
	var area *models.Area

	err := s.tx.WithTransaction(ctx, func(q db.Querier) error {
		if err := s.changelog.Create(ctx, q, stamp.history()); err != nil {
			return err
		}
		var err error
		area, err = s.updateAreaTx(ctx, q, stamp, user, id, fields)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, area.Ancestors...)
	return area, nil
}

// updateAreaTx is the in-transaction body of UpdateArea, shared with
// the bulk importer
func (s *AreaService) updateAreaTx(ctx context.Context, q db.Querier, stamp *changeStamp, user uuid.UUID, id uuid.UUID, fields models.AreaEditableFields) (*models.Area, error) {
	area, err := s.areas.GetByID(ctx, q, id)
	if err != nil {
		return nil, err
	}

	if area.IsCountry() {
		if (fields.Name != nil && *fields.Name != area.Name) ||
			(fields.ShortCode != nil && *fields.ShortCode != area.ShortCode) {
			return nil, models.ErrCountryImmutable
		}
	}

	targetLeaf := area.IsLeaf
	if fields.IsLeaf != nil {
		targetLeaf = *fields.IsLeaf
	}
	targetBoulder := area.IsBoulder
	if fields.IsBoulder != nil {
		targetBoulder = *fields.IsBoulder
	}
	if targetBoulder {
		targetLeaf = true
	}
	if (targetLeaf || targetBoulder) && len(area.Children) > 0 {
		return nil, models.ErrLeafFlagWithChildren
	}
	if area.IsLeaf && !targetLeaf {
		climbs, err := s.climbs.ListByArea(ctx, q, area.ID)
		if err != nil {
			return nil, err
		}
		if len(climbs) > 0 {
			return nil, models.ErrLeafHasContent
		}
	}

	area.IsLeaf = targetLeaf
	area.IsBoulder = targetBoulder
	if fields.ShortCode != nil {
		area.ShortCode = *fields.ShortCode
	}
	if fields.Description != nil {
		area.Description = *fields.Description
	}
	if fields.IsDestination != nil {
		area.IsDestination = *fields.IsDestination
	}
	if fields.LeftRightIndex != nil {
		area.LeftRightIndex = *fields.LeftRightIndex
	}

	renamed := fields.Name != nil && *fields.Name != area.Name
	if renamed {
		area.Name = *fields.Name
	}

	moved := false
	if fields.Lat != nil || fields.Lng != nil {
		ll := models.Point{}
		if area.LngLat != nil {
			ll = *area.LngLat
		}
		if fields.Lat != nil {
			ll.Lat = *fields.Lat
		}
		if fields.Lng != nil {
			ll.Lng = *fields.Lng
		}
		area.LngLat = &ll
		moved = true
		if area.IsLeaf {
			bbox := BBoxFromPoint(ll)
			area.BBox = &bbox
			area.Density = Density(bbox, area.TotalClimbs)
		}
	}

	area.UpdatedBy = user
	if renamed {
		tokens := append(append([]string{}, area.PathTokens[:len(area.PathTokens)-1]...), area.Name)
		if err := s.updatePathTokens(ctx, q, area, tokens, stamp); err != nil {
			return nil, err
		}
	} else {
		area.Change = stamp.next(area.Change)
		if err := s.areas.Update(ctx, q, area); err != nil {
			return nil, err
		}
	}

	if moved && area.IsLeaf {
		err := bubbleStats(ctx, q, s.areas, area, func() *models.ChangeRecordMetadata {
			return stamp.next(nil)
		})
		if err != nil {
			return nil, err
		}
	}

	return area, nil
}

// updatePathTokens writes the node with the given path tokens and
// recurses into its subtree. A rename changes display paths only; every
// id in the subtree stays fixed.
func (s *AreaService) updatePathTokens(ctx context.Context, q db.Querier, area *models.Area, tokens []string, stamp *changeStamp) error {
	area.PathTokens = tokens
	area.Change = stamp.next(area.Change)
	if err := s.areas.Update(ctx, q, area); err != nil {
		return err
	}

	children, err := s.areas.ListChildren(ctx, q, area)
	if err != nil {
		return err
	}
	for _, child := range children {
		childTokens := append(append([]string{}, tokens...), child.Name)
		if err := s.updatePathTokens(ctx, q, child, childTokens, stamp); err != nil {
			return err
		}
	}
	return nil
}

// SetDestinationFlag toggles the destination flag on one area
func (s *AreaService) SetDestinationFlag(ctx context.Context, user uuid.UUID, id uuid.UUID, flag bool) (*models.Area, error) {
	stamp := newChangeStamp(user, models.OpUpdateDestination)
	var area *models.Area

	err := s.tx.WithTransaction(ctx, func(q db.Querier) error {
		var err error
		area, err = s.areas.GetByID(ctx, q, id)
		if err != nil {
			return err
		}

		if err := s.changelog.Create(ctx, q, stamp.history()); err != nil {
			return err
		}

		area.IsDestination = flag
		area.UpdatedBy = user
		area.Change = stamp.next(area.Change)
		return s.areas.Update(ctx, q, area)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return area, nil
}

// DeleteArea soft-deletes an empty area. Child areas and climbs must
// be deleted first. The parent's children array drops the id (seq 0),
// then the document is flagged _deleting (seq 1) so the feed listener
// captures a terminal snapshot before the expiry sweep removes the
// row; ancestor statistics are re-reduced without the node.
func (s *AreaService) DeleteArea(ctx context.Context, user uuid.UUID, id uuid.UUID) (*models.Area, error) {
	stamp := newChangeStamp(user, models.OpDeleteArea)
	var area *models.Area

	err := s.tx.WithTransaction(ctx, func(q db.Querier) error {
		var err error
		area, err = s.areas.GetByID(ctx, q, id)
		if err != nil {
			return err
		}

		if len(area.Children) > 0 {
			return models.ErrSubtreeNotEmpty
		}
		climbs, err := s.climbs.ListByArea(ctx, q, id)
		if err != nil {
			return err
		}
		if len(climbs) > 0 {
			return models.ErrSubtreeNotEmpty
		}

		if err := s.changelog.Create(ctx, q, stamp.history()); err != nil {
			return err
		}

		if area.ParentID != nil {
			parent, err := s.areas.GetByID(ctx, q, *area.ParentID)
			if err != nil {
				return err
			}
			parent.Children = removeID(parent.Children, id)
			parent.Change = stamp.next(parent.Change)
			parent.UpdatedBy = user
			if err := s.areas.Update(ctx, q, parent); err != nil {
				return err
			}
		}

		area.Change = stamp.next(area.Change)
		if err := s.areas.MarkDeleting(ctx, q, id, area.Change, user); err != nil {
			return err
		}

		// the deleted node may have contributed geometry upward
		return bubbleStats(ctx, q, s.areas, area, func() *models.ChangeRecordMetadata {
			return stamp.next(nil)
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, area.Ancestors...)
	s.log.WithAreaID(id.String()).Info("area deleted", "name", area.Name)
	return area, nil
}

// SweepDeleted physically removes soft-deleted areas and climbs past
// the grace period
func (s *AreaService) SweepDeleted(ctx context.Context, q db.Querier, graceSeconds int) error {
	n, err := s.areas.SweepDeleted(ctx, q, graceSeconds)
	if err != nil {
		return err
	}
	m, err := s.climbs.SweepDeleted(ctx, q, graceSeconds)
	if err != nil {
		return err
	}
	if n+m > 0 {
		s.log.Info("expired soft-deleted documents", "areas", n, "climbs", m)
	}
	return nil
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
