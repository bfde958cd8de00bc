package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/cruxdb/cruxd/cmd/cruxd/models"
	"github.com/cruxdb/cruxd/common/db"
	"github.com/cruxdb/cruxd/common/logger"
)

// BulkImportService applies a caller-supplied tree of area and climb
// specifications depth-first, all inside one transaction. Any failure
// anywhere in the walk rolls back the entire import, siblings included.
type BulkImportService struct {
	tx        TxRunner
	areaSvc   *AreaService
	climbSvc  *ClimbService
	changelog ChangelogStore
	log       *logger.Logger
}

// NewBulkImportService creates a new bulk import service
func NewBulkImportService(tx TxRunner, areaSvc *AreaService, climbSvc *ClimbService, changelog ChangelogStore, log *logger.Logger) *BulkImportService {
	return &BulkImportService{
		tx:        tx,
		areaSvc:   areaSvc,
		climbSvc:  climbSvc,
		changelog: changelog,
		log:       log,
	}
}

// Import runs the whole import as one logical operation under a single
// change-set header
func (s *BulkImportService) Import(ctx context.Context, user uuid.UUID, input models.BulkImportInput) (*models.BulkImportResult, error) {
	for i := range input.Areas {
		if err := input.Areas[i].Validate(); err != nil {
			return nil, err
		}
	}

	stamp := newChangeStamp(user, models.OpBulkImport)
	result := &models.BulkImportResult{}

	err := s.tx.WithTransaction(ctx, func(q db.Querier) error {
		if err := s.changelog.Create(ctx, q, stamp.history()); err != nil {
			return err
		}
		for i := range input.Areas {
			var sub models.BulkImportResult
			if err := s.importNode(ctx, q, stamp, user, &input.Areas[i], nil, &sub); err != nil {
				return err
			}
			result.Merge(sub)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("bulk import finished",
		"added_areas", len(result.AddedAreas),
		"updated_areas", len(result.UpdatedAreas),
		"climbs", len(result.AddedOrUpdatedClimbs),
	)
	return result, nil
}

func (s *BulkImportService) importNode(ctx context.Context, q db.Querier, stamp *changeStamp, user uuid.UUID, node *models.AreaImportNode, parentID *uuid.UUID, result *models.BulkImportResult) error {
	var area *models.Area
	var err error

	switch {
	case node.Update != nil:
		area, err = s.areaSvc.updateAreaTx(ctx, q, stamp, user, node.Update.ID, node.Update.Fields)
		if err != nil {
			return err
		}
		result.UpdatedAreas = append(result.UpdatedAreas, area)

	case node.Create != nil:
		c := node.Create
		req := AddAreaRequest{
			Name:        c.Name,
			ParentID:    c.ParentID,
			CountryCode: c.CountryCode,
		}
		if parentID != nil {
			// nested nodes hang off the node created above them
			req.ParentID = parentID
			req.CountryCode = ""
		}
		if c.Description != nil {
			req.Description = *c.Description
		}
		if c.IsLeaf != nil {
			req.IsLeaf = *c.IsLeaf
		}
		if c.IsBoulder != nil {
			req.IsBoulder = *c.IsBoulder
		}
		req.Lat = c.Lat
		req.Lng = c.Lng

		area, err = s.areaSvc.addAreaTx(ctx, q, stamp, user, req)
		if err != nil {
			return err
		}
		result.AddedAreas = append(result.AddedAreas, area)
	}

	for i := range node.Children {
		if err := s.importNode(ctx, q, stamp, user, &node.Children[i], &area.ID, result); err != nil {
			return err
		}
	}

	if len(node.Climbs) > 0 {
		climbs, err := s.climbSvc.addOrUpdateClimbsTx(ctx, q, stamp, user, area.ID, node.Climbs)
		if err != nil {
			return err
		}
		result.AddedOrUpdatedClimbs = append(result.AddedOrUpdatedClimbs, climbs...)
	}

	return nil
}
