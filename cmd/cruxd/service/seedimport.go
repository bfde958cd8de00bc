package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cruxdb/cruxd/cmd/cruxd/identity"
	"github.com/cruxdb/cruxd/cmd/cruxd/importer"
	"github.com/cruxdb/cruxd/cmd/cruxd/models"
	"github.com/cruxdb/cruxd/common/db"
)

// SeedImport ingests a flat list of path-delimited crag records under
// an existing country. The lines are staged into a tree first, so every
// intermediate segment becomes a container exactly once however many
// lines share it, then the staged nodes are written parents-first
// inside one transaction. Any failure rolls back the whole seed.
func (s *BulkImportService) SeedImport(ctx context.Context, user uuid.UUID, countryCode string, lines []models.SeedLine) (*models.BulkImportResult, error) {
	country, err := ResolveCountry(countryCode)
	if err != nil {
		return nil, err
	}
	countryID := identity.FromCountryCode(country.Alpha3)

	tree := importer.NewWithRoot(country.Name, countryID)
	byPath := make(map[string]models.SeedLine, len(lines))
	for _, line := range lines {
		if line.Path == "" {
			return nil, fmt.Errorf("seed line has no path")
		}
		tree.InsertMany(line.Path, map[string]any{"url": line.URL})
		byPath[line.Path] = line
	}

	stamp := newChangeStamp(user, models.OpBulkImport)
	result := &models.BulkImportResult{}

	err = s.tx.WithTransaction(ctx, func(q db.Querier) error {
		if _, err := s.areaSvc.areas.GetByID(ctx, q, countryID); err != nil {
			return err
		}
		if err := s.changelog.Create(ctx, q, stamp.history()); err != nil {
			return err
		}

		created := make(map[string]uuid.UUID, tree.Len())
		return tree.Walk(func(n *importer.Node) error {
			parentID := countryID
			if n.Parent != "" {
				parentID = created[n.Parent]
			}

			req := AddAreaRequest{
				Name:     n.Name(),
				ParentID: &parentID,
				IsLeaf:   n.IsLeaf,
			}
			line, hasLine := byPath[n.Key]
			if n.IsLeaf && hasLine {
				req.SourceURL = line.URL
				req.IsBoulder = line.IsBoulder
				req.Lat = line.Lat
				req.Lng = line.Lng
			}

			area, err := s.areaSvc.addAreaTx(ctx, q, stamp, user, req)
			if err != nil {
				return fmt.Errorf("seed %q: %w", n.Key, err)
			}
			created[n.Key] = area.ID
			result.AddedAreas = append(result.AddedAreas, area)

			if n.IsLeaf && hasLine && len(line.Climbs) > 0 {
				climbs, err := s.climbSvc.addOrUpdateClimbsTx(ctx, q, stamp, user, area.ID, line.Climbs)
				if err != nil {
					return fmt.Errorf("seed %q climbs: %w", n.Key, err)
				}
				result.AddedOrUpdatedClimbs = append(result.AddedOrUpdatedClimbs, climbs...)
			}

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("seed import finished",
		"country", country.Alpha3,
		"areas", len(result.AddedAreas),
		"climbs", len(result.AddedOrUpdatedClimbs),
	)
	return result, nil
}
