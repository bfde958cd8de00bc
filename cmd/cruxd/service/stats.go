package service

import (
	"context"
	"fmt"
	"reflect"

	"golang.org/x/sync/errgroup"

	"github.com/cruxdb/cruxd/cmd/cruxd/models"
	"github.com/cruxdb/cruxd/common/db"
	"github.com/cruxdb/cruxd/common/logger"
)

// treeSummary carries the reduced statistics of one subtree upward
// during a post-order walk
type treeSummary struct {
	totalClimbs int
	bbox        *models.BBox
	aggregate   models.Aggregate
	polygon     []models.Point
	density     float64
}

// SummarizeLeaf recomputes a crag's statistics from its climbs
func SummarizeLeaf(a *models.Area, climbs []*models.Climb) treeSummary {
	agg := models.NewAggregate()
	for _, c := range climbs {
		if c.Grade != "" {
			agg.ByGrade = models.MergeCounts(agg.ByGrade, []models.CountByGroup{{Label: c.Grade, Count: 1}})
		}
		for _, label := range c.Disciplines.Labels() {
			agg.ByDiscipline = models.MergeCounts(agg.ByDiscipline, []models.CountByGroup{{Label: label, Count: 1}})
		}
		agg.ByGradeBand.Add(BandForGrade(c.Grade, c.Disciplines.IsBoulder(), a.GradeContext))
	}

	sum := treeSummary{
		totalClimbs: len(climbs),
		aggregate:   agg,
	}
	if a.LngLat != nil {
		bbox := BBoxFromPoint(*a.LngLat)
		sum.bbox = &bbox
		sum.density = Density(bbox, sum.totalClimbs)
	}

	return sum
}

// snapshotSummary reads a node's stored statistics without recomputing
func snapshotSummary(a *models.Area) treeSummary {
	return treeSummary{
		totalClimbs: a.TotalClimbs,
		bbox:        a.BBox,
		aggregate:   a.Aggregate,
		polygon:     a.Polygon,
		density:     a.Density,
	}
}

// combineSummaries reduces child summaries into the parent's summary
func combineSummaries(children []treeSummary) treeSummary {
	out := treeSummary{aggregate: models.NewAggregate()}

	var boxes []models.BBox
	for _, c := range children {
		out.totalClimbs += c.totalClimbs
		out.aggregate = models.MergeAggregates(out.aggregate, c.aggregate)
		if c.bbox != nil {
			boxes = append(boxes, *c.bbox)
		}
	}

	if len(boxes) > 0 {
		bbox := boxes[0]
		for _, b := range boxes[1:] {
			bbox = bbox.Union(b)
		}
		out.bbox = &bbox
		out.density = Density(bbox, out.totalClimbs)
		out.polygon = HullFromBBoxes(boxes)
	}

	return out
}

// applySummary writes a summary into an area and reports whether
// anything changed
func applySummary(a *models.Area, sum treeSummary) bool {
	changed := a.TotalClimbs != sum.totalClimbs ||
		a.Density != sum.density ||
		!reflect.DeepEqual(a.BBox, sum.bbox) ||
		!reflect.DeepEqual(a.Aggregate, sum.aggregate) ||
		!reflect.DeepEqual(a.Polygon, sum.polygon)
	if !changed {
		return false
	}

	a.TotalClimbs = sum.totalClimbs
	a.Density = sum.density
	a.BBox = sum.bbox
	a.Aggregate = sum.aggregate
	a.Polygon = sum.polygon
	return true
}

// StatsService walks the whole tree and rebuilds derived statistics
// bottom-up. It runs outside mutation transactions, so it may observe a
// half-updated tree; the next run converges.
type StatsService struct {
	pool        db.Querier
	areas       AreaStore
	climbs      ClimbStore
	concurrency int
	log         *logger.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(pool db.Querier, areas AreaStore, climbs ClimbStore, concurrency int, log *logger.Logger) *StatsService {
	if concurrency <= 0 {
		concurrency = 16
	}
	return &StatsService{
		pool:        pool,
		areas:       areas,
		climbs:      climbs,
		concurrency: concurrency,
		log:         log,
	}
}

// RecalculateAll rebuilds statistics for every country subtree
func (s *StatsService) RecalculateAll(ctx context.Context) error {
	countries, err := s.areas.ListByDepth(ctx, s.pool, 1)
	if err != nil {
		return fmt.Errorf("list countries: %w", err)
	}

	for _, country := range countries {
		if _, err := s.visit(ctx, country); err != nil {
			return fmt.Errorf("recalculate %s: %w", country.Name, err)
		}
		s.log.Info("statistics recalculated", "country", country.Name, "total_climbs", country.TotalClimbs)
	}

	return nil
}

func (s *StatsService) visit(ctx context.Context, node *models.Area) (treeSummary, error) {
	if node.IsLeaf {
		return s.recalcLeaf(ctx, node)
	}

	children, err := s.areas.ListChildren(ctx, s.pool, node)
	if err != nil {
		return treeSummary{}, err
	}

	results := make([]treeSummary, len(children))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, child := range children {
		i, child := i, child
		g.Go(func() error {
			sum, err := s.visit(gctx, child)
			if err != nil {
				return err
			}
			results[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return treeSummary{}, err
	}

	sum := combineSummaries(results)
	if applySummary(node, sum) {
		if err := s.areas.Update(ctx, s.pool, node); err != nil {
			return treeSummary{}, err
		}
	}

	return sum, nil
}

func (s *StatsService) recalcLeaf(ctx context.Context, leaf *models.Area) (treeSummary, error) {
	climbs, err := s.climbs.ListByArea(ctx, s.pool, leaf.ID)
	if err != nil {
		return treeSummary{}, err
	}

	sum := SummarizeLeaf(leaf, climbs)
	if applySummary(leaf, sum) {
		if err := s.areas.Update(ctx, s.pool, leaf); err != nil {
			return treeSummary{}, err
		}
	}

	return sum, nil
}

// bubbleStats recomputes the stored statistics of every ancestor of
// start, bottom-up, inside the caller's transaction. stamp supplies a
// fresh change record for each touched ancestor so the whole write set
// stays attributable to one operation.
func bubbleStats(ctx context.Context, q db.Querier, areas AreaStore, start *models.Area, stamp func() *models.ChangeRecordMetadata) error {
	// Ancestors includes the node itself last
	for i := len(start.Ancestors) - 2; i >= 0; i-- {
		ancestor, err := areas.GetByID(ctx, q, start.Ancestors[i])
		if err != nil {
			return fmt.Errorf("load ancestor: %w", err)
		}

		children, err := areas.ListChildren(ctx, q, ancestor)
		if err != nil {
			return fmt.Errorf("load ancestor children: %w", err)
		}

		sums := make([]treeSummary, len(children))
		for j, c := range children {
			sums[j] = snapshotSummary(c)
		}

		if !applySummary(ancestor, combineSummaries(sums)) {
			continue
		}
		if stamp != nil {
			ancestor.Change = stamp()
		}
		if err := areas.Update(ctx, q, ancestor); err != nil {
			return fmt.Errorf("update ancestor: %w", err)
		}
	}

	return nil
}
