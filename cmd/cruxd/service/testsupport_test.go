package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cruxdb/cruxd/cmd/cruxd/models"
	"github.com/cruxdb/cruxd/cmd/cruxd/repository"
	"github.com/cruxdb/cruxd/common/db"
	"github.com/cruxdb/cruxd/common/logger"
)

func testLogger() *logger.Logger {
	return logger.New("error", "json")
}

// memStore is an in-memory stand-in for the Postgres repositories. All
// methods copy on read and write so callers never share memory with the
// store, the same way row scans behave.
type memStore struct {
	areas   map[uuid.UUID]*models.Area
	climbs  map[uuid.UUID]*models.Climb
	headers map[uuid.UUID]*models.History
	entries []models.ChangeEntry
}

func newMemStore() *memStore {
	return &memStore{
		areas:   make(map[uuid.UUID]*models.Area),
		climbs:  make(map[uuid.UUID]*models.Climb),
		headers: make(map[uuid.UUID]*models.History),
	}
}

func copyArea(a *models.Area) *models.Area {
	raw, _ := json.Marshal(a)
	var out models.Area
	_ = json.Unmarshal(raw, &out)
	return &out
}

func copyClimb(c *models.Climb) *models.Climb {
	raw, _ := json.Marshal(c)
	var out models.Climb
	_ = json.Unmarshal(raw, &out)
	return &out
}

// AreaStore

func (m *memStore) Insert(ctx context.Context, q db.Querier, a *models.Area) error {
	m.areas[a.ID] = copyArea(a)
	return nil
}

func (m *memStore) GetByID(ctx context.Context, q db.Querier, id uuid.UUID) (*models.Area, error) {
	a, ok := m.areas[id]
	if !ok || a.Deleting != nil {
		return nil, models.ErrAreaNotFound
	}
	return copyArea(a), nil
}

func (m *memStore) Update(ctx context.Context, q db.Querier, a *models.Area) error {
	if _, ok := m.areas[a.ID]; !ok {
		return models.ErrAreaNotFound
	}
	m.areas[a.ID] = copyArea(a)
	return nil
}

func (m *memStore) MarkDeleting(ctx context.Context, q db.Querier, id uuid.UUID, change *models.ChangeRecordMetadata, user uuid.UUID) error {
	a, ok := m.areas[id]
	if !ok {
		return models.ErrAreaNotFound
	}
	now := time.Now()
	a.Deleting = &now
	a.Change = change
	a.UpdatedBy = user
	return nil
}

func (m *memStore) ListChildren(ctx context.Context, q db.Querier, parent *models.Area) ([]*models.Area, error) {
	out := make([]*models.Area, 0, len(parent.Children))
	for _, id := range parent.Children {
		a, ok := m.areas[id]
		if !ok || a.Deleting != nil {
			continue
		}
		out = append(out, copyArea(a))
	}
	return out, nil
}

func (m *memStore) ListByDepth(ctx context.Context, q db.Querier, depth int) ([]*models.Area, error) {
	var out []*models.Area
	for _, a := range m.areas {
		if len(a.PathTokens) == depth && a.Deleting == nil {
			out = append(out, copyArea(a))
		}
	}
	return out, nil
}

func (m *memStore) SweepDeleted(ctx context.Context, q db.Querier, graceSeconds int) (int64, error) {
	cutoff := time.Now().Add(-time.Duration(graceSeconds) * time.Second)
	var n int64
	for id, a := range m.areas {
		if a.Deleting != nil && a.Deleting.Before(cutoff) {
			delete(m.areas, id)
			n++
		}
	}
	return n, nil
}

// climbStore wraps the same memStore for the ClimbStore interface;
// method sets would collide on one receiver.
type climbStore struct{ m *memStore }

func (s climbStore) Insert(ctx context.Context, q db.Querier, c *models.Climb) error {
	s.m.climbs[c.ID] = copyClimb(c)
	return nil
}

func (s climbStore) Update(ctx context.Context, q db.Querier, c *models.Climb) error {
	if _, ok := s.m.climbs[c.ID]; !ok {
		return models.ErrClimbNotFound
	}
	s.m.climbs[c.ID] = copyClimb(c)
	return nil
}

func (s climbStore) GetByID(ctx context.Context, q db.Querier, id uuid.UUID) (*models.Climb, error) {
	c, ok := s.m.climbs[id]
	if !ok || c.Deleting != nil {
		return nil, models.ErrClimbNotFound
	}
	return copyClimb(c), nil
}

func (s climbStore) ListByArea(ctx context.Context, q db.Querier, areaID uuid.UUID) ([]*models.Climb, error) {
	var out []*models.Climb
	for _, c := range s.m.climbs {
		if c.AreaID == areaID && c.Deleting == nil {
			out = append(out, copyClimb(c))
		}
	}
	// match ClimbRepository.ListByArea: ORDER BY left_right_index, name
	sort.Slice(out, func(i, j int) bool {
		if out[i].LeftRightIndex != out[j].LeftRightIndex {
			return out[i].LeftRightIndex < out[j].LeftRightIndex
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s climbStore) MarkDeleting(ctx context.Context, q db.Querier, areaID uuid.UUID, ids []uuid.UUID, change *models.ChangeRecordMetadata, user uuid.UUID) (int64, error) {
	var n int64
	now := time.Now()
	for _, id := range ids {
		c, ok := s.m.climbs[id]
		if !ok || c.AreaID != areaID || c.Deleting != nil {
			continue
		}
		c.Deleting = &now
		c.Change = change
		c.UpdatedBy = user
		n++
	}
	return n, nil
}

func (s climbStore) SweepDeleted(ctx context.Context, q db.Querier, graceSeconds int) (int64, error) {
	cutoff := time.Now().Add(-time.Duration(graceSeconds) * time.Second)
	var n int64
	for id, c := range s.m.climbs {
		if c.Deleting != nil && c.Deleting.Before(cutoff) {
			delete(s.m.climbs, id)
			n++
		}
	}
	return n, nil
}

// changeLogStore wraps the memStore for the ChangelogStore interface

type changeLogStore struct{ m *memStore }

func (s changeLogStore) Create(ctx context.Context, q db.Querier, h *models.History) error {
	cp := *h
	s.m.headers[h.ID] = &cp
	return nil
}

func (s changeLogStore) AppendEntry(ctx context.Context, q db.Querier, e *models.ChangeEntry) (bool, error) {
	for _, have := range s.m.entries {
		if have.FeedEventID == e.FeedEventID {
			return false, nil
		}
	}
	s.m.entries = append(s.m.entries, *e)
	return true, nil
}

func (s changeLogStore) GetByID(ctx context.Context, q db.Querier, id uuid.UUID) (*models.History, error) {
	h, ok := s.m.headers[id]
	if !ok {
		return nil, models.ErrHistoryNotFound
	}
	cp := *h
	for _, e := range s.m.entries {
		if e.HistoryID == id {
			cp.Changes = append(cp.Changes, e)
		}
	}
	sort.Slice(cp.Changes, func(i, j int) bool {
		if cp.Changes[i].Seq != cp.Changes[j].Seq {
			return cp.Changes[i].Seq < cp.Changes[j].Seq
		}
		return cp.Changes[i].FeedEventID < cp.Changes[j].FeedEventID
	})
	return &cp, nil
}

func (s changeLogStore) List(ctx context.Context, q db.Querier, f repository.HistoryFilter) ([]*models.History, error) {
	var out []*models.History
	for id := range s.m.headers {
		h, _ := s.GetByID(ctx, q, id)
		out = append(out, h)
	}
	return out, nil
}

func (s changeLogStore) MaxRecordedEventID(ctx context.Context, q db.Querier) (int64, error) {
	var max int64
	for _, e := range s.m.entries {
		if e.FeedEventID > max {
			max = e.FeedEventID
		}
	}
	return max, nil
}

// memTx imitates transactional rollback over the memStore: on error the
// whole store reverts to its pre-transaction state.
type memTx struct{ m *memStore }

func (t memTx) WithTransaction(ctx context.Context, fn func(q db.Querier) error) error {
	savedAreas := make(map[uuid.UUID]*models.Area, len(t.m.areas))
	for id, a := range t.m.areas {
		savedAreas[id] = copyArea(a)
	}
	savedClimbs := make(map[uuid.UUID]*models.Climb, len(t.m.climbs))
	for id, c := range t.m.climbs {
		savedClimbs[id] = copyClimb(c)
	}
	savedHeaders := make(map[uuid.UUID]*models.History, len(t.m.headers))
	for id, h := range t.m.headers {
		cp := *h
		savedHeaders[id] = &cp
	}
	savedEntries := append([]models.ChangeEntry(nil), t.m.entries...)

	if err := fn(nil); err != nil {
		t.m.areas = savedAreas
		t.m.climbs = savedClimbs
		t.m.headers = savedHeaders
		t.m.entries = savedEntries
		return err
	}
	return nil
}

// fixture wires the services over one shared in-memory store
type fixture struct {
	store  *memStore
	areas  *AreaService
	climbs *ClimbService
	imp    *BulkImportService
}

func newFixture() *fixture {
	m := newMemStore()
	log := testLogger()
	tx := memTx{m}
	areaSvc := NewAreaService(nil, tx, m, climbStore{m}, changeLogStore{m}, log)
	climbSvc := NewClimbService(nil, tx, m, climbStore{m}, changeLogStore{m}, log)
	impSvc := NewBulkImportService(tx, areaSvc, climbSvc, changeLogStore{m}, log)
	return &fixture{store: m, areas: areaSvc, climbs: climbSvc, imp: impSvc}
}
