package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/google/cel-go/cel"
	"github.com/google/uuid"

	"github.com/cruxdb/cruxd/cmd/cruxd/models"
	"github.com/cruxdb/cruxd/common/config"
	"github.com/cruxdb/cruxd/common/db"
	"github.com/cruxdb/cruxd/common/logger"
	"github.com/cruxdb/cruxd/common/queue"
	redisc "github.com/cruxdb/cruxd/common/redis"
)

// feedTopic carries classified change events from the feed consumer to
// the audit writer
const feedTopic = "change-feed"

// feedEvent is the classified form of a raw outbox event, serialized
// onto the queue between consumer and writer
type feedEvent struct {
	EventID    int64              `json:"eventId"`
	Collection string             `json:"collection"`
	DBOp       models.DBOperation `json:"dbOp"`
	Doc        json.RawMessage    `json:"doc"`
	PrevDoc    json.RawMessage    `json:"prevDoc,omitempty"`
}

// docEnvelope extracts the tracking fields from a document snapshot.
// Keys are column names because snapshots come from the store's row
// serialization, not the API layer.
type docEnvelope struct {
	ID       uuid.UUID                    `json:"id"`
	Change   *models.ChangeRecordMetadata `json:"change"`
	Deleting *time.Time                   `json:"deleting"`
}

// FeedService is the change-feed listener: one long-running consumer
// per process that turns committed document writes into durable audit
// entries. Run it once; a second instance on the same feed produces
// duplicate work that only the history tables' dedupe absorbs.
type FeedService struct {
	pool      db.Querier
	events    EventStore
	changelog *ChangeLogService
	pipeline  queue.Queue
	stream    *redisc.Client
	cfg       config.FeedConfig
	filter    cel.Program
	log       *logger.Logger
}

// NewFeedService creates a new feed service. The optional CEL filter is
// compiled once here; a broken expression fails startup rather than
// silently dropping events later.
func NewFeedService(
	pool db.Querier,
	events EventStore,
	changelog *ChangeLogService,
	pipeline queue.Queue,
	stream *redisc.Client,
	cfg config.FeedConfig,
	log *logger.Logger,
) (*FeedService, error) {
	s := &FeedService{
		pool:      pool,
		events:    events,
		changelog: changelog,
		pipeline:  pipeline,
		stream:    stream,
		cfg:       cfg,
		log:       log,
	}

	if cfg.Filter != "" {
		prg, err := compileEventFilter(cfg.Filter)
		if err != nil {
			return nil, err
		}
		s.filter = prg
	}

	return s, nil
}

func compileEventFilter(expr string) (cel.Program, error) {
	env, err := cel.NewEnv(
		cel.Variable("collection", cel.StringType),
		cel.Variable("op", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile feed filter: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build feed filter program: %w", err)
	}
	return prg, nil
}

func (s *FeedService) matches(collection string, op models.DBOperation) bool {
	if s.filter == nil {
		return true
	}

	out, _, err := s.filter.Eval(map[string]interface{}{
		"collection": collection,
		"op":         string(op),
	})
	if err != nil {
		s.log.Warn("feed filter evaluation failed, keeping event", "error", err)
		return true
	}

	keep, ok := out.Value().(bool)
	if !ok {
		s.log.Warn("feed filter did not return a boolean, keeping event")
		return true
	}
	return keep
}

// Run consumes the change feed until the context is cancelled. On start
// it resumes from the newest event already recorded in the history
// tables, so delivery is at-least-once with no external cursor; the
// writer's dedupe makes replays harmless.
func (s *FeedService) Run(ctx context.Context) error {
	if err := s.pipeline.Subscribe(ctx, feedTopic, s.writeEntry); err != nil {
		return fmt.Errorf("subscribe audit writer: %w", err)
	}

	cursor, err := s.changelog.ResumePosition(ctx)
	if err != nil {
		return fmt.Errorf("resume position: %w", err)
	}
	s.log.Info("change-feed listener started", "resume_after", cursor, "collections", s.cfg.Collections)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		events, err := s.events.ListAfter(ctx, s.pool, cursor, s.cfg.Collections, s.cfg.BatchSize)
		if err != nil {
			s.log.Error("reading change feed failed", "error", err)
			if !sleepCtx(ctx, s.cfg.PollInterval) {
				return ctx.Err()
			}
			continue
		}

		for _, ev := range events {
			if err := s.dispatch(ctx, ev); err != nil {
				return err
			}
			cursor = ev.ID
		}

		if len(events) == s.cfg.BatchSize {
			// more may be waiting, skip the wakeup wait
			continue
		}

		if err := s.events.WaitForWakeup(ctx, s.cfg.PollInterval); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn("feed wakeup wait failed, falling back to polling", "error", err)
			if !sleepCtx(ctx, s.cfg.PollInterval) {
				return ctx.Err()
			}
		}
	}
}

// dispatch classifies one raw event and hands it to the writer pipeline
func (s *FeedService) dispatch(ctx context.Context, ev models.DocEvent) error {
	dbOp := classify(ev)
	if !s.matches(ev.Collection, dbOp) {
		return nil
	}

	fe := feedEvent{
		EventID:    ev.ID,
		Collection: ev.Collection,
		DBOp:       dbOp,
		Doc:        ev.Doc,
		PrevDoc:    ev.PrevDoc,
	}
	payload, err := json.Marshal(fe)
	if err != nil {
		return fmt.Errorf("marshal feed event: %w", err)
	}

	return s.pipeline.Publish(ctx, feedTopic, ev.DocID.String(), payload)
}

// classify maps a raw store operation to the audit operation. An update
// that sets the soft-delete marker is the document's terminal snapshot
// and is recorded as a delete; replace-style writes count as updates.
func classify(ev models.DocEvent) models.DBOperation {
	switch ev.Op {
	case "insert":
		return models.DBOpInsert
	case "delete":
		return models.DBOpDelete
	default:
		var env docEnvelope
		if err := json.Unmarshal(ev.Doc, &env); err == nil && env.Deleting != nil {
			return models.DBOpDelete
		}
		return models.DBOpUpdate
	}
}

// writeEntry is the audit-writer half of the pipeline: it derives the
// changed-field list, joins the event to its change set, and mirrors
// the committed record onto the Redis stream. It returns only once the
// entry is durably recorded (or absorbed as a replay): a transient
// store error blocks the pipeline and retries, because the resume
// position and outbox pruning both assume no recorded id ever skips an
// unrecorded one.
func (s *FeedService) writeEntry(ctx context.Context, key string, payload []byte) error {
	var fe feedEvent
	if err := json.Unmarshal(payload, &fe); err != nil {
		return fmt.Errorf("unmarshal feed event: %w", err)
	}

	var env docEnvelope
	if err := json.Unmarshal(fe.Doc, &env); err != nil {
		return fmt.Errorf("unmarshal document envelope: %w", err)
	}

	entry := &models.ChangeEntry{
		FeedEventID:  fe.EventID,
		Collection:   fe.Collection,
		DBOp:         fe.DBOp,
		DocID:        env.ID,
		FullDocument: fe.Doc,
	}
	if env.Change != nil {
		entry.HistoryID = env.Change.HistoryID
		entry.Seq = env.Change.Seq
	}
	if fe.DBOp == models.DBOpUpdate && len(fe.PrevDoc) > 0 {
		entry.UpdatedFields = updatedFields(fe.PrevDoc, fe.Doc)
	}

	recorded, err := s.recordDurably(ctx, entry, env.Change != nil)
	if err != nil {
		return err
	}
	if !recorded {
		return nil
	}

	if s.stream != nil {
		_, err := s.stream.AddToStream(ctx, s.cfg.Stream, map[string]interface{}{
			"collection": entry.Collection,
			"dbOp":       string(entry.DBOp),
			"docId":      entry.DocID.String(),
			"historyId":  entry.HistoryID.String(),
			"seq":        entry.Seq,
		})
		if err != nil {
			// mirror only; the durable record already exists
			s.log.Warn("audit stream mirror failed", "error", err)
		}
	}

	return nil
}

// recordDurably writes one audit entry, retrying transient store
// failures until the write lands or the context is cancelled. Replays
// come back recorded=false with no error.
func (s *FeedService) recordDurably(ctx context.Context, entry *models.ChangeEntry, stamped bool) (bool, error) {
	wait := s.cfg.PollInterval
	if wait <= 0 {
		wait = time.Second
	}

	for {
		var recorded bool
		var err error
		if stamped {
			recorded, err = s.changelog.Record(ctx, s.pool, entry)
		} else {
			// write did not come through the mutation engine
			recorded, err = s.changelog.RecordExternal(ctx, s.pool, entry)
		}
		if err == nil {
			return recorded, nil
		}

		s.log.Error("audit write failed, retrying",
			"feed_event_id", entry.FeedEventID,
			"collection", entry.Collection,
			"error", err,
		)
		if !sleepCtx(ctx, wait) {
			return false, ctx.Err()
		}
	}
}

// updatedFields lists the top-level fields that differ between the two
// snapshots, derived from a merge patch
func updatedFields(prev, curr json.RawMessage) []string {
	patch, err := jsonpatch.CreateMergePatch(prev, curr)
	if err != nil {
		return nil
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(patch, &m); err != nil {
		return nil
	}

	fields := make([]string, 0, len(m))
	for k := range m {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// PruneConsumed drops outbox rows at or below the newest event already
// recorded in the history tables. Anything newer stays for replay.
func (s *FeedService) PruneConsumed(ctx context.Context) error {
	upTo, err := s.changelog.ResumePosition(ctx)
	if err != nil {
		return err
	}
	if upTo == 0 {
		return nil
	}
	n, err := s.events.Prune(ctx, s.pool, upTo)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Debug("pruned consumed feed events", "count", n, "up_to", upTo)
	}

	if s.stream != nil && s.cfg.StreamMaxLen > 0 {
		if _, err := s.stream.TrimStream(ctx, s.cfg.Stream, s.cfg.StreamMaxLen); err != nil {
			// mirror only; nothing durable depends on the stream
			s.log.Warn("audit stream trim failed", "error", err)
		}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
