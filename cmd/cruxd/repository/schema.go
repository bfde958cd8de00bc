package repository

import (
	"context"
	"fmt"

	"github.com/cruxdb/cruxd/common/db"
)

// Schema DDL applied at startup through the bootstrap dbInitHook.
//
// doc_events is the change feed: row triggers on the tracked tables
// append the post-image (and pre-image on update) of every committed
// write, whatever produced it, and NOTIFY wakes the listener. Physical
// deletes are not logged; the terminal snapshot is the update that set
// the deleting marker.
const schema = `
CREATE TABLE IF NOT EXISTS area (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	short_code TEXT NOT NULL DEFAULT '',
	parent_id UUID,
	children UUID[] NOT NULL DEFAULT '{}',
	ancestors UUID[] NOT NULL,
	path_tokens TEXT[] NOT NULL,
	grade_context TEXT NOT NULL DEFAULT 'US',
	is_destination BOOLEAN NOT NULL DEFAULT FALSE,
	is_leaf BOOLEAN NOT NULL DEFAULT FALSE,
	is_boulder BOOLEAN NOT NULL DEFAULT FALSE,
	left_right_index INT NOT NULL DEFAULT -1,
	lnglat JSONB,
	bbox JSONB,
	polygon JSONB,
	description TEXT NOT NULL DEFAULT '',
	total_climbs INT NOT NULL DEFAULT 0,
	density DOUBLE PRECISION NOT NULL DEFAULT 0,
	aggregate JSONB NOT NULL DEFAULT '{"byGrade":[],"byDiscipline":[],"byGradeBand":{"unknown":0,"beginner":0,"intermediate":0,"advanced":0,"expert":0}}',
	change JSONB,
	deleting TIMESTAMPTZ,
	created_by UUID,
	updated_by UUID,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_area_parent ON area (parent_id);
CREATE INDEX IF NOT EXISTS idx_area_ancestors ON area USING GIN (ancestors);
CREATE INDEX IF NOT EXISTS idx_area_path_depth ON area (cardinality(path_tokens));

CREATE TABLE IF NOT EXISTS climb (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	area_id UUID NOT NULL,
	grade TEXT NOT NULL DEFAULT '',
	disciplines JSONB NOT NULL DEFAULT '{}',
	description TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	protection TEXT NOT NULL DEFAULT '',
	fa TEXT NOT NULL DEFAULT '',
	length INT NOT NULL DEFAULT 0,
	bolts_count INT NOT NULL DEFAULT 0,
	left_right_index INT NOT NULL DEFAULT -1,
	lnglat JSONB,
	change JSONB,
	deleting TIMESTAMPTZ,
	created_by UUID,
	updated_by UUID,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_climb_area ON climb (area_id);

CREATE TABLE IF NOT EXISTS organization (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	change JSONB,
	deleting TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS changelog (
	id UUID PRIMARY KEY,
	edited_by UUID NOT NULL,
	operation TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_changelog_created ON changelog (created_at DESC);

CREATE TABLE IF NOT EXISTS area_history (
	id BIGSERIAL PRIMARY KEY,
	history_id UUID NOT NULL,
	feed_event_id BIGINT NOT NULL UNIQUE,
	db_op TEXT NOT NULL,
	doc_id UUID NOT NULL,
	seq INT NOT NULL DEFAULT 0,
	full_document JSONB NOT NULL,
	updated_fields TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_area_history_doc ON area_history (doc_id);
CREATE INDEX IF NOT EXISTS idx_area_history_history ON area_history (history_id);

CREATE TABLE IF NOT EXISTS climb_history (
	id BIGSERIAL PRIMARY KEY,
	history_id UUID NOT NULL,
	feed_event_id BIGINT NOT NULL UNIQUE,
	db_op TEXT NOT NULL,
	doc_id UUID NOT NULL,
	seq INT NOT NULL DEFAULT 0,
	full_document JSONB NOT NULL,
	updated_fields TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_climb_history_doc ON climb_history (doc_id);
CREATE INDEX IF NOT EXISTS idx_climb_history_history ON climb_history (history_id);

CREATE TABLE IF NOT EXISTS organization_history (
	id BIGSERIAL PRIMARY KEY,
	history_id UUID NOT NULL,
	feed_event_id BIGINT NOT NULL UNIQUE,
	db_op TEXT NOT NULL,
	doc_id UUID NOT NULL,
	seq INT NOT NULL DEFAULT 0,
	full_document JSONB NOT NULL,
	updated_fields TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS doc_events (
	id BIGSERIAL PRIMARY KEY,
	collection TEXT NOT NULL,
	op TEXT NOT NULL,
	doc_id UUID NOT NULL,
	doc JSONB,
	prev_doc JSONB,
	occurred_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_doc_events_collection ON doc_events (collection, id);

CREATE OR REPLACE FUNCTION log_doc_event() RETURNS TRIGGER AS $$
BEGIN
	IF TG_OP = 'INSERT' THEN
		INSERT INTO doc_events (collection, op, doc_id, doc)
		VALUES (TG_ARGV[0], 'insert', NEW.id, to_jsonb(NEW));
	ELSIF TG_OP = 'UPDATE' THEN
		INSERT INTO doc_events (collection, op, doc_id, doc, prev_doc)
		VALUES (TG_ARGV[0], 'update', NEW.id, to_jsonb(NEW), to_jsonb(OLD));
	END IF;
	PERFORM pg_notify('doc_events', TG_ARGV[0]);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS area_doc_event ON area;
CREATE TRIGGER area_doc_event
	AFTER INSERT OR UPDATE ON area
	FOR EACH ROW EXECUTE FUNCTION log_doc_event('areas');

DROP TRIGGER IF EXISTS climb_doc_event ON climb;
CREATE TRIGGER climb_doc_event
	AFTER INSERT OR UPDATE ON climb
	FOR EACH ROW EXECUTE FUNCTION log_doc_event('climbs');

DROP TRIGGER IF EXISTS organization_doc_event ON organization;
CREATE TRIGGER organization_doc_event
	AFTER INSERT OR UPDATE ON organization
	FOR EACH ROW EXECUTE FUNCTION log_doc_event('organizations');
`

// ApplySchema creates all tables, indexes and feed triggers. Safe to
// run repeatedly.
func ApplySchema(database *db.DB) error {
	if _, err := database.Exec(context.Background(), schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
