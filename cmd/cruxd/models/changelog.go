package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OperationType names a logical operation recorded in the audit trail
type OperationType string

const (
	OpAddCountry        OperationType = "addCountry"
	OpAddArea           OperationType = "addArea"
	OpUpdateArea        OperationType = "updateArea"
	OpDeleteArea        OperationType = "deleteArea"
	OpUpdateDestination OperationType = "updateDestination"
	OpAddClimb          OperationType = "addClimb"
	OpUpdateClimb       OperationType = "updateClimb"
	OpDeleteClimb       OperationType = "deleteClimb"
	OpBulkImport        OperationType = "bulkImport"
)

// DBOperation classifies what happened to a document on the change feed
type DBOperation string

const (
	DBOpInsert DBOperation = "insert"
	DBOpUpdate DBOperation = "update"
	DBOpDelete DBOperation = "delete"
)

// Collection names tracked by the change feed
const (
	CollectionAreas         = "areas"
	CollectionClimbs        = "climbs"
	CollectionOrganizations = "organizations"
)

// ChangeRecordMetadata is stamped onto every mutated document. HistoryID
// joins the document to its History; Seq orders the writes belonging to
// one logical operation so a consumer can replay them deterministically.
type ChangeRecordMetadata struct {
	User          uuid.UUID     `json:"user"`
	Operation     OperationType `json:"operation"`
	HistoryID     uuid.UUID     `json:"historyId"`
	PrevHistoryID *uuid.UUID    `json:"prevHistoryId,omitempty"`
	Seq           int           `json:"seq"`
}

// History is the audit-trail unit: one per logical operation. Created
// once by the mutation engine and only ever appended to by the feed
// listener, never mutated or deleted.
// Maps to: changelog table (+ per-collection history tables for Changes)
type History struct {
	ID        uuid.UUID     `db:"id" json:"id"`
	EditedBy  uuid.UUID     `db:"edited_by" json:"editedBy"`
	Operation OperationType `db:"operation" json:"operation"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`

	Changes []ChangeEntry `json:"changes"`
}

// ChangeEntry is one document change within a History. FullDocument is
// the post-image snapshot from the feed (the pre-image for deletes).
type ChangeEntry struct {
	ID            int64           `db:"id" json:"-"`
	HistoryID     uuid.UUID       `db:"history_id" json:"historyId"`
	FeedEventID   int64           `db:"feed_event_id" json:"-"`
	Collection    string          `db:"collection" json:"collection"`
	DBOp          DBOperation     `db:"db_op" json:"dbOp"`
	DocID         uuid.UUID       `db:"doc_id" json:"targetDocumentId"`
	Seq           int             `db:"seq" json:"seq"`
	FullDocument  json.RawMessage `db:"full_document" json:"fullDocument"`
	UpdatedFields []string        `db:"updated_fields" json:"updatedFields,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
}

// DocEvent is a raw committed-write event from the store's change feed
// (the trigger-populated outbox). PrevDoc is present for updates and
// deletes only.
type DocEvent struct {
	ID         int64           `db:"id" json:"id"`
	Collection string          `db:"collection" json:"collection"`
	Op         string          `db:"op" json:"op"`
	DocID      uuid.UUID       `db:"doc_id" json:"docId"`
	Doc        json.RawMessage `db:"doc" json:"doc,omitempty"`
	PrevDoc    json.RawMessage `db:"prev_doc" json:"prevDoc,omitempty"`
	OccurredAt time.Time       `db:"occurred_at" json:"occurredAt"`
}
