package service

import (
	"github.com/google/uuid"

	"github.com/cruxdb/cruxd/cmd/cruxd/models"
)

// changeStamp hands out the per-write _change metadata for one logical
// operation. Seq increases per write so a consumer can replay the
// operation's document writes in logical order.
type changeStamp struct {
	user      uuid.UUID
	op        models.OperationType
	historyID uuid.UUID
	seq       int
}

func newChangeStamp(user uuid.UUID, op models.OperationType) *changeStamp {
	return &changeStamp{
		user:      user,
		op:        op,
		historyID: uuid.New(),
	}
}

// next mints the stamp for the next write. prev is the document's
// current change record, used to link the new record to the document's
// previous history.
func (c *changeStamp) next(prev *models.ChangeRecordMetadata) *models.ChangeRecordMetadata {
	m := &models.ChangeRecordMetadata{
		User:      c.user,
		Operation: c.op,
		HistoryID: c.historyID,
		Seq:       c.seq,
	}
	if prev != nil {
		prevID := prev.HistoryID
		m.PrevHistoryID = &prevID
	}
	c.seq++
	return m
}

// history builds the change-set header this stamp's writes join to
func (c *changeStamp) history() *models.History {
	return &models.History{
		ID:        c.historyID,
		EditedBy:  c.user,
		Operation: c.op,
	}
}
