package eventlog

import (
	"context"
	"time"

	"tablesync/internal/sheet"
	"tablesync/internal/update"
)

// KindOf names the concrete Update variant of u, for audit
// display. Returns "" for a variant this package doesn't recognize (new
// variants added later still log, just without a Kind).
func KindOf(u update.Update) string {
	switch u.(type) {
	case *update.CreateRow:
		return "CreateRow"
	case *update.DestroyRow:
		return "DestroyRow"
	case *update.MoveRow:
		return "MoveRow"
	case *update.CreateColumn:
		return "CreateColumn"
	case *update.DestroyColumn:
		return "DestroyColumn"
	case *update.UpdateColumnType:
		return "UpdateColumnType"
	case *update.UpdateTextCellValue:
		return "UpdateTextCellValue"
	case *update.UpdateNumberCellValue:
		return "UpdateNumberCellValue"
	default:
		return ""
	}
}

// Recorder adapts a Dispatcher to the coordinator's OnAccepted/OnRejected
// hook signatures (see internal/coordinator.Coordinator.OnAccepted).
type Recorder struct {
	d *Dispatcher
}

// NewRecorder wraps d for use as coordinator callbacks.
func NewRecorder(d *Dispatcher) *Recorder { return &Recorder{d: d} }

// Accepted enqueues an accepted-outcome Event for msg.
func (r *Recorder) Accepted(msg update.Message) {
	_ = r.d.Enqueue(context.Background(), Event{
		Outcome:   OutcomeAccepted,
		MessageID: msg.MessageID,
		GroupID:   msg.GroupID,
		Version:   msg.Version,
		Kind:      KindOf(msg.Update),
		LoggedAt:  time.Now(),
	})
}

// Rejected enqueues a rejected-outcome Event.
func (r *Recorder) Rejected(messageID sheet.MessageID, groupID sheet.GroupID) {
	_ = r.d.Enqueue(context.Background(), Event{
		Outcome:   OutcomeRejected,
		MessageID: messageID,
		GroupID:   groupID,
		LoggedAt:  time.Now(),
	})
}
