package audit

import (
	"context"

	"github.com/bramblewiki/bramble/pkg/event"
	"github.com/bramblewiki/bramble/pkg/observability"
)

// Subscribe bridges group and policy change events into the audit trail.
// Dispatch is synchronous on the mutating goroutine, so records land in the
// trail in the order the changes committed.
func Subscribe(dispatcher *event.Dispatcher, logger Logger, log *observability.Logger) {
	dispatcher.Subscribe(func(e event.Event) {
		record := recordFor(e)
		if record == nil {
			return
		}
		if err := logger.Log(context.Background(), record); err != nil && log != nil {
			log.WithError(err).WithField("type", string(record.Type)).
				Error("failed to write audit record")
		}
	})
}

func recordFor(e event.Event) *Record {
	switch e.Type {
	case event.TypeGroupAdd:
		return NewRecord(RecordGroupCreate, OutcomeSuccess, "", e.Group, "")
	case event.TypeGroupRemove:
		return NewRecord(RecordGroupDelete, OutcomeSuccess, "", e.Group, "")
	case event.TypeGroupAddMember:
		return NewRecord(RecordGroupMemberAdd, OutcomeSuccess, "", e.Group, e.Member)
	case event.TypeGroupRemoveMember:
		return NewRecord(RecordGroupMemberRemove, OutcomeSuccess, "", e.Group, e.Member)
	case event.TypePolicyReload:
		return NewRecord(RecordPolicyReload, OutcomeSuccess, "", "", "")
	default:
		return nil
	}
}
