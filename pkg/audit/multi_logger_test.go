package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblewiki/bramble/pkg/event"
)

type captureLogger struct {
	records []*Record
	err     error
}

func (c *captureLogger) Log(ctx context.Context, record *Record) error {
	if c.err != nil {
		return c.err
	}
	c.records = append(c.records, record)
	return nil
}

func (c *captureLogger) Close() error { return nil }

func TestMultiLoggerFansOut(t *testing.T) {
	a, b := &captureLogger{}, &captureLogger{}
	m := NewMultiLogger(a, b)

	require.NoError(t, m.Log(context.Background(), NewRecord(RecordGroupCreate, OutcomeSuccess, "alice", "Engineering", "")))
	assert.Len(t, a.records, 1)
	assert.Len(t, b.records, 1)
}

func TestMultiLoggerKeepsWritingPastFailures(t *testing.T) {
	broken := &captureLogger{err: errors.New("disk full")}
	healthy := &captureLogger{}
	m := NewMultiLogger(broken, healthy)

	err := m.Log(context.Background(), NewRecord(RecordPageSave, OutcomeSuccess, "alice", "Main", ""))
	assert.Error(t, err)
	assert.Len(t, healthy.records, 1)
}

func TestSubscribeRecordsGroupEvents(t *testing.T) {
	d := event.NewDispatcher()
	sink := &captureLogger{}
	Subscribe(d, sink, nil)

	d.Publish(event.Event{Type: event.TypeGroupAdd, Group: "Engineering"})
	d.Publish(event.Event{Type: event.TypeGroupAddMember, Group: "Engineering", Member: "alice"})
	d.Publish(event.Event{Type: event.TypePolicyReload})

	require.Len(t, sink.records, 3)
	assert.Equal(t, RecordGroupCreate, sink.records[0].Type)
	assert.Equal(t, "Engineering", sink.records[0].Resource)
	assert.Equal(t, RecordGroupMemberAdd, sink.records[1].Type)
	assert.Equal(t, "alice", sink.records[1].Detail)
	assert.Equal(t, RecordPolicyReload, sink.records[2].Type)
}
