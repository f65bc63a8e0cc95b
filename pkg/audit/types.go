package audit

import (
	"time"
)

// RecordType categorizes an audit record.
type RecordType string

const (
	// Session lifecycle
	RecordSessionLogin  RecordType = "session.login"
	RecordSessionAssert RecordType = "session.assert"
	RecordSessionLogout RecordType = "session.logout"

	// Group administration
	RecordGroupCreate       RecordType = "group.create"
	RecordGroupDelete       RecordType = "group.delete"
	RecordGroupMemberAdd    RecordType = "group.member_add"
	RecordGroupMemberRemove RecordType = "group.member_remove"

	// Content
	RecordPageSave      RecordType = "page.save"
	RecordPageDelete    RecordType = "page.delete"
	RecordAttachmentAdd RecordType = "attachment.add"

	// Authorization
	RecordAccessDenied RecordType = "authz.access_denied"
	RecordPolicyReload RecordType = "policy.reload"
)

// Outcome is the result recorded with an audit record.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeDenied  Outcome = "denied"
)

// Record is a single audit trail entry. Actor is the session's display
// name; Resource names the page, attachment, or group acted on.
type Record struct {
	ID        int64      `json:"id,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	Type      RecordType `json:"type"`
	Outcome   Outcome    `json:"outcome"`
	Actor     string     `json:"actor,omitempty"`
	Resource  string     `json:"resource,omitempty"`
	Detail    string     `json:"detail,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
	RemoteIP  string     `json:"remote_ip,omitempty"`
}

// NewRecord creates a record stamped with the current time.
func NewRecord(t RecordType, outcome Outcome, actor, resource, detail string) *Record {
	return &Record{
		Timestamp: time.Now().UTC(),
		Type:      t,
		Outcome:   outcome,
		Actor:     actor,
		Resource:  resource,
		Detail:    detail,
	}
}
