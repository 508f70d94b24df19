// Package eventlog publishes an audit trail of accepted and rejected
// coordinator messages to Kafka, asynchronously and best-effort: the audit
// log does not gate the coordinator's process loop and does not require
// strong delivery guarantees.
package eventlog

import (
	"time"

	"tablesync/internal/sheet"
)

// Outcome tags whether an Event records an acceptance or a rejection.
type Outcome string

const (
	OutcomeAccepted Outcome = "ACCEPTED"
	OutcomeRejected Outcome = "REJECTED"
)

// Event is one audit record. Kind names the concrete Update variant
// (e.g. "CreateRow") rather than carrying the update itself, since the
// taxonomy's variants are not independently useful to an external audit
// consumer without the coordinator's own replay logic.
type Event struct {
	Outcome   Outcome         `json:"outcome"`
	MessageID sheet.MessageID `json:"messageId"`
	GroupID   sheet.GroupID   `json:"groupId"`
	Version   sheet.Version   `json:"version,omitempty"`
	Kind      string          `json:"kind,omitempty"`
	LoggedAt  time.Time       `json:"loggedAt"`
}
