// Package sheet implements the table model shared by the coordinator and
// every client: opaque identifiers, the closed cell-value sum, and the
// Table container with its storage invariants.
package sheet

// RowID identifies a row. Uniqueness is required among a table's rows.
type RowID string

// ColumnID identifies a column. Uniqueness is required among a table's
// columns.
type ColumnID string

// GroupID identifies a dependency group: a run of messages authored by a
// client between two groupID rotations (see the client's group-rotation
// policy).
type GroupID string

// MessageID identifies a message. Uniqueness is required across a whole
// run, not just within one client.
type MessageID string

// ClientID identifies a client node to the coordinator's connected set. It
// is not part of the wire message but is needed by every adapter that
// broadcasts to "every connected client".
type ClientID string

// Version is the coordinator's monotonically increasing accepted-message
// counter. Version 0 is the empty initial state.
type Version uint64

// Index is a row position in rowOrder. Zero-based.
type Index int
