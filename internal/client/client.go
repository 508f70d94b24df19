// Package client implements the client-side mirror, outbox, and
// online/offline state machine.
package client

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"tablesync/internal/coordinator"
	"tablesync/internal/sheet"
	"tablesync/internal/update"
)

// Server is the callback surface a Client drives on the coordinator —
// connect/disconnect/receive. coordinator.Client is the narrow
// identity+callback interface the coordinator requires of anything it
// registers; *Client satisfies it structurally without coordinator ever
// importing this package.
type Server interface {
	Connect(cl coordinator.Client)
	Disconnect(cl coordinator.Client)
	Receive(msg update.Message)
}

// Client is a node with a local mirror of the table, an offline outbox,
// and the group-id rotation state used for dependent-group rejection.
type Client struct {
	mu sync.Mutex

	id     sheet.ClientID
	server Server

	// target is what gets registered with the server and so receives its
	// Sync/Accepted/Rejected callbacks — c itself by default. A wrapper
	// (e.g. internal/transport/ws.Conn) that needs to observe those
	// callbacks alongside the Client's own handling of them overrides this
	// via SetCallbackTarget, the way an embedding type would shadow a
	// promoted method if Go dispatched through the embedded field's own
	// pointer instead of the interface value the server actually holds.
	target coordinator.Client

	mirror  *sheet.Table
	outbox  []update.Message
	version sheet.Version
	groupID sheet.GroupID
	online  bool
}

// New constructs a Client bound to server, offline, with an empty mirror.
// If startOnline is true it immediately comes online.
func New(id sheet.ClientID, server Server, startOnline bool) *Client {
	c := &Client{
		id:      id,
		server:  server,
		mirror:  sheet.New(),
		groupID: freshGroupID(),
	}
	c.target = c
	if startOnline {
		c.ComeOnline()
	}
	return c
}

// SetCallbackTarget overrides what gets registered with the server in
// place of c. t must still delegate to c's Sync/Accepted/Rejected for the
// client's own state to advance; see internal/transport/ws.Conn.
func (c *Client) SetCallbackTarget(t coordinator.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = t
}

// ID returns the client's identity.
func (c *Client) ID() sheet.ClientID { return c.id }

// IsOnline reports the client's current connection state.
func (c *Client) IsOnline() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// ComeOnline registers with the server, then flushes the outbox in
// enqueued order. Connect synchronously invokes Sync before returning, so
// the client's version and groupID are already the post-sync ones when the
// flush starts; the flushed messages themselves keep the version and
// groupID they were issued with (their authoring baseline).
func (c *Client) ComeOnline() {
	c.mu.Lock()
	target := c.target
	c.mu.Unlock()

	c.server.Connect(target)

	c.mu.Lock()
	outbox := c.outbox
	c.outbox = nil
	c.online = true
	c.mu.Unlock()

	for _, msg := range outbox {
		c.server.Receive(msg)
	}
}

// GoOffline disconnects from the server.
func (c *Client) GoOffline() {
	c.mu.Lock()
	target := c.target
	c.mu.Unlock()

	c.server.Disconnect(target)
	c.mu.Lock()
	c.online = false
	c.mu.Unlock()
}

// issue wraps u in a fresh Message and either sends it immediately or
// enqueues it in the outbox, depending on online state. The mirror is
// never mutated here — only on Accepted.
func (c *Client) issue(u update.Update) {
	c.mu.Lock()
	msg := update.Message{
		Version:   c.version,
		GroupID:   c.groupID,
		Update:    u,
		MessageID: freshMessageID(),
	}
	online := c.online
	if !online {
		c.outbox = append(c.outbox, msg)
	}
	c.mu.Unlock()

	if online {
		c.server.Receive(msg)
	}
}

// CreateRow issues a CreateRow update.
func (c *Client) CreateRow(rowID sheet.RowID) {
	c.issue(&update.CreateRow{RowID: rowID})
}

// DestroyRow issues a DestroyRow update.
func (c *Client) DestroyRow(rowID sheet.RowID) {
	c.issue(&update.DestroyRow{RowID: rowID})
}

// MoveRow issues a MoveRow update.
func (c *Client) MoveRow(rowID sheet.RowID, targetIndex int) {
	c.issue(&update.MoveRow{RowID: rowID, TargetIndex: targetIndex})
}

// CreateColumn issues a CreateColumn update.
func (c *Client) CreateColumn(columnID sheet.ColumnID, ct sheet.CellType) {
	c.issue(&update.CreateColumn{ColumnID: columnID, Type: ct})
}

// DestroyColumn issues a DestroyColumn update.
func (c *Client) DestroyColumn(columnID sheet.ColumnID) {
	c.issue(&update.DestroyColumn{ColumnID: columnID})
}

// UpdateColumnType issues an UpdateColumnType update.
func (c *Client) UpdateColumnType(columnID sheet.ColumnID, ct sheet.CellType) {
	c.issue(&update.UpdateColumnType{ColumnID: columnID, Type: ct})
}

// UpdateTextCellValue issues an UpdateTextCellValue update.
func (c *Client) UpdateTextCellValue(rowID sheet.RowID, columnID sheet.ColumnID, value string) {
	c.issue(&update.UpdateTextCellValue{RowID: rowID, ColumnID: columnID, Value: value})
}

// UpdateNumberCellValue issues an UpdateNumberCellValue update.
func (c *Client) UpdateNumberCellValue(rowID sheet.RowID, columnID sheet.ColumnID, value float64) {
	c.issue(&update.UpdateNumberCellValue{RowID: rowID, ColumnID: columnID, Value: value})
}

// Sync replaces the mirror with table and rotates groupID if version is a
// new baseline.
func (c *Client) Sync(table *sheet.Table, version sheet.Version) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mirror = table
	if version > c.version {
		c.groupID = freshGroupID()
	}
	c.version = version
}

// Accepted applies the post-transform update to the mirror and advances
// version and groupID. An out-of-order delivery is a fatal protocol
// violation.
func (c *Client) Accepted(msg update.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if msg.Version != c.version+1 {
		panic(fmt.Sprintf(
			"client %s: protocol violation: accepted message at version %d, expected %d",
			c.id, msg.Version, c.version+1,
		))
	}

	ok, _ := msg.Update.Apply(c.mirror)
	if !ok {
		panic(fmt.Sprintf(
			"client %s: protocol violation: replay of accepted update failed to apply", c.id,
		))
	}
	c.version = msg.Version
	c.groupID = freshGroupID()
}

// Rejected is a no-op: the client never applied an unacknowledged edit to
// its mirror, so there is nothing to roll back.
func (c *Client) Rejected(messageID sheet.MessageID, groupID sheet.GroupID) {}

// GetData returns the materialized view: the mirror if online, or the
// mirror with every outbox update best-effort applied if offline.
func (c *Client) GetData() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.online {
		return c.mirror.Serialize()
	}

	view := c.mirror.Clone()
	for _, msg := range c.outbox {
		msg.Update.Apply(view) // best-effort; failures mirror the eventual server rejection
	}
	return view.Serialize()
}

func freshGroupID() sheet.GroupID { return sheet.GroupID(uuid.NewString()) }
func freshMessageID() sheet.MessageID { return sheet.MessageID(uuid.NewString()) }
