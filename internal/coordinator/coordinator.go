// Package coordinator implements the single-writer server: an authoritative
// table, an append-only history, a FIFO pending queue, and the dependent-
// group rejection rule that elides messages whose group has already failed.
package coordinator

import (
	"log"
	"sync"
	"time"

	"tablesync/internal/sheet"
	"tablesync/internal/update"
)

// Client is the callback surface the coordinator drives on every connected
// client — sync on connect, accepted/rejected as messages drain. Defining
// this locally rather than importing internal/client's concrete type keeps
// the two packages decoupled in both directions, the way a hub holds
// connections behind its own narrow interface rather than the underlying
// transport types directly.
type Client interface {
	ID() sheet.ClientID
	Sync(table *sheet.Table, version sheet.Version)
	Accepted(msg update.Message)
	Rejected(messageID sheet.MessageID, groupID sheet.GroupID)
}

// Coordinator is the authoritative server. The zero value is not ready;
// use New.
type Coordinator struct {
	mu sync.Mutex

	table   *sheet.Table
	history []historyEntry // 1-indexed; history[0] is unused

	pending      []update.Message
	failedGroups map[sheet.GroupID]struct{}

	connected map[sheet.ClientID]Client

	nextMessageID uint64
	scheduled     bool

	// Hooks let the domain-stack adapters (internal/eventlog,
	// internal/presence, internal/snapshotstore) observe accept/reject and
	// connect/disconnect decisions without the core engine depending on
	// any of them.
	onAccepted   func(update.Message)
	onRejected   func(sheet.MessageID, sheet.GroupID)
	onConnect    func(sheet.ClientID)
	onDisconnect func(sheet.ClientID)
}

type historyEntry struct {
	msg update.Message
	bk  update.Bookkeeping
}

// New returns a Coordinator with an empty authoritative table.
func New() *Coordinator {
	return &Coordinator{
		table:        sheet.New(),
		history:      make([]historyEntry, 1), // slot 0 unused
		failedGroups: make(map[sheet.GroupID]struct{}),
		connected:    make(map[sheet.ClientID]Client),
	}
}

// OnAccepted registers a callback invoked, under the coordinator's lock,
// immediately after a message is appended to history. Used to wire an
// audit log or snapshot store without coupling the core loop to either.
func (c *Coordinator) OnAccepted(fn func(update.Message)) { c.onAccepted = fn }

// OnRejected registers a callback invoked, under the coordinator's lock,
// immediately after a group is poisoned.
func (c *Coordinator) OnRejected(fn func(sheet.MessageID, sheet.GroupID)) { c.onRejected = fn }

// OnConnect registers a callback invoked after a client is added to the
// connected set, for presence tracking.
func (c *Coordinator) OnConnect(fn func(sheet.ClientID)) { c.onConnect = fn }

// OnDisconnect registers a callback invoked after a client is removed from
// the connected set.
func (c *Coordinator) OnDisconnect(fn func(sheet.ClientID)) { c.onDisconnect = fn }

// Snapshot returns the exact getData serialization of the live
// authoritative table, for periodic persistence by a snapshot store.
func (c *Coordinator) Snapshot() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table.Serialize()
}

// CurrentVersion returns the number of accepted messages (history is
// 1-indexed; slot 0 does not count).
func (c *Coordinator) CurrentVersion() sheet.Version {
	c.mu.Lock()
	defer c.mu.Unlock()
	return sheet.Version(len(c.history) - 1)
}

// History returns the accepted message at version v, or false if v is out
// of range. Exposed for tests and for audit adapters replaying the log.
func (c *Coordinator) History(v sheet.Version) (update.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v < 1 || int(v) >= len(c.history) {
		return update.Message{}, false
	}
	return c.history[v].msg, true
}

// ConnectedClientIDs returns the ids of currently connected clients, for
// presence adapters and tests.
func (c *Coordinator) ConnectedClientIDs() []sheet.ClientID {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]sheet.ClientID, 0, len(c.connected))
	for id := range c.connected {
		ids = append(ids, id)
	}
	return ids
}

// Connect registers cl, delivers it a snapshot of the authoritative table
// and current version, and considers it synced.
func (c *Coordinator) Connect(cl Client) {
	c.mu.Lock()
	tableCopy := c.table.Clone()
	version := sheet.Version(len(c.history) - 1)
	c.connected[cl.ID()] = cl
	onConnect := c.onConnect
	c.mu.Unlock()

	cl.Sync(tableCopy, version)
	if onConnect != nil {
		onConnect(cl.ID())
	}
}

// Disconnect removes cl from the connected set. No other state changes.
func (c *Coordinator) Disconnect(cl Client) {
	c.mu.Lock()
	delete(c.connected, cl.ID())
	onDisconnect := c.onDisconnect
	c.mu.Unlock()

	if onDisconnect != nil {
		onDisconnect(cl.ID())
	}
}

// Receive enqueues msg and drains the pending queue immediately, unless
// StartScheduledDrain has put the coordinator into ticker-driven mode.
func (c *Coordinator) Receive(msg update.Message) {
	c.mu.Lock()
	c.pending = append(c.pending, msg)
	scheduled := c.scheduled
	c.mu.Unlock()
	if !scheduled {
		c.Process()
	}
}

// StartScheduledDrain switches the coordinator from draining on every
// Receive to draining on a fixed interval, batching however many messages
// arrived since the last tick into one Process call. Call before the
// first Receive. The returned stop function halts the ticker; messages
// already queued are drained once more before it returns.
func (c *Coordinator) StartScheduledDrain(interval time.Duration) (stop func()) {
	c.mu.Lock()
	c.scheduled = true
	c.mu.Unlock()

	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				c.Process()
			case <-done:
				ticker.Stop()
				c.Process()
				close(finished)
				return
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}

// Process drains the pending queue to completion, applying the
// dependent-group rejection rule and broadcasting accepted/rejected to
// every connected client for each message it applies or rejects. Messages
// of an already-failed group are dropped without any broadcast.
func (c *Coordinator) Process() {
	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.mu.Unlock()
			return
		}
		msg := c.pending[0]
		c.pending = c.pending[1:]
		c.processLocked(msg)
		c.mu.Unlock()
	}
}

// processLocked implements one drain step. Caller holds c.mu.
func (c *Coordinator) processLocked(msg update.Message) {
	if _, failed := c.failedGroups[msg.GroupID]; failed {
		return
	}

	if msg.Update.NeedsTransform() {
		ctx := c.shiftContextSince(msg.Version)
		msg.Update.Transform(ctx)
	}

	ok, bk := msg.Update.Apply(c.table)
	if !ok {
		c.failedGroups[msg.GroupID] = struct{}{}
		log.Printf("coordinator: rejected message %s (group %s)", msg.MessageID, msg.GroupID)
		if c.onRejected != nil {
			c.onRejected(msg.MessageID, msg.GroupID)
		}
		c.broadcastRejected(msg.MessageID, msg.GroupID)
		return
	}

	newVersion := sheet.Version(len(c.history))
	msg.Version = newVersion
	c.history = append(c.history, historyEntry{msg: msg, bk: bk})
	if c.onAccepted != nil {
		c.onAccepted(msg)
	}
	c.broadcastAccepted(msg)
}

// shiftContextSince builds a ShiftContext folding every accepted update
// strictly after baseline. Caller holds c.mu.
func (c *Coordinator) shiftContextSince(baseline sheet.Version) *update.ShiftContext {
	ctx := &update.ShiftContext{}
	for i := int(baseline) + 1; i < len(c.history); i++ {
		c.history[i].msg.Update.Shift(c.history[i].bk, ctx)
	}
	return ctx
}

func (c *Coordinator) broadcastAccepted(msg update.Message) {
	for _, cl := range c.connected {
		cl.Accepted(msg)
	}
}

func (c *Coordinator) broadcastRejected(messageID sheet.MessageID, groupID sheet.GroupID) {
	for _, cl := range c.connected {
		cl.Rejected(messageID, groupID)
	}
}
