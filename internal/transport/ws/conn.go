package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"tablesync/internal/client"
	"tablesync/internal/concurrency"
	"tablesync/internal/coordinator"
	"tablesync/internal/sheet"
	"tablesync/internal/update"
)

// Conn binds one websocket connection to one in-process client.Client. It
// intercepts the embedded client's Sync/Accepted/Rejected callbacks via
// SetCallbackTarget, so every Sync and Accepted callback also pushes a
// fresh materialized view down the socket, and every Rejected callback
// pushes a rejection notice carrying the message id.
type Conn struct {
	ws     *websocket.Conn
	client *client.Client
	sem    *concurrency.Semaphore

	send chan ServerMessage
}

// NewConn wraps ws with a fresh client.Client of the given id, registered
// against srv, and starts its write loop.
func NewConn(ws *websocket.Conn, id sheet.ClientID, srv client.Server, sem *concurrency.Semaphore) *Conn {
	c := &Conn{
		ws:   ws,
		sem:  sem,
		send: make(chan ServerMessage, 32),
	}
	c.client = client.New(id, srv, false)
	c.client.SetCallbackTarget(c)
	go c.writeLoop()
	return c
}

// ID satisfies coordinator.Client.
func (c *Conn) ID() sheet.ClientID { return c.client.ID() }

// Sync forwards to the embedded client then pushes the new materialized
// view.
func (c *Conn) Sync(table *sheet.Table, version sheet.Version) {
	c.client.Sync(table, version)
	c.pushData("synced", version)
}

// Accepted forwards to the embedded client then pushes the new
// materialized view.
func (c *Conn) Accepted(msg update.Message) {
	c.client.Accepted(msg)
	c.pushData("accepted", msg.Version)
}

// Rejected forwards to the embedded client then notifies the browser.
func (c *Conn) Rejected(messageID sheet.MessageID, groupID sheet.GroupID) {
	c.client.Rejected(messageID, groupID)
	c.enqueue(ServerMessage{Type: "rejected", Content: string(messageID)})
}

func (c *Conn) pushData(eventType string, version sheet.Version) {
	payload, err := c.client.GetData()
	if err != nil {
		log.Printf("ws: serialize after %s: %v", eventType, err)
		return
	}
	c.enqueue(ServerMessage{Type: eventType, Version: version, Data: json.RawMessage(payload)})
}

func (c *Conn) enqueue(msg ServerMessage) {
	select {
	case c.send <- msg:
	default:
		log.Printf("ws: send buffer full for client %s, dropping %s", c.client.ID(), msg.Type)
	}
}

func (c *Conn) writeLoop() {
	for msg := range c.send {
		if err := c.ws.WriteJSON(msg); err != nil {
			log.Printf("ws: write error for client %s: %v", c.client.ID(), err)
			return
		}
	}
}

// ReadLoop consumes ClientMessage frames until the socket closes,
// dispatching each to the embedded client. Runs on the connection's
// goroutine and returns when the read fails (disconnect).
func (c *Conn) ReadLoop() {
	defer close(c.send)
	defer c.client.GoOffline()

	c.client.ComeOnline()
	c.enqueue(ServerMessage{Type: "welcome", Content: "connected"})

	for {
		var in ClientMessage
		if err := c.ws.ReadJSON(&in); err != nil {
			log.Printf("ws: read error for client %s: %v", c.client.ID(), err)
			return
		}
		c.dispatch(in)
	}
}

// dispatch gates every incoming op behind the semaphore the gateway shares
// across all its connections, bounding how many ops across all connections
// can be in flight at once.
func (c *Conn) dispatch(in ClientMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := c.sem.Acquire(ctx); err != nil {
		c.enqueue(ServerMessage{Type: "error", Content: err.Error()})
		return
	}
	defer c.sem.Release()

	switch in.Type {
	case "createRow":
		c.client.CreateRow(sheet.RowID(in.RowID))
	case "destroyRow":
		c.client.DestroyRow(sheet.RowID(in.RowID))
	case "moveRow":
		c.client.MoveRow(sheet.RowID(in.RowID), in.TargetIndex)
	case "createColumn":
		ct, ok := sheet.ParseCellType(in.CellType)
		if !ok {
			c.enqueue(ServerMessage{Type: "error", Content: "unknown cellType " + in.CellType})
			return
		}
		c.client.CreateColumn(sheet.ColumnID(in.ColumnID), ct)
	case "destroyColumn":
		c.client.DestroyColumn(sheet.ColumnID(in.ColumnID))
	case "updateColumnType":
		ct, ok := sheet.ParseCellType(in.CellType)
		if !ok {
			c.enqueue(ServerMessage{Type: "error", Content: "unknown cellType " + in.CellType})
			return
		}
		c.client.UpdateColumnType(sheet.ColumnID(in.ColumnID), ct)
	case "updateTextCellValue":
		c.client.UpdateTextCellValue(sheet.RowID(in.RowID), sheet.ColumnID(in.ColumnID), in.TextValue)
	case "updateNumberCellValue":
		c.client.UpdateNumberCellValue(sheet.RowID(in.RowID), sheet.ColumnID(in.ColumnID), in.NumberValue)
	case "getData":
		c.pushData("data", 0)
	case "goOffline":
		c.client.GoOffline()
	case "comeOnline":
		c.client.ComeOnline()
	default:
		c.enqueue(ServerMessage{Type: "ignored", Content: "unknown message type " + in.Type})
	}
}

var _ coordinator.Client = (*Conn)(nil)
