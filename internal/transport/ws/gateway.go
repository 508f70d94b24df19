package ws

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tablesync/internal/client"
	"tablesync/internal/concurrency"
	"tablesync/internal/sheet"
)

// upgrader allows requests with no Origin (or "null") and loopback
// development origins; every other origin, including the server's own
// non-loopback host, is refused.
var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == "null" {
		return true
	}
	allowedPrefixes := []string{
		"http://localhost",
		"http://127.0.0.1",
		"https://localhost",
		"https://127.0.0.1",
	}
	for _, p := range allowedPrefixes {
		if strings.HasPrefix(origin, p) {
			return true
		}
	}
	return false
}}

// Gateway upgrades HTTP requests to websocket connections, each bound to a
// fresh client.Client against srv.
type Gateway struct {
	hub *Hub
	srv client.Server
	sem *concurrency.Semaphore
}

// NewGateway returns a Gateway that registers every accepted connection on
// hub and gates submits through sem.
func NewGateway(hub *Hub, srv client.Server, sem *concurrency.Semaphore) *Gateway {
	return &Gateway{hub: hub, srv: srv, sem: sem}
}

// Handle is a gin.HandlerFunc that upgrades the request, wires a Conn, and
// blocks in its read loop until disconnect.
func (g *Gateway) Handle(c *gin.Context) {
	clientID := c.GetString("clientId")
	if clientID == "" {
		clientID = uuid.NewString()
	}

	wsConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade error: %v (origin=%s)", err, c.Request.Header.Get("Origin"))
		return
	}
	defer wsConn.Close()

	conn := NewConn(wsConn, sheet.ClientID(clientID), g.srv, g.sem)
	g.hub.Join(conn)
	defer g.hub.Leave(conn)

	conn.ReadLoop()
}
