package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandlerSocket upgrades a handler's connection and registers it for the
// given role so escalation notifications reach them in real time.
func (h *Handler) HandlerSocket(c *gin.Context) {
	role := c.Query("role")
	if role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed for role %s: %v", role, err)
		return
	}

	ws := h.dispatch.WS()
	ws.AddConnection(role, conn)

	// Reads keep the connection alive and detect the close.
	go func() {
		defer func() {
			ws.RemoveConnection(role, conn)
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
