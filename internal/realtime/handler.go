package realtime

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ServeWS upgrades GET /ws/:slug to a websocket viewer of the board. Client
// goroutines stop when ctx is done.
func ServeWS(ctx context.Context, hub *Hub, checkOrigin func(*http.Request) bool) gin.HandlerFunc {
	upgrader := websocket.Upgrader{CheckOrigin: checkOrigin}
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("❌ Error upgrading to WebSocket: %v", err)
			return
		}

		client := NewClient(hub, conn, c.Param("slug"), uuid.NewString())
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump(ctx)
	}
}
