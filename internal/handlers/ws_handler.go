package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"taskbuddy-api/internal/middleware"
	"taskbuddy-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
)

// wsClient implements realtime.Client by wrapping a websocket connection.
// gorilla allows one concurrent writer, so pings and events share a lock.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{conn: conn}
}

func (c *wsClient) Send(message []byte) bool {
	if c == nil || c.conn == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteMessage(websocket.TextMessage, message) == nil
}

func (c *wsClient) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(wsWriteWait))
}

func (c *wsClient) Close() {
	if c != nil && c.conn != nil {
		_ = c.conn.Close()
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is already handled at Gin level; allow upgrade from any origin here
		return true
	},
}

// WebSocketHandler upgrades the connection, registers it with hub and sends
// a session event carrying the signed-in profile. Task events for the same
// user follow as they happen.
func WebSocketHandler(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := middleware.CurrentProfile(c)
		if !ok || profile.UserID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authorized"})
			return
		}
		userID := profile.UserID

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("websocket upgrade error:", err)
			return
		}

		client := newWSClient(conn)
		hub.Register(userID, client)

		hello, err := json.Marshal(realtime.Event{
			Type:    realtime.EventSession,
			UserID:  userID,
			Payload: map[string]any{"profile": profile},
			At:      time.Now().UTC(),
			Version: 1,
		})
		if err == nil {
			client.Send(hello)
		}

		pingTicker := time.NewTicker(wsPingPeriod)
		done := make(chan struct{})
		go func() {
			for {
				select {
				case <-done:
					return
				case <-pingTicker.C:
					if err := client.ping(); err != nil {
						// reader loop exits on the next error
						return
					}
				}
			}
		}()
		defer func() {
			close(done)
			pingTicker.Stop()
			hub.Unregister(userID, client)
			client.Close()
		}()

		conn.SetReadLimit(1024)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(wsPongWait))
			return nil
		})

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
