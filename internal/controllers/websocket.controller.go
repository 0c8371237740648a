package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"framecheck/internal/middleware"
	"framecheck/internal/models"
	"framecheck/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origins are checked by the CORS middleware
		return true
	},
}

// HandleWebSocket streams estimation events and engine stats. When auth is
// non-nil the upgrade requires a valid token query parameter.
func HandleWebSocket(hub *services.WebSocketHub, auth *services.AuthService, securityLogger *middleware.SecurityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientName := "anonymous"
		if auth != nil {
			token := c.Query("token")
			if token == "" {
				securityLogger.LogFailedAuth(c.ClientIP(), "missing token")
				c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "missing token"})
				return
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				securityLogger.LogFailedAuth(c.ClientIP(), err.Error())
				c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid token"})
				return
			}
			clientName = claims.ClientName
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &services.ClientConnection{
			ID:    clientName + "-" + uuid.NewString()[:8],
			Conn:  ws,
			Send:  make(chan services.WebSocketMessage, 256),
			Close: make(chan bool),
		}
		if !hub.Register(client) {
			ws.Close()
			return
		}
		securityLogger.LogWebSocketConnected(c.ClientIP(), client.ID)

		go readPump(client, hub, auth, securityLogger, c.ClientIP())
		go writePump(client)
	}
}

// readPump reads messages from the WebSocket client
func readPump(client *services.ClientConnection, hub *services.WebSocketHub, auth *services.AuthService, securityLogger *middleware.SecurityLogger, ip string) {
	defer func() {
		hub.Unregister(client.ID)
		client.Conn.Close()
		securityLogger.LogWebSocketDisconnected(ip, client.ID)
	}()

	for {
		var msg services.WebSocketMessage
		if err := client.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] WebSocket error: %v", err)
			}
			return
		}

		var reply services.WebSocketMessage
		switch msg.Type {
		case services.MessagePing:
			reply = services.WebSocketMessage{Type: services.MessagePong, Timestamp: time.Now()}

		case services.MessageAuth:
			if auth == nil {
				reply = services.WebSocketMessage{Type: services.MessageAuthSuccess, Timestamp: time.Now()}
				break
			}
			claims, err := auth.ValidateToken(msg.Token)
			if err != nil {
				securityLogger.LogFailedAuth(ip, "websocket auth message: "+err.Error())
				reply = services.WebSocketMessage{Type: services.MessageAuthError, Timestamp: time.Now(), Error: "invalid token"}
				break
			}
			reply = services.WebSocketMessage{
				Type:      services.MessageAuthSuccess,
				Timestamp: time.Now(),
				Data:      map[string]string{"client": claims.ClientName},
			}

		case "unsubscribe":
			return

		default:
			log.Printf("[WS] Unknown message type from %s: %s", client.ID, msg.Type)
			continue
		}

		select {
		case client.Send <- reply:
		case <-client.Close:
			return
		}
	}
}

// writePump writes messages to the WebSocket client
func writePump(client *services.ClientConnection) {
	defer client.Conn.Close()

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				// Channel closed, close connection
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Conn.WriteJSON(msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[WS] Write error: %v", err)
				}
				return
			}

		case <-client.Close:
			client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
