package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/baranaytass/syncwatch-platform/internal/service"
)

// SessionWSHandler handles WebSocket connections for /ws/sessions.
type SessionWSHandler struct {
	hub    *service.RoomHub
	logger *zap.Logger
}

// NewSessionWSHandler creates the WebSocket session handler.
func NewSessionWSHandler(hub *service.RoomHub, logger *zap.Logger) *SessionWSHandler {
	return &SessionWSHandler{hub: hub, logger: logger}
}

// ServeWS upgrades the request to WebSocket and runs the message loop.
// All session commands (join, leave, video-url-update, video-event,
// refresh) arrive as JSON messages on the connection.
func (h *SessionWSHandler) ServeWS(c *gin.Context) {
	conn, err := h.hub.Upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	client := h.hub.NewClient(conn)

	go h.writePump(client)
	h.readPump(c.Request.Context(), client)

	// Cleanup runs on a fresh context: the request context is already
	// cancelled once the connection drops.
	h.hub.Disconnect(context.Background(), client)
}

func (h *SessionWSHandler) readPump(ctx context.Context, client *service.RoomClient) {
	for {
		_, data, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("read error", zap.Error(err))
			}
			return
		}
		h.hub.HandleMessage(ctx, client, data)
	}
}

func (h *SessionWSHandler) writePump(client *service.RoomClient) {
	defer func() {
		_ = client.Conn.Close()
	}()
	for {
		select {
		case data := <-client.Send:
			if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-client.Done():
			return
		}
	}
}
