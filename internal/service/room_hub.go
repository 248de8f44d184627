package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/baranaytass/syncwatch-platform/internal/errs"
	"github.com/baranaytass/syncwatch-platform/internal/model"
)

// RoomClient represents one WebSocket connection. A connection is in at
// most one room; sessionID/participantID are empty until a join succeeds
// and are guarded by the hub's lock.
type RoomClient struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	done          chan struct{}
	sessionID     string
	participantID string
}

// Done is closed when the hub is finished with this connection; the
// write pump selects on it to terminate.
func (c *RoomClient) Done() <-chan struct{} { return c.done }

// RoomHub maps live connections to session rooms and fans out state
// produced by the session service and sync engine. The hub itself never
// mutates session state; its membership index is presence cache rebuilt
// empty on restart, not durable truth.
type RoomHub struct {
	mu    sync.RWMutex
	rooms map[string]map[*RoomClient]struct{} // sessionID -> room members

	sessions   *SessionService
	engine     *SyncEngine
	upgrader   websocket.Upgrader
	maxMsgSize int64
	log        *zap.Logger
}

// NewRoomHub creates a room hub.
func NewRoomHub(sessions *SessionService, engine *SyncEngine, readBuf, writeBuf int, maxMessageSize int64, log *zap.Logger) *RoomHub {
	return &RoomHub{
		rooms:      make(map[string]map[*RoomClient]struct{}),
		sessions:   sessions,
		engine:     engine,
		maxMsgSize: maxMessageSize,
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBuf,
			WriteBufferSize: writeBuf,
			// Allow all origins for dev; in prod set CheckOrigin.
		},
	}
}

// Upgrader returns the WebSocket upgrader for HTTP handlers.
func (h *RoomHub) Upgrader() *websocket.Upgrader {
	return &h.upgrader
}

// NewClient wraps a freshly upgraded connection.
func (h *RoomHub) NewClient(conn *websocket.Conn) *RoomClient {
	if conn != nil && h.maxMsgSize > 0 {
		conn.SetReadLimit(h.maxMsgSize)
	}
	return &RoomClient{
		ID:   uuid.New().String(),
		Conn: conn,
		Send: make(chan []byte, 256),
		done: make(chan struct{}),
	}
}

// HandleMessage dispatches one inbound message. Failures are reported to
// the originating connection only and never close it.
func (h *RoomHub) HandleMessage(ctx context.Context, c *RoomClient, raw []byte) {
	var msg model.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.sendError(c, errs.Validationf("malformed message"))
		return
	}
	switch msg.Type {
	case model.MsgJoinSession:
		h.handleJoin(ctx, c, &msg)
	case model.MsgLeaveSession:
		h.handleLeave(ctx, c)
	case model.MsgVideoURLUpdate:
		h.handleVideoURLUpdate(ctx, c, &msg)
	case model.MsgVideoEvent:
		h.handleVideoEvent(ctx, c, &msg)
	case model.MsgRefreshSession:
		h.handleRefresh(ctx, c, &msg)
	default:
		h.sendError(c, errs.Validationf("unknown message type %q", msg.Type))
	}
}

// Disconnect runs the leave path for a dropped connection and closes its
// send channel. A participant that drops without an explicit leave is
// still removed from the session.
func (h *RoomHub) Disconnect(ctx context.Context, c *RoomClient) {
	sessionID, participantID := h.assignment(c)
	if sessionID != "" {
		snapshot, err := h.sessions.Leave(ctx, sessionID, participantID)
		h.unregister(c)
		if err != nil {
			h.log.Warn("leave on disconnect failed",
				zap.String("session_id", sessionID),
				zap.String("participant_id", participantID),
				zap.Error(err))
		} else {
			h.broadcast(sessionID, nil, model.MsgUserLeft, &model.SessionPayload{
				SessionID:     sessionID,
				ParticipantID: participantID,
				Snapshot:      snapshot,
			})
		}
	}
	close(c.done)
	h.log.Info("connection closed", zap.String("conn_id", c.ID))
}

func (h *RoomHub) handleJoin(ctx context.Context, c *RoomClient, msg *model.ClientMessage) {
	if sessionID, _ := h.assignment(c); sessionID != "" {
		h.sendError(c, errs.Validationf("connection already joined a session"))
		return
	}
	participantID := strings.TrimSpace(msg.ParticipantID)
	snapshot, err := h.sessions.Join(ctx, msg.SessionID, participantID)
	if err != nil {
		h.sendError(c, err)
		return
	}

	h.mu.Lock()
	c.sessionID = snapshot.ID
	c.participantID = participantID
	if h.rooms[snapshot.ID] == nil {
		h.rooms[snapshot.ID] = make(map[*RoomClient]struct{})
	}
	h.rooms[snapshot.ID][c] = struct{}{}
	h.mu.Unlock()

	h.log.Info("connection joined room",
		zap.String("conn_id", c.ID),
		zap.String("session_id", snapshot.ID),
		zap.String("participant_id", participantID))

	// Joiner gets the full snapshot, video state included, so a late
	// joiner starts in sync rather than at time zero.
	h.send(c, model.MsgSessionJoined, &model.SessionPayload{
		SessionID: snapshot.ID,
		Snapshot:  snapshot,
	})
	h.broadcast(snapshot.ID, c, model.MsgUserJoined, &model.SessionPayload{
		SessionID:     snapshot.ID,
		ParticipantID: participantID,
		Snapshot:      snapshot,
	})
}

func (h *RoomHub) handleLeave(ctx context.Context, c *RoomClient) {
	sessionID, participantID := h.assignment(c)
	if sessionID == "" {
		h.sendError(c, errs.Validationf("connection has not joined a session"))
		return
	}
	snapshot, err := h.sessions.Leave(ctx, sessionID, participantID)
	if err != nil {
		// Keep the last known good room assignment rather than guessing.
		h.sendError(c, err)
		return
	}
	h.unregister(c)
	h.broadcast(sessionID, nil, model.MsgUserLeft, &model.SessionPayload{
		SessionID:     sessionID,
		ParticipantID: participantID,
		Snapshot:      snapshot,
	})
}

func (h *RoomHub) handleVideoURLUpdate(ctx context.Context, c *RoomClient, msg *model.ClientMessage) {
	sessionID, participantID := h.assignment(c)
	if sessionID == "" {
		h.sendError(c, errs.Validationf("connection has not joined a session"))
		return
	}
	snapshot, err := h.sessions.SetVideoURL(ctx, sessionID, msg.URL)
	if err != nil {
		h.sendError(c, err)
		return
	}
	// Everyone including the originator: the server may normalize the URL
	// and the originator's UI needs the canonical echo.
	h.broadcast(sessionID, nil, model.MsgVideoURLUpdated, &model.VideoURLPayload{
		SessionID: sessionID,
		URL:       snapshot.VideoURL,
		UpdatedBy: participantID,
		Snapshot:  snapshot,
	})
}

func (h *RoomHub) handleVideoEvent(ctx context.Context, c *RoomClient, msg *model.ClientMessage) {
	sessionID, participantID := h.assignment(c)
	if sessionID == "" {
		h.sendError(c, errs.Validationf("connection has not joined a session"))
		return
	}
	var ev model.VideoEvent
	if len(msg.Event) == 0 {
		h.sendError(c, errs.Validationf("video event is required"))
		return
	}
	if err := json.Unmarshal(msg.Event, &ev); err != nil {
		h.sendError(c, errs.Validationf("malformed video event"))
		return
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = nowMillis()
	}
	state, err := h.engine.HandleVideoEvent(ctx, sessionID, &ev, participantID)
	if err != nil {
		h.sendError(c, err)
		return
	}
	// Others only: the originator already drives its own playback and an
	// echo would risk a feedback loop of re-applied actions.
	h.broadcast(sessionID, c, model.MsgVideoSync, &model.VideoSyncPayload{
		Type:        ev.Type,
		CurrentTime: state.CurrentTime,
		IsPlaying:   state.IsPlaying,
		Timestamp:   state.LastUpdated,
	})
}

func (h *RoomHub) handleRefresh(ctx context.Context, c *RoomClient, msg *model.ClientMessage) {
	sessionID := strings.TrimSpace(msg.SessionID)
	if sessionID == "" {
		sessionID, _ = h.assignment(c)
	}
	snapshot, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		h.sendError(c, err)
		return
	}
	h.send(c, model.MsgSessionRefreshed, &model.SessionPayload{
		SessionID: sessionID,
		Snapshot:  snapshot,
	})
}

// assignment returns the client's room assignment under the hub lock.
func (h *RoomHub) assignment(c *RoomClient) (sessionID, participantID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.sessionID, c.participantID
}

func (h *RoomHub) unregister(c *RoomClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.rooms[c.sessionID]; ok {
		delete(m, c)
		if len(m) == 0 {
			delete(h.rooms, c.sessionID)
		}
	}
	c.sessionID = ""
	c.participantID = ""
}

// broadcast fans a message out to every room member except exclude.
// Sends never block the caller; a full send buffer drops the message.
func (h *RoomHub) broadcast(sessionID string, exclude *RoomClient, msgType string, payload interface{}) {
	raw, err := json.Marshal(&model.ServerMessage{Type: msgType, Payload: payload})
	if err != nil {
		h.log.Error("marshal broadcast failed", zap.String("type", msgType), zap.Error(err))
		return
	}
	h.mu.RLock()
	members := make([]*RoomClient, 0, len(h.rooms[sessionID]))
	for c := range h.rooms[sessionID] {
		if c != exclude {
			members = append(members, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range members {
		select {
		case c.Send <- raw:
		default:
			h.log.Warn("member send buffer full, dropping message",
				zap.String("session_id", sessionID),
				zap.String("conn_id", c.ID),
				zap.String("type", msgType))
		}
	}
}

func (h *RoomHub) send(c *RoomClient, msgType string, payload interface{}) {
	raw, err := json.Marshal(&model.ServerMessage{Type: msgType, Payload: payload})
	if err != nil {
		h.log.Error("marshal message failed", zap.String("type", msgType), zap.Error(err))
		return
	}
	select {
	case c.Send <- raw:
	default:
		h.log.Warn("send buffer full, dropping message",
			zap.String("conn_id", c.ID),
			zap.String("type", msgType))
	}
}

// sendError reports a failure to the originating connection only. Store
// internals never leak; everything else surfaces its message.
func (h *RoomHub) sendError(c *RoomClient, err error) {
	code := errs.CodeOf(err)
	msg := err.Error()
	var de *errs.DatabaseError
	if errors.As(err, &de) || code == errs.CodeInternal {
		h.log.Error("operation failed", zap.String("conn_id", c.ID), zap.Error(err))
		msg = "internal error"
	}
	h.send(c, model.MsgSessionError, &model.ErrorPayload{Code: code, Message: msg})
}

// RoomSize returns the number of live connections in a session's room.
func (h *RoomHub) RoomSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}
