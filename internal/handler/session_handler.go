package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/baranaytass/syncwatch-platform/internal/errs"
	"github.com/baranaytass/syncwatch-platform/internal/model"
	"github.com/baranaytass/syncwatch-platform/internal/service"
)

// SessionHandler is the REST fallback surface. Every route calls the same
// session service the WebSocket path uses, so the two paths cannot
// diverge in business rules.
type SessionHandler struct {
	svc *service.SessionService
	ws  *service.WSConfig
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(svc *service.SessionService, wsBaseURL string) *SessionHandler {
	return &SessionHandler{
		svc: svc,
		ws:  &service.WSConfig{BaseURL: wsBaseURL},
	}
}

// CreateSession godoc
// POST /sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	sess, err := h.svc.Create(c.Request.Context(), req.ParticipantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.CreateSessionResponse{
		SessionID: sess.ID,
		WSURL:     h.ws.WSURL(),
		Status:    string(sess.Status),
	})
}

// GetSession godoc
// GET /sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// JoinSession godoc
// POST /sessions/:id/join
func (h *SessionHandler) JoinSession(c *gin.Context) {
	var req model.ParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	sess, err := h.svc.Join(c.Request.Context(), c.Param("id"), req.ParticipantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// LeaveSession godoc
// POST /sessions/:id/leave
func (h *SessionHandler) LeaveSession(c *gin.Context) {
	var req model.ParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	sess, err := h.svc.Leave(c.Request.Context(), c.Param("id"), req.ParticipantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// SetVideoURL godoc
// PUT /sessions/:id/video
func (h *SessionHandler) SetVideoURL(c *gin.Context) {
	var req model.SetVideoURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	sess, err := h.svc.SetVideoURL(c.Request.Context(), c.Param("id"), req.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// EndSession godoc
// DELETE /sessions/:id
func (h *SessionHandler) EndSession(c *gin.Context) {
	if _, err := h.svc.End(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// respondError maps domain errors to HTTP codes. Store internals stay out
// of responses.
func respondError(c *gin.Context, err error) {
	var ve *errs.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": errs.CodeValidation, "message": ve.Msg})
	case errors.Is(err, errs.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errs.CodeSessionNotFound, "message": "session not found"})
	case errors.Is(err, errs.ErrSyncFailed):
		c.JSON(http.StatusConflict, gin.H{"error": errs.CodeSyncFailed, "message": "session is not active"})
	case errors.Is(err, errs.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": errs.CodeUnauthorized, "message": "unauthorized"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": errs.CodeDatabase, "message": "operation failed"})
	}
}
