package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/baranaytass/syncwatch-platform/internal/handler"
	"github.com/baranaytass/syncwatch-platform/pkg/constants"
)

// New builds the HTTP router.
func New(
	sessionHandler *handler.SessionHandler,
	sessionWS *handler.SessionWSHandler,
	health *handler.HealthHandler,
) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET(constants.PathHealth, health.Health)
	r.GET(constants.PathReady, health.Ready)

	// REST fallback sessions
	sessions := r.Group("/sessions")
	{
		sessions.POST("", sessionHandler.CreateSession)
		sessions.GET("/:id", sessionHandler.GetSession)
		sessions.POST("/:id/join", sessionHandler.JoinSession)
		sessions.POST("/:id/leave", sessionHandler.LeaveSession)
		sessions.PUT("/:id/video", sessionHandler.SetVideoURL)
		sessions.DELETE("/:id", sessionHandler.EndSession)
	}

	// WebSocket: join/leave/video commands arrive as messages
	r.GET(constants.PathWS, sessionWS.ServeWS)

	return r
}
