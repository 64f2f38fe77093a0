package handler

import (
	"net/http"

	"github.com/avocado/teamhub/internal/domain/identity"
	"github.com/gin-gonic/gin"
)

// RealtimeServer upgrades an authenticated request to a chat connection
type RealtimeServer interface {
	Serve(w http.ResponseWriter, r *http.Request, session identity.Session)
}

// WebSocketHandler hands /ws connections to the realtime server
type WebSocketHandler struct {
	BaseHandler
	server RealtimeServer
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(server RealtimeServer) *WebSocketHandler {
	return &WebSocketHandler{server: server}
}

// Connect godoc
// @Summary      Open a chat connection
// @Description  Served by the chat server. Upgrades to a websocket. The access token may be passed as the token query parameter.
// @Tags         channels
// @Produce      json
// @Security     BearerAuth
// @Param        token query string false "Access token"
// @Success      101 {string} string
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Router       /ws [get]
func (h *WebSocketHandler) Connect(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	h.server.Serve(c.Writer, c.Request, session)
}
