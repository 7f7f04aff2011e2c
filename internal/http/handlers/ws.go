package handlers

import (
	"net/http"

	"ai_todo/internal/logger"
	"ai_todo/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WS subscribes a socket to the owner's refresh feed.
func (h *Handler) WS(c *gin.Context) {
	owner := ownerQuery(c)
	if owner == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner is required"})
		return
	}

	allowedOrigin := h.AllowedOrigin
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("ws upgrade error", "error", err)
		return
	}

	client := ws.NewClient(owner, conn, h.Hub)
	go client.Run()
}
