package handlers

import (
	"errors"
	"net/http"
	"strings"

	"ai_todo/internal/chat"
	"ai_todo/internal/domain"
	"ai_todo/internal/service"
	"ai_todo/internal/ws"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Tasks         *service.TaskService
	Relay         *chat.Relay
	Hub           *ws.Hub
	AllowedOrigin string
}

func NewHandler(tasks *service.TaskService, relay *chat.Relay, hub *ws.Hub, allowedOrigin string) *Handler {
	return &Handler{
		Tasks:         tasks,
		Relay:         relay,
		Hub:           hub,
		AllowedOrigin: allowedOrigin,
	}
}

// writeError maps domain errors onto status codes. Store details stay in
// the logs.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, domain.ErrStoreUnavailable):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "task store unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

// ownerQuery reads ?owner= with the legacy ?user_identifier= alias.
func ownerQuery(c *gin.Context) string {
	owner := strings.TrimSpace(c.Query("owner"))
	if owner == "" {
		owner = strings.TrimSpace(c.Query("user_identifier"))
	}
	return owner
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
