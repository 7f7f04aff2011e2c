package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"ai_todo/internal/chat"
	"ai_todo/internal/interpreter"
	"ai_todo/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	notConfiguredMessage = "The chatbot is not configured. Please set up the chat webhook URL."
	unavailableMessage   = "The chatbot service is temporarily unavailable. Please try again later."
	demoModeMessage      = "🤖 Chatbot is in demo mode. Chat integration coming soon!\n\nFor now, you can:\n• Add tasks using the form above\n• Check your task list\n• Mark tasks as complete"
)

type chatRequest struct {
	Owner          string `json:"owner"`
	UserIdentifier string `json:"user_identifier"`
	Message        string `json:"message"`
	// ResolveReferences rewrites "#2"-style numbers against the owner's
	// current list before relaying.
	ResolveReferences bool `json:"resolve_references"`
}

// Chat relays one message to the interpreter webhook and passes its JSON
// answer through unchanged.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	// body may already be cached by the per-owner rate limiter
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner and message are required"})
		return
	}
	owner := firstNonEmpty(req.Owner, req.UserIdentifier)
	if owner == "" || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner and message are required"})
		return
	}

	ctx := c.Request.Context()
	text := req.Message
	if req.ResolveReferences {
		tasks, err := h.Tasks.List(ctx, owner)
		if err != nil {
			logger.WithContext(ctx).Warn("chat: references left unresolved", "owner", owner, "error", err)
		} else {
			text = chat.ResolveReferences(text, tasks)
		}
	}

	out := h.Relay.Send(ctx, owner, text)
	if !out.OK() {
		writeChatError(c, out.Err)
		return
	}

	if out.Refresh {
		h.Tasks.TasksChangedByChat(owner)
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", out.Raw)
}

func writeChatError(c *gin.Context, err error) {
	var statusErr *interpreter.StatusError
	switch {
	case errors.Is(err, interpreter.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "chat webhook url not configured",
			"message": notConfiguredMessage,
		})
	case errors.As(err, &statusErr):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "chat webhook failed with status " + strconv.Itoa(statusErr.Code),
			"message": unavailableMessage,
		})
	case errors.Is(err, interpreter.ErrUnreachable):
		c.JSON(http.StatusOK, gin.H{
			"error":   "chat webhook unreachable",
			"message": demoModeMessage,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to process chat request",
			"message": chat.FallbackReply,
		})
	}
}

// ChatPreflight answers the browser's CORS preflight for /chat.
func (h *Handler) ChatPreflight(c *gin.Context) {
	c.Status(http.StatusOK)
}
