package handlers

import (
	"net/http"

	"ai_todo/internal/domain"
	"ai_todo/internal/service"

	"github.com/gin-gonic/gin"
)

type createTaskRequest struct {
	Owner          string  `json:"owner"`
	UserIdentifier string  `json:"user_identifier"`
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	Enhance        bool    `json:"enhance"`
}

// ListTasks returns the owner's tasks, newest first.
func (h *Handler) ListTasks(c *gin.Context) {
	owner := ownerQuery(c)
	if owner == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner is required"})
		return
	}

	tasks, err := h.Tasks.List(c.Request.Context(), owner)
	if err != nil {
		writeError(c, err)
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *Handler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	task, err := h.Tasks.Create(c.Request.Context(), service.CreateTaskInput{
		Owner:       firstNonEmpty(req.Owner, req.UserIdentifier),
		Title:       req.Title,
		Description: req.Description,
		Enhance:     req.Enhance,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

func (h *Handler) GetTask(c *gin.Context) {
	task, err := h.Tasks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// UpdateTask applies a partial update. Only fields present in the body
// change; "description": null clears the description.
func (h *Handler) UpdateTask(c *gin.Context) {
	var patch domain.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	task, err := h.Tasks.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *Handler) DeleteTask(c *gin.Context) {
	if err := h.Tasks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
