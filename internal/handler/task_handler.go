package handler

import (
	"net/http"

	"openkanban/internal/gateway"
	"openkanban/internal/model"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	gw gateway.Gateway
}

func NewTaskHandler(gw gateway.Gateway) *TaskHandler {
	return &TaskHandler{gw: gw}
}

// Create adds a task; a missing priority defaults to medium.
func (h *TaskHandler) Create(c *gin.Context) {
	var req model.CreateTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}
	req.Priority = req.Priority.OrDefault()

	task, err := h.gw.CreateTask(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req model.UpdateTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}
	req.ID = id

	task, err := h.gw.UpdateTask(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.gw.DeleteTask(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdatePositions moves and reorders many tasks at once.
func (h *TaskHandler) UpdatePositions(c *gin.Context) {
	var req []model.Task
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}
	for _, t := range req {
		if !t.Priority.Valid() {
			badRequest(c, "Invalid request", model.ErrInvalidPriority)
			return
		}
	}
	if err := h.gw.BatchUpdateTasks(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
