package handler

import (
	"net/http"

	"openkanban/internal/gateway"
	"openkanban/internal/model"

	"github.com/gin-gonic/gin"
)

type ColumnHandler struct {
	gw gateway.Gateway
}

func NewColumnHandler(gw gateway.Gateway) *ColumnHandler {
	return &ColumnHandler{gw: gw}
}

func (h *ColumnHandler) Create(c *gin.Context) {
	var req model.CreateColumnInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	column, err := h.gw.CreateColumn(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, column)
}

// Update applies a partial update; the path ID wins over any ID in the body.
func (h *ColumnHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req model.UpdateColumnInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}
	req.ID = id

	column, err := h.gw.UpdateColumn(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, column)
}

func (h *ColumnHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.gw.DeleteColumn(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdatePositions writes positions, titles and collapse flags of many columns
// at once.
func (h *ColumnHandler) UpdatePositions(c *gin.Context) {
	var req []model.Column
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}
	if err := h.gw.BatchUpdateColumns(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
