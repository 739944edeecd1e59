package handler

import (
	"net/http"

	"openkanban/internal/gateway"
	"openkanban/internal/model"
	"openkanban/internal/slug"

	"github.com/gin-gonic/gin"
)

type BoardHandler struct {
	gw gateway.Gateway
}

func NewBoardHandler(gw gateway.Gateway) *BoardHandler {
	return &BoardHandler{gw: gw}
}

// GetBySlug returns the board row for a slug.
func (h *BoardHandler) GetBySlug(c *gin.Context) {
	board, err := h.gw.GetBoard(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	if board == nil {
		notFound(c, "Board not found")
		return
	}
	c.JSON(http.StatusOK, board)
}

// GetFull returns the board with its ordered columns and tasks.
func (h *BoardHandler) GetFull(c *gin.Context) {
	full, err := h.gw.GetFullBoard(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	if full == nil {
		notFound(c, "Board not found")
		return
	}
	c.JSON(http.StatusOK, full)
}

func (h *BoardHandler) Create(c *gin.Context) {
	var req model.CreateBoardInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}
	if !slug.Valid(req.Slug) {
		badRequest(c, "Invalid slug", nil)
		return
	}

	board, err := h.gw.CreateBoard(c.Request.Context(), req.Slug)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, board)
}

// Delete removes a board with all of its columns and tasks.
func (h *BoardHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.gw.DeleteBoard(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
