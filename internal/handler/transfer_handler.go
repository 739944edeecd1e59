package handler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"openkanban/internal/gateway"
	"openkanban/internal/transfer"

	"github.com/gin-gonic/gin"
)

// SyncPublisher tells every viewer of a board to refetch.
type SyncPublisher interface {
	PublishSync(ctx context.Context, slug string) error
}

type TransferHandler struct {
	gw        gateway.Gateway
	publisher SyncPublisher
	now       func() time.Time
}

func NewTransferHandler(gw gateway.Gateway, publisher SyncPublisher) *TransferHandler {
	return &TransferHandler{gw: gw, publisher: publisher, now: time.Now}
}

// Export streams the board as a downloadable JSON document.
func (h *TransferHandler) Export(c *gin.Context) {
	slug := c.Param("slug")
	full, err := h.gw.GetFullBoard(c.Request.Context(), slug)
	if err != nil {
		respondError(c, err)
		return
	}
	if full == nil {
		notFound(c, "Board not found")
		return
	}

	now := h.now()
	doc := transfer.Export(slug, full.Columns, now)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, transfer.FileName(slug, now)))
	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)
	if err := transfer.Encode(c.Writer, doc); err != nil {
		log.Printf("❌ Failed to write export of %q: %v", slug, err)
	}
}

// Import replaces the board content with the uploaded document and signals
// every viewer to refetch.
func (h *TransferHandler) Import(c *gin.Context) {
	slug := c.Param("slug")
	data, err := c.GetRawData()
	if err != nil {
		badRequest(c, "Invalid request", err)
		return
	}
	doc, err := transfer.Decode(data)
	if err != nil {
		badRequest(c, "Invalid import file", err)
		return
	}

	full, err := transfer.Import(c.Request.Context(), h.gw, slug, doc)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.publisher != nil {
		if err := h.publisher.PublishSync(c.Request.Context(), slug); err != nil {
			log.Printf("⚠️ Failed to announce import of %q: %v", slug, err)
		}
	}
	c.JSON(http.StatusOK, full)
}
