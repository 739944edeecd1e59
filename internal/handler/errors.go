package handler

import (
	"errors"
	"log"
	"net/http"

	"openkanban/internal/gateway"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError writes err as the JSON error envelope with a matching status.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case gateway.IsNotFound(err):
		status = http.StatusNotFound
	case gateway.IsConflict(err):
		status = http.StatusConflict
	}

	body := gateway.ErrorBody{Error: err.Error()}
	var se *gateway.StoreError
	if errors.As(err, &se) {
		body = gateway.ErrorBody{Error: se.Message, Code: se.Code, Details: se.Details, Hint: se.Hint}
	}
	if status == http.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string, err error) {
	body := gateway.ErrorBody{Error: msg}
	if err != nil {
		body.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gateway.ErrorBody{Error: msg, Code: gateway.CodeNotFound})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid ID format", err)
		return uuid.Nil, false
	}
	return id, true
}
