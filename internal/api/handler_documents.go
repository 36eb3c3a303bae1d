package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetlog-backend/internal/store"
)

type patchDocumentRequest struct {
	Field string         `json:"field" binding:"required"`
	URL   string         `json:"url" binding:"required"`
	Extra map[string]any `json:"extra"`
}

// PatchDocument merges an attachment URL plus any extra fields into the
// addressed record. Replays are harmless: list fields union, scalar
// fields overwrite with the same value.
func (h *Handler) PatchDocument(c *gin.Context) {
	var req patchDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := c.Param("collection")
	id := c.Param("id")

	err := h.store.ApplyAttachment(c.Request.Context(), collection, id, req.Field, req.URL, req.Extra)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, store.ErrUnknownField):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
