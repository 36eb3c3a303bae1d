package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetlog-backend/internal/slug"
	"fleetlog-backend/internal/store"
)

// Redirect resolves a short attachment slug and sends the caller to the
// stored URL. The slug is normalized first, so pasted titles with
// accents or stray punctuation still resolve.
func (h *Handler) Redirect(c *gin.Context) {
	raw := c.Param("slug")
	if raw == "" {
		raw = c.Query("slug")
	}

	normalized := slug.Normalize(raw)
	if normalized == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or empty slug"})
		return
	}

	url, err := h.store.ResolveLink(c.Request.Context(), normalized)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown slug"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.Redirect(http.StatusFound, url)
}
