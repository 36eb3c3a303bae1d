package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetlog-backend/internal/model"
	"fleetlog-backend/internal/slug"
	"fleetlog-backend/internal/store"
)

type createLinkRequest struct {
	Slug  string `json:"slug" binding:"required"`
	URL   string `json:"url" binding:"required"`
	Title string `json:"title"`
}

// CreateLink registers a slug for the redirect endpoint. The slug is
// normalized before storage so lookups and registrations agree.
func (h *Handler) CreateLink(c *gin.Context) {
	var req createLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	normalized := slug.Normalize(req.Slug)
	if normalized == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug normalizes to empty"})
		return
	}

	link := model.AttachmentLink{
		Slug:  normalized,
		URL:   req.URL,
		Title: req.Title,
	}
	if err := h.store.CreateLink(c.Request.Context(), &link); err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "slug already exists"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"slug": normalized})
}
