package agentapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStatus reports the connectivity and sync state the capture UI
// renders in its header.
func (h *Handler) GetStatus(c *gin.Context) {
	pending, err := h.queue.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"online":       h.monitor.IsOnline(),
		"isSyncing":    h.engine.Running(),
		"pendingCount": pending,
	})
}

// TriggerSync runs one drain pass and reports what it did. A pass that
// is already running is not doubled; the caller gets zero counts back.
func (h *Handler) TriggerSync(c *gin.Context) {
	result, err := h.engine.Sync(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": result.Success,
		"failed":  result.Failed,
	})
}

// GetProfile returns the driver profile, served from the remote backend
// when reachable and from the local cache otherwise.
func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.profiles.Load(c.Request.Context(), h.userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, p)
}
