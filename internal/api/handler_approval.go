package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fleetlog-backend/internal/model"
	"fleetlog-backend/internal/store"
)

type approvalResponseRequest struct {
	ButtonID string `json:"buttonId" binding:"required"`
	Sender   string `json:"sender"`
}

// ApprovalResponse handles the messaging-provider webhook fired when a
// director presses an approve/reject button. The button id carries the
// action and the approval message id separated by a pipe.
func (h *Handler) ApprovalResponse(c *gin.Context) {
	var req approvalResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parts := strings.SplitN(req.ButtonID, "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed buttonId"})
		return
	}

	var status string
	switch parts[0] {
	case "approve":
		status = model.ApprovalApproved
	case "reject":
		status = model.ApprovalRejected
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action " + parts[0]})
		return
	}

	if err := h.store.RespondApproval(c.Request.Context(), parts[1], status, req.Sender); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown approval message"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}
