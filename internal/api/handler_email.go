package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetlog-backend/internal/mailer"
)

type sendEmailRequest struct {
	To          []string            `json:"to" binding:"required,min=1"`
	CC          []string            `json:"cc"`
	Subject     string              `json:"subject" binding:"required"`
	Body        string              `json:"body" binding:"required"`
	Attachments []mailer.Attachment `json:"attachments"`
}

// SendEmail forwards a report email to the provider. The provider call
// is synchronous; a failure there is the caller's problem to retry.
func (h *Handler) SendEmail(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg := mailer.Message{
		To:          req.To,
		CC:          req.CC,
		Subject:     req.Subject,
		Body:        req.Body,
		Attachments: req.Attachments,
	}
	if err := h.mailer.Send(c.Request.Context(), msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "sent"})
}
