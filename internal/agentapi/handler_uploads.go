package agentapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fleetlog-backend/internal/docstore"
	"fleetlog-backend/internal/upload"
)

// PostUpload accepts one multipart attachment and routes it through the
// matching adapter. Image parts are downsampled to JPEG; audio parts
// pass through. The response carries the canonical or preview URL plus
// the isOffline marker the form shows to the driver.
func (h *Handler) PostUpload(c *gin.Context) {
	domain := docstore.Domain(c.PostForm("domain"))
	if !domain.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown domain " + c.PostForm("domain")})
		return
	}

	documentID := c.PostForm("documentId")
	field := c.PostForm("field")
	if documentID == "" || field == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "documentId and field are required"})
		return
	}

	userID := c.PostForm("userId")
	if userID == "" {
		userID = h.userID
	}

	var extra docstore.Extra
	if raw := c.PostForm("extra"); raw != "" {
		decoded, err := docstore.DecodeExtra(domain, []byte(raw))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed extra: " + err.Error()})
			return
		}
		extra = decoded
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file part is required"})
		return
	}
	defer file.Close()

	req := upload.Request{
		Domain:     domain,
		UserID:     userID,
		DocumentID: documentID,
		Field:      field,
		Extra:      extra,
	}

	contentType := header.Header.Get("Content-Type")
	var result *upload.Result
	if strings.HasPrefix(contentType, "image/") {
		result, err = h.images.Upload(c.Request.Context(), file, req)
	} else {
		result, err = h.audio.Upload(c.Request.Context(), file, contentType, req)
	}
	if err != nil {
		// Bad payloads are the caller's to fix; anything else is the
		// storage path failing behind us.
		if errors.Is(err, upload.ErrInvalidMedia) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetPreview serves a queued upload's bytes back to the capture form.
// Previews are session-local; a restart clears them.
func (h *Handler) GetPreview(c *gin.Context) {
	blob, err := h.queue.GetPreview(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "preview not found"})
		return
	}

	c.Data(http.StatusOK, blob.ContentType, blob.Payload)
}
