// Package agentapi is the field agent's local HTTP surface. Capture
// forms on the same machine post attachments here; the agent hides the
// online/offline branch behind a uniform response.
package agentapi

import (
	"github.com/gin-gonic/gin"

	"fleetlog-backend/internal/connectivity"
	"fleetlog-backend/internal/profile"
	"fleetlog-backend/internal/queue"
	"fleetlog-backend/internal/syncer"
	"fleetlog-backend/internal/upload"
)

// Handler holds the agent-side dependencies.
type Handler struct {
	images   *upload.ImageAdapter
	audio    *upload.AudioAdapter
	queue    *queue.Queue
	monitor  *connectivity.Monitor
	engine   *syncer.Engine
	profiles *profile.Loader
	userID   string
}

// NewHandler creates a new agent API handler. userID is the driver this
// agent runs for; upload requests may override it per call.
func NewHandler(images *upload.ImageAdapter, audio *upload.AudioAdapter, q *queue.Queue,
	monitor *connectivity.Monitor, engine *syncer.Engine, profiles *profile.Loader, userID string) *Handler {
	return &Handler{
		images:   images,
		audio:    audio,
		queue:    q,
		monitor:  monitor,
		engine:   engine,
		profiles: profiles,
		userID:   userID,
	}
}

// NewRouter creates and configures the agent's local Gin router.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	{
		api.POST("/uploads", h.PostUpload)
		api.GET("/previews/:id", h.GetPreview)
		api.GET("/status", h.GetStatus)
		api.POST("/sync", h.TriggerSync)
		api.GET("/profile", h.GetProfile)
	}

	return r
}
