package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetlog-backend/internal/report"
)

// ConsumptionReport handles the GET /api/reports/consumption request.
// The report is rebuilt from all refueling rows on every (uncached)
// call; the response cache in front keeps that honest.
func (h *Handler) ConsumptionReport(c *gin.Context) {
	readings, err := h.store.RefuelingReadings(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve refuelings"})
		return
	}

	c.JSON(http.StatusOK, report.Build(readings))
}
