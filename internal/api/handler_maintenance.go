package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleetlog-backend/internal/model"
)

type createMaintenanceRequest struct {
	ID          string    `json:"id"`
	VehicleID   string    `json:"vehicleId" binding:"required"`
	UserID      string    `json:"userId"`
	Description string    `json:"description" binding:"required"`
	Kind        string    `json:"kind"`
	Date        time.Time `json:"date" binding:"required"`
	OdometerKm  *float64  `json:"odometerKm"`
	Cost        float64   `json:"cost"`
}

// CreateMaintenance handles the POST /api/maintenance request. A record
// with a cost opens an approval round: one ApprovalMessage per director
// plus a push to every subscribed manager.
func (h *Handler) CreateMaintenance(c *gin.Context) {
	var req createMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m := model.Maintenance{
		ID:           req.ID,
		VehicleID:    req.VehicleID,
		UserID:       req.UserID,
		Description:  req.Description,
		Kind:         req.Kind,
		Date:         req.Date,
		OdometerKm:   req.OdometerKm,
		Cost:         req.Cost,
		CostApproval: model.ApprovalPending,
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	err := h.store.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		if m.Cost <= 0 {
			return nil
		}

		var directors []model.User
		if err := tx.Where("role = ?", model.RoleDirector).Find(&directors).Error; err != nil {
			return err
		}
		for _, d := range directors {
			msg := model.ApprovalMessage{
				ID:            uuid.NewString(),
				MaintenanceID: m.ID,
				Recipient:     d.Phone,
				Status:        model.ApprovalPending,
			}
			if err := tx.Create(&msg).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if m.Cost > 0 && h.approvals != nil {
		h.approvals.Dispatch(m.ID)
	}

	c.JSON(http.StatusCreated, m)
}
