package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleetlog-backend/internal/model"
)

// ListVehicles handles the GET /api/vehicles request.
func ListVehicles(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var vehicles []model.Vehicle
		if err := db.Order("plate").Find(&vehicles).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve vehicles"})
			return
		}
		c.JSON(http.StatusOK, vehicles)
	}
}

type createVehicleRequest struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Plate  string `json:"plate" binding:"required"`
	Make   string `json:"make"`
	Model  string `json:"model"`
	Year   int    `json:"year"`
}

// CreateVehicle handles the POST /api/vehicles request.
func CreateVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createVehicleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		vehicle := model.Vehicle{
			ID:     req.ID,
			UserID: req.UserID,
			Plate:  req.Plate,
			Make:   req.Make,
			Model:  req.Model,
			Year:   req.Year,
			Status: "active",
		}
		if vehicle.ID == "" {
			vehicle.ID = uuid.NewString()
		}

		if err := db.Create(&vehicle).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, vehicle)
	}
}

// GetVehicle handles the GET /api/vehicles/{vehicle_id} request.
func GetVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var vehicle model.Vehicle
		if err := db.First(&vehicle, "id = ?", c.Param("vehicle_id")).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(http.StatusOK, vehicle)
	}
}

// DeleteRecord handles DELETE requests for simple record types.
func DeleteRecord[T any](db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var record T
		res := db.Delete(&record, "id = ?", c.Param("id"))
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// GetUser handles the GET /api/users/{id} request. The field agent uses
// it to refresh its cached driver profile.
func GetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user model.User
		if err := db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"phone": user.Phone,
			"role":  user.Role,
		})
	}
}

type createUserRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// CreateUser handles the POST /api/users request.
func CreateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		role := req.Role
		switch role {
		case "":
			role = model.RoleDriver
		case model.RoleDriver, model.RoleManager, model.RoleDirector:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role " + role})
			return
		}

		user := model.User{
			ID:    req.ID,
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
			Role:  role,
		}
		if user.ID == "" {
			user.ID = uuid.NewString()
		}

		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

// ListMaintenance handles the GET /api/vehicles/{vehicle_id}/maintenance request.
func ListMaintenance(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var records []model.Maintenance
		if err := db.Where("vehicle_id = ?", c.Param("vehicle_id")).
			Order("date DESC").Find(&records).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve maintenance records"})
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

// ListRefuelings handles the GET /api/vehicles/{vehicle_id}/refuelings request.
func ListRefuelings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var records []model.Refueling
		if err := db.Where("vehicle_id = ?", c.Param("vehicle_id")).
			Order("date DESC").Find(&records).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve refuelings"})
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

type createRefuelingRequest struct {
	ID         string    `json:"id"`
	VehicleID  string    `json:"vehicleId" binding:"required"`
	UserID     string    `json:"userId"`
	Date       time.Time `json:"date" binding:"required"`
	OdometerKm *float64  `json:"odometerKm"`
	Liters     float64   `json:"liters" binding:"required,gt=0"`
	TotalCost  float64   `json:"totalCost"`
	FullTank   bool      `json:"fullTank"`
}

// CreateRefueling handles the POST /api/refuelings request.
func CreateRefueling(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRefuelingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		refueling := model.Refueling{
			ID:         req.ID,
			VehicleID:  req.VehicleID,
			UserID:     req.UserID,
			Date:       req.Date,
			OdometerKm: req.OdometerKm,
			Liters:     req.Liters,
			TotalCost:  req.TotalCost,
			FullTank:   req.FullTank,
		}
		if refueling.ID == "" {
			refueling.ID = uuid.NewString()
		}

		if err := db.Create(&refueling).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, refueling)
	}
}
