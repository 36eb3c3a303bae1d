package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"fleetlog-backend/config"
	"fleetlog-backend/internal/mailer"
	"fleetlog-backend/internal/model"
	"fleetlog-backend/internal/mw"
	"fleetlog-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, s store.Store, webpushOptions *webpush.Options, mail mailer.Sender, approvals Dispatcher) *gin.Engine {
	r := gin.Default()

	db := s.DB()
	handler := NewHandler(s, webpushOptions, mail, approvals)

	// Initialize middleware
	rps := cfg.RateLimitPerSec
	if rps <= 0 {
		rps = 10
	}
	rateLimiter := mw.RateLimiter(rate.Limit(rps), 5, cfg.RequestIPHeader)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	// Short attachment links live outside /api so they stay copy-paste
	// friendly in chat messages.
	r.GET("/o/:slug", handler.Redirect)
	r.GET("/redirect", handler.Redirect)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Fleet records
		api.GET("/vehicles", caching, ListVehicles(db))
		api.POST("/vehicles", CreateVehicle(db))
		api.GET("/vehicles/:vehicle_id", GetVehicle(db))
		api.GET("/users/:id", GetUser(db))
		api.POST("/users", CreateUser(db))
		api.GET("/vehicles/:vehicle_id/maintenance", ListMaintenance(db))
		api.POST("/maintenance", handler.CreateMaintenance)
		api.DELETE("/maintenance/:id", DeleteRecord[model.Maintenance](db))
		api.GET("/vehicles/:vehicle_id/refuelings", ListRefuelings(db))
		api.POST("/refuelings", CreateRefueling(db))
		api.DELETE("/refuelings/:id", DeleteRecord[model.Refueling](db))

		// Document patches coming from the sync engine
		api.PATCH("/documents/:collection/:id", handler.PatchDocument)

		// Attachment short links
		api.POST("/links", handler.CreateLink)

		// Serverless-style functions kept under their historical paths
		api.POST("/functions/send-email", handler.SendEmail)
		api.POST("/functions/approval-response", handler.ApprovalResponse)

		// Consumption report
		api.GET("/reports/consumption", caching, handler.ConsumptionReport)

		// Web push plumbing
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
