// Package localdb opens the agent's sqlite database. This store is the
// agent's own durable state (pending uploads, previews, cached profile)
// and is independent of any caching the remote backend does.
package localdb

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fleetlog-backend/internal/profile"
	"fleetlog-backend/internal/queue"
)

// Init opens the local database at the given DSN and runs migrations.
func Init(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}

	log.Println("Running local database migrations...")
	if err := db.AutoMigrate(
		&queue.PendingUpload{},
		&queue.PreviewBlob{},
		&profile.CachedProfile{},
	); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	return db, nil
}
