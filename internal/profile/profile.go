// Package profile loads the agent user's profile, racing the remote
// fetch against a short timeout and falling back to the locally cached
// snapshot when the backend does not answer promptly.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"fleetlog-backend/internal/docstore"
)

// ErrNoProfile is returned when neither the backend nor the local cache
// can produce a profile.
var ErrNoProfile = errors.New("no profile available")

// CachedProfile is the locally persisted snapshot of the user document.
type CachedProfile struct {
	UserID    string    `gorm:"primaryKey;size:64"`
	Name      string    `gorm:"size:128"`
	Email     string    `gorm:"size:256"`
	Phone     string    `gorm:"size:32"`
	Role      string    `gorm:"size:16"`
	FetchedAt time.Time `gorm:"not null"`
}

// Cache persists profile snapshots in the agent's local database.
type Cache struct {
	db *gorm.DB
}

// NewCache creates a profile cache over the local database handle.
func NewCache(db *gorm.DB) *Cache {
	return &Cache{db: db}
}

// Save upserts the snapshot for the given user.
func (c *Cache) Save(ctx context.Context, p *docstore.Profile) error {
	row := CachedProfile{
		UserID:    p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		Role:      p.Role,
		FetchedAt: time.Now(),
	}
	if err := c.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("cache profile %s: %w", p.ID, err)
	}
	return nil
}

// Load returns the cached snapshot, or ErrNoProfile when none exists.
func (c *Cache) Load(ctx context.Context, userID string) (*docstore.Profile, error) {
	var row CachedProfile
	err := c.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, fmt.Errorf("load cached profile %s: %w", userID, err)
	}
	return &docstore.Profile{
		ID:    row.UserID,
		Name:  row.Name,
		Email: row.Email,
		Phone: row.Phone,
		Role:  row.Role,
	}, nil
}

// Loader resolves the agent profile at startup.
type Loader struct {
	store   docstore.Store
	cache   *Cache
	timeout time.Duration
}

// NewLoader creates a loader with the given fetch deadline.
func NewLoader(store docstore.Store, cache *Cache, timeout time.Duration) *Loader {
	return &Loader{store: store, cache: cache, timeout: timeout}
}

// Load fetches the remote profile within the configured deadline and
// refreshes the cache; when the fetch does not resolve in time it falls
// back to the cached snapshot.
func (l *Loader) Load(ctx context.Context, userID string) (*docstore.Profile, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	p, err := l.store.GetProfile(fetchCtx, userID)
	if err == nil {
		if cacheErr := l.cache.Save(ctx, p); cacheErr != nil {
			log.Printf("Warning: could not refresh profile cache: %v", cacheErr)
		}
		return p, nil
	}

	log.Printf("Profile fetch for %s did not resolve (%v); using cached snapshot", userID, err)
	cached, cacheErr := l.cache.Load(ctx, userID)
	if cacheErr != nil {
		return nil, fmt.Errorf("profile fetch failed (%v): %w", err, cacheErr)
	}
	return cached, nil
}
