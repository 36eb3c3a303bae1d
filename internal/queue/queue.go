// Package queue is the agent's local durable store for writes that could
// not reach the backend: pending uploads with their binary payloads, plus
// the ephemeral preview blobs handed back to capture forms while offline.
package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleetlog-backend/internal/docstore"
)

var (
	// ErrIncomplete is returned when an entry is missing required fields.
	// The queue never stores partially-specified entries.
	ErrIncomplete = errors.New("pending upload is not fully specified")
	// ErrNotFound is returned by preview lookups for unknown ids.
	ErrNotFound = errors.New("not found")
)

// PendingUpload is one queued write awaiting network availability.
// Rows are never mutated in place: a failed sync leaves the row untouched
// for the next pass.
type PendingUpload struct {
	Seq         int64     `gorm:"primaryKey;autoIncrement"`
	ID          string    `gorm:"uniqueIndex;size:64;not null"`
	Domain      string    `gorm:"index;size:16;not null"`
	UserID      string    `gorm:"size:64;not null"`
	Payload     []byte    `gorm:"type:blob;not null"`
	ContentType string    `gorm:"size:128;not null"`
	Filename    string    `gorm:"size:256;not null"`
	DocumentID  string    `gorm:"size:64;not null"`
	Field       string    `gorm:"size:64;not null"`
	Extra       []byte    `gorm:"type:blob"` // JSON-encoded typed patch, may be empty
	CreatedAt   time.Time `gorm:"index;not null"`
}

// PreviewBlob is a session-scoped preview payload backing the temporary
// URL returned by an offline upload.
type PreviewBlob struct {
	ID          string    `gorm:"primaryKey;size:64"`
	ContentType string    `gorm:"size:128;not null"`
	Payload     []byte    `gorm:"type:blob;not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

// Queue is the sqlite-backed durable queue.
type Queue struct {
	db *gorm.DB
}

// New creates a queue over the given local database handle.
func New(db *gorm.DB) *Queue {
	return &Queue{db: db}
}

// Enqueue durably stores a new entry. The entry id and timestamp are
// assigned here when absent. Storage errors surface to the caller so the
// adapter can fall back to a preview-only result.
func (q *Queue) Enqueue(ctx context.Context, e *PendingUpload) error {
	if !docstore.Domain(e.Domain).Valid() || e.UserID == "" || len(e.Payload) == 0 ||
		e.ContentType == "" || e.Filename == "" || e.DocumentID == "" || e.Field == "" {
		return ErrIncomplete
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if err := q.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("enqueue pending upload: %w", err)
	}
	return nil
}

// ListPending returns a snapshot of all queued entries in insertion order.
func (q *Queue) ListPending(ctx context.Context) ([]PendingUpload, error) {
	var entries []PendingUpload
	if err := q.db.WithContext(ctx).Order("seq").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list pending uploads: %w", err)
	}
	return entries, nil
}

// Remove deletes one entry after it has been synced. Removing an id that
// is no longer present is a no-op, so duplicate removal attempts are safe.
func (q *Queue) Remove(ctx context.Context, id string) error {
	if err := q.db.WithContext(ctx).Where("id = ?", id).Delete(&PendingUpload{}).Error; err != nil {
		return fmt.Errorf("remove pending upload %s: %w", id, err)
	}
	return nil
}

// Count returns the number of queued entries without touching payloads.
func (q *Queue) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := q.db.WithContext(ctx).Model(&PendingUpload{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count pending uploads: %w", err)
	}
	return n, nil
}

// SavePreview stores a preview blob and returns its id.
func (q *Queue) SavePreview(ctx context.Context, contentType string, payload []byte) (string, error) {
	blob := &PreviewBlob{
		ID:          uuid.NewString(),
		ContentType: contentType,
		Payload:     payload,
		CreatedAt:   time.Now(),
	}
	if err := q.db.WithContext(ctx).Create(blob).Error; err != nil {
		return "", fmt.Errorf("save preview blob: %w", err)
	}
	return blob.ID, nil
}

// GetPreview loads a preview blob by id.
func (q *Queue) GetPreview(ctx context.Context, id string) (*PreviewBlob, error) {
	var blob PreviewBlob
	err := q.db.WithContext(ctx).First(&blob, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get preview blob %s: %w", id, err)
	}
	return &blob, nil
}

// ClearPreviews drops all preview blobs. Called on agent start: previews
// are only meaningful within the session that produced them.
func (q *Queue) ClearPreviews(ctx context.Context) error {
	return q.db.WithContext(ctx).Where("1 = 1").Delete(&PreviewBlob{}).Error
}
