package queue

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestQueue(t *testing.T) *Queue {
	// One shared in-memory database per test, so gorm's connection pool
	// sees the same data on every connection.
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&PendingUpload{}, &PreviewBlob{}))
	return New(db)
}

func validEntry(filename string) *PendingUpload {
	return &PendingUpload{
		Domain:      "refueling",
		UserID:      "driver-1",
		Payload:     []byte("jpeg bytes"),
		ContentType: "image/jpeg",
		Filename:    filename,
		DocumentID:  "ref-1",
		Field:       "photos",
	}
}

func TestEnqueueAssignsIdentity(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	e := validEntry("pump.jpg")
	require.NoError(t, q.Enqueue(ctx, e))
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())

	n, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestEnqueueRejectsIncompleteEntries(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	testCases := []struct {
		name   string
		mutate func(*PendingUpload)
	}{
		{"missing payload", func(e *PendingUpload) { e.Payload = nil }},
		{"missing document id", func(e *PendingUpload) { e.DocumentID = "" }},
		{"missing field", func(e *PendingUpload) { e.Field = "" }},
		{"missing user", func(e *PendingUpload) { e.UserID = "" }},
		{"missing filename", func(e *PendingUpload) { e.Filename = "" }},
		{"missing content type", func(e *PendingUpload) { e.ContentType = "" }},
		{"unknown domain", func(e *PendingUpload) { e.Domain = "invoice" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := validEntry("x.jpg")
			tc.mutate(e)
			assert.ErrorIs(t, q.Enqueue(ctx, e), ErrIncomplete)
		})
	}

	n, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestListPendingInsertionOrder(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	// Same wall-clock timestamp; order must still follow insertion.
	now := time.Now()
	names := []string{"a.jpg", "b.jpg", "c.jpg"}
	for _, name := range names {
		e := validEntry(name)
		e.CreatedAt = now
		require.NoError(t, q.Enqueue(ctx, e))
	}

	entries, err := q.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, name := range names {
		assert.Equal(t, name, entries[i].Filename)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	e := validEntry("once.jpg")
	require.NoError(t, q.Enqueue(ctx, e))

	require.NoError(t, q.Remove(ctx, e.ID))
	n, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// Second removal: no error, no change.
	require.NoError(t, q.Remove(ctx, e.ID))
	n, err = q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestPreviewBlobs(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	id, err := q.SavePreview(ctx, "image/jpeg", []byte{0xff, 0xd8})
	require.NoError(t, err)

	blob, err := q.GetPreview(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", blob.ContentType)
	assert.Equal(t, []byte{0xff, 0xd8}, blob.Payload)

	_, err = q.GetPreview(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, q.ClearPreviews(ctx))
	_, err = q.GetPreview(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}
