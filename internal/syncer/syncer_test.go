package syncer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fleetlog-backend/internal/connectivity"
	"fleetlog-backend/internal/docstore"
	"fleetlog-backend/internal/objstore"
	"fleetlog-backend/internal/queue"
)

func newTestQueue(t *testing.T) *queue.Queue {
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&queue.PendingUpload{}, &queue.PreviewBlob{}))
	return queue.New(db)
}

func enqueue(t *testing.T, q *queue.Queue, filename, docID string) *queue.PendingUpload {
	e := &queue.PendingUpload{
		Domain:      "refueling",
		UserID:      "driver-1",
		Payload:     []byte("payload-" + filename),
		ContentType: "image/jpeg",
		Filename:    filename,
		DocumentID:  docID,
		Field:       "photos",
	}
	require.NoError(t, q.Enqueue(context.Background(), e))
	return e
}

func TestSyncDrainsQueue(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)
	objects := objstore.NewMemory()
	docs := docstore.NewMemory()
	docs.Put(docstore.DomainRefueling, "ref-1", map[string]any{"photos": []string{}})

	enqueue(t, q, "a.jpg", "ref-1")
	enqueue(t, q, "b.jpg", "ref-1")

	engine := New(q, objects, docs)
	res, err := engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Success: 2, Failed: 0}, res)

	n, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	doc := docs.Get(docstore.DomainRefueling, "ref-1")
	assert.ElementsMatch(t,
		[]string{"mem://refueling/driver-1/a.jpg", "mem://refueling/driver-1/b.jpg"},
		doc["photos"])
	assert.Equal(t, 2, objects.Len())
}

func TestSyncPartialFailureIndependence(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)
	objects := objstore.NewMemory()
	objects.FailFor = map[string]error{
		"refueling/driver-1/broken.jpg": errors.New("malformed blob"),
	}
	docs := docstore.NewMemory()
	docs.Put(docstore.DomainRefueling, "ref-1", map[string]any{})

	enqueue(t, q, "ok1.jpg", "ref-1")
	broken := enqueue(t, q, "broken.jpg", "ref-1")
	enqueue(t, q, "ok2.jpg", "ref-1")

	engine := New(q, objects, docs)
	res, err := engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Success: 2, Failed: 1}, res)

	// Only the broken entry remains, untouched, for the next pass.
	remaining, err := q.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, broken.ID, remaining[0].ID)
}

func TestSyncRetainsEntryWhenDocumentUpdateFails(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)
	objects := objstore.NewMemory()
	docs := docstore.NewMemory() // no document seeded: patch returns not found

	enqueue(t, q, "orphan.jpg", "missing-doc")

	engine := New(q, objects, docs)
	res, err := engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Success: 0, Failed: 1}, res)

	n, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "entry must survive until the document update succeeds")
}

func TestSyncStatusBroadcast(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)
	objects := objstore.NewMemory()
	objects.FailFor = map[string]error{
		"refueling/driver-1/bad.jpg": errors.New("boom"),
	}
	docs := docstore.NewMemory()
	docs.Put(docstore.DomainRefueling, "ref-1", map[string]any{})

	enqueue(t, q, "good.jpg", "ref-1")
	enqueue(t, q, "bad.jpg", "ref-1")

	engine := New(q, objects, docs)
	var statuses []Status
	engine.OnStatus(func(s Status) { statuses = append(statuses, s) })

	_, err := engine.Sync(ctx)
	require.NoError(t, err)

	assert.Equal(t, []Status{
		{IsSyncing: true, PendingCount: 2},  // pass start
		{IsSyncing: true, PendingCount: 1},  // good.jpg uploaded
		{IsSyncing: true, PendingCount: 1},  // bad.jpg failed, retained
		{IsSyncing: false, PendingCount: 1}, // pass end, one left for retry
	}, statuses)
}

// blockingStore parks the first upload until released, to hold a pass
// open while a second trigger arrives.
type blockingStore struct {
	inner   *objstore.Memory
	started chan struct{}
	release chan struct{}
}

func (b *blockingStore) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	b.started <- struct{}{}
	<-b.release
	return b.inner.Upload(ctx, path, contentType, data)
}

func TestSyncSingleFlight(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)
	blocking := &blockingStore{
		inner:   objstore.NewMemory(),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	docs := docstore.NewMemory()
	docs.Put(docstore.DomainRefueling, "ref-1", map[string]any{})

	enqueue(t, q, "slow.jpg", "ref-1")

	engine := New(q, blocking, docs)

	var starts int
	engine.OnStatus(func(s Status) {
		if s.IsSyncing && s.PendingCount == 1 {
			starts++
		}
	})

	done := make(chan Result, 1)
	go func() {
		res, err := engine.Sync(ctx)
		assert.NoError(t, err)
		done <- res
	}()

	// First pass is inside the upload now.
	select {
	case <-blocking.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first sync pass never started uploading")
	}
	assert.True(t, engine.Running())

	// Second trigger while the first is in flight: a no-op.
	res, err := engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	close(blocking.release)
	select {
	case first := <-done:
		assert.Equal(t, Result{Success: 1, Failed: 0}, first)
	case <-time.After(2 * time.Second):
		t.Fatal("first sync pass never finished")
	}

	assert.Equal(t, 1, starts, "exactly one pass may start")
	assert.False(t, engine.Running())
}

func TestAutoSyncDrainsOnReconnect(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)
	objects := objstore.NewMemory()
	docs := docstore.NewMemory()
	docs.Put(docstore.DomainRefueling, "ref-1", map[string]any{})

	enqueue(t, q, "a.jpg", "ref-1")

	engine := New(q, objects, docs)
	monitor := connectivity.NewMonitor(false)
	unsubscribe := engine.AutoSync(ctx, monitor)
	defer unsubscribe()

	monitor.SetOnline(true)

	assert.Eventually(t, func() bool {
		n, err := q.Count(ctx)
		return err == nil && n == 0
	}, 2*time.Second, 10*time.Millisecond, "reconnect must drain the queue")
	assert.Equal(t, 1, objects.Len())
	assert.Eventually(t, func() bool { return !engine.Running() },
		2*time.Second, 10*time.Millisecond)

	// A repeated online signal is not a transition; nothing new starts.
	monitor.SetOnline(true)
	assert.False(t, engine.Running())
}
