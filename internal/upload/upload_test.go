package upload

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
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

// testJPEG renders a solid image of the given size as JPEG bytes.
func testJPEG(t *testing.T, width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func testRequest() Request {
	return Request{
		Domain:     docstore.DomainRefueling,
		UserID:     "driver-1",
		DocumentID: "ref-1",
		Field:      "photos",
	}
}

func TestImageUploadOnline(t *testing.T) {
	monitor := connectivity.NewMonitor(true)
	objects := objstore.NewMemory()
	q := newTestQueue(t)
	adapter := NewImageAdapter(NewAdapter(monitor, objects, q, nil), 1280, 80)

	res, err := adapter.Upload(context.Background(), bytes.NewReader(testJPEG(t, 64, 48)), testRequest())
	require.NoError(t, err)

	assert.False(t, res.Offline)
	assert.True(t, strings.HasPrefix(res.URL, "mem://refueling/driver-1/"), res.URL)
	assert.True(t, strings.HasSuffix(res.Path, ".jpg"))
	assert.NotNil(t, objects.Object(res.Path))

	n, err := q.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "online uploads must not enqueue")
}

func TestImageUploadDownsamples(t *testing.T) {
	monitor := connectivity.NewMonitor(true)
	objects := objstore.NewMemory()
	q := newTestQueue(t)
	adapter := NewImageAdapter(NewAdapter(monitor, objects, q, nil), 32, 80)

	res, err := adapter.Upload(context.Background(), bytes.NewReader(testJPEG(t, 128, 64)), testRequest())
	require.NoError(t, err)

	stored, err := imaging.Decode(bytes.NewReader(objects.Object(res.Path)))
	require.NoError(t, err)
	assert.Equal(t, 32, stored.Bounds().Dx())
	assert.Equal(t, 16, stored.Bounds().Dy(), "aspect ratio preserved")
}

func TestImageUploadOffline(t *testing.T) {
	monitor := connectivity.NewMonitor(false)
	objects := objstore.NewMemory()
	q := newTestQueue(t)
	adapter := NewImageAdapter(NewAdapter(monitor, objects, q, func(id string) string {
		return "/api/previews/" + id
	}), 1280, 80)

	res, err := adapter.Upload(context.Background(), bytes.NewReader(testJPEG(t, 64, 48)), testRequest())
	require.NoError(t, err)

	assert.True(t, res.Offline)
	assert.True(t, strings.HasPrefix(res.URL, "/api/previews/"), res.URL)
	assert.Equal(t, 0, objects.Len(), "offline uploads never hit object storage")

	entries, err := q.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "refueling", entries[0].Domain)
	assert.Equal(t, "photos", entries[0].Field)
	assert.Equal(t, "image/jpeg", entries[0].ContentType)
	assert.NotEmpty(t, entries[0].Payload)

	// The preview blob backs the returned temporary URL.
	previewID := strings.TrimPrefix(res.URL, "/api/previews/")
	blob, err := q.GetPreview(context.Background(), previewID)
	require.NoError(t, err)
	assert.Equal(t, entries[0].Payload, blob.Payload)
}

type failingStore struct{}

func (failingStore) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	return "", errors.New("bucket unavailable")
}

func TestImageUploadOnlineFailureDoesNotEnqueue(t *testing.T) {
	monitor := connectivity.NewMonitor(true)
	q := newTestQueue(t)
	adapter := NewImageAdapter(NewAdapter(monitor, failingStore{}, q, nil), 1280, 80)

	_, err := adapter.Upload(context.Background(), bytes.NewReader(testJPEG(t, 64, 48)), testRequest())
	require.Error(t, err)

	n, err := q.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestAudioUpload(t *testing.T) {
	monitor := connectivity.NewMonitor(false)
	q := newTestQueue(t)
	adapter := NewAudioAdapter(NewAdapter(monitor, objstore.NewMemory(), q, nil))

	req := testRequest()
	req.Field = "audioUrl"
	res, err := adapter.Upload(context.Background(), bytes.NewReader([]byte("opus data")), "audio/ogg", req)
	require.NoError(t, err)
	assert.True(t, res.Offline)
	assert.True(t, strings.HasSuffix(res.Path, ".ogg"))

	_, err = adapter.Upload(context.Background(), bytes.NewReader([]byte("x")), "video/mp4", req)
	assert.Error(t, err)

	_, err = adapter.Upload(context.Background(), bytes.NewReader(nil), "audio/ogg", req)
	assert.Error(t, err, "empty payload rejected before queueing")
}
