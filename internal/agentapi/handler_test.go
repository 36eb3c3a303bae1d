package agentapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fleetlog-backend/internal/connectivity"
	"fleetlog-backend/internal/docstore"
	"fleetlog-backend/internal/objstore"
	"fleetlog-backend/internal/profile"
	"fleetlog-backend/internal/queue"
	"fleetlog-backend/internal/syncer"
	"fleetlog-backend/internal/upload"
)

type testAgent struct {
	router  *gin.Engine
	queue   *queue.Queue
	monitor *connectivity.Monitor
	objects *objstore.Memory
	docs    *docstore.Memory
}

func setupAgent(t *testing.T, online bool) *testAgent {
	gin.SetMode(gin.TestMode)

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&queue.PendingUpload{}, &queue.PreviewBlob{}, &profile.CachedProfile{}))

	q := queue.New(db)
	monitor := connectivity.NewMonitor(online)
	objects := objstore.NewMemory()
	docs := docstore.NewMemory()
	engine := syncer.New(q, objects, docs)

	adapter := upload.NewAdapter(monitor, objects, q, func(id string) string {
		return "/api/previews/" + id
	})
	images := upload.NewImageAdapter(adapter, 1280, 80)
	audio := upload.NewAudioAdapter(adapter)
	loader := profile.NewLoader(docs, profile.NewCache(db), time.Second)

	handler := NewHandler(images, audio, q, monitor, engine, loader, "driver-1")
	return &testAgent{
		router:  NewRouter(handler),
		queue:   q,
		monitor: monitor,
		objects: objects,
		docs:    docs,
	}
}

// multipartUpload builds the form a capture page posts.
func multipartUpload(t *testing.T, fields map[string]string, filename, contentType string, payload []byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func pngBytes(t *testing.T) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestPostUploadOnline(t *testing.T) {
	a := setupAgent(t, true)

	body, contentType := multipartUpload(t, map[string]string{
		"domain":     "refueling",
		"documentId": "ref-1",
		"field":      "photos",
	}, "pump.png", "image/png", pngBytes(t))

	req := httptest.NewRequest("POST", "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var result upload.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Offline)
	assert.True(t, strings.HasPrefix(result.URL, "mem://refueling/driver-1/"))
	assert.True(t, strings.HasSuffix(result.Path, ".jpg"))
	assert.Equal(t, 1, a.objects.Len())
}

func TestPostUploadOfflineQueuesAndPreviews(t *testing.T) {
	a := setupAgent(t, false)

	extra, _ := json.Marshal(docstore.RefuelingPatch{Liters: ptr(38.5)})
	body, contentType := multipartUpload(t, map[string]string{
		"domain":     "refueling",
		"documentId": "ref-1",
		"field":      "photos",
		"extra":      string(extra),
	}, "pump.png", "image/png", pngBytes(t))

	req := httptest.NewRequest("POST", "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var result upload.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Offline)
	require.True(t, strings.HasPrefix(result.URL, "/api/previews/"))

	// The preview URL serves the re-encoded bytes back.
	req = httptest.NewRequest("GET", result.URL, nil)
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())

	// Nothing reached object storage; the queue holds the entry.
	assert.Equal(t, 0, a.objects.Len())
	pending, err := a.queue.ListPending(req.Context())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "ref-1", pending[0].DocumentID)
}

func TestPostUploadValidation(t *testing.T) {
	a := setupAgent(t, true)

	body, contentType := multipartUpload(t, map[string]string{
		"domain":     "invoice",
		"documentId": "x",
		"field":      "photos",
	}, "a.png", "image/png", pngBytes(t))
	req := httptest.NewRequest("POST", "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unsupported audio content type is the caller's mistake.
	body, contentType = multipartUpload(t, map[string]string{
		"domain":     "maintenance",
		"documentId": "m-1",
		"field":      "audioUrl",
	}, "note.bin", "application/octet-stream", []byte("not audio"))
	req = httptest.NewRequest("POST", "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// So is a payload that does not decode as an image.
	body, contentType = multipartUpload(t, map[string]string{
		"domain":     "maintenance",
		"documentId": "m-1",
		"field":      "photos",
	}, "broken.png", "image/png", []byte("not a png"))
	req = httptest.NewRequest("POST", "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostUploadStorageFailure(t *testing.T) {
	a := setupAgent(t, true)
	a.objects.FailAll = errors.New("bucket unavailable")

	body, contentType := multipartUpload(t, map[string]string{
		"domain":     "refueling",
		"documentId": "ref-1",
		"field":      "photos",
	}, "pump.png", "image/png", pngBytes(t))
	req := httptest.NewRequest("POST", "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	// A healthy payload failing on the storage side is not a 4xx.
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestStatusAndManualSync(t *testing.T) {
	a := setupAgent(t, false)

	// Queue one entry while offline.
	body, contentType := multipartUpload(t, map[string]string{
		"domain":     "maintenance",
		"documentId": "m-1",
		"field":      "photos",
	}, "part.png", "image/png", pngBytes(t))
	req := httptest.NewRequest("POST", "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest("GET", "/api/status", nil)
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"online":false,"isSyncing":false,"pendingCount":1}`, w.Body.String())

	// Back online: a manual sync drains the queue.
	a.monitor.SetOnline(true)
	a.docs.Put(docstore.DomainMaintenance, "m-1", map[string]any{})

	req = httptest.NewRequest("POST", "/api/sync", nil)
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":1,"failed":0}`, w.Body.String())

	req = httptest.NewRequest("GET", "/api/status", nil)
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.JSONEq(t, `{"online":true,"isSyncing":false,"pendingCount":0}`, w.Body.String())
}

func TestGetProfile(t *testing.T) {
	a := setupAgent(t, true)

	a.docs.PutProfile(docstore.Profile{ID: "driver-1", Name: "Rui", Role: "driver"})

	req := httptest.NewRequest("GET", "/api/profile", nil)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var p docstore.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "Rui", p.Name)
}

func ptr[T any](v T) *T { return &v }
