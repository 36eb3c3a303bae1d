// Package upload gives capture forms a single call that hides the
// online/offline branch: online uploads go straight to object storage,
// offline ones land in the durable queue with a session-local preview.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log"

	"fleetlog-backend/internal/connectivity"
	"fleetlog-backend/internal/docstore"
	"fleetlog-backend/internal/objstore"
	"fleetlog-backend/internal/queue"
)

// ErrInvalidMedia marks payloads the caller can fix: undecodable images,
// unsupported or empty audio. Everything else an adapter returns is an
// infrastructure failure.
var ErrInvalidMedia = errors.New("invalid media payload")

// Result is the uniform shape returned to calling forms.
type Result struct {
	URL     string `json:"url"`
	Path    string `json:"path"`
	Offline bool   `json:"isOffline"`
}

// Request identifies the document an attachment belongs to.
type Request struct {
	Domain     docstore.Domain
	UserID     string
	DocumentID string
	Field      string
	Extra      docstore.Extra
}

// Adapter routes attachment bytes online or into the queue.
type Adapter struct {
	monitor    *connectivity.Monitor
	objects    objstore.Store
	queue      *queue.Queue
	previewURL func(id string) string
}

// NewAdapter creates an adapter. previewURL renders the temporary URL a
// queued upload's preview is reachable at for the current session.
func NewAdapter(monitor *connectivity.Monitor, objects objstore.Store, q *queue.Queue, previewURL func(id string) string) *Adapter {
	if previewURL == nil {
		previewURL = func(id string) string { return "local://previews/" + id }
	}
	return &Adapter{monitor: monitor, objects: objects, queue: q, previewURL: previewURL}
}

// put performs the branch for already-encoded bytes. Online upload
// failures surface without enqueueing (the caller may retry); offline
// enqueue failures surface so the form can fall back to preview-only.
func (a *Adapter) put(ctx context.Context, data []byte, contentType, filename string, req Request) (*Result, error) {
	path := fmt.Sprintf("%s/%s/%s", req.Domain, req.UserID, filename)

	if a.monitor.IsOnline() {
		url, err := a.objects.Upload(ctx, path, contentType, data)
		if err != nil {
			return nil, fmt.Errorf("direct upload failed: %w", err)
		}
		return &Result{URL: url, Path: path}, nil
	}

	extra, err := docstore.EncodeExtra(req.Extra)
	if err != nil {
		return nil, fmt.Errorf("encoding extra data: %w", err)
	}
	entry := &queue.PendingUpload{
		Domain:      string(req.Domain),
		UserID:      req.UserID,
		Payload:     data,
		ContentType: contentType,
		Filename:    filename,
		DocumentID:  req.DocumentID,
		Field:       req.Field,
		Extra:       extra,
	}
	if err := a.queue.Enqueue(ctx, entry); err != nil {
		return nil, fmt.Errorf("queueing offline upload: %w", err)
	}

	res := &Result{Path: path, Offline: true}
	previewID, err := a.queue.SavePreview(ctx, contentType, data)
	if err != nil {
		// The upload itself is safely queued; only the preview is lost.
		log.Printf("Warning: could not store preview for %s: %v", entry.ID, err)
	} else {
		res.URL = a.previewURL(previewID)
	}
	return res, nil
}
