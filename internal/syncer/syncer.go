// Package syncer drains the local durable queue into the remote backend
// whenever connectivity is available. At most one pass runs at a time;
// entries succeed or fail independently.
package syncer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"fleetlog-backend/internal/connectivity"
	"fleetlog-backend/internal/docstore"
	"fleetlog-backend/internal/objstore"
	"fleetlog-backend/internal/queue"
)

// Status is the transient sync state broadcast to subscribers.
type Status struct {
	IsSyncing    bool
	PendingCount int
}

// Result summarizes one completed pass.
type Result struct {
	Success int
	Failed  int
}

type listener struct {
	id int
	fn func(Status)
}

// Engine performs sync passes. Construct one per process and inject it;
// there is no package-level state, so tests get a fresh instance each.
type Engine struct {
	queue   *queue.Queue
	objects objstore.Store
	docs    docstore.Store

	running atomic.Bool

	mu        sync.Mutex
	nextID    int
	listeners []listener
}

// New creates a sync engine over the queue and the two remote stores.
func New(q *queue.Queue, objects objstore.Store, docs docstore.Store) *Engine {
	return &Engine{queue: q, objects: objects, docs: docs}
}

// Running reports whether a pass is currently in flight.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// AutoSync subscribes the engine to the connectivity monitor: every
// offline-to-online transition starts a drain pass in the background.
// Offline transitions are ignored. The returned function unsubscribes.
func (e *Engine) AutoSync(ctx context.Context, m *connectivity.Monitor) func() {
	return m.OnChange(func(online bool) {
		if !online {
			return
		}
		go func() {
			if _, err := e.Sync(ctx); err != nil {
				log.Printf("sync pass failed: %v", err)
			}
		}()
	})
}

// OnStatus subscribes to status broadcasts and returns an unsubscribe
// function.
func (e *Engine) OnStatus(fn func(Status)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.listeners = append(e.listeners, listener{id: id, fn: fn})
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

func (e *Engine) notify(s Status) {
	e.mu.Lock()
	snapshot := make([]listener, len(e.listeners))
	copy(snapshot, e.listeners)
	e.mu.Unlock()
	for _, l := range snapshot {
		l.fn(s)
	}
}

// Sync runs one pass over a snapshot of the queue. If a pass is already
// running the trigger is a no-op and returns immediately with a zero
// Result. Entries are attempted in enqueue order; a failed entry stays
// queued for the next pass and does not block the rest.
func (e *Engine) Sync(ctx context.Context) (Result, error) {
	if !e.running.CompareAndSwap(false, true) {
		log.Println("Sync pass already running; trigger ignored")
		return Result{}, nil
	}
	defer e.running.Store(false)

	entries, err := e.queue.ListPending(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("listing pending uploads: %w", err)
	}

	total := len(entries)
	e.notify(Status{IsSyncing: true, PendingCount: total})

	var res Result
	for i, entry := range entries {
		if err := e.syncOne(ctx, entry); err != nil {
			log.Printf("Sync of entry %s failed, keeping for retry: %v", entry.ID, err)
			res.Failed++
		} else {
			res.Success++
		}
		e.notify(Status{IsSyncing: true, PendingCount: total - i - 1 + res.Failed})
	}

	e.notify(Status{IsSyncing: false, PendingCount: res.Failed})
	if total > 0 {
		log.Printf("Sync pass done: %d uploaded, %d retained", res.Success, res.Failed)
	}
	return res, nil
}

// syncOne pushes one entry: blob to object storage, then the URL and any
// extra fields onto the target document. The entry is removed only after
// the document update succeeds, so an interrupted pass never loses data.
func (e *Engine) syncOne(ctx context.Context, entry queue.PendingUpload) error {
	extra, err := docstore.DecodeExtra(docstore.Domain(entry.Domain), entry.Extra)
	if err != nil {
		return fmt.Errorf("decoding extra data: %w", err)
	}

	path := fmt.Sprintf("%s/%s/%s", entry.Domain, entry.UserID, entry.Filename)
	url, err := e.objects.Upload(ctx, path, entry.ContentType, entry.Payload)
	if err != nil {
		return fmt.Errorf("uploading blob: %w", err)
	}

	patch := docstore.Patch{
		Domain:     docstore.Domain(entry.Domain),
		DocumentID: entry.DocumentID,
		Field:      entry.Field,
		URL:        url,
		Extra:      extra,
	}
	if err := e.docs.ApplyPatch(ctx, patch); err != nil {
		return fmt.Errorf("patching document: %w", err)
	}

	if err := e.queue.Remove(ctx, entry.ID); err != nil {
		// The document update went through; removal retries next pass and
		// the array-union merge keeps the re-applied URL from duplicating.
		log.Printf("Could not remove synced entry %s, will retry removal: %v", entry.ID, err)
	}
	return nil
}
