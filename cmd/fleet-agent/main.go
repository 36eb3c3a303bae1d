package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleetlog-backend/config"
	"fleetlog-backend/internal/agentapi"
	"fleetlog-backend/internal/connectivity"
	"fleetlog-backend/internal/docstore"
	"fleetlog-backend/internal/localdb"
	"fleetlog-backend/internal/objstore"
	"fleetlog-backend/internal/profile"
	"fleetlog-backend/internal/queue"
	"fleetlog-backend/internal/syncer"
	"fleetlog-backend/internal/upload"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "fleet-agent ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Agent.UserID == "" {
		logger.Fatalf("agent user_id must be configured")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Local durable state: queue, previews, cached profile
	localDB, err := localdb.Init(cfg.Agent.QueueDSN)
	if err != nil {
		logger.Fatalf("failed to open local database: %v", err)
	}
	q := queue.New(localDB)

	// Previews are session-scoped; drop leftovers from the last run.
	if err := q.ClearPreviews(ctx); err != nil {
		logger.Printf("Warning: could not clear stale previews: %v", err)
	}

	// Remote backends
	objects, err := objstore.NewS3Store(ctx, &cfg.Storage)
	if err != nil {
		logger.Fatalf("failed to initialize object storage: %v", err)
	}
	docs := docstore.NewClient(cfg.Agent.ServerBaseURL, nil)

	// Connectivity: start pessimistic, let the prober flip us online.
	monitor := connectivity.NewMonitor(false)
	prober := connectivity.NewProber(monitor, cfg.Agent.CheckURL, cfg.Agent.CheckInterval, nil)
	go prober.Run(ctx)

	engine := syncer.New(q, objects, docs)

	// Every offline-to-online transition triggers a drain pass.
	engine.AutoSync(ctx, monitor)

	loader := profile.NewLoader(docs, profile.NewCache(localDB), cfg.Agent.ProfileTimeout)

	// Warm the profile cache; a dead network here just means the capture
	// forms start from the last cached snapshot.
	go func() {
		if _, err := loader.Load(ctx, cfg.Agent.UserID); err != nil {
			logger.Printf("profile warm-up failed: %v", err)
		}
	}()

	adapter := upload.NewAdapter(monitor, objects, q, func(id string) string {
		return fmt.Sprintf("http://127.0.0.1:%d/api/previews/%s", cfg.Agent.Port, id)
	})
	images := upload.NewImageAdapter(adapter, cfg.Upload.MaxImageWidth, cfg.Upload.JPEGQuality)
	audio := upload.NewAudioAdapter(adapter)

	handler := agentapi.NewHandler(images, audio, q, monitor, engine, loader, cfg.Agent.UserID)
	router := agentapi.NewRouter(handler)
	server := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", cfg.Agent.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("agent API starting on port %d", cfg.Agent.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("agent API ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("agent API Shutdown: %v", err)
	}

	logger.Println("Agent gracefully stopped")
}
