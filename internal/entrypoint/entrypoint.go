package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ethanwheatthin/lib-reader/internal/config"
	"github.com/ethanwheatthin/lib-reader/internal/database"
	"github.com/ethanwheatthin/lib-reader/internal/database/bookmarks"
	"github.com/ethanwheatthin/lib-reader/internal/database/documents"
	"github.com/ethanwheatthin/lib-reader/internal/database/sources"
	"github.com/ethanwheatthin/lib-reader/internal/database/stats"
	http_controllers "github.com/ethanwheatthin/lib-reader/internal/http"
	"github.com/ethanwheatthin/lib-reader/internal/pageindex"
	"github.com/ethanwheatthin/lib-reader/internal/reading"
	"github.com/ethanwheatthin/lib-reader/internal/scanner"
	"github.com/ethanwheatthin/lib-reader/internal/scheduler"
	"github.com/ethanwheatthin/lib-reader/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the task queue and poller)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting lib-reader v%s", version)

	// Ensure the upload data directory exists before anything writes to it
	if err := os.MkdirAll(cfg.Library.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory %s: %v", cfg.Library.DataDir, err)
	}

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	docRepo := documents.NewRepository(db.DB)
	bookmarkRepo := bookmarks.NewRepository(db.DB)
	statsRepo := stats.NewRepository(db.DB)
	sourceRepo := sources.NewRepository(db.DB)

	// Page indexes live next to the database, not inside the upload dir,
	// so wiping uploaded files never loses renderer pagination.
	indexDir := filepath.Join(filepath.Dir(cfg.Database.Path), "page-indexes")
	indexCache, err := pageindex.NewCache(indexDir)
	if err != nil {
		log.Fatalf("Failed to initialize page index cache: %v", err)
	}

	tracker := reading.NewTracker(docRepo)
	recorder := reading.NewRecorder(statsRepo)
	libScanner := scanner.New(docRepo, sourceRepo)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewIndexDocumentQueue(docRepo, indexCache),
		)

		// Scanned imports get their metadata extracted in the background
		libScanner.OnImported(func(documentID string) {
			if _, err := taskClient.Add(tasks.IndexDocumentTask{DocumentID: documentID}).Save(); err != nil {
				log.Printf("Failed to enqueue indexing for document %s: %v", documentID, err)
			}
		})

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Background polling of library sources
	var poller *scheduler.ScanPoller
	if cfg.Scanner.PollingEnabled {
		poller = scheduler.NewScanPoller(sourceRepo, libScanner)
		if err := poller.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start scan poller: %v", err)
		}
	} else {
		log.Printf("Library source polling disabled")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		DocumentStore:  docRepo,
		BookmarkStore:  bookmarkRepo,
		StatsStore:     statsRepo,
		SourceStore:    sourceRepo,
		Tracker:        tracker,
		Recorder:       recorder,
		PageIndexCache: indexCache,
		Scanner:        libScanner,
		TaskClient:     taskClient,
		DataDir:        cfg.Library.DataDir,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if poller != nil {
			poller.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
