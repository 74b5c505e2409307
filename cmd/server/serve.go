package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"taskbuddy-api/internal/auth"
	"taskbuddy-api/internal/cache"
	"taskbuddy-api/internal/database"
	"taskbuddy-api/internal/realtime"
	"taskbuddy-api/internal/routes"
	"taskbuddy-api/internal/storage"
	"taskbuddy-api/internal/tasks"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the TaskBuddy HTTP API.

Examples:
  taskbuddy serve
  taskbuddy serve --addr :3000
  taskbuddy serve --config ./config.yaml`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides server.host and server.port")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	for _, w := range cfg.InsecureDefaults() {
		log.Printf("WARNING: %s", w)
	}
	auth.Configure(cfg.Auth)

	// Init database
	database.InitDB(cfg.Database)

	blobs, err := storage.NewLocalStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	lists := cache.NewMemoryTaskLists(cfg.Cache.TTL)
	store := tasks.NewStore(database.GetDB(), lists, tasks.Options{CacheTTL: cfg.Cache.TTL, Blobs: blobs})

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes(cfg, store, blobs, realtime.GetHub())

	addr := cfg.Server.Addr()
	if serveAddr != "" {
		addr = serveAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           ginRoutes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cache.TTL > 0 {
		go purgeLists(ctx, lists, cfg.Cache.TTL)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", addr)
		log.Println("API endpoints:")
		for _, r := range ginRoutes.Routes() {
			log.Printf("  %-7s %s", r.Method, r.Path)
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if sqlDB, err := database.GetDB().DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("Server stopped")
	return nil
}

// purgeLists drops expired in-memory task lists until ctx is done.
func purgeLists(ctx context.Context, lists cache.TaskLists, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lists.PurgeExpired()
			log.Printf("Task list cache: %d users cached", lists.Len())
		}
	}
}
