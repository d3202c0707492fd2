// Package main is the entry point for nexus-rtc
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RRM006/NexusCRM-sub000/internal/api"
	"github.com/RRM006/NexusCRM-sub000/internal/auth"
	"github.com/RRM006/NexusCRM-sub000/internal/call"
	"github.com/RRM006/NexusCRM-sub000/internal/config"
	"github.com/RRM006/NexusCRM-sub000/internal/presence"
	"github.com/RRM006/NexusCRM-sub000/internal/routing"
	"github.com/RRM006/NexusCRM-sub000/internal/server"
	"github.com/RRM006/NexusCRM-sub000/internal/store"

	_ "github.com/RRM006/NexusCRM-sub000/docs" // Import generated swagger docs
)

// @title nexus-rtc API
// @version 1.0
// @description Realtime call signaling service for NexusCRM

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	log.Println("Starting nexus-rtc...")

	// Load configuration
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to PostgreSQL
	log.Println("Connecting to PostgreSQL...")
	pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pgStore.Close()
	log.Println("PostgreSQL connected")

	// Connect to Valkey (optional)
	var cache *store.Cache
	if cfg.ValkeyURL != "" {
		log.Println("Connecting to Valkey...")
		cache, err = store.NewCache(ctx, cfg.ValkeyURL, cfg.ValkeyPassword, cfg.ValkeyDB)
		if err != nil {
			log.Printf("Warning: Failed to connect to Valkey: %v (continuing without cache)", err)
			cache = nil
		} else {
			defer cache.Close()
			log.Println("Valkey connected")
		}
	}

	// Token verification
	authMgr, err := auth.NewManager(cfg)
	if err != nil {
		log.Fatalf("Failed to create auth manager: %v", err)
	}

	// Live call state
	var activeCache call.ActiveCallCache
	if cache != nil {
		activeCache = cache
	}
	bridge := call.NewBridge(pgStore, activeCache)
	calls := call.NewManager(cfg.RingTimeout, bridge)
	registry := presence.NewRegistry()
	resolver := routing.NewResolver(registry)

	// Signaling over WebSocket
	signaling := server.NewServer(cfg, authMgr, registry, calls, resolver)

	// REST API + /ws endpoint
	apiServer := api.NewServer(cfg, authMgr, pgStore, cache, calls, signaling)

	go func() {
		if err := apiServer.Start(); err != nil {
			log.Printf("API server error: %v", err)
		}
	}()
	log.Printf("nexus-rtc listening on %s:%d", cfg.HTTPHost, cfg.HTTPPort)
	log.Printf("Signaling:  ws://%s:%d/ws", cfg.HTTPHost, cfg.HTTPPort)
	log.Printf("Swagger UI: http://%s:%d/swagger/index.html", cfg.HTTPHost, cfg.HTTPPort)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("API server shutdown error: %v", err)
	}

	calls.Close()
	bridge.Close()

	cancel()
	log.Println("nexus-rtc stopped")
}
