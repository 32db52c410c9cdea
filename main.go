package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xiaot623/livechat/internal/config"
	"github.com/xiaot623/livechat/internal/hub"
	"github.com/xiaot623/livechat/internal/repository"
	"github.com/xiaot623/livechat/internal/service"
	transporthttp "github.com/xiaot623/livechat/internal/transport/http"
	"github.com/xiaot623/livechat/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting livechat engine...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Max queue depth: %d", cfg.MaxQueueDepth)

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize hubs
	notifHub := hub.NewNotifHub()
	chatHub := hub.NewChatHub()
	go chatHub.Run()

	// Initialize service
	svc := service.New(db, notifHub, chatHub, cfg, policyEngine)

	// Create the HTTP server (REST + SSE + WebSocket on one listener)
	e := transporthttp.NewServer(svc, notifHub, chatHub, cfg)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Livechat engine started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down livechat engine...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Livechat engine stopped")
}
