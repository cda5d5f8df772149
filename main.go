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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/agentdesk/agentdesk/api"
	"github.com/agentdesk/agentdesk/config"
	"github.com/agentdesk/agentdesk/conversation"
	"github.com/agentdesk/agentdesk/policy"
	"github.com/agentdesk/agentdesk/registry"
	"github.com/agentdesk/agentdesk/store"
	"github.com/agentdesk/agentdesk/stream"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting agentdesk...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Runtime endpoint: %s", cfg.RuntimeEndpoint)
	log.Printf("Agent service: %s", cfg.AgentServiceURL)

	// Initialize event-log store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize invocation client
	invoker := stream.NewClient(cfg.StreamConfig())

	// Initialize conversation assembler
	assembler := conversation.NewAssembler(db, cfg.MemoryID, cfg.EventPageSize)

	// Initialize agent-definition cache
	agents := registry.NewCache(registry.NewClient(cfg.AgentServiceURL, 0), cfg.AgentCacheTTL, nil)

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize handlers
	h := api.NewHandler(invoker, assembler, agents, policyEngine, cfg)

	// Create Echo server
	server := echo.New()
	server.HideBanner = true

	// Middleware
	server.Use(middleware.Logger())
	server.Use(middleware.Recover())
	server.Use(middleware.CORS())

	// Register routes
	h.RegisterRoutes(server)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down agentdesk...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("agentdesk stopped")
}
