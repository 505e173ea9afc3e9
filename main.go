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

	"dbchat/internal/adapter/llm"
	"dbchat/internal/config"
	"dbchat/internal/db"
	"dbchat/internal/httpapi"
	"dbchat/internal/policy"
	"dbchat/internal/query"
	"dbchat/internal/service"
	"dbchat/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Starting chat backend...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s (%s)", cfg.DBName, cfg.DBDriver)
	log.Printf("Model: %s", cfg.ModelName)

	gormDB, err := db.OpenGorm(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	executor := query.NewExecutor(gormDB, cfg.DBDriver, policyEngine, cfg.AllowedStatements, cfg.QueryTimeout)
	store := session.NewStore(cfg.SessionMaxTurns)
	llmClient := llm.NewLLMClient(cfg.ChatMode, cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout)

	svc := service.New(store, llmClient, executor, cfg)
	h := httpapi.NewHandler(svc)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.CORSOrigin},
	}))

	h.RegisterRoutes(e)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	sweeper := session.NewSweeper(store, cfg.SweepInterval, cfg.SessionIdleTTL)
	go sweeper.Run(sweepCtx)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Chat API started on port %d", cfg.HTTPPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	store.Close()

	log.Println("Chat backend stopped")
}
