// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
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

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"quicket/internal/auth"
	"quicket/internal/database"
	"quicket/internal/handler"
	"quicket/internal/repository"
	"quicket/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	ctx := context.Background()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	tokens := auth.NewTokenManager(secret)

	// ── 1. Connect to PostgreSQL ──────────────────────────────────────────
	pool, err := database.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}
	log.Println("✓ Connected to PostgreSQL")

	// ── 2. Connect to Redis (optional) ────────────────────────────────────
	rdb := connectRedis(ctx)

	// ── 3. Wire up layers ────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	venueRepo := repository.NewVenueRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)

	authSvc := service.NewAuthService(userRepo, tokens)
	venueSvc := service.NewVenueService(venueRepo)
	eventSvc := service.NewEventService(eventRepo, venueRepo)
	bookingSvc := service.NewBookingService(bookingRepo)
	notificationSvc := service.NewNotificationService(notificationRepo)
	adminSvc := service.NewAdminService(userRepo, statsRepo)

	invalidator := handler.NewInvalidator(rdb)

	r := handler.NewRouter(handler.Deps{
		Tokens:        tokens,
		Redis:         rdb,
		Auth:          handler.NewAuthHandler(authSvc),
		Events:        handler.NewEventHandler(eventSvc, invalidator),
		Venues:        handler.NewVenueHandler(venueSvc, invalidator),
		Bookings:      handler.NewBookingHandler(bookingSvc, invalidator),
		Notifications: handler.NewNotificationHandler(notificationSvc),
		Admin:         handler.NewAdminHandler(adminSvc),
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Printf("✓ Server listening on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}

// connectRedis dials the cache backend. The API works without it; the
// response cache and the daily quota are simply skipped.
func connectRedis(ctx context.Context) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("redis unavailable, running without cache and quota: %v", err)
		return nil
	}
	log.Println("✓ Connected to Redis")
	return rdb
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
