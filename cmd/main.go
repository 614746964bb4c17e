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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/westay/reservations/internal/database"
	"github.com/westay/reservations/internal/handler"
	"github.com/westay/reservations/internal/listing"
	"github.com/westay/reservations/internal/repository"
	"github.com/westay/reservations/internal/service"
)

func main() {
	ctx := context.Background()

	// Optional .env for local development; env vars win in deployment.
	_ = godotenv.Load()

	// ── 1. Connect to PostgreSQL and apply the schema ─────────────────────
	pool, err := database.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("✓ Connected to PostgreSQL")

	// ── 2. Wire up layers ────────────────────────────────────────────────
	listings := buildListingDirectory(ctx)
	repo := repository.NewReservationRepository(pool)
	svc := service.NewReservationService(repo, listings)
	h := handler.NewReservationHandler(svc)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // structured access log
	r.Use(handler.CORS)            // permissive CORS; gateway owns the real policy

	// Health
	r.Get("/health", handler.HealthCheck)

	// API routes
	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", h.CreateReservation)
		r.Get("/{id}", h.GetReservation)
		r.Patch("/{id}/status", h.UpdateStatus)
		r.Get("/code/{code}", h.GetReservationByCode)
		r.Get("/user/{userID}", h.ListUserReservations)
	})
	r.Post("/availability", h.CheckAvailability)
	r.Route("/listings/{listingID}", func(r chi.Router) {
		r.Get("/reservations", h.ListListingReservations)
		r.Get("/quote", h.Quote)
		r.Get("/unavailable-dates", h.UnavailableDates)
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

// buildListingDirectory assembles the listing-service client, wrapped in
// a Redis TTL cache when REDIS_ADDR is configured. Without Redis the
// uncached client is used directly.
func buildListingDirectory(ctx context.Context) listing.Directory {
	client := listing.NewClient(
		getEnv("LISTING_SERVICE_URL", "http://localhost:8081"),
		3*time.Second,
	)

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return client
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis unreachable at %s, running without listing cache: %v", addr, err)
		return client
	}
	log.Println("✓ Listing cache backed by Redis")

	return listing.NewCachedDirectory(client, rdb, 5*time.Minute)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
