// cmd/coordinator is the central coordination server.
// It wires together all layers and starts the HTTP API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/greenloop/dumpster-coordination/internal/database"
	"github.com/greenloop/dumpster-coordination/internal/gateway"
	"github.com/greenloop/dumpster-coordination/internal/handler"
	"github.com/greenloop/dumpster-coordination/internal/model"
	"github.com/greenloop/dumpster-coordination/internal/repository"
	"github.com/greenloop/dumpster-coordination/internal/service"
	"github.com/greenloop/dumpster-coordination/internal/session"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	ctx := context.Background()

	// ── 1. Connect to PostgreSQL ──────────────────────────────────────────
	pool, err := database.NewPool(ctx)
	if err != nil {
		log.Error("database connect failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Error("schema setup failed", "error", err)
		os.Exit(1)
	}
	if err := database.Seed(ctx, pool); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}
	log.Info("connected to postgres")

	// ── 2. Wire up layers ────────────────────────────────────────────────
	plantRepo := repository.NewPlantRepository(pool)
	employeeRepo := repository.NewEmployeeRepository(pool)
	dumpsterRepo := repository.NewDumpsterRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	usageRepo := repository.NewUsageRepository(pool)

	sessions := session.NewManager()

	registry := gateway.NewRegistry(map[string]gateway.PlantGateway{
		model.GatewayContSocket: gateway.NewContSocket(gateway.DefaultSocketTimeout),
		model.GatewayPlasSB:     gateway.NewPlasSB(nil),
	})

	employeeSvc := service.NewEmployeeService(employeeRepo, sessions, log)
	dumpsterSvc := service.NewDumpsterService(dumpsterRepo, usageRepo, log)
	plantSvc := service.NewPlantService(employeeRepo, plantRepo, dumpsterRepo, assignmentRepo, registry, log)

	api := handler.NewAPI(employeeSvc, dumpsterSvc, plantSvc)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger(log))     // structured access log
	r.Use(handler.CORS)            // permissive CORS for demo

	// Health
	r.Get("/health", handler.HealthCheck)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", api.Login)

		r.Group(func(r chi.Router) {
			r.Use(handler.RequireAuth(sessions))

			r.Post("/logout", api.Logout)

			r.Route("/dumpsters", func(r chi.Router) {
				r.Post("/", api.CreateDumpster)
				r.Put("/{id}", api.UpdateDumpster)
				r.Get("/status", api.DumpsterStatus)
				r.Get("/usage", api.DumpsterUsage)
			})

			r.Route("/plants", func(r chi.Router) {
				r.Get("/", api.ListPlants)
				r.Get("/capacity", api.PlantCapacity)
				r.Post("/assign", api.AssignDumpsters)
			})
		})
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
		log.Info("coordinator listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
