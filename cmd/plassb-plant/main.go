// cmd/plassb-plant runs a recycling plant exposing the HTTP/JSON plant
// protocol (capacity queries and incoming-load notifications).
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/greenloop/dumpster-coordination/internal/ledger"
	"github.com/greenloop/dumpster-coordination/internal/plassb"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	plantID := getEnv("PLANT_ID", "PLASSB-01")
	port := getEnv("PORT", "8082")
	baseCapacity := getEnvFloat("BASE_CAPACITY", 85.0)
	unitsPerTon := getEnvFloat("UNITS_PER_TON", ledger.DefaultUnitsPerTon)

	led := ledger.New(baseCapacity, unitsPerTon)
	plant := plassb.NewServer(plantID, led, log)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      plant.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("plant listening", "plant", plantID, "port", port, "base_capacity", baseCapacity)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error("plant stopped", "error", err)
		os.Exit(1)
	}
	log.Info("plant stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
