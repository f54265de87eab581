// cmd/contsocket-plant runs a recycling plant speaking the line-oriented
// socket protocol (GET_CAPACITY / NOTIFY over TCP).
package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/greenloop/dumpster-coordination/internal/contsocket"
	"github.com/greenloop/dumpster-coordination/internal/ledger"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	plantID := getEnv("PLANT_ID", "CONTSO-01")
	port := getEnv("PORT", "9090")
	baseCapacity := getEnvFloat("BASE_CAPACITY", 80.5)
	unitsPerTon := getEnvFloat("UNITS_PER_TON", ledger.DefaultUnitsPerTon)
	retentionDays := getEnvInt("RETENTION_DAYS", 30)

	led := ledger.New(baseCapacity, unitsPerTon)
	srv := contsocket.NewServer(plantID, led, log)

	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		log.Error("listen failed", "port", port, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("plant listening", "plant", plantID, "port", port, "base_capacity", baseCapacity)
		return srv.Serve(ctx, lis)
	})

	// Drop ledger entries older than the retention window once a day.
	g.Go(func() error {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				cutoff := time.Now().AddDate(0, 0, -retentionDays)
				if n := led.Prune(cutoff); n > 0 {
					log.Info("pruned ledger entries", "count", n)
				}
			}
		}
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

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
