package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"univisa.org/internal/advisor"
	"univisa.org/internal/compliance"
	"univisa.org/internal/config"
	"univisa.org/internal/httpapi"
	"univisa.org/internal/obs"
	"univisa.org/internal/store/pg"
	"univisa.org/internal/stream"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	// Durable store when a DSN is configured, seeded in-memory otherwise.
	var (
		svc   compliance.Service
		probe httpapi.ReadyProbe
	)
	if cfg.PostgresDSN != "" {
		store, err := pg.Open(cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer store.Close()
		svc = store
		probe = httpapi.ReadyProbe{DB: store.DB()}
	} else {
		mem := compliance.NewInMemory()
		mem.SeedDemo()
		svc = mem
	}

	api := httpapi.New(probe, version, svc, advisor.Default(), stream.New())
	api.RateBurst = cfg.RateBurst
	api.RatePerSec = cfg.RatePerSec
	api.MaxBodyBytes = cfg.MaxBodyBytes
	api.GeminiConfigured = cfg.GeminiAPIKey != ""

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting univisa-api %s on %s", version, srv.Addr)

	// graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
