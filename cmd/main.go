package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Syed-Shayan-ALi33/company-plus/internal/config"
	"github.com/Syed-Shayan-ALi33/company-plus/internal/db"
	"github.com/Syed-Shayan-ALi33/company-plus/internal/kafka"
	"github.com/Syed-Shayan-ALi33/company-plus/internal/logger"
	"github.com/Syed-Shayan-ALi33/company-plus/internal/server"
	"github.com/Syed-Shayan-ALi33/company-plus/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zl := logger.New()
	defer func() { _ = zl.Sync() }()

	cfg := config.Load()

	st, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Storage init error: %v", err)
	}

	var producer kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewWriterProducer(cfg.KafkaBrokers)
	} else {
		producer = kafka.NewConsoleProducer()
	}

	srv := server.New(st, producer, cfg.KafkaTopic, cfg.ServerPort)

	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.ServerPort)

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.StoreBackend == "postgres" {
		database, err := db.NewDb(ctx, cfg.DatabaseDSN())
		if err != nil {
			return nil, err
		}
		pg := store.NewPostgresStore(database)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return pg, nil
	}
	return store.NewFileStore(cfg.DataFile), nil
}
