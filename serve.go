package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/kindred/catalog"
	"github.com/danielhkuo/kindred/cliparse"
	"github.com/danielhkuo/kindred/db"
	"github.com/danielhkuo/kindred/events"
	"github.com/danielhkuo/kindred/logger"
	"github.com/danielhkuo/kindred/router"
	"github.com/danielhkuo/kindred/session"
	"github.com/danielhkuo/kindred/tracing"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// A missing .env is fine
			_ = godotenv.Load()

			cfg, err := cliparse.FromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cliparse.AddFlags(cmd.Flags())
	return cmd
}

func serve(ctx context.Context, cfg cliparse.Config) error {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{Stdout: cfg.TraceStdout, OTLPEndpoint: cfg.OTLPEndpoint})
	if err != nil {
		log.Error("tracing setup failed", "error", err)
		return err
	}
	defer shutdownTracing(context.Background())

	// Connect to the database
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connection failed", "error", err)
		return err
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(ctx, dbConn); err != nil {
		log.Error("schema creation failed", "error", err)
		return err
	}
	log.Info("Database schema ready", "type", cfg.DatabaseType)

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Error("catalog load failed", "error", err, "path", cfg.CatalogPath)
		return err
	}
	log.Info("Catalog loaded", "questions", cat.Len())

	publisher := events.Nop()
	if cfg.RedisAddr != "" {
		publisher, err = events.NewRedisPublisher(ctx, log, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			log.Error("redis connection failed", "error", err, "addr", cfg.RedisAddr)
			return err
		}
	}
	defer publisher.Close()

	store := db.NewStore(dbConn, log)
	sessions, err := session.NewRegistry(cat, store, cfg.SessionCacheSize, session.Options{
		Log:          log,
		Events:       publisher,
		StoreTimeout: cfg.StoreTimeout,
	})
	if err != nil {
		return err
	}
	// Drains queued answer writes before the database closes
	defer sessions.Close()

	r := router.NewRouter(router.Deps{
		Store:    store,
		Catalog:  cat,
		Sessions: sessions,
		Config:   cfg,
		Log:      log,
	})

	server := &http.Server{
		Handler:           r,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("Listening", "port", cfg.Port)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server closed", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		return err
	}
	log.Info("Server closed")
	return nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}
