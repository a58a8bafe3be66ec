package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"dlex-orders/internal/config"
	"dlex-orders/internal/diagnostics"
	"dlex-orders/internal/handler"
	"dlex-orders/internal/repository"
	"dlex-orders/internal/service"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("msg=config_load_failed err=%q", err)
	}

	repo, closeRepo, err := openRepository(cfg, logger)
	if err != nil {
		logger.Fatalf("msg=repository_open_failed err=%q", err)
	}
	defer closeRepo()

	metrics := diagnostics.NewMetrics()
	svc := service.NewOrderService(repo, cfg.Server.OperationDelay)
	h := handler.NewOrderHandler(svc, cfg.Messages, metrics, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.HTTPPort),
		Handler:           handler.Routes(h, cfg.Sites.Root, cfg.Server.StaticDir, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	diag := diagnostics.NewServer(cfg.Server.DiagnosticsPort, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Printf("msg=http_server_start addr=%s root=%s", srv.Addr, cfg.Sites.Root)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Printf("msg=diagnostics_server_start addr=%s", diag.Addr())
		if err := diag.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("diagnostics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Printf("msg=shutdown_started")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("msg=http_shutdown_failed err=%q", err)
		}
		if err := diag.Shutdown(shutdownCtx); err != nil {
			logger.Printf("msg=diagnostics_shutdown_failed err=%q", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Printf("msg=server_failed err=%q", err)
	}
	logger.Printf("msg=shutdown_complete")
}

func openRepository(cfg *config.Config, logger *log.Logger) (repository.OrderRepository, func(), error) {
	if cfg.UseMemoryStore() {
		logger.Printf("msg=repository_selected kind=memory")
		return repository.NewMemoryOrderRepository(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	repo := repository.NewPostgresOrderRepository(db, cfg.Database.Timeout)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	logger.Printf("msg=repository_selected kind=postgres")
	return repo, func() { db.Close() }, nil
}
