// @title        healthlog API
// @version      1.0
// @description  CRUD over the health_check message table.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/projecthelena/healthlog/internal/api"
	"github.com/projecthelena/healthlog/internal/config"
	"github.com/projecthelena/healthlog/internal/db"
	"github.com/projecthelena/healthlog/internal/logging"
)

func main() {
	logger := logging.New("healthlog")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Printf("database: type=%s host=%s port=%d user=%s name=%s ssl=%t",
		cfg.DB.Type, cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Name, cfg.DB.SSL)

	store, err := db.NewStore(db.DBConfig{
		Type:     db.Dialect(cfg.DB.Type),
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Name:     cfg.DB.Name,
		SSL:      cfg.DB.SSL,
		Path:     cfg.DB.Path,
	})
	if err != nil {
		logger.Fatalf("init database: %v", err)
	}
	defer func() { _ = store.Close() }()

	router := api.NewRouter(store, cfg)
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Printf("Server running on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Server forced to shutdown: %v", err)
	}

	logger.Println("Server exiting")
}
