package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/01moynul/gotogro-members/internal/auth"
	"github.com/01moynul/gotogro-members/internal/config"
	"github.com/01moynul/gotogro-members/internal/database"
	"github.com/01moynul/gotogro-members/internal/handlers"
	"github.com/01moynul/gotogro-members/internal/logger"
	"github.com/01moynul/gotogro-members/internal/routes"
	"github.com/01moynul/gotogro-members/internal/sales"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 0. --- Configuration (.env + environment) ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. --- Database Connection ---
	db, dialect, err := database.Open(ctx, cfg.DBDriver, cfg.DSN, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, dialect); err != nil {
		zlog.Fatal("failed to migrate database", zap.Error(err))
	}

	// 2. --- Services ---
	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		zlog.Fatal("failed to configure tokens", zap.Error(err))
	}

	app := &handlers.Handlers{
		DB:     db,
		Sales:  sales.NewService(db, dialect, cfg.Sales, zlog.Named("sales")),
		Tokens: tokens,
		Log:    zlog,
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app, routes.Options{
		CORSOrigin:  cfg.CORSOrigin,
		LoginPerMin: cfg.LoginPerMin,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Start Server ---
	go func() {
		zlog.Info("starting GotoGro members API", zap.String("addr", srv.Addr), zap.String("driver", dialect.Name))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}
